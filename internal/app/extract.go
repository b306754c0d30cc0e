package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/viva/internal/domain/types"
)

// parseProjects pulls the JSON array out of free-form oracle output. Models
// often wrap the payload in prose or code fences, so the array is located by
// its outermost brackets rather than parsed from position zero.
func parseProjects(raw string) ([]types.Project, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, ErrNoProjects
	}

	var items []types.Project
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProjects, err)
	}

	out := make([]types.Project, 0, len(items))
	for _, p := range items {
		p.Title = strings.TrimSpace(p.Title)
		p.Summary = strings.TrimSpace(p.Summary)
		if p.Title != "" || p.Summary != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoProjects
	}
	return out, nil
}
