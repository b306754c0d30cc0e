package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/viva/pkg/logger"
)

// Limits on per-session behavior.
const (
	maxGenerationRetries = 3
	retryBackoff         = 500 * time.Millisecond
)

// Run drives the configured number of candidate sessions through the full
// interview loop and verifies results and reports afterwards.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting interview simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("candidates", config.Candidates),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("maxTurns", config.MaxTurns))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if err := runSessions(ctx, config, stats); err != nil {
		return fmt.Errorf("session run failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.SessionsFailed > 0 {
		return fmt.Errorf("%d of %d sessions failed", stats.SessionsFailed, config.Candidates)
	}
	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// runSessions runs candidate sessions through a worker pool.
func runSessions(ctx context.Context, config *Config, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	var (
		started  int64
		finished int64
		failed   int64
		answers  int64
		retried  int64
		verified int64
		reports  int64
	)

	indexChan := make(chan int, config.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				result := runSingleSession(ctx, client, config, personaFor(i))
				atomic.AddInt64(&started, 1)
				atomic.AddInt64(&answers, int64(result.answers))
				atomic.AddInt64(&retried, int64(result.retries))
				if result.err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "session failed",
						logger.Int("candidate", i), logger.Error(result.err))
					continue
				}
				atomic.AddInt64(&finished, 1)
				if result.resultsOK {
					atomic.AddInt64(&verified, 1)
				}
				if result.reportOK {
					atomic.AddInt64(&reports, 1)
				}
				if config.Verbose {
					logger.Get().Info(ctx, "session finished",
						logger.Int("candidate", i),
						logger.Int("answers", result.answers))
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < config.Candidates; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.SessionsStarted = int(atomic.LoadInt64(&started))
	stats.SessionsFinished = int(atomic.LoadInt64(&finished))
	stats.SessionsFailed = int(atomic.LoadInt64(&failed))
	stats.AnswersSubmitted = int(atomic.LoadInt64(&answers))
	stats.AnswersRetried = int(atomic.LoadInt64(&retried))
	stats.ResultsVerified = int(atomic.LoadInt64(&verified))
	stats.ReportsRetrieved = int(atomic.LoadInt64(&reports))
	return nil
}

type sessionResult struct {
	answers   int
	retries   int
	resultsOK bool
	reportOK  bool
	err       error
}

// runSingleSession drives one candidate from greeting to done.
func runSingleSession(ctx context.Context, client *HTTPClient, config *Config, p persona) sessionResult {
	var result sessionResult

	created, err := startSession(ctx, client, config.BaseURL, p)
	if err != nil {
		result.err = err
		return result
	}

	for turn := 0; turn < config.MaxTurns; turn++ {
		reply, retries, err := submitAnswer(ctx, client, config.BaseURL, created.SessionID, p.answerFor(turn))
		result.retries += retries
		if err != nil {
			result.err = err
			return result
		}
		result.answers++
		if reply.Finished {
			result.resultsOK = verifyResults(ctx, client, config.BaseURL, created.SessionID, p, result.answers)
			result.reportOK = fetchReport(ctx, client, config.BaseURL, created.SessionID)
			return result
		}
	}

	result.err = fmt.Errorf("session %s did not finish within %d turns", created.SessionID, config.MaxTurns)
	return result
}

func startSession(ctx context.Context, client *HTTPClient, baseURL string, p persona) (sessionCreated, error) {
	resp, err := client.Post(ctx, baseURL+"/api/sessions", startRequest{
		CandidateName: p.name,
		Role:          p.role,
		Skills:        p.skills,
		Targets:       p.targets,
		Projects:      []project{p.project},
	})
	if err != nil {
		return sessionCreated{}, fmt.Errorf("start session: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return sessionCreated{}, fmt.Errorf("read start response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return sessionCreated{}, fmt.Errorf("start session status %d: %s", resp.StatusCode, body)
	}

	var created sessionCreated
	if err := json.Unmarshal(body, &created); err != nil {
		return sessionCreated{}, fmt.Errorf("decode start response: %w", err)
	}
	return created, nil
}

// submitAnswer posts one answer, resubmitting it after retryable generation
// failures. The retry count is returned for statistics.
func submitAnswer(ctx context.Context, client *HTTPClient, baseURL, sessionID, answer string) (answerResponse, int, error) {
	url := baseURL + "/api/sessions/" + sessionID + "/answers"

	for attempt := 0; ; attempt++ {
		resp, err := client.Post(ctx, url, answerRequest{Answer: answer})
		if err != nil {
			return answerResponse{}, attempt, fmt.Errorf("submit answer: %w", err)
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return answerResponse{}, attempt, fmt.Errorf("read answer response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var reply answerResponse
			if err := json.Unmarshal(body, &reply); err != nil {
				return answerResponse{}, attempt, fmt.Errorf("decode answer response: %w", err)
			}
			return reply, attempt, nil
		case http.StatusServiceUnavailable:
			var failure generationFailure
			if err := json.Unmarshal(body, &failure); err == nil &&
				failure.Action == "retry" && attempt < maxGenerationRetries {
				select {
				case <-ctx.Done():
					return answerResponse{}, attempt, ctx.Err()
				case <-time.After(retryBackoff):
				}
				continue
			}
			return answerResponse{}, attempt, fmt.Errorf("answer rejected with 503: %s", body)
		default:
			return answerResponse{}, attempt, fmt.Errorf("answer status %d: %s", resp.StatusCode, body)
		}
	}
}

// verifyResults cross-checks the aggregate against what the session did.
func verifyResults(ctx context.Context, client *HTTPClient, baseURL, sessionID string, p persona, answers int) bool {
	resp, err := client.Get(ctx, baseURL+"/api/sessions/"+sessionID+"/results")
	if err != nil {
		return false
	}
	body, err := readResponseBody(resp)
	if err != nil || resp.StatusCode != http.StatusOK {
		return false
	}

	var res resultsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return false
	}
	if res.Summary.TotalQuestions != answers {
		logger.Get().Warn(ctx, "results total mismatch",
			logger.String("session", sessionID),
			logger.Int("expected", answers),
			logger.Int("got", res.Summary.TotalQuestions))
		return false
	}
	for _, skill := range p.skills {
		if _, ok := res.SkillsBreakdown[skill]; !ok {
			logger.Get().Warn(ctx, "results missing skill",
				logger.String("session", sessionID),
				logger.String("skill", skill))
			return false
		}
	}
	return true
}

func fetchReport(ctx context.Context, client *HTTPClient, baseURL, sessionID string) bool {
	resp, err := client.Get(ctx, baseURL+"/api/sessions/"+sessionID+"/report")
	if err != nil {
		return false
	}
	body, err := readResponseBody(resp)
	return err == nil && resp.StatusCode == http.StatusOK && len(body) > 0
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessionsStarted", stats.SessionsStarted),
		logger.Int("sessionsFinished", stats.SessionsFinished),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("answersSubmitted", stats.AnswersSubmitted),
		logger.Int("answersRetried", stats.AnswersRetried),
		logger.Int("resultsVerified", stats.ResultsVerified),
		logger.Int("reportsRetrieved", stats.ReportsRetrieved),
		logger.String("duration", stats.Duration.String()))
}
