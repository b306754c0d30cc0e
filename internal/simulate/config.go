package simulate

import "time"

// Config holds configuration for the interview simulation.
type Config struct {
	BaseURL    string        // Base URL of the service
	Candidates int           // Number of candidate sessions to run
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	MaxTurns   int           // Safety cap on answers per session
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// startRequest mirrors POST /api/sessions.
type startRequest struct {
	CandidateName string            `json:"candidate_name"`
	Role          string            `json:"role"`
	Skills        []string          `json:"skills"`
	Targets       map[string]string `json:"target_levels,omitempty"`
	Projects      []project         `json:"projects,omitempty"`
}

type project struct {
	Title   string `json:"project_title"`
	Summary string `json:"summary"`
}

// sessionCreated mirrors the 201 response of POST /api/sessions.
type sessionCreated struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// answerResponse mirrors POST /api/sessions/{id}/answers.
type answerResponse struct {
	Question string  `json:"question"`
	Finished bool    `json:"finished"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// generationFailure mirrors the retryable 503 payload.
type generationFailure struct {
	Code   string `json:"code"`
	Skill  string `json:"skill"`
	Level  string `json:"level"`
	Action string `json:"action"`
}

// resultsResponse carries the fields the verifier checks.
type resultsResponse struct {
	Summary struct {
		CandidateName  string `json:"candidate_name"`
		TotalQuestions int    `json:"total_questions"`
	} `json:"summary"`
	SkillsBreakdown map[string]struct {
		QuestionsAsked  int     `json:"questions_asked"`
		PercentageScore float64 `json:"percentage_score"`
	} `json:"skills_breakdown"`
}

// Stats holds simulation statistics.
type Stats struct {
	SessionsStarted   int
	SessionsFinished  int
	SessionsFailed    int
	AnswersSubmitted  int
	AnswersRetried    int
	ResultsVerified   int
	ReportsRetrieved  int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
