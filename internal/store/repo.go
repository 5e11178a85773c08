package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	TestID string    // only events for this test
	From   time.Time // timestamp >= From
}

// AnswerEventData captures one submitted answer.
type AnswerEventData struct {
	SessionID     string
	TestID        string
	QuestionID    string
	QuestionKind  string
	Prompt        string
	LearnerAnswer string
	Correct       bool
	Scoreable     bool
	TimeMs        int64
}

// AnswerEvent is a stored AnswerEventData.
type AnswerEvent struct {
	Sequence      int64     `sql:"sequence"`
	Timestamp     time.Time `sql:"timestamp"`
	SessionID     string    `sql:"session_id"`
	TestID        string    `sql:"test_id"`
	QuestionID    string    `sql:"question_id"`
	QuestionKind  string    `sql:"question_kind"`
	Prompt        string    `sql:"prompt"`
	LearnerAnswer string    `sql:"learner_answer"`
	Correct       bool      `sql:"correct"`
	Scoreable     bool      `sql:"scoreable"`
	TimeMs        int64     `sql:"time_ms"`
}

// SessionEventData captures the outcome of one quiz session.
type SessionEventData struct {
	SessionID    string
	TestID       string
	TestName     string
	Questions    int
	Answered     int
	Correct      int
	Unscoreable  int
	Accuracy     float64
	DurationSecs int
	Completed    bool
}

// SessionSummary is a stored session row.
type SessionSummary struct {
	Sequence     int64     `sql:"sequence"`
	Timestamp    time.Time `sql:"timestamp"`
	SessionID    string    `sql:"session_id"`
	TestID       string    `sql:"test_id"`
	TestName     string    `sql:"test_name"`
	Questions    int       `sql:"questions"`
	Answered     int       `sql:"answered"`
	Correct      int       `sql:"correct"`
	Unscoreable  int       `sql:"unscoreable"`
	Accuracy     float64   `sql:"accuracy"`
	DurationSecs int       `sql:"duration_secs"`
	Completed    bool      `sql:"completed"`
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	Sequence     int64     `sql:"sequence"`
	Timestamp    time.Time `sql:"timestamp"`
	Provider     string    `sql:"provider"`
	Model        string    `sql:"model"`
	Purpose      string    `sql:"purpose"`
	InputTokens  int       `sql:"input_tokens"`
	OutputTokens int       `sql:"output_tokens"`
	LatencyMs    int64     `sql:"latency_ms"`
	Success      bool      `sql:"success"`
	ErrorMessage string    `sql:"error_message"`
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendAnswerEvent records a submitted answer.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// AppendSessionEvent records a finished or abandoned session.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionSummaries returns sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error)

	// QueryLLMRequests returns LLM request events, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// QueryAnswers returns the answers of one session in submission order.
	QueryAnswers(ctx context.Context, sessionID string) ([]AnswerEvent, error)
}
