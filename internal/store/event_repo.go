package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
)

// eventRepo implements EventRepo on the ent SQL driver and the global
// sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insert appends one row to table, filling sequence and timestamp.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, values...)...).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// selectAll runs sel and scans every row into dst, a pointer to a slice.
func (r *eventRepo) selectAll(ctx context.Context, sel *entsql.Selector, dst any) error {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dst)
}

// eventColumns returns the column names of cols without the primary key.
func eventColumns(cols []*schema.Column) []string {
	names := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		names = append(names, c.Name)
	}
	return names
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insert(ctx, AnswerEventsTable.Name,
		[]string{"session_id", "test_id", "question_id", "question_kind", "prompt",
			"learner_answer", "correct", "scoreable", "time_ms"},
		data.SessionID, data.TestID, data.QuestionID, data.QuestionKind, data.Prompt,
		data.LearnerAnswer, data.Correct, data.Scoreable, data.TimeMs)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, SessionEventsTable.Name,
		[]string{"session_id", "test_id", "test_name", "questions", "answered", "correct",
			"unscoreable", "accuracy", "duration_secs", "completed"},
		data.SessionID, data.TestID, data.TestName, data.Questions, data.Answered, data.Correct,
		data.Unscoreable, data.Accuracy, data.DurationSecs, data.Completed)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, LlmRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message"},
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	b := builder()
	sel := b.Select(eventColumns(SessionEventsColumns)...).
		From(b.Table(SessionEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if opts.TestID != "" {
		sel.Where(entsql.EQ("test_id", opts.TestID))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []SessionSummary
	if err := r.selectAll(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return out, nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, sessionID string) ([]AnswerEvent, error) {
	b := builder()
	sel := b.Select(eventColumns(AnswerEventsColumns)...).
		From(b.Table(AnswerEventsTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Asc("sequence"))

	var out []AnswerEvent
	if err := r.selectAll(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	return out, nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	b := builder()
	sel := b.Select(eventColumns(LlmRequestEventsColumns)...).
		From(b.Table(LlmRequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []LLMRequestEvent
	if err := r.selectAll(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query llm requests: %w", err)
	}
	return out, nil
}
