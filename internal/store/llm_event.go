package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the llm_requests table.
type eventRepo struct {
	s *Store
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	ins := sqlite().Insert(llmTable).
		Columns("provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "created_at").
		Values(data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, millis(time.Now()))
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// LLMUsage sums token usage per purpose.
type LLMUsage struct {
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// LLMUsage returns token usage grouped by purpose.
func (s *Store) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	sel := sqlite().Select(
		"purpose",
		entsql.As(entsql.Count("*"), "requests"),
		entsql.As("SUM(CASE WHEN `success` THEN 0 ELSE 1 END)", "failures"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).
		From(sqlite().Table(llmTable)).
		GroupBy("purpose").
		OrderBy(entsql.Asc("purpose"))

	var rows []struct {
		Purpose      string `sql:"purpose"`
		Requests     int    `sql:"requests"`
		Failures     int    `sql:"failures"`
		InputTokens  int    `sql:"input_tokens"`
		OutputTokens int    `sql:"output_tokens"`
	}
	if err := s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("llm usage: %w", err)
	}
	out := make([]LLMUsage, len(rows))
	for i, row := range rows {
		out[i] = LLMUsage(row)
	}
	return out, nil
}
