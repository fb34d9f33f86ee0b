package postgres

import (
	"context"
	"fmt"

	"assessment-engine/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultRecorder appends finished sessions to the assessments table.
type ResultRecorder struct {
	pool *pgxpool.Pool
}

func NewResultRecorder(pool *pgxpool.Pool) *ResultRecorder {
	return &ResultRecorder{pool: pool}
}

func (r *ResultRecorder) RecordResult(ctx context.Context, cfg domain.SessionConfig, result domain.Result) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assessments
			(session_id, level, total_time, pass_percentage, score, total_questions, percentage, passed, submit_trigger, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.SessionID, cfg.Level, cfg.TotalTimeMinutes, cfg.PassPercentage,
		result.Score, result.Total, result.Percentage, result.Passed, string(result.Trigger), result.SubmittedAt)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}
