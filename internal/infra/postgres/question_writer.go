package postgres

import (
	"context"
	"fmt"

	"assessment-engine/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionWriter inserts uploaded questions in a single transaction.
type QuestionWriter struct {
	pool *pgxpool.Pool
}

func NewQuestionWriter(pool *pgxpool.Pool) *QuestionWriter {
	return &QuestionWriter{pool: pool}
}

func (w *QuestionWriter) SaveQuestions(ctx context.Context, questions []domain.QuestionRecord) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, q := range questions {
		if len(q.Options) != domain.OptionsPerQuestion {
			return 0, fmt.Errorf("%w: %d options", domain.ErrInvalidQuestion, len(q.Options))
		}
		batch.Queue(`
			INSERT INTO questions (question, option1, option2, option3, option4, correct_answer, level)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectIndex, q.Level)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range questions {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("insert questions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(questions), nil
}
