package postgres

import (
	"context"
	"fmt"

	"assessment-engine/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader reads the question bank from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

// LoadLevel returns a level's questions in insertion order.
func (l *QuestionLoader) LoadLevel(ctx context.Context, level string) ([]domain.QuestionRecord, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id::text, level, question, option1, option2, option3, option4, correct_answer
		FROM questions
		WHERE level = $1
		ORDER BY id`, level)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.QuestionRecord
	for rows.Next() {
		var (
			q    domain.QuestionRecord
			opts [domain.OptionsPerQuestion]string
		)
		if err := rows.Scan(&q.ID, &q.Level, &q.Text, &opts[0], &opts[1], &opts[2], &opts[3], &q.CorrectIndex); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = opts[:]
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}

func (l *QuestionLoader) LoadLevels(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT DISTINCT level FROM questions ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	defer rows.Close()

	levels := make([]string, 0)
	for rows.Next() {
		var level string
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}
