package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"assessment-engine/internal/domain"
)

// StaticQuestionLoader is a question store backed by a slice (useful for tests/demos and
// for running without Postgres). It also accepts uploads.
type StaticQuestionLoader struct {
	mu        sync.RWMutex
	questions []domain.QuestionRecord
	nextID    int
}

func NewStaticQuestionLoader(questions []domain.QuestionRecord) *StaticQuestionLoader {
	l := &StaticQuestionLoader{}
	l.append(questions)
	return l
}

func (l *StaticQuestionLoader) LoadLevel(_ context.Context, level string) ([]domain.QuestionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.QuestionRecord
	for _, q := range l.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out, nil
}

func (l *StaticQuestionLoader) LoadLevels(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]struct{})
	levels := make([]string, 0)
	for _, q := range l.questions {
		if _, ok := seen[q.Level]; ok {
			continue
		}
		seen[q.Level] = struct{}{}
		levels = append(levels, q.Level)
	}
	sort.Strings(levels)
	return levels, nil
}

// SaveQuestions appends questions, assigning sequential ids to those without one.
func (l *StaticQuestionLoader) SaveQuestions(_ context.Context, questions []domain.QuestionRecord) (int, error) {
	l.append(questions)
	return len(questions), nil
}

func (l *StaticQuestionLoader) append(questions []domain.QuestionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, q := range questions {
		l.nextID++
		if q.ID == "" {
			q.ID = strconv.Itoa(l.nextID)
		}
		q.Options = append([]string(nil), q.Options...)
		l.questions = append(l.questions, q)
	}
}
