package memory

import (
	"context"
	"sync"

	"assessment-engine/internal/domain"
)

// ResultLog keeps recorded results in process; it stands in for the assessments table.
type ResultLog struct {
	mu      sync.Mutex
	results []domain.Result
}

func NewResultLog() *ResultLog {
	return &ResultLog{}
}

func (l *ResultLog) RecordResult(_ context.Context, _ domain.SessionConfig, result domain.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
	return nil
}

// Results returns a copy of everything recorded so far.
func (l *ResultLog) Results() []domain.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Result, len(l.results))
	copy(out, l.results)
	return out
}
