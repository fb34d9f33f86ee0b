package redis

import (
	"context"
	"testing"
	"time"

	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionBankCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	bank := NewQuestionBank(client, loader, time.Minute)

	qs, err := bank.QuestionsByLevel(context.Background(), "L1")
	if err != nil {
		t.Fatalf("questions by level: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("assessment:level:L1:questions") {
		t.Fatalf("expected level list cached")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := bank.QuestionsByLevel(context.Background(), "L1")
	if err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0].ID != "1" || cached[1].ID != "3" || cached[1].CorrectIndex != 2 {
		t.Fatalf("expected store order and fields preserved, got %+v", cached)
	}
}

func TestQuestionBankLevelsAndInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	static := memory.NewStaticQuestionLoader(sampleQuestions())
	bank := NewQuestionBank(newClient(mr), static, time.Minute)

	levels, err := bank.Levels(ctx)
	if err != nil {
		t.Fatalf("levels: %v", err)
	}
	if len(levels) != 2 || levels[0] != "L1" || levels[1] != "L2" {
		t.Fatalf("expected [L1 L2], got %v", levels)
	}

	_, _ = static.SaveQuestions(ctx, []domain.QuestionRecord{
		{Level: "A0", Text: "new", Options: []string{"a", "b", "c", "d"}},
	})
	bank.Invalidate(ctx, "A0")
	if mr.Exists("assessment:levels") {
		t.Fatalf("expected levels key dropped")
	}

	levels, _ = bank.Levels(ctx)
	if len(levels) != 3 || levels[0] != "A0" {
		t.Fatalf("expected refreshed sorted levels, got %v", levels)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadLevel(ctx context.Context, level string) ([]domain.QuestionRecord, error) {
	l.calls++
	return l.QuestionLoader.LoadLevel(ctx, level)
}

func sampleQuestions() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{ID: "1", Level: "L1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1},
		{ID: "2", Level: "L2", Text: "Capital of France?", Options: []string{"Paris", "Rome", "Oslo", "Bern"}, CorrectIndex: 0},
		{ID: "3", Level: "L1", Text: "What is 3 * 3?", Options: []string{"6", "8", "9", "12"}, CorrectIndex: 2},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
