package app_test

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
)

func TestShufflePreservesCorrectOption(t *testing.T) {
	shuffler := app.NewShufflerWithSource(rand.NewSource(42))
	for correct := 0; correct < domain.OptionsPerQuestion; correct++ {
		record := domain.QuestionRecord{
			ID:           "q1",
			Level:        "L1",
			Text:         "Pick the capital of France",
			Options:      []string{"Paris", "Rome", "Oslo", "Bern"},
			CorrectIndex: correct,
		}
		for i := 0; i < 200; i++ {
			got, err := shuffler.Shuffle(record)
			if err != nil {
				t.Fatalf("shuffle: %v", err)
			}
			if got.ShuffledOptions[got.CorrectShuffledIndex] != record.Options[record.CorrectIndex] {
				t.Fatalf("correct option lost: %+v from %+v", got, record)
			}
			if got.ID != record.ID || got.Text != record.Text {
				t.Fatalf("id/text changed: %+v", got)
			}
			if len(got.ShuffledOptions) != len(record.Options) {
				t.Fatalf("expected %d options, got %d", len(record.Options), len(got.ShuffledOptions))
			}
		}
	}
}

func TestShuffleIsAPermutationAndCoversAllOrders(t *testing.T) {
	shuffler := app.NewShufflerWithSource(rand.NewSource(7))
	record := domain.QuestionRecord{ID: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3}

	seen := make(map[string]int)
	for i := 0; i < 5000; i++ {
		got, _ := shuffler.Shuffle(record)
		counts := make(map[string]int)
		for _, o := range got.ShuffledOptions {
			counts[o]++
		}
		if len(counts) != 4 {
			t.Fatalf("not a permutation: %v", got.ShuffledOptions)
		}
		seen[strings.Join(got.ShuffledOptions, "")]++
	}
	if len(seen) != 24 {
		t.Fatalf("expected all 24 orders, saw %d", len(seen))
	}
	for order, n := range seen {
		// expected ~208 each
		if n < 100 || n > 330 {
			t.Fatalf("order %s drawn %d times, distribution looks biased", order, n)
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	shuffler := app.NewShuffler()
	record := domain.QuestionRecord{ID: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0}
	for i := 0; i < 50; i++ {
		_, _ = shuffler.Shuffle(record)
	}
	if strings.Join(record.Options, "") != "abcd" {
		t.Fatalf("input options mutated: %v", record.Options)
	}
}

func TestShuffleRejectsBadCorrectIndex(t *testing.T) {
	shuffler := app.NewShuffler()
	_, err := shuffler.Shuffle(domain.QuestionRecord{ID: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 4})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
}
