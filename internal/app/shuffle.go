package app

import (
	"math/rand"
	"sync"
	"time"

	"assessment-engine/internal/domain"
)

// Shuffler permutes question options and remaps the correct index.
// It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewShuffler() *Shuffler {
	return NewShufflerWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewShufflerWithSource allows reproducible permutations in tests.
func NewShufflerWithSource(src rand.Source) *Shuffler {
	return &Shuffler{rnd: rand.New(src)}
}

// Shuffle returns the record with its options in a uniformly random order.
// The option at CorrectShuffledIndex is the record's correct option.
func (s *Shuffler) Shuffle(record domain.QuestionRecord) (domain.ShuffledQuestion, error) {
	if record.CorrectIndex < 0 || record.CorrectIndex >= len(record.Options) {
		return domain.ShuffledQuestion{}, domain.ErrInvalidQuestion
	}

	perm := s.permutation(len(record.Options))
	options := make([]string, len(perm))
	correct := -1
	for pos, orig := range perm {
		options[pos] = record.Options[orig]
		if orig == record.CorrectIndex {
			correct = pos
		}
	}

	return domain.ShuffledQuestion{
		ID:                   record.ID,
		Text:                 record.Text,
		ShuffledOptions:      options,
		CorrectShuffledIndex: correct,
	}, nil
}

// permutation runs Fisher-Yates over [0,n); perm[newPos] = originalIndex.
func (s *Shuffler) permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
