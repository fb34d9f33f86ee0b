package app

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"assessment-engine/internal/domain"
)

func TestSubmitAndExpiryRaceHasOneWinner(t *testing.T) {
	questions := []domain.ShuffledQuestion{
		{ID: "1", ShuffledOptions: []string{"a", "b", "c", "d"}, CorrectShuffledIndex: 1},
	}
	for i := 0; i < 500; i++ {
		var finishes atomic.Int32
		session := newSession("race", domain.SessionConfig{Level: "L1", TotalTimeMinutes: 1}, questions, time.Now,
			func(*Session, domain.Result) { finishes.Add(1) })
		_ = session.SetAnswer("1", 1)

		var wg sync.WaitGroup
		var manualErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, manualErr = session.Submit()
		}()
		go func() {
			defer wg.Done()
			session.expire()
		}()
		wg.Wait()

		if finishes.Load() != 1 {
			t.Fatalf("expected one finish, got %d", finishes.Load())
		}
		result, err := session.Result()
		if err != nil {
			t.Fatalf("result: %v", err)
		}
		switch session.Status() {
		case domain.SessionStatusSubmitted:
			if manualErr != nil || result.Trigger != domain.TriggerManual {
				t.Fatalf("manual won but got err=%v trigger=%s", manualErr, result.Trigger)
			}
		case domain.SessionStatusExpired:
			if manualErr != domain.ErrSessionClosed || result.Trigger != domain.TriggerTimeout {
				t.Fatalf("timeout won but got err=%v trigger=%s", manualErr, result.Trigger)
			}
		default:
			t.Fatalf("unexpected status %s", session.Status())
		}
		if result.Score != 1 {
			t.Fatalf("expected the recorded answer to count, got %+v", result)
		}
	}
}

func TestAnswersRacingSubmitAreEitherScoredOrRejected(t *testing.T) {
	questions := []domain.ShuffledQuestion{
		{ID: "1", ShuffledOptions: []string{"a", "b", "c", "d"}, CorrectShuffledIndex: 2},
	}
	for i := 0; i < 500; i++ {
		session := newSession("race", domain.SessionConfig{Level: "L1", TotalTimeMinutes: 1}, questions, time.Now, nil)

		var wg sync.WaitGroup
		var answerErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			answerErr = session.SetAnswer("1", 2)
		}()
		go func() {
			defer wg.Done()
			_, _ = session.Submit()
		}()
		wg.Wait()

		result, _ := session.Result()
		if answerErr == nil && result.Score != 1 {
			t.Fatalf("accepted answer was not scored")
		}
		if answerErr != nil && result.Score != 0 {
			t.Fatalf("rejected answer was scored")
		}
	}
}
