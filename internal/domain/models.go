package domain

import (
	"fmt"
	"math"
	"time"
)

// OptionsPerQuestion is the fixed number of options on every stored question.
const OptionsPerQuestion = 4

// QuestionRecord is a bank question as uploaded by an administrator.
type QuestionRecord struct {
	ID           string   `json:"id"`
	Level        string   `json:"level"`
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Validate checks the option count and the correct index.
func (q QuestionRecord) Validate() error {
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("%w: question %s has %d options", ErrInvalidQuestion, q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %s correct index %d", ErrInvalidQuestion, q.ID, q.CorrectIndex)
	}
	return nil
}

// MaxTotalTimeMinutes is the longest duration a time.Duration can hold.
const MaxTotalTimeMinutes = math.MaxInt64 / int64(time.Minute)

// SessionConfig is what a student (or admin preset) supplies to start an assessment.
type SessionConfig struct {
	Level            string  `json:"level"`
	TotalTimeMinutes int     `json:"totalTime"`
	PassPercentage   float64 `json:"passPercentage"`
}

// Validate rejects non-positive durations and thresholds outside [0,100].
func (c SessionConfig) Validate() error {
	if c.Level == "" {
		return fmt.Errorf("%w: level is required", ErrInvalidConfig)
	}
	if c.TotalTimeMinutes <= 0 {
		return fmt.Errorf("%w: totalTime must be positive, got %d", ErrInvalidConfig, c.TotalTimeMinutes)
	}
	if int64(c.TotalTimeMinutes) > MaxTotalTimeMinutes {
		return fmt.Errorf("%w: totalTime must be at most %d, got %d", ErrInvalidConfig, MaxTotalTimeMinutes, c.TotalTimeMinutes)
	}
	if c.PassPercentage < 0 || c.PassPercentage > 100 {
		return fmt.Errorf("%w: passPercentage must be within [0,100], got %v", ErrInvalidConfig, c.PassPercentage)
	}
	return nil
}

// Duration is the total time allowed for the assessment.
func (c SessionConfig) Duration() time.Duration {
	return time.Duration(c.TotalTimeMinutes) * time.Minute
}

// ShuffledQuestion is a question with its options permuted for one session.
// CorrectShuffledIndex points into ShuffledOptions and must never reach a client.
type ShuffledQuestion struct {
	ID                   string
	Text                 string
	ShuffledOptions      []string
	CorrectShuffledIndex int
}

// View strips the correct index for delivery to the student.
func (q ShuffledQuestion) View() QuestionView {
	opts := make([]string, len(q.ShuffledOptions))
	copy(opts, q.ShuffledOptions)
	return QuestionView{ID: q.ID, Question: q.Text, ShuffledOptions: opts}
}

// QuestionView is the client-facing form of a ShuffledQuestion.
type QuestionView struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	ShuffledOptions []string `json:"shuffledOptions"`
}

// SessionStatus enumerates assessment session states.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusSubmitted SessionStatus = "submitted"
	SessionStatusExpired   SessionStatus = "expired"
)

// Terminal reports whether no further answers or submissions are accepted.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusSubmitted || s == SessionStatusExpired
}

// SubmitTrigger records what ended a session.
type SubmitTrigger string

const (
	TriggerManual  SubmitTrigger = "manual"
	TriggerTimeout SubmitTrigger = "timeout"
)

// Result is the scored outcome of a finished session.
type Result struct {
	SessionID      string        `json:"sessionId"`
	Level          string        `json:"level,omitempty"`
	Score          int           `json:"score"`
	Total          int           `json:"total"`
	Percentage     float64       `json:"percentage"`
	PassPercentage float64       `json:"passPercentage"`
	Passed         bool          `json:"passed"`
	Trigger        SubmitTrigger `json:"trigger,omitempty"`
	SubmittedAt    time.Time     `json:"submittedAt"`
}

// SessionSnapshot is a point-in-time view of a session's progress.
type SessionSnapshot struct {
	SessionID        string        `json:"sessionId"`
	Level            string        `json:"level"`
	Status           SessionStatus `json:"status"`
	Deadline         time.Time     `json:"deadline"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Answered         int           `json:"answered"`
	Total            int           `json:"total"`
}
