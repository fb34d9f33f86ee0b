package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"assessment-engine/internal/domain"
)

const (
	statusActive int32 = iota
	statusSubmitted
	statusExpired
)

// Session is one student's attempt: the shuffled question set, the answer ledger
// and the countdown. Submission and expiry race on a single status CAS.
type Session struct {
	id        string
	config    domain.SessionConfig
	questions []domain.ShuffledQuestion
	index     map[string]int
	createdAt time.Time
	now       func() time.Time
	clock     *Clock
	onFinish  func(*Session, domain.Result)

	status atomic.Int32
	done   chan struct{}

	mu      sync.Mutex
	answers map[string]int
	result  domain.Result
}

// NewSession is exported for infrastructure layers and tests that need a standalone session.
func NewSession(id string, cfg domain.SessionConfig, questions []domain.ShuffledQuestion) *Session {
	return newSession(id, cfg, questions, time.Now, nil)
}

// NewSessionWithClock takes its creation time and deadline checks from now.
func NewSessionWithClock(id string, cfg domain.SessionConfig, questions []domain.ShuffledQuestion, now func() time.Time) *Session {
	return newSession(id, cfg, questions, now, nil)
}

func newSession(id string, cfg domain.SessionConfig, questions []domain.ShuffledQuestion, now func() time.Time, onFinish func(*Session, domain.Result)) *Session {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}
	createdAt := now()
	s := &Session{
		id:        id,
		config:    cfg,
		questions: questions,
		index:     index,
		createdAt: createdAt,
		now:       now,
		onFinish:  onFinish,
		done:      make(chan struct{}),
		answers:   make(map[string]int),
	}
	s.clock = NewClock(createdAt.Add(cfg.Duration()), now, s.expire)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Config() domain.SessionConfig {
	return s.config
}

func (s *Session) Deadline() time.Time {
	return s.clock.Deadline()
}

func (s *Session) Clock() *Clock {
	return s.clock
}

// Questions returns a copy of the shuffled set including correct indices; never serialize it to clients.
func (s *Session) Questions() []domain.ShuffledQuestion {
	out := make([]domain.ShuffledQuestion, len(s.questions))
	for i, q := range s.questions {
		q.ShuffledOptions = append([]string(nil), q.ShuffledOptions...)
		out[i] = q
	}
	return out
}

// Views returns the question set without correct indices.
func (s *Session) Views() []domain.QuestionView {
	views := make([]domain.QuestionView, 0, len(s.questions))
	for _, q := range s.questions {
		views = append(views, q.View())
	}
	return views
}

func (s *Session) Status() domain.SessionStatus {
	switch s.status.Load() {
	case statusSubmitted:
		return domain.SessionStatusSubmitted
	case statusExpired:
		return domain.SessionStatusExpired
	default:
		return domain.SessionStatusActive
	}
}

// Remaining is zero once the session is terminal.
func (s *Session) Remaining() time.Duration {
	if s.Status().Terminal() {
		return 0
	}
	return s.clock.Remaining()
}

// Done is closed when the session is submitted or expires.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// SetAnswer records the selected shuffled option for a question. Last write wins.
// Answers arriving at or after the deadline close the session.
func (s *Session) SetAnswer(questionID string, optionIndex int) error {
	if s.status.Load() != statusActive || s.expireIfDue() {
		return domain.ErrSessionClosed
	}
	if err := s.checkAnswer(questionID, optionIndex); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.acceptingLocked() {
		s.mu.Unlock()
		s.expireIfDue()
		return domain.ErrSessionClosed
	}
	s.answers[questionID] = optionIndex
	s.mu.Unlock()
	return nil
}

// SetAnswers applies a batch of answers all-or-nothing.
func (s *Session) SetAnswers(answers map[string]int) error {
	if s.status.Load() != statusActive || s.expireIfDue() {
		return domain.ErrSessionClosed
	}
	for questionID, optionIndex := range answers {
		if err := s.checkAnswer(questionID, optionIndex); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if !s.acceptingLocked() {
		s.mu.Unlock()
		s.expireIfDue()
		return domain.ErrSessionClosed
	}
	for questionID, optionIndex := range answers {
		s.answers[questionID] = optionIndex
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) acceptingLocked() bool {
	return s.status.Load() == statusActive && !s.clock.Due()
}

// expireIfDue runs the timeout path when the deadline has passed but the timer
// callback has not fired yet. It reports whether the deadline has passed.
func (s *Session) expireIfDue() bool {
	if !s.clock.Due() {
		return false
	}
	s.clock.expireNow()
	return true
}

func (s *Session) checkAnswer(questionID string, optionIndex int) error {
	pos, ok := s.index[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}
	if n := len(s.questions[pos].ShuffledOptions); optionIndex < 0 || optionIndex >= n {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrInvalidOption, optionIndex, n)
	}
	return nil
}

// Answer looks up the recorded option for a question.
func (s *Session) Answer(questionID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.answers[questionID]
	return idx, ok
}

func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Submit ends the session manually and cancels the countdown.
// A session that already ended returns ErrSessionClosed.
func (s *Session) Submit() (domain.Result, error) {
	result, err := s.finish(domain.TriggerManual)
	if err != nil {
		return domain.Result{}, err
	}
	s.clock.Cancel()
	return result, nil
}

func (s *Session) expire() {
	_, _ = s.finish(domain.TriggerTimeout)
}

func (s *Session) finish(trigger domain.SubmitTrigger) (domain.Result, error) {
	next := statusSubmitted
	if trigger == domain.TriggerTimeout {
		next = statusExpired
	}

	s.mu.Lock()
	if trigger == domain.TriggerManual && s.clock.Due() {
		// the deadline won; let the timeout path record the result
		s.mu.Unlock()
		s.expireIfDue()
		return domain.Result{}, domain.ErrSessionClosed
	}
	if !s.status.CompareAndSwap(statusActive, next) {
		s.mu.Unlock()
		return domain.Result{}, domain.ErrSessionClosed
	}
	result := s.scoreLocked()
	result.Trigger = trigger
	result.SubmittedAt = s.now()
	s.result = result
	s.mu.Unlock()

	close(s.done)
	if s.onFinish != nil {
		s.onFinish(s, result)
	}
	return result, nil
}

// Rescore recomputes the score from the current ledger without changing state.
func (s *Session) Rescore() domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() domain.Result {
	result := Score(s.questions, s.answers, s.config.PassPercentage)
	result.SessionID = s.id
	result.Level = s.config.Level
	return result
}

// Result returns the stored outcome, or ErrResultNotReady while the session is active.
func (s *Session) Result() (domain.Result, error) {
	s.expireIfDue()
	if !s.Status().Terminal() {
		return domain.Result{}, domain.ErrResultNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, nil
}

func (s *Session) Snapshot() domain.SessionSnapshot {
	s.expireIfDue()
	remaining := s.Remaining()
	return domain.SessionSnapshot{
		SessionID:        s.id,
		Level:            s.config.Level,
		Status:           s.Status(),
		Deadline:         s.Deadline(),
		RemainingSeconds: int((remaining + time.Second - 1) / time.Second),
		Answered:         s.AnsweredCount(),
		Total:            len(s.questions),
	}
}
