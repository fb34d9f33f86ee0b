package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"assessment-engine/internal/domain"
	"github.com/google/uuid"
)

// QuestionBank is the read contract of the question store.
type QuestionBank interface {
	Levels(ctx context.Context) ([]string, error)
	QuestionsByLevel(ctx context.Context, level string) ([]domain.QuestionRecord, error)
}

// QuestionWriter persists uploaded questions.
type QuestionWriter interface {
	SaveQuestions(ctx context.Context, questions []domain.QuestionRecord) (int, error)
}

// BankInvalidator is implemented by caching banks that must drop levels after an upload.
type BankInvalidator interface {
	Invalidate(ctx context.Context, levels ...string)
}

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	MarkFinished(session *Session, result domain.Result)
	Delete(sessionID string)
}

// ResultArchive is implemented by repositories that keep results after eviction.
type ResultArchive interface {
	FinishedResult(ctx context.Context, sessionID string) (domain.Result, bool)
}

// ResultRecorder appends finished results to durable storage.
type ResultRecorder interface {
	RecordResult(ctx context.Context, cfg domain.SessionConfig, result domain.Result) error
}

// ErrImportDisabled is returned when no QuestionWriter is configured.
var ErrImportDisabled = errors.New("question import not configured")

const recordTimeout = 5 * time.Second

// AssessmentService contains the assessment use cases.
type AssessmentService struct {
	bank      QuestionBank
	sessions  SessionRepository
	writer    QuestionWriter
	results   ResultRecorder
	shuffler  *Shuffler
	now       func() time.Time
	scheduler Scheduler
	retention time.Duration
	newID     func() string
}

// Option customizes an AssessmentService.
type Option func(*AssessmentService)

func WithQuestionWriter(w QuestionWriter) Option {
	return func(s *AssessmentService) { s.writer = w }
}

func WithResultRecorder(r ResultRecorder) Option {
	return func(s *AssessmentService) { s.results = r }
}

func WithShuffler(sh *Shuffler) Option {
	return func(s *AssessmentService) { s.shuffler = sh }
}

// WithClock replaces wall time and timers; used by tests to drive expiry.
func WithClock(now func() time.Time, sched Scheduler) Option {
	return func(s *AssessmentService) {
		s.now = now
		s.scheduler = sched
	}
}

// WithRetention controls how long finished sessions stay readable.
func WithRetention(d time.Duration) Option {
	return func(s *AssessmentService) { s.retention = d }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *AssessmentService) { s.newID = newID }
}

func NewAssessmentService(bank QuestionBank, sessions SessionRepository, opts ...Option) *AssessmentService {
	s := &AssessmentService{
		bank:      bank,
		sessions:  sessions,
		shuffler:  NewShuffler(),
		now:       time.Now,
		scheduler: runtimeScheduler{},
		retention: 10 * time.Minute,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Levels lists the distinct level tags available in the bank.
func (s *AssessmentService) Levels(ctx context.Context) ([]string, error) {
	return s.bank.Levels(ctx)
}

// Start builds a session for cfg.Level with shuffled options and starts its countdown.
func (s *AssessmentService) Start(ctx context.Context, cfg domain.SessionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	records, err := s.bank.QuestionsByLevel(ctx, cfg.Level)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidLevel, cfg.Level)
	}

	questions := make([]domain.ShuffledQuestion, 0, len(records))
	for _, record := range records {
		shuffled, err := s.shuffler.Shuffle(record)
		if err != nil {
			return nil, fmt.Errorf("%w: question %s", err, record.ID)
		}
		questions = append(questions, shuffled)
	}

	session := newSession(s.newID(), cfg, questions, s.now, s.handleFinish)
	s.sessions.Put(session)
	session.clock.Start(s.scheduler)
	return session, nil
}

// Session looks up a live or recently finished session.
func (s *AssessmentService) Session(_ context.Context, sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Answer records one answer and returns the session progress.
func (s *AssessmentService) Answer(ctx context.Context, sessionID, questionID string, optionIndex int) (domain.SessionSnapshot, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if err := session.SetAnswer(questionID, optionIndex); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Snapshot reports status, remaining time and progress.
func (s *AssessmentService) Snapshot(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Submit applies any final answers and ends the session manually.
// If the countdown already fired, ErrSessionClosed is returned and the timeout result stands.
func (s *AssessmentService) Submit(ctx context.Context, sessionID string, answers map[string]int) (domain.Result, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	if len(answers) > 0 {
		if err := session.SetAnswers(answers); err != nil {
			return domain.Result{}, err
		}
	}
	return session.Submit()
}

// Result returns the outcome of a finished session, falling back to the
// repository's archive once the live session has been evicted.
func (s *AssessmentService) Result(ctx context.Context, sessionID string) (domain.Result, error) {
	session, err := s.Session(ctx, sessionID)
	if err == nil {
		return session.Result()
	}
	if archive, ok := s.sessions.(ResultArchive); ok {
		if result, found := archive.FinishedResult(ctx, sessionID); found {
			return result, nil
		}
	}
	return domain.Result{}, err
}

// ImportQuestions validates and stores questions, then drops cached levels they touch.
func (s *AssessmentService) ImportQuestions(ctx context.Context, questions []domain.QuestionRecord) (int, error) {
	if s.writer == nil {
		return 0, ErrImportDisabled
	}
	levels := make(map[string]struct{})
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return 0, err
		}
		levels[q.Level] = struct{}{}
	}

	n, err := s.writer.SaveQuestions(ctx, questions)
	if err != nil {
		return n, err
	}
	if inv, ok := s.bank.(BankInvalidator); ok {
		touched := make([]string, 0, len(levels))
		for level := range levels {
			touched = append(touched, level)
		}
		inv.Invalidate(ctx, touched...)
	}
	return n, nil
}

// handleFinish runs once per session, on whichever goroutine won the submit race.
func (s *AssessmentService) handleFinish(session *Session, result domain.Result) {
	if result.Trigger == domain.TriggerTimeout {
		log.Printf("session %s auto-submitted at deadline: %d/%d", session.ID(), result.Score, result.Total)
	}

	s.sessions.MarkFinished(session, result)

	if s.results != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := s.results.RecordResult(ctx, session.Config(), result); err != nil {
			log.Printf("record result for session %s: %v", session.ID(), err)
		}
		cancel()
	}

	id := session.ID()
	s.scheduler.AfterFunc(s.retention, func() {
		s.sessions.Delete(id)
	})
}
