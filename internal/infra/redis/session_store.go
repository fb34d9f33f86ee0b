package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions hold a live countdown, so they stay in a local map on the instance
//     that started them.
//   - Redis marks session liveness until the deadline (plus ttl) and archives the
//     final result, so results stay readable after the local session is evicted.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	if err := s.client.Set(context.Background(), s.key(session.ID()), string(domain.SessionStatusActive), session.Remaining()+s.ttl).Err(); err != nil {
		log.Printf("mark session %s active: %v", session.ID(), err)
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) MarkFinished(session *app.Session, result domain.Result) {
	ctx := context.Background()
	raw, err := json.Marshal(result)
	if err != nil {
		log.Printf("encode result for session %s: %v", session.ID(), err)
		return
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(session.ID()), string(session.Status()), s.ttl)
	pipe.Set(ctx, s.resultKey(session.ID()), raw, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("archive result for session %s: %v", session.ID(), err)
	}
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if err := s.client.Del(context.Background(), s.key(sessionID)).Err(); err != nil {
		log.Printf("delete session %s: %v", sessionID, err)
	}
}

// FinishedResult reads an archived result for a session no longer held locally.
func (s *SessionStore) FinishedResult(ctx context.Context, sessionID string) (domain.Result, bool) {
	raw, err := s.client.Get(ctx, s.resultKey(sessionID)).Bytes()
	if err != nil {
		return domain.Result{}, false
	}
	var result domain.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.Result{}, false
	}
	return result, true
}

func (s *SessionStore) key(sessionID string) string {
	return "assessment:session:" + sessionID
}

func (s *SessionStore) resultKey(sessionID string) string {
	return "assessment:result:" + sessionID
}
