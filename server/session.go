package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"infinisweeper/game"
)

var ErrTooManySessions = errors.New("too many sessions")

// Session は1つのゲームです。Engine へのアクセスは Mutex で直列化します。
type Session struct {
	ID        string
	CreatedAt time.Time

	Mutex    sync.Mutex
	Engine   *game.Engine
	GameOver bool
}

// Sessions はセッションIDからゲームを引きます
type Sessions struct {
	mu   sync.RWMutex
	byID map[string]*Session
	max  int
}

func NewSessions(max int) *Sessions {
	return &Sessions{byID: make(map[string]*Session), max: max}
}

// Create は新しいセッションを作ります。newEngine はIDを受け取ってエンジンを作ります。
func (s *Sessions) Create(newEngine func(id string) *game.Engine) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.byID) >= s.max {
		return nil, ErrTooManySessions
	}
	id := uuid.NewString()
	sess := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Engine:    newEngine(id),
	}
	s.byID[id] = sess
	return sess, nil
}

func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[id]
	return sess, ok
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
