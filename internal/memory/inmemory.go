package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

type session struct {
	id       string
	messages []Message
	touched  time.Time
}

// InMemoryBackend keeps histories in process memory. Whole sessions are
// evicted least-recently-used first once maxSessions is exceeded, and lazily
// dropped when idle for longer than ttl. Zero disables either bound.
type InMemoryBackend struct {
	mu          sync.Mutex
	sessions    map[string]*list.Element
	lru         *list.List // front = most recently used
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

func NewInMemoryBackend(maxSessions int, ttl time.Duration) *InMemoryBackend {
	return &InMemoryBackend{
		sessions:    make(map[string]*list.Element),
		lru:         list.New(),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (b *InMemoryBackend) Append(_ context.Context, sessionID string, msg Message, maxHistory int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.expireLocked(now)

	var s *session
	if el, ok := b.sessions[sessionID]; ok {
		s = el.Value.(*session)
		b.lru.MoveToFront(el)
	} else {
		s = &session{id: sessionID}
		b.sessions[sessionID] = b.lru.PushFront(s)
	}
	s.touched = now
	s.messages = append(s.messages, msg)
	if maxHistory > 0 && len(s.messages) > maxHistory {
		trimmed := make([]Message, maxHistory)
		copy(trimmed, s.messages[len(s.messages)-maxHistory:])
		s.messages = trimmed
	}

	for b.maxSessions > 0 && b.lru.Len() > b.maxSessions {
		b.removeLocked(b.lru.Back())
	}
	metrics.ActiveSessions.Set(float64(b.lru.Len()))
	return nil
}

func (b *InMemoryBackend) History(_ context.Context, sessionID string) ([]Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expireLocked(b.now())
	el, ok := b.sessions[sessionID]
	if !ok {
		return []Message{}, nil
	}
	s := el.Value.(*session)
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// Sessions reports how many sessions are currently held.
func (b *InMemoryBackend) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lru.Len()
}

// expireLocked drops idle sessions from the back of the LRU list.
func (b *InMemoryBackend) expireLocked(now time.Time) {
	if b.ttl <= 0 {
		return
	}
	for el := b.lru.Back(); el != nil; el = b.lru.Back() {
		if now.Sub(el.Value.(*session).touched) <= b.ttl {
			return
		}
		b.removeLocked(el)
	}
}

func (b *InMemoryBackend) removeLocked(el *list.Element) {
	s := b.lru.Remove(el).(*session)
	delete(b.sessions, s.id)
}
