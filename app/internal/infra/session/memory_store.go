package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domcart "example.com/storefront/app/internal/domain/cart"
)

type slot struct {
	mu       sync.Mutex
	cart     *domcart.Cart
	lastSeen time.Time
	gone     bool
}

// MemoryStore keeps carts in process memory. Work on one session is
// serialized; different sessions proceed in parallel. Sessions idle for
// longer than ttl are dropped.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]*slot
	ttl   time.Duration
	now   func() time.Time

	logger *zap.Logger
}

func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		slots:  make(map[string]*slot),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (s *MemoryStore) Create(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[sessionID]; ok {
		return domcart.ErrSessionExists
	}
	s.slots[sessionID] = &slot{cart: domcart.New(), lastSeen: s.now()}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn func(c *domcart.Cart) error) error {
	s.mu.Lock()
	sl, ok := s.slots[sessionID]
	s.mu.Unlock()
	if !ok {
		return domcart.ErrSessionNotFound
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.gone {
		return domcart.ErrSessionNotFound
	}
	now := s.now()
	if s.expired(sl, now) {
		s.drop(sessionID, sl)
		return domcart.ErrSessionNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sl.lastSeen = now
	return fn(sl.cart)
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sl, ok := s.slots[sessionID]
	if ok {
		delete(s.slots, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return domcart.ErrSessionNotFound
	}

	sl.mu.Lock()
	sl.gone = true
	sl.mu.Unlock()
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Sweep drops every session idle since before now-ttl and returns how many
// went. Sessions busy in Update are left for the next sweep.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	candidates := make(map[string]*slot, len(s.slots))
	for id, sl := range s.slots {
		candidates[id] = sl
	}
	s.mu.Unlock()

	removed := 0
	for id, sl := range candidates {
		if !sl.mu.TryLock() {
			continue
		}
		if !sl.gone && s.expired(sl, now) {
			s.drop(id, sl)
			removed++
		}
		sl.mu.Unlock()
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Info("expired cart sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (s *MemoryStore) expired(sl *slot, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sl.lastSeen) > s.ttl
}

// drop must be called with sl.mu held.
func (s *MemoryStore) drop(sessionID string, sl *slot) {
	sl.gone = true
	s.mu.Lock()
	if s.slots[sessionID] == sl {
		delete(s.slots, sessionID)
	}
	s.mu.Unlock()
}
