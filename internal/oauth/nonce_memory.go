package oauth

import (
	"context"
	"sync"
	"time"
)

const pruneInterval = 1 * time.Minute

// MemoryNonceStore is an in-process NonceStore. A background loop
// prunes expired entries so the map stays bounded by the verifier's
// timestamp window.
type MemoryNonceStore struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	stopCh chan struct{}
	wg     sync.WaitGroup

	now func() time.Time
}

func NewMemoryNonceStore() *MemoryNonceStore {
	s := &MemoryNonceStore{
		seen:   make(map[string]time.Time),
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *MemoryNonceStore) Remember(ctx context.Context, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.seen[nonce]; ok && expiry.After(now) {
		return ErrNonceReplayed
	}
	s.seen[nonce] = now.Add(ttl)
	return nil
}

func (s *MemoryNonceStore) Close() error {
	close(s.stopCh)
	s.wg.Wait()
	return nil
}

func (s *MemoryNonceStore) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *MemoryNonceStore) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for nonce, expiry := range s.seen {
		if expiry.Before(now) {
			delete(s.seen, nonce)
		}
	}
}
