package dedup

import (
	"context"
	"sync"

	id "relaygate/pkg/domain"
)

// InMemory tracks processed markers in process. Markers never expire; the
// Redis store is the production choice when retention matters.
type InMemory struct {
	mu   sync.RWMutex
	seen map[id.MessageID]struct{}
}

// NewInMemory constructs an empty in-memory dedup store.
func NewInMemory() *InMemory {
	return &InMemory{seen: make(map[id.MessageID]struct{})}
}

func (s *InMemory) Seen(_ context.Context, messageID id.MessageID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[messageID]
	return ok, nil
}

func (s *InMemory) Mark(_ context.Context, messageID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[messageID] = struct{}{}
	return nil
}
