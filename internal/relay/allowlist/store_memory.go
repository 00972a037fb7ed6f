package allowlist

import (
	"context"
	"sync"

	id "relaygate/pkg/domain"
)

type senderKey struct {
	chain  id.ChainID
	sender id.Address
}

// InMemory keeps allowlist entries in process. Suitable for tests and
// single-instance deployments.
type InMemory struct {
	mu           sync.RWMutex
	destinations map[id.ChainID]struct{}
	sources      map[id.ChainID]struct{}
	senders      map[senderKey]struct{}
}

// NewInMemory constructs an empty in-memory allowlist store.
func NewInMemory() *InMemory {
	return &InMemory{
		destinations: make(map[id.ChainID]struct{}),
		sources:      make(map[id.ChainID]struct{}),
		senders:      make(map[senderKey]struct{}),
	}
}

func (s *InMemory) IsDestinationAllowed(_ context.Context, chain id.ChainID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.destinations[chain]
	return ok, nil
}

func (s *InMemory) IsSourceAllowed(_ context.Context, chain id.ChainID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[chain]
	return ok, nil
}

func (s *InMemory) IsSenderAllowed(_ context.Context, chain id.ChainID, sender id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.senders[senderKey{chain: chain, sender: sender}]
	return ok, nil
}

func (s *InMemory) SetDestination(_ context.Context, chain id.ChainID, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allowed {
		s.destinations[chain] = struct{}{}
	} else {
		delete(s.destinations, chain)
	}
	return nil
}

func (s *InMemory) SetSource(_ context.Context, chain id.ChainID, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allowed {
		s.sources[chain] = struct{}{}
	} else {
		delete(s.sources, chain)
	}
	return nil
}

func (s *InMemory) SetSender(_ context.Context, chain id.ChainID, sender id.Address, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := senderKey{chain: chain, sender: sender}
	if allowed {
		s.senders[key] = struct{}{}
	} else {
		delete(s.senders, key)
	}
	return nil
}
