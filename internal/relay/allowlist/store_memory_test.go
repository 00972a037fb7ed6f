package allowlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

// TestDenyByDefault verifies absence of an entry means deny.
func (s *MemoryStoreSuite) TestDenyByDefault() {
	allowed, err := s.store.IsDestinationAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.False(allowed)

	allowed, err = s.store.IsSourceAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.False(allowed)

	allowed, err = s.store.IsSenderAllowed(s.ctx, 7, "alice")
	s.Require().NoError(err)
	s.False(allowed)
}

// TestSetAndUnset verifies membership follows the last setter call.
func (s *MemoryStoreSuite) TestSetAndUnset() {
	s.Run("destination", func() {
		s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))
		allowed, err := s.store.IsDestinationAllowed(s.ctx, 7)
		s.Require().NoError(err)
		s.True(allowed)

		s.Require().NoError(s.store.SetDestination(s.ctx, 7, false))
		allowed, err = s.store.IsDestinationAllowed(s.ctx, 7)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("source", func() {
		s.Require().NoError(s.store.SetSource(s.ctx, 9, true))
		allowed, err := s.store.IsSourceAllowed(s.ctx, 9)
		s.Require().NoError(err)
		s.True(allowed)
	})

	s.Run("sender", func() {
		s.Require().NoError(s.store.SetSender(s.ctx, 7, "alice", true))
		allowed, err := s.store.IsSenderAllowed(s.ctx, 7, "alice")
		s.Require().NoError(err)
		s.True(allowed)
	})
}

// TestIdempotentSetters verifies double-set equals single-set.
func (s *MemoryStoreSuite) TestIdempotentSetters() {
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))

	allowed, err := s.store.IsDestinationAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.True(allowed)

	s.Require().NoError(s.store.SetDestination(s.ctx, 7, false))
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, false))

	allowed, err = s.store.IsDestinationAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.False(allowed)
}

// TestSenderScopedToChain verifies a sender grant on one chain says nothing
// about the same address on another chain.
func (s *MemoryStoreSuite) TestSenderScopedToChain() {
	s.Require().NoError(s.store.SetSender(s.ctx, 7, "alice", true))

	allowed, err := s.store.IsSenderAllowed(s.ctx, 9, "alice")
	s.Require().NoError(err)
	s.False(allowed)

	allowed, err = s.store.IsSenderAllowed(s.ctx, 7, "alice")
	s.Require().NoError(err)
	s.True(allowed)
}

// TestSetsAreIndependent verifies destination, source, and sender membership
// never leak into each other.
func (s *MemoryStoreSuite) TestSetsAreIndependent() {
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))

	allowed, err := s.store.IsSourceAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.False(allowed)
}
