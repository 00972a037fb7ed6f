//go:build integration

package allowlist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"relaygate/internal/relay/allowlist"
	"relaygate/pkg/testutil/containers"
)

const allowlistDDL = `
	CREATE TABLE IF NOT EXISTS relay_allowlist (
	    entry_type TEXT   NOT NULL,
	    chain_id   BIGINT NOT NULL,
	    sender     TEXT   NOT NULL DEFAULT '',
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    PRIMARY KEY (entry_type, chain_id, sender)
	)
`

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *allowlist.PostgresStore
	ctx   context.Context
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Apply(s.T(), allowlistDDL)
	s.store = allowlist.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, "TRUNCATE relay_allowlist")
	s.Require().NoError(err)
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) TestDenyByDefault() {
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

func (s *PostgresStoreSuite) TestSetAndUnsetDestination() {
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))

	allowed, err := s.store.IsDestinationAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.True(allowed)

	// Idempotent re-add.
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))

	s.Require().NoError(s.store.SetDestination(s.ctx, 7, false))
	allowed, err = s.store.IsDestinationAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *PostgresStoreSuite) TestSenderScopedToChain() {
	s.Require().NoError(s.store.SetSender(s.ctx, 7, "alice", true))

	allowed, err := s.store.IsSenderAllowed(s.ctx, 7, "alice")
	s.Require().NoError(err)
	s.True(allowed)

	// Same sender, different chain: still denied.
	allowed, err = s.store.IsSenderAllowed(s.ctx, 8, "alice")
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *PostgresStoreSuite) TestSetsAreIndependent() {
	s.Require().NoError(s.store.SetDestination(s.ctx, 7, true))

	allowed, err := s.store.IsSourceAllowed(s.ctx, 7)
	s.Require().NoError(err)
	s.False(allowed)
}
