//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"relaygate/internal/relay/ledger"
	"relaygate/internal/relay/models"
	"relaygate/pkg/platform/sentinel"
	"relaygate/pkg/testutil/containers"
)

const ledgerDDL = `
	CREATE TABLE IF NOT EXISTS relay_failed_messages (
	    message_id TEXT PRIMARY KEY,
	    reason     TEXT NOT NULL,
	    state      INT  NOT NULL DEFAULT 1,
	    failed_at  TIMESTAMPTZ NOT NULL
	)
`

type PostgresLedgerSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *ledger.PostgresStore
	ctx   context.Context
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Apply(s.T(), ledgerDDL)
	s.store = ledger.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresLedgerSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, "TRUNCATE relay_failed_messages")
	s.Require().NoError(err)
}

func TestPostgresLedgerSuite(t *testing.T) {
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) TestRecordAndFind() {
	rec := models.FailureRecord{
		MessageID: "msg-1",
		Reason:    "burn alice: insufficient funds",
		State:     models.StateBasic,
		FailedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Record(s.ctx, rec))

	found, err := s.store.Find(s.ctx, "msg-1")
	s.Require().NoError(err)
	s.Equal(rec.Reason, found.Reason)
	s.Equal(models.StateBasic, found.State)
	s.WithinDuration(rec.FailedAt, found.FailedAt, time.Millisecond)
}

func (s *PostgresLedgerSuite) TestFindMissing() {
	_, err := s.store.Find(s.ctx, "nope")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresLedgerSuite) TestRecordUpserts() {
	base := time.Now().UTC()
	s.Require().NoError(s.store.Record(s.ctx, models.FailureRecord{
		MessageID: "msg-1", Reason: "first", State: models.StateBasic, FailedAt: base,
	}))
	s.Require().NoError(s.store.Record(s.ctx, models.FailureRecord{
		MessageID: "msg-1", Reason: "second", State: models.StateBasic, FailedAt: base.Add(time.Second),
	}))

	found, err := s.store.Find(s.ctx, "msg-1")
	s.Require().NoError(err)
	s.Equal("second", found.Reason)

	records, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *PostgresLedgerSuite) TestDeleteAndList() {
	base := time.Now().UTC()
	s.Require().NoError(s.store.Record(s.ctx, models.FailureRecord{
		MessageID: "late", Reason: "b", State: models.StateBasic, FailedAt: base.Add(time.Minute),
	}))
	s.Require().NoError(s.store.Record(s.ctx, models.FailureRecord{
		MessageID: "early", Reason: "a", State: models.StateBasic, FailedAt: base,
	}))

	records, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("early", records[0].MessageID.String())
	s.Equal("late", records[1].MessageID.String())

	s.Require().NoError(s.store.Delete(s.ctx, "early"))
	_, err = s.store.Find(s.ctx, "early")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Deleting again is a no-op.
	s.Require().NoError(s.store.Delete(s.ctx, "early"))
}
