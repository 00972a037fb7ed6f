package allowlist

import (
	"context"
	"database/sql"
	"fmt"

	id "relaygate/pkg/domain"
)

// Entry types stored in the relay_allowlist table. Sender entries carry the
// chain they are scoped to; chain entries leave the sender column empty.
const (
	entryTypeDestination = "destination"
	entryTypeSource      = "source"
	entryTypeSender      = "sender"
)

// PostgresStore persists allowlist entries in PostgreSQL. Row presence is the
// membership signal, which makes the setters naturally idempotent.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed allowlist store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) IsDestinationAllowed(ctx context.Context, chain id.ChainID) (bool, error) {
	return s.exists(ctx, entryTypeDestination, chain, "")
}

func (s *PostgresStore) IsSourceAllowed(ctx context.Context, chain id.ChainID) (bool, error) {
	return s.exists(ctx, entryTypeSource, chain, "")
}

func (s *PostgresStore) IsSenderAllowed(ctx context.Context, chain id.ChainID, sender id.Address) (bool, error) {
	return s.exists(ctx, entryTypeSender, chain, sender)
}

func (s *PostgresStore) SetDestination(ctx context.Context, chain id.ChainID, allowed bool) error {
	return s.set(ctx, entryTypeDestination, chain, "", allowed)
}

func (s *PostgresStore) SetSource(ctx context.Context, chain id.ChainID, allowed bool) error {
	return s.set(ctx, entryTypeSource, chain, "", allowed)
}

func (s *PostgresStore) SetSender(ctx context.Context, chain id.ChainID, sender id.Address, allowed bool) error {
	return s.set(ctx, entryTypeSender, chain, sender, allowed)
}

func (s *PostgresStore) exists(ctx context.Context, entryType string, chain id.ChainID, sender id.Address) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM relay_allowlist
			WHERE entry_type = $1 AND chain_id = $2 AND sender = $3
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, entryType, int64(chain), sender.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check allowlist entry: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) set(ctx context.Context, entryType string, chain id.ChainID, sender id.Address, allowed bool) error {
	if allowed {
		const query = `
			INSERT INTO relay_allowlist (entry_type, chain_id, sender)
			VALUES ($1, $2, $3)
			ON CONFLICT (entry_type, chain_id, sender) DO NOTHING
		`
		if _, err := s.db.ExecContext(ctx, query, entryType, int64(chain), sender.String()); err != nil {
			return fmt.Errorf("add allowlist entry: %w", err)
		}
		return nil
	}

	const query = `
		DELETE FROM relay_allowlist
		WHERE entry_type = $1 AND chain_id = $2 AND sender = $3
	`
	if _, err := s.db.ExecContext(ctx, query, entryType, int64(chain), sender.String()); err != nil {
		return fmt.Errorf("remove allowlist entry: %w", err)
	}
	return nil
}
