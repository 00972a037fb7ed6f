package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
	"relaygate/pkg/platform/sentinel"
)

// PostgresStore persists failure records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed failure ledger.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Record(ctx context.Context, rec models.FailureRecord) error {
	const query = `
		INSERT INTO relay_failed_messages (message_id, reason, state, failed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id) DO UPDATE
		SET reason = EXCLUDED.reason, state = EXCLUDED.state, failed_at = EXCLUDED.failed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.MessageID.String(), rec.Reason, int(rec.State), rec.FailedAt)
	if err != nil {
		return fmt.Errorf("record failed message: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, messageID id.MessageID) (models.FailureRecord, error) {
	const query = `
		SELECT message_id, reason, state, failed_at
		FROM relay_failed_messages
		WHERE message_id = $1
	`
	var (
		rec   models.FailureRecord
		msgID string
		state int
	)
	err := s.db.QueryRowContext(ctx, query, messageID.String()).
		Scan(&msgID, &rec.Reason, &state, &rec.FailedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FailureRecord{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.FailureRecord{}, fmt.Errorf("find failed message: %w", err)
	}
	rec.MessageID = id.MessageID(msgID)
	rec.State = models.ErrorState(state)
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, messageID id.MessageID) error {
	const query = `DELETE FROM relay_failed_messages WHERE message_id = $1`
	if _, err := s.db.ExecContext(ctx, query, messageID.String()); err != nil {
		return fmt.Errorf("delete failed message: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.FailureRecord, error) {
	const query = `
		SELECT message_id, reason, state, failed_at
		FROM relay_failed_messages
		ORDER BY failed_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list failed messages: %w", err)
	}
	defer rows.Close()

	var out []models.FailureRecord
	for rows.Next() {
		var (
			rec   models.FailureRecord
			msgID string
			state int
		)
		if err := rows.Scan(&msgID, &rec.Reason, &state, &rec.FailedAt); err != nil {
			return nil, fmt.Errorf("scan failed message: %w", err)
		}
		rec.MessageID = id.MessageID(msgID)
		rec.State = models.ErrorState(state)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failed messages: %w", err)
	}
	return out, nil
}
