// Package ledger is the durable record of inbound messages whose application
// failed. A record exists exactly while its message is pending recovery;
// deletion on successful retry is the only way out.
package ledger

import (
	"context"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
)

// Store is the failure ledger persistence surface. Record upserts so a
// renewed failure on retry refreshes the reason; Find returns
// sentinel.ErrNotFound (wrapped) when no record exists.
type Store interface {
	Record(ctx context.Context, rec models.FailureRecord) error
	Find(ctx context.Context, messageID id.MessageID) (models.FailureRecord, error)
	Delete(ctx context.Context, messageID id.MessageID) error
	List(ctx context.Context) ([]models.FailureRecord, error)
}
