// Package dedup keeps processed-message markers so a transport redelivery of
// an already applied message is a logged no-op instead of a double
// application. Supplementary to the failure ledger, never a replacement.
package dedup

import (
	"context"

	id "relaygate/pkg/domain"
)

// Store records which message IDs have already been applied.
type Store interface {
	Seen(ctx context.Context, messageID id.MessageID) (bool, error)
	Mark(ctx context.Context, messageID id.MessageID) error
}
