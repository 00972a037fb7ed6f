// Package allowlist holds the three membership sets consulted before any
// cross-domain operation: allowed destination chains, allowed source chains,
// and allowed senders per source chain. Absence of an entry means deny.
package allowlist

import (
	"context"

	id "relaygate/pkg/domain"
)

// Store is interface-driven so the service stays testable and persistence can
// be swapped without rewiring business code. Setters are idempotent: setting
// an already-set entry is a no-op success. Nothing expires automatically.
type Store interface {
	IsDestinationAllowed(ctx context.Context, chain id.ChainID) (bool, error)
	IsSourceAllowed(ctx context.Context, chain id.ChainID) (bool, error)
	IsSenderAllowed(ctx context.Context, chain id.ChainID, sender id.Address) (bool, error)

	SetDestination(ctx context.Context, chain id.ChainID, allowed bool) error
	SetSource(ctx context.Context, chain id.ChainID, allowed bool) error
	SetSender(ctx context.Context, chain id.ChainID, sender id.Address, allowed bool) error
}
