// Package fees tracks the unit's fee assets: its native balance and the
// ERC-style allowances it grants the router. The balance is process-wide
// state mutated only through these accessors.
package fees

import (
	"context"
	"fmt"
	"sync"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
)

// Treasury is the fee-asset accounting surface consumed by the outbound path.
type Treasury interface {
	NativeBalance(ctx context.Context) (uint64, error)
	// DebitNative removes amount from the native balance, failing with
	// ErrInsufficientBalance and no partial debit when the balance is short.
	DebitNative(ctx context.Context, amount uint64) error
	CreditNative(ctx context.Context, amount uint64) error
	// Approve authorizes spender to pull exactly amount units of token,
	// replacing any previous allowance for that (spender, token) pair.
	Approve(ctx context.Context, spender string, token id.Address, amount uint64) error
	Allowance(ctx context.Context, spender string, token id.Address) (uint64, error)
}

type allowanceKey struct {
	spender string
	token   id.Address
}

// InMemory is a mutex-guarded treasury. Production deployments fund it from
// configuration at startup.
type InMemory struct {
	mu         sync.Mutex
	native     uint64
	allowances map[allowanceKey]uint64
}

// NewInMemory constructs a treasury holding the given native balance.
func NewInMemory(native uint64) *InMemory {
	return &InMemory{
		native:     native,
		allowances: make(map[allowanceKey]uint64),
	}
}

func (t *InMemory) NativeBalance(_ context.Context) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.native, nil
}

func (t *InMemory) DebitNative(_ context.Context, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.native < amount {
		return fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, t.native, amount)
	}
	t.native -= amount
	return nil
}

func (t *InMemory) CreditNative(_ context.Context, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.native += amount
	return nil
}

func (t *InMemory) Approve(_ context.Context, spender string, token id.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowances[allowanceKey{spender: spender, token: token}] = amount
	return nil
}

func (t *InMemory) Allowance(_ context.Context, spender string, token id.Address) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allowances[allowanceKey{spender: spender, token: token}], nil
}
