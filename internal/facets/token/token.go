// Package token is a capability facet reachable through the dispatch table:
// mint and burn of a simple balance ledger. The relay core guarantees its
// handlers are reached with an authenticated payload; what happens to the
// balances is this facet's business alone.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"relaygate/internal/relay/dispatch"
	id "relaygate/pkg/domain"
)

// Selectors this facet registers.
const (
	SelectorMint = "token.mint"
	SelectorBurn = "token.burn"
)

// ErrInsufficientFunds rejects burns exceeding the account balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Facet holds the token balances.
type Facet struct {
	mu       sync.Mutex
	balances map[id.Address]uint64
	logger   *slog.Logger
}

// New constructs an empty token facet.
func New(logger *slog.Logger) *Facet {
	return &Facet{
		balances: make(map[id.Address]uint64),
		logger:   logger,
	}
}

// Register binds the facet's selectors into the dispatch table.
func (f *Facet) Register(table *dispatch.Table) error {
	if err := table.Register(SelectorMint, f.handleMint); err != nil {
		return err
	}
	return table.Register(SelectorBurn, f.handleBurn)
}

// Balance returns the current balance of an account.
func (f *Facet) Balance(account id.Address) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[account]
}

type transferArgs struct {
	Account id.Address `json:"account"`
	Amount  uint64     `json:"amount"`
}

func (f *Facet) handleMint(ctx context.Context, args json.RawMessage) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	f.mu.Lock()
	f.balances[parsed.Account] += parsed.Amount
	balance := f.balances[parsed.Account]
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "minted",
		"account", parsed.Account,
		"amount", parsed.Amount,
		"balance", balance,
	)
	return nil
}

func (f *Facet) handleBurn(ctx context.Context, args json.RawMessage) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("burn: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	balance := f.balances[parsed.Account]
	if balance < parsed.Amount {
		return fmt.Errorf("burn %s: %w: have %d, need %d", parsed.Account, ErrInsufficientFunds, balance, parsed.Amount)
	}
	f.balances[parsed.Account] = balance - parsed.Amount

	f.logger.InfoContext(ctx, "burned",
		"account", parsed.Account,
		"amount", parsed.Amount,
		"balance", f.balances[parsed.Account],
	)
	return nil
}

func parseArgs(args json.RawMessage) (transferArgs, error) {
	var parsed transferArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return transferArgs{}, fmt.Errorf("decode args: %w", err)
	}
	if parsed.Account.IsNil() {
		return transferArgs{}, fmt.Errorf("missing account")
	}
	if parsed.Amount == 0 {
		return transferArgs{}, fmt.Errorf("zero amount")
	}
	return parsed, nil
}
