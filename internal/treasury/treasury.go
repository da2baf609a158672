// Package treasury is the value-transfer substrate: an in-memory account
// book the engine uses to accept attached value and to push value out. The
// engine consumes it through the domain.Treasury capability.
package treasury

import (
	"context"
	"errors"
	"sync"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

var (
	ErrInsufficientFunds = errors.New("insufficient funds for attached value")
	ErrInvalidAmount     = errors.New("transfer amount cannot be negative")
)

// Treasury keeps per-address balances plus the engine's custody balance.
// Collect models value attached atomically to an engine call; Pay pushes
// custodied value back out to an address.
type Treasury struct {
	engineAddr domain.Address

	mu       sync.Mutex
	balances map[domain.Address]decimal.Decimal
}

func New(engineAddr domain.Address) *Treasury {
	return &Treasury{
		engineAddr: engineAddr,
		balances:   make(map[domain.Address]decimal.Decimal),
	}
}

// Fund credits an address with spendable value. Bare receipt of value is
// always accepted.
func (t *Treasury) Fund(addr domain.Address, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[addr] = t.balances[addr].Add(amount)
}

// Balance returns an address's spendable value.
func (t *Treasury) Balance(addr domain.Address) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[addr]
}

// Custodied returns the value currently held by the engine.
func (t *Treasury) Custodied() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[t.engineAddr]
}

// Collect implements domain.Treasury: it moves amount from the caller's
// account into engine custody, failing atomically if the caller cannot
// cover it.
func (t *Treasury) Collect(ctx context.Context, from domain.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[from].LessThan(amount) {
		log.Warn("Value collection failed: insufficient funds",
			zap.String("from", string(from)),
			zap.String("amount", amount.String()),
			zap.String("balance", t.balances[from].String()),
		)
		return ErrInsufficientFunds
	}
	t.balances[from] = t.balances[from].Sub(amount)
	t.balances[t.engineAddr] = t.balances[t.engineAddr].Add(amount)
	return nil
}

// Pay implements domain.Treasury: it moves amount from engine custody to the
// recipient.
func (t *Treasury) Pay(ctx context.Context, to domain.Address, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[t.engineAddr].LessThan(amount) {
		return ErrInsufficientFunds
	}
	t.balances[t.engineAddr] = t.balances[t.engineAddr].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)
	return nil
}
