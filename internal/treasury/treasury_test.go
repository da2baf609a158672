package treasury

import (
	"context"
	"testing"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const engineAddr = domain.Address("engine")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCollectMovesValueIntoCustody(t *testing.T) {
	tr := New(engineAddr)
	tr.Fund("bob", dec("5"))

	require.NoError(t, tr.Collect(context.Background(), "bob", dec("3")))
	assert.True(t, tr.Balance("bob").Equal(dec("2")))
	assert.True(t, tr.Custodied().Equal(dec("3")))
}

func TestCollectInsufficientFunds(t *testing.T) {
	tr := New(engineAddr)
	tr.Fund("bob", dec("1"))

	err := tr.Collect(context.Background(), "bob", dec("3"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, tr.Balance("bob").Equal(dec("1")), "failed collection must not move value")
	assert.True(t, tr.Custodied().IsZero())
}

func TestPayPushesCustodiedValue(t *testing.T) {
	tr := New(engineAddr)
	tr.Fund("bob", dec("5"))
	require.NoError(t, tr.Collect(context.Background(), "bob", dec("5")))

	require.NoError(t, tr.Pay(context.Background(), "carol", dec("4")))
	assert.True(t, tr.Balance("carol").Equal(dec("4")))
	assert.True(t, tr.Custodied().Equal(dec("1")))
}

func TestPayBeyondCustodyFails(t *testing.T) {
	tr := New(engineAddr)
	err := tr.Pay(context.Background(), "carol", dec("1"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestNegativeAmountsRejected(t *testing.T) {
	tr := New(engineAddr)
	require.ErrorIs(t, tr.Collect(context.Background(), "bob", dec("-1")), ErrInvalidAmount)
	require.ErrorIs(t, tr.Pay(context.Background(), "bob", dec("-1")), ErrInvalidAmount)
}

func TestFundAccumulates(t *testing.T) {
	tr := New(engineAddr)
	tr.Fund("bob", dec("1.5"))
	tr.Fund("bob", dec("2.5"))
	assert.True(t, tr.Balance("bob").Equal(dec("4")))
}
