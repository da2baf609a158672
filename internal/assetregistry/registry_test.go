package assetregistry

import (
	"context"
	"errors"
	"testing"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice    = domain.Address("alice")
	bob      = domain.Address("bob")
	operator = domain.Address("engine")
	assetX   = "asset-x"
)

// stubReceiver lets tests control the receive-hook handshake.
type stubReceiver struct {
	ack string
	err error
}

func (s *stubReceiver) OnAssetReceived(ctx context.Context, operator, from domain.Address, assetID string) (string, error) {
	return s.ack, s.err
}

func TestMintAndOwnership(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	owner, err := r.OwnerOf(context.Background(), assetX)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	require.ErrorIs(t, r.Mint(assetX, bob), ErrAssetAlreadyMinted)

	_, err = r.OwnerOf(context.Background(), "missing")
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestApproveRequiresOwner(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	require.ErrorIs(t, r.Approve(assetX, bob, operator), ErrNotAssetOwner)
	require.NoError(t, r.Approve(assetX, alice, operator))

	ok, err := r.IsApproved(context.Background(), assetX, operator)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransferByOwner(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	require.NoError(t, r.Transfer(context.Background(), alice, alice, bob, assetX))
	owner, err := r.OwnerOf(context.Background(), assetX)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestTransferByApprovedOperatorConsumesApproval(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))
	require.NoError(t, r.Approve(assetX, alice, operator))

	require.NoError(t, r.Transfer(context.Background(), operator, alice, bob, assetX))
	owner, err := r.OwnerOf(context.Background(), assetX)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)

	ok, err := r.IsApproved(context.Background(), assetX, operator)
	require.NoError(t, err)
	assert.False(t, ok, "approval is consumed by the transfer")
}

func TestTransferGates(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	err := r.Transfer(context.Background(), operator, alice, bob, assetX)
	require.ErrorIs(t, err, ErrNotApproved)

	err = r.Transfer(context.Background(), bob, bob, alice, assetX)
	require.ErrorIs(t, err, ErrNotAssetOwner)

	err = r.Transfer(context.Background(), alice, alice, bob, "missing")
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestReceiveHookHandshake(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	accepting := &stubReceiver{ack: domain.AssetReceivedAck}
	r.RegisterReceiver(bob, accepting)
	require.NoError(t, r.Transfer(context.Background(), alice, alice, bob, assetX))
	owner, err := r.OwnerOf(context.Background(), assetX)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestReceiveHookRejectionRevertsTransfer(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	r.RegisterReceiver(bob, &stubReceiver{ack: "nope"})
	err := r.Transfer(context.Background(), alice, alice, bob, assetX)
	require.ErrorIs(t, err, ErrTransferRejected)

	owner, err := r.OwnerOf(context.Background(), assetX)
	require.NoError(t, err)
	assert.Equal(t, alice, owner, "custody unchanged when the hook rejects")
}

func TestReceiveHookErrorPropagates(t *testing.T) {
	r := New()
	require.NoError(t, r.Mint(assetX, alice))

	hookErr := errors.New("receiver exploded")
	r.RegisterReceiver(bob, &stubReceiver{err: hookErr})
	err := r.Transfer(context.Background(), alice, alice, bob, assetX)
	require.ErrorIs(t, err, hookErr)
}
