package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/assetregistry"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/application"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/treasury"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	engineAddr = domain.Address("engine")
	seller     = domain.Address("alice")
	bidderA    = domain.Address("bob")
	bidderB    = domain.Address("carol")
	assetX     = "asset-x"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// recordingArchive captures archive writes for assertions.
type recordingArchive struct {
	auctions    []*domain.Auction
	bids        []*domain.Bid
	settlements []uint64
	withdrawals []domain.Address
}

func (r *recordingArchive) SaveAuction(ctx context.Context, auction *domain.Auction) error {
	r.auctions = append(r.auctions, auction)
	return nil
}

func (r *recordingArchive) SaveBid(ctx context.Context, bid *domain.Bid) error {
	r.bids = append(r.bids, bid)
	return nil
}

func (r *recordingArchive) SaveSettlement(ctx context.Context, auctionID uint64, winner domain.Address, amount decimal.Decimal, at time.Time) error {
	r.settlements = append(r.settlements, auctionID)
	return nil
}

func (r *recordingArchive) SaveWithdrawal(ctx context.Context, party domain.Address, amount decimal.Decimal, at time.Time) error {
	r.withdrawals = append(r.withdrawals, party)
	return nil
}

type stack struct {
	service  application.AuctionService
	registry *assetregistry.Registry
	vault    *treasury.Treasury
	archive  *recordingArchive
}

// newStack wires the real engine, registry and treasury behind the service,
// the same way the server entry point does.
func newStack(t *testing.T) *stack {
	t.Helper()
	vault := treasury.New(engineAddr)
	engine := domain.NewEngine(vault, nil, domain.EngineConfig{
		EngineAddress: engineAddr,
		MinDuration:   time.Hour,
	})
	registry := assetregistry.New()
	registry.RegisterReceiver(engineAddr, engine)
	require.NoError(t, registry.Mint(assetX, seller))
	require.NoError(t, registry.Approve(assetX, seller, engineAddr))

	archive := &recordingArchive{}
	service := application.NewAuctionService(
		application.NewDepositAssetUseCase(engine, registry, archive),
		application.NewPlaceBidUseCase(engine, archive),
		application.NewEndAuctionUseCase(engine, archive),
		application.NewFinalizeAuctionUseCase(engine, archive),
		application.NewWithdrawUseCase(engine, archive),
		application.NewGetAuctionUseCase(engine),
	)
	return &stack{service: service, registry: registry, vault: vault, archive: archive}
}

func TestServiceFullFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.vault.Fund(bidderA, dec("10"))
	s.vault.Fund(bidderB, dec("10"))

	auction, err := s.service.Deposit(ctx, application.DepositAssetDTO{
		AssetID:      assetX,
		Seller:       seller,
		ReservePrice: dec("1.0"),
		Duration:     24 * time.Hour,
	})
	require.NoError(t, err)

	_, err = s.service.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: auction.ID, Bidder: bidderA, Amount: dec("1.0"),
	})
	require.NoError(t, err)
	_, err = s.service.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: auction.ID, Bidder: bidderB, Amount: dec("2.0"),
	})
	require.NoError(t, err)

	require.NoError(t, s.service.EndAuction(ctx, application.EndAuctionDTO{
		AuctionID: auction.ID, Caller: seller,
	}))

	owner, err := s.registry.OwnerOf(ctx, assetX)
	require.NoError(t, err)
	assert.Equal(t, bidderB, owner)

	amount, err := s.service.Withdraw(ctx, bidderA)
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("1.0")))

	amount, err = s.service.Withdraw(ctx, seller)
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("2.0")))

	// every committed mutation reached the archive
	assert.Len(t, s.archive.bids, 2)
	assert.Equal(t, []uint64{auction.ID}, s.archive.settlements)
	assert.Equal(t, []domain.Address{bidderA, seller}, s.archive.withdrawals)
	require.NotEmpty(t, s.archive.auctions)
	last := s.archive.auctions[len(s.archive.auctions)-1]
	assert.True(t, last.Ended)

	dto, err := s.service.GetAuction(auction.ID)
	require.NoError(t, err)
	assert.True(t, dto.Ended)
	assert.Equal(t, string(bidderB), dto.CurrentBidder)
	assert.Empty(t, s.service.OpenAuctionIDs())
}

func TestServiceWrapsDomainErrors(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.service.Deposit(ctx, application.DepositAssetDTO{
		AssetID:      assetX,
		Seller:       seller,
		ReservePrice: dec("1.0"),
		Duration:     time.Minute,
	})
	require.ErrorIs(t, err, domain.ErrDurationTooShort)

	_, err = s.service.Withdraw(ctx, bidderA)
	require.ErrorIs(t, err, domain.ErrNothingToWithdraw)

	_, err = s.service.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: 7, Bidder: bidderA, Amount: dec("1.0"),
	})
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestServiceRejectsNonPositiveBid(t *testing.T) {
	s := newStack(t)
	_, err := s.service.PlaceBid(context.Background(), application.PlaceBidDTO{
		AuctionID: 0, Bidder: bidderA, Amount: decimal.Zero,
	})
	require.ErrorIs(t, err, domain.ErrBidTooLow)
}

func TestServiceDepositRequiresApproval(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	require.NoError(t, s.registry.Mint("asset-y", seller))

	_, err := s.service.Deposit(ctx, application.DepositAssetDTO{
		AssetID:      "asset-y",
		Seller:       seller,
		ReservePrice: dec("1.0"),
		Duration:     24 * time.Hour,
	})
	require.ErrorIs(t, err, assetregistry.ErrNotApproved)

	owner, err := s.registry.OwnerOf(ctx, "asset-y")
	require.NoError(t, err)
	assert.Equal(t, seller, owner)
}

func TestServiceFinalizeWithoutBids(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	auction, err := s.service.Deposit(ctx, application.DepositAssetDTO{
		AssetID:      assetX,
		Seller:       seller,
		ReservePrice: dec("5.0"),
		Duration:     time.Hour,
	})
	require.NoError(t, err)

	err = s.service.FinalizeAuction(ctx, auction.ID)
	require.ErrorIs(t, err, domain.ErrAuctionNotExpired)
}
