package postgres

import (
	"context"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ArchiveRepository implements domain.SettlementArchive on Postgres. The
// engine's in-memory state stays authoritative; these tables are the
// permanent historical record.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

// SaveAuction upserts the auction row so the archive tracks the latest
// committed state of each record.
func (r *ArchiveRepository) SaveAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, asset_id, seller, reserve_price, current_bidder, current_bid, start_time, end_time, ended)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE
        SET
            current_bidder = EXCLUDED.current_bidder,
            current_bid = EXCLUDED.current_bid,
            end_time = EXCLUDED.end_time,
            ended = EXCLUDED.ended,
            updated_at = NOW();
    `
	var bidder *string
	if auction.HasStandingBid() {
		s := string(auction.CurrentBidder)
		bidder = &s
	}
	_, err := r.pool.Exec(ctx, query,
		auction.ID,
		auction.AssetID,
		string(auction.Seller),
		auction.ReservePrice,
		bidder,
		auction.CurrentBidAmount,
		auction.StartTime,
		auction.EndTime,
		auction.Ended,
	)
	return err
}

func (r *ArchiveRepository) SaveBid(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_id, bidder, amount, placed_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.pool.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		string(bid.Bidder),
		bid.Amount,
		bid.Timestamp,
	)
	return err
}

func (r *ArchiveRepository) SaveSettlement(ctx context.Context, auctionID uint64, winner domain.Address, amount decimal.Decimal, at time.Time) error {
	query := `
        INSERT INTO settlements (auction_id, winner, amount, settled_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (auction_id) DO NOTHING
    `
	_, err := r.pool.Exec(ctx, query, auctionID, string(winner), amount, at)
	return err
}

func (r *ArchiveRepository) SaveWithdrawal(ctx context.Context, party domain.Address, amount decimal.Decimal, at time.Time) error {
	query := `
        INSERT INTO withdrawals (party, amount, withdrawn_at)
        VALUES ($1, $2, $3)
    `
	_, err := r.pool.Exec(ctx, query, string(party), amount, at)
	return err
}
