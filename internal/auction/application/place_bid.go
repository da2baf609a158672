package application

import (
	"context"
	"fmt"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlaceBidDTO is the input for the bid use case. Amount is the value
// attached to the call.
type PlaceBidDTO struct {
	AuctionID uint64
	Bidder    domain.Address
	Amount    decimal.Decimal
}

// PlaceBidUseCase places a value-bearing bid on an open auction and archives
// the accepted receipt.
type PlaceBidUseCase struct {
	engine  *domain.Engine
	archive domain.SettlementArchive
}

func NewPlaceBidUseCase(engine *domain.Engine, archive domain.SettlementArchive) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		engine:  engine,
		archive: archive,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	if cmd.Amount.IsNegative() || cmd.Amount.IsZero() {
		return nil, fmt.Errorf("place bid use case: %w", domain.ErrBidTooLow)
	}

	bid, err := uc.engine.Bid(ctx, cmd.AuctionID, cmd.Bidder, cmd.Amount)
	if err != nil {
		return nil, fmt.Errorf("place bid use case: bid on auction %d failed: %w", cmd.AuctionID, err)
	}

	if uc.archive != nil {
		if archiveErr := uc.archive.SaveBid(ctx, bid); archiveErr != nil {
			log.Warn("PlaceBidUseCase: failed to archive bid",
				zap.Uint64("auctionID", cmd.AuctionID),
				zap.String("bidID", bid.ID.String()),
				zap.Error(archiveErr),
			)
		}
		if auction, getErr := uc.engine.GetAuction(cmd.AuctionID); getErr == nil {
			if archiveErr := uc.archive.SaveAuction(ctx, auction); archiveErr != nil {
				log.Warn("PlaceBidUseCase: failed to archive auction state",
					zap.Uint64("auctionID", cmd.AuctionID),
					zap.Error(archiveErr),
				)
			}
		}
	}
	return bid, nil
}
