package application

import (
	"context"
	"fmt"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"go.uber.org/zap"
)

// EndAuctionDTO is the input for the seller-initiated early close.
type EndAuctionDTO struct {
	AuctionID uint64
	Caller    domain.Address
}

// EndAuctionUseCase settles an open auction at the seller's request once the
// reserve is met.
type EndAuctionUseCase struct {
	engine  *domain.Engine
	archive domain.SettlementArchive
}

func NewEndAuctionUseCase(engine *domain.Engine, archive domain.SettlementArchive) *EndAuctionUseCase {
	return &EndAuctionUseCase{
		engine:  engine,
		archive: archive,
	}
}

func (uc *EndAuctionUseCase) Execute(ctx context.Context, cmd EndAuctionDTO) error {
	if err := uc.engine.End(ctx, cmd.AuctionID, cmd.Caller); err != nil {
		return fmt.Errorf("end auction use case: ending auction %d failed: %w", cmd.AuctionID, err)
	}
	archiveSettledAuction(ctx, uc.engine, uc.archive, cmd.AuctionID)
	return nil
}

// FinalizeAuctionUseCase closes an expired auction on behalf of any caller.
type FinalizeAuctionUseCase struct {
	engine  *domain.Engine
	archive domain.SettlementArchive
}

func NewFinalizeAuctionUseCase(engine *domain.Engine, archive domain.SettlementArchive) *FinalizeAuctionUseCase {
	return &FinalizeAuctionUseCase{
		engine:  engine,
		archive: archive,
	}
}

func (uc *FinalizeAuctionUseCase) Execute(ctx context.Context, auctionID uint64) error {
	if err := uc.engine.Finalize(ctx, auctionID); err != nil {
		return fmt.Errorf("finalize auction use case: finalizing auction %d failed: %w", auctionID, err)
	}
	archiveSettledAuction(ctx, uc.engine, uc.archive, auctionID)
	return nil
}

// archiveSettledAuction records the terminal auction state and, when the
// auction settled with a winner, the settlement row. Archive failures are
// logged and never unwind the committed engine state.
func archiveSettledAuction(ctx context.Context, engine *domain.Engine, archive domain.SettlementArchive, auctionID uint64) {
	if archive == nil {
		return
	}
	auction, err := engine.GetAuction(auctionID)
	if err != nil {
		log.Warn("settlement archive: could not snapshot auction",
			zap.Uint64("auctionID", auctionID),
			zap.Error(err),
		)
		return
	}
	if err := archive.SaveAuction(ctx, auction); err != nil {
		log.Warn("settlement archive: failed to archive auction state",
			zap.Uint64("auctionID", auctionID),
			zap.Error(err),
		)
	}
	if auction.HasStandingBid() && auction.CurrentBidAmount.GreaterThanOrEqual(auction.ReservePrice) {
		if err := archive.SaveSettlement(ctx, auction.ID, auction.CurrentBidder, auction.CurrentBidAmount, auction.EndTime); err != nil {
			log.Warn("settlement archive: failed to archive settlement",
				zap.Uint64("auctionID", auctionID),
				zap.Error(err),
			)
		}
	}
}
