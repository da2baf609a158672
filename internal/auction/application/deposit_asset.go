package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// DepositAssetDTO is the input for the deposit use case. Seller identity is
// an explicit field, never ambient.
type DepositAssetDTO struct {
	AssetID      string
	Seller       domain.Address
	ReservePrice decimal.Decimal
	Duration     time.Duration
}

// DepositAssetUseCase pulls an asset into engine custody and opens the
// auction for it.
type DepositAssetUseCase struct {
	engine   *domain.Engine
	registry domain.AssetRegistry
	archive  domain.SettlementArchive
}

func NewDepositAssetUseCase(engine *domain.Engine, registry domain.AssetRegistry, archive domain.SettlementArchive) *DepositAssetUseCase {
	return &DepositAssetUseCase{
		engine:   engine,
		registry: registry,
		archive:  archive,
	}
}

func (uc *DepositAssetUseCase) Execute(ctx context.Context, cmd DepositAssetDTO) (*domain.Auction, error) {
	auction, err := uc.engine.Deposit(ctx, uc.registry, cmd.AssetID, cmd.Seller, cmd.ReservePrice, cmd.Duration)
	if err != nil {
		return nil, fmt.Errorf("deposit asset use case: deposit of %s failed: %w", cmd.AssetID, err)
	}

	if uc.archive != nil {
		if archiveErr := uc.archive.SaveAuction(ctx, auction); archiveErr != nil {
			log.Warn("DepositAssetUseCase: failed to archive auction",
				zap.Uint64("auctionID", auction.ID),
				zap.Error(archiveErr),
			)
		}
	}
	return auction, nil
}
