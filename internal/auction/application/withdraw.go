package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawUseCase pays out the caller's full withdrawable-ledger balance.
type WithdrawUseCase struct {
	engine  *domain.Engine
	archive domain.SettlementArchive
}

func NewWithdrawUseCase(engine *domain.Engine, archive domain.SettlementArchive) *WithdrawUseCase {
	return &WithdrawUseCase{
		engine:  engine,
		archive: archive,
	}
}

func (uc *WithdrawUseCase) Execute(ctx context.Context, caller domain.Address) (decimal.Decimal, error) {
	amount, err := uc.engine.Withdraw(ctx, caller)
	if err != nil {
		return decimal.Zero, fmt.Errorf("withdraw use case: withdrawal for %s failed: %w", caller, err)
	}

	if uc.archive != nil {
		if archiveErr := uc.archive.SaveWithdrawal(ctx, caller, amount, time.Now()); archiveErr != nil {
			log.Warn("WithdrawUseCase: failed to archive withdrawal",
				zap.String("caller", string(caller)),
				zap.Error(archiveErr),
			)
		}
	}
	return amount, nil
}
