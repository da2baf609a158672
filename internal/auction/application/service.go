package application

import (
	"context"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/shopspring/decimal"
)

// AuctionService is the application interface of the auction module,
// exposing the use cases to the outer layers (HTTP, websocket).
type AuctionService interface {
	Deposit(ctx context.Context, cmd DepositAssetDTO) (*domain.Auction, error)
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	EndAuction(ctx context.Context, cmd EndAuctionDTO) error
	FinalizeAuction(ctx context.Context, auctionID uint64) error
	Withdraw(ctx context.Context, caller domain.Address) (decimal.Decimal, error)

	GetAuction(auctionID uint64) (*AuctionDTO, error)
	ListAuctions() []*AuctionDTO
	OpenAuctionIDs() []uint64
	PendingWithdrawal(party domain.Address) decimal.Decimal
}

type auctionService struct {
	depositUC  *DepositAssetUseCase
	placeBidUC *PlaceBidUseCase
	endUC      *EndAuctionUseCase
	finalizeUC *FinalizeAuctionUseCase
	withdrawUC *WithdrawUseCase
	queryUC    *GetAuctionUseCase
}

func NewAuctionService(
	depositUC *DepositAssetUseCase,
	placeBidUC *PlaceBidUseCase,
	endUC *EndAuctionUseCase,
	finalizeUC *FinalizeAuctionUseCase,
	withdrawUC *WithdrawUseCase,
	queryUC *GetAuctionUseCase,
) AuctionService {
	return &auctionService{
		depositUC:  depositUC,
		placeBidUC: placeBidUC,
		endUC:      endUC,
		finalizeUC: finalizeUC,
		withdrawUC: withdrawUC,
		queryUC:    queryUC,
	}
}

func (as *auctionService) Deposit(ctx context.Context, cmd DepositAssetDTO) (*domain.Auction, error) {
	return as.depositUC.Execute(ctx, cmd)
}

func (as *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return as.placeBidUC.Execute(ctx, cmd)
}

func (as *auctionService) EndAuction(ctx context.Context, cmd EndAuctionDTO) error {
	return as.endUC.Execute(ctx, cmd)
}

func (as *auctionService) FinalizeAuction(ctx context.Context, auctionID uint64) error {
	return as.finalizeUC.Execute(ctx, auctionID)
}

func (as *auctionService) Withdraw(ctx context.Context, caller domain.Address) (decimal.Decimal, error) {
	return as.withdrawUC.Execute(ctx, caller)
}

func (as *auctionService) GetAuction(auctionID uint64) (*AuctionDTO, error) {
	return as.queryUC.ByID(auctionID)
}

func (as *auctionService) ListAuctions() []*AuctionDTO {
	return as.queryUC.All()
}

func (as *auctionService) OpenAuctionIDs() []uint64 {
	return as.queryUC.OpenIDs()
}

func (as *auctionService) PendingWithdrawal(party domain.Address) decimal.Decimal {
	return as.queryUC.PendingWithdrawal(party)
}
