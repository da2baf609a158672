package application

import (
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/shopspring/decimal"
)

// AuctionDTO is the output DTO for exposing an auction record over HTTP/WS.
type AuctionDTO struct {
	ID               uint64          `json:"id"`
	AssetID          string          `json:"asset_id"`
	Seller           string          `json:"seller"`
	ReservePrice     decimal.Decimal `json:"reserve_price"`
	CurrentBidder    string          `json:"current_bidder,omitempty"`
	CurrentBidAmount decimal.Decimal `json:"current_bid_amount"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	Ended            bool            `json:"ended"`
}

func toAuctionDTO(a *domain.Auction) *AuctionDTO {
	return &AuctionDTO{
		ID:               a.ID,
		AssetID:          a.AssetID,
		Seller:           string(a.Seller),
		ReservePrice:     a.ReservePrice,
		CurrentBidder:    string(a.CurrentBidder),
		CurrentBidAmount: a.CurrentBidAmount,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Ended:            a.Ended,
	}
}

// GetAuctionUseCase serves the read-only auction queries.
type GetAuctionUseCase struct {
	engine *domain.Engine
}

func NewGetAuctionUseCase(engine *domain.Engine) *GetAuctionUseCase {
	return &GetAuctionUseCase{engine: engine}
}

func (uc *GetAuctionUseCase) ByID(auctionID uint64) (*AuctionDTO, error) {
	auction, err := uc.engine.GetAuction(auctionID)
	if err != nil {
		return nil, err
	}
	return toAuctionDTO(auction), nil
}

func (uc *GetAuctionUseCase) All() []*AuctionDTO {
	auctions := uc.engine.Auctions()
	out := make([]*AuctionDTO, 0, len(auctions))
	for i := range auctions {
		out = append(out, toAuctionDTO(&auctions[i]))
	}
	return out
}

func (uc *GetAuctionUseCase) OpenIDs() []uint64 {
	return uc.engine.OpenAuctions()
}

func (uc *GetAuctionUseCase) PendingWithdrawal(party domain.Address) decimal.Decimal {
	return uc.engine.PendingWithdrawal(party)
}
