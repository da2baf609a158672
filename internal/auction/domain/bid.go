package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is the receipt for a single accepted bid on an auction.
type Bid struct {
	ID        uuid.UUID
	AuctionID uint64
	Bidder    Address
	Amount    decimal.Decimal
	Timestamp time.Time
}

// NewBid creates a new Bid receipt.
func NewBid(id uuid.UUID, auctionID uint64, bidder Address, amount decimal.Decimal, timestamp time.Time) *Bid {
	return &Bid{
		ID:        id,
		AuctionID: auctionID,
		Bidder:    bidder,
		Amount:    amount,
		Timestamp: timestamp,
	}
}
