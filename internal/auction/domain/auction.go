package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address identifies a party (seller, bidder, the engine itself) on the
// value substrate and in the asset registry.
type Address string

// NoAddress is the zero address, used when an auction has no standing bidder.
const NoAddress Address = ""

// Default policy bounds for the auction window. The engine clamps the
// seller-requested duration into [MinDuration, MaxDuration].
const (
	DefaultMinDuration = time.Hour
	DefaultMaxDuration = 30 * 24 * time.Hour
)

// Auction is the per-asset auction record. Records are appended by Deposit,
// mutated by Bid and by settlement, and never deleted; an ended auction is
// kept as a permanent historical record.
type Auction struct {
	ID               uint64
	Registry         AssetRegistry
	AssetID          string
	Seller           Address
	ReservePrice     decimal.Decimal
	CurrentBidder    Address
	CurrentBidAmount decimal.Decimal
	StartTime        time.Time
	EndTime          time.Time
	Ended            bool
}

// HasStandingBid reports whether a bid has been accepted and not yet
// superseded or settled.
func (a *Auction) HasStandingBid() bool {
	return a.CurrentBidder != NoAddress
}

// Open reports whether the auction can still accept bids at the given time.
func (a *Auction) Open(now time.Time) bool {
	return !a.Ended && !now.After(a.EndTime)
}
