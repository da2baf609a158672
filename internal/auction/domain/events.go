package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies an engine state transition.
type EventType string

const (
	EventDeposited    EventType = "asset_deposited"
	EventBidPlaced    EventType = "bid_placed"
	EventRefundQueued EventType = "refund_queued"
	EventAuctionEnded EventType = "auction_ended"
	EventWithdrawn    EventType = "funds_withdrawn"
)

// Event is emitted once per committed state transition. Fields that do not
// apply to a given event type are left at their zero values.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	AuctionID uint64          `json:"auction_id"`
	Seller    Address         `json:"seller,omitempty"`
	Bidder    Address         `json:"bidder,omitempty"`
	Party     Address         `json:"party,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	At        time.Time       `json:"at"`
}
