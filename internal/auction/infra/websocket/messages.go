package websocket

import (
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/shopspring/decimal"
)

// MessageType identifies a server-pushed websocket message.
type MessageType string

const (
	MessageTypeServerEvent MessageType = "server_event"
	MessageTypeServerError MessageType = "server_error"
)

// BaseMessage is the envelope shared by all websocket messages.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ServerEventMessage carries one engine event to subscribers.
type ServerEventMessage struct {
	BaseMessage
	Payload struct {
		Event     domain.EventType `json:"event"`
		AuctionID uint64           `json:"auction_id"`
		Seller    string           `json:"seller,omitempty"`
		Bidder    string           `json:"bidder,omitempty"`
		Party     string           `json:"party,omitempty"`
		Amount    decimal.Decimal  `json:"amount"`
		At        time.Time        `json:"at"`
	} `json:"payload"`
}
