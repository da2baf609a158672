package websocket

import (
	"encoding/json"
	"strconv"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/websocket"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// HubNotifier implements domain.Notifier by fanning engine events out over
// the shared websocket hub: every event reaches the lobby topic, and
// auction-scoped events additionally reach that auction's topic.
type HubNotifier struct {
	hub *websocket.Hub
}

func NewHubNotifier(hub *websocket.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// AuctionTopic is the hub topic carrying one auction's events.
func AuctionTopic(auctionID uint64) string {
	return "auction:" + strconv.FormatUint(auctionID, 10)
}

// Publish implements domain.Notifier.
func (n *HubNotifier) Publish(event domain.Event) {
	msg := ServerEventMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerEvent},
	}
	msg.Payload.Event = event.Type
	msg.Payload.AuctionID = event.AuctionID
	msg.Payload.Seller = string(event.Seller)
	msg.Payload.Bidder = string(event.Bidder)
	msg.Payload.Party = string(event.Party)
	msg.Payload.Amount = event.Amount
	msg.Payload.At = event.At

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal engine event", zap.Error(err))
		return
	}

	n.hub.BroadcastToTopic(websocket.LobbyTopic, data)
	if event.Type != domain.EventWithdrawn {
		n.hub.BroadcastToTopic(AuctionTopic(event.AuctionID), data)
	}
}
