package websocket

import (
	"context"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// LobbyTopic receives every engine event regardless of auction.
const LobbyTopic = "lobby"

// Hub keeps the client registry and fans engine events out to subscribers.
// Clients are grouped by topic: one topic per auction plus the lobby.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
}

// Client represents one websocket subscription.
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Topic string
	ID    string
}

type Message struct {
	Topic string
	Data  []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub loop; it exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info("Websocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Websocket hub shutting down")
			return
		case client := <-h.register:
			if _, ok := h.clients[client.Topic]; !ok {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("topic", client.Topic),
			)
		case client := <-h.unregister:
			if clients, ok := h.clients[client.Topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.Topic)
					}
					log.Info("Client unregistered",
						zap.String("clientID", client.ID),
						zap.String("topic", client.Topic),
					)
				}
			}
		case message := <-h.broadcast:
			for client := range h.clients[message.Topic] {
				select {
				case client.Send <- message.Data:
				default:
					// slow or gone; evict to keep the loop healthy
					close(client.Send)
					delete(h.clients[message.Topic], client)
					log.Warn("Dropped slow client",
						zap.String("clientID", client.ID),
						zap.String("topic", client.Topic),
					)
				}
			}
		}
	}
}

// RegisterClient queues a client for registration.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient queues a client for removal.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToTopic publishes data to every client subscribed to topic.
func (h *Hub) BroadcastToTopic(topic string, data []byte) {
	select {
	case h.broadcast <- &Message{Topic: topic, Data: data}:
	default:
		log.Error("Broadcast channel full, message dropped", zap.String("topic", topic))
	}
}

// ReadPump consumes (and discards) client frames so pings and close frames
// are processed. The event stream is one-way; mutations go through HTTP.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Websocket read error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Websocket write error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
