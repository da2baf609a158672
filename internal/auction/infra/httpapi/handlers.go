package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/assetregistry"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/application"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	wsinfra "github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/infra/websocket"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	sharedws "github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/websocket"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/treasury"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Handler exposes the auction module over HTTP and websocket. Caller
// identity is an explicit request field on every mutating route.
type Handler struct {
	service application.AuctionService
	hub     *sharedws.Hub
	ctx     context.Context
}

func NewHandler(ctx context.Context, service application.AuctionService, hub *sharedws.Hub) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		ctx:     ctx,
	}
}

// Register mounts all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/auctions", h.deposit)
	api.Get("/auctions", h.listAuctions)
	api.Get("/auctions/:id", h.getAuction)
	api.Post("/auctions/:id/bids", h.placeBid)
	api.Post("/auctions/:id/end", h.endAuction)
	api.Post("/auctions/:id/finalize", h.finalizeAuction)
	api.Post("/withdrawals", h.withdraw)
	api.Get("/parties/:address/withdrawable", h.pendingWithdrawal)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", fiberws.New(h.subscribe(func(*fiberws.Conn) string {
		return sharedws.LobbyTopic
	})))
	app.Get("/ws/auctions/:id", fiberws.New(h.subscribe(func(conn *fiberws.Conn) string {
		auctionID, err := strconv.ParseUint(conn.Params("id"), 10, 64)
		if err != nil {
			return ""
		}
		return wsinfra.AuctionTopic(auctionID)
	})))
}

type depositRequest struct {
	AssetID      string          `json:"asset_id"`
	Seller       string          `json:"seller"`
	ReservePrice decimal.Decimal `json:"reserve_price"`
	Duration     string          `json:"duration"`
}

func (h *Handler) deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		return badRequest(c, "invalid duration")
	}
	auction, err := h.service.Deposit(c.Context(), application.DepositAssetDTO{
		AssetID:      req.AssetID,
		Seller:       domain.Address(req.Seller),
		ReservePrice: req.ReservePrice,
		Duration:     duration,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"auction_id": auction.ID})
}

type bidRequest struct {
	Bidder string          `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) placeBid(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	var req bidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	bid, err := h.service.PlaceBid(c.Context(), application.PlaceBidDTO{
		AuctionID: auctionID,
		Bidder:    domain.Address(req.Bidder),
		Amount:    req.Amount,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"bid_id":     bid.ID,
		"auction_id": bid.AuctionID,
		"amount":     bid.Amount,
	})
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (h *Handler) endAuction(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	var req callerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.service.EndAuction(c.Context(), application.EndAuctionDTO{
		AuctionID: auctionID,
		Caller:    domain.Address(req.Caller),
	}); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) finalizeAuction(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	if err := h.service.FinalizeAuction(c.Context(), auctionID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) withdraw(c *fiber.Ctx) error {
	var req callerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount, err := h.service.Withdraw(c.Context(), domain.Address(req.Caller))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"withdrawn": amount})
}

func (h *Handler) listAuctions(c *fiber.Ctx) error {
	if c.QueryBool("open") {
		return c.JSON(fiber.Map{"open_auction_ids": h.service.OpenAuctionIDs()})
	}
	return c.JSON(h.service.ListAuctions())
}

func (h *Handler) getAuction(c *fiber.Ctx) error {
	auctionID, err := parseAuctionID(c)
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	auction, err := h.service.GetAuction(auctionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(auction)
}

func (h *Handler) pendingWithdrawal(c *fiber.Ctx) error {
	party := domain.Address(c.Params("address"))
	return c.JSON(fiber.Map{
		"party":        party,
		"withdrawable": h.service.PendingWithdrawal(party),
	})
}

// subscribe upgrades the connection and attaches it to the hub topic chosen
// by topicFor.
func (h *Handler) subscribe(topicFor func(*fiberws.Conn) string) func(*fiberws.Conn) {
	return func(conn *fiberws.Conn) {
		topic := topicFor(conn)
		if topic == "" {
			_ = conn.Close()
			return
		}
		client := &sharedws.Client{
			Hub:   h.hub,
			Conn:  conn,
			Send:  make(chan []byte, 256),
			Topic: topic,
			ID:    uuid.New().String(),
		}
		h.hub.RegisterClient(client)
		go client.WritePump(h.ctx)
		client.ReadPump(h.ctx)
	}
}

func parseAuctionID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps the error taxonomy onto status codes: policy violations and
// caller mistakes are 4xx with the cause in the body; collaborator transfer
// failures are 502.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrDurationTooShort),
		errors.Is(err, domain.ErrInvalidReservePrice),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrReservePriceNotMet),
		errors.Is(err, domain.ErrNothingToWithdraw),
		errors.Is(err, domain.ErrAuctionExpired),
		errors.Is(err, domain.ErrAuctionNotExpired),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, treasury.ErrInsufficientFunds):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrSellerCannotBid),
		errors.Is(err, domain.ErrNotSeller),
		errors.Is(err, assetregistry.ErrNotAssetOwner),
		errors.Is(err, assetregistry.ErrNotApproved):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrOperationInProgress):
		status = fiber.StatusConflict
	case errors.Is(err, assetregistry.ErrTransferRejected):
		status = fiber.StatusBadGateway
	}
	if status == fiber.StatusInternalServerError {
		log.Error("unhandled auction API error", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
