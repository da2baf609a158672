package domain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// EngineConfig carries the engine's identity and policy knobs. Zero values
// fall back to sane defaults.
type EngineConfig struct {
	// EngineAddress is the address under which the engine holds custodied
	// assets in registries and custodied value in the treasury.
	EngineAddress Address
	MinDuration   time.Duration
	MaxDuration   time.Duration
	// Now is the ambient clock; injectable for tests.
	Now func() time.Time
}

// Engine owns the append-only auction list, the per-auction bidding state
// machine, the withdrawable ledger, and the custody handshake with the
// external asset registries and the treasury.
//
// Mutating entry points (Deposit, Bid, End, Finalize, Withdraw) are
// serialized by a single operation-in-progress flag: while one of them is on
// the call stack — including while it waits on an external registry or
// treasury call — any other mutating call fails with
// ErrOperationInProgress. Effects are committed before interactions and
// rolled back on interaction failure, so a collaborator that calls back into
// a read-only query observes only fully-committed state, never a
// half-applied bid or settlement.
type Engine struct {
	addr        Address
	treasury    Treasury
	notifier    Notifier
	now         func() time.Time
	minDuration time.Duration
	maxDuration time.Duration

	// busy is the reentrancy guard; mu protects the state below and is
	// never held across an external call.
	busy atomic.Bool
	mu   sync.Mutex

	auctions []*Auction
	ledger   map[Address]decimal.Decimal
}

// NewEngine builds an engine around the given treasury. notifier may be nil.
func NewEngine(treasury Treasury, notifier Notifier, cfg EngineConfig) *Engine {
	if cfg.EngineAddress == NoAddress {
		cfg.EngineAddress = "auction-engine"
	}
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultMaxDuration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		addr:        cfg.EngineAddress,
		treasury:    treasury,
		notifier:    notifier,
		now:         cfg.Now,
		minDuration: cfg.MinDuration,
		maxDuration: cfg.MaxDuration,
		ledger:      make(map[Address]decimal.Decimal),
	}
}

// Address returns the engine's own custody address.
func (e *Engine) Address() Address {
	return e.addr
}

// acquire trips when any mutating operation is already in flight, whether on
// this call stack (a collaborator calling back in) or on another goroutine.
func (e *Engine) acquire() error {
	if !e.busy.CompareAndSwap(false, true) {
		log.Warn("Engine call rejected: operation already in progress")
		return ErrOperationInProgress
	}
	return nil
}

// release must run on every exit path of a mutating operation.
func (e *Engine) release() {
	e.busy.Store(false)
}

// Deposit pulls custody of the asset into the engine and opens an auction.
// The registry transfer runs first: if it fails (not owner, not approved,
// hook rejected) the error surfaces unchanged and no record is created.
// Returns a snapshot of the new auction record.
func (e *Engine) Deposit(ctx context.Context, registry AssetRegistry, assetID string, seller Address, reservePrice decimal.Decimal, duration time.Duration) (*Auction, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	if duration < e.minDuration {
		log.Warn("Deposit rejected: duration too short",
			zap.String("assetID", assetID),
			zap.String("seller", string(seller)),
			zap.Duration("duration", duration),
			zap.Duration("minDuration", e.minDuration),
		)
		return nil, ErrDurationTooShort
	}
	if duration > e.maxDuration {
		duration = e.maxDuration
	}
	if reservePrice.IsNegative() {
		return nil, ErrInvalidReservePrice
	}

	if err := registry.Transfer(ctx, e.addr, seller, e.addr, assetID); err != nil {
		log.Warn("Deposit rejected: registry refused custody transfer",
			zap.String("assetID", assetID),
			zap.String("seller", string(seller)),
			zap.Error(err),
		)
		return nil, err
	}

	now := e.now()
	auction := &Auction{
		Registry:         registry,
		AssetID:          assetID,
		Seller:           seller,
		ReservePrice:     reservePrice,
		CurrentBidAmount: decimal.Zero,
		StartTime:        now,
		EndTime:          now.Add(duration),
	}

	e.mu.Lock()
	auction.ID = uint64(len(e.auctions))
	e.auctions = append(e.auctions, auction)
	snapshot := *auction
	e.mu.Unlock()

	e.publish(Event{
		Type:      EventDeposited,
		AuctionID: snapshot.ID,
		Seller:    seller,
		Amount:    reservePrice,
		At:        now,
	})
	log.Info("Asset deposited, auction opened",
		zap.Uint64("auctionID", snapshot.ID),
		zap.String("assetID", assetID),
		zap.String("seller", string(seller)),
		zap.String("reservePrice", reservePrice.String()),
		zap.Time("endTime", snapshot.EndTime),
	)
	return &snapshot, nil
}

// Bid places a value-bearing bid on an open auction. The amount is collected
// from the bidder through the treasury atomically with the call; on any gate
// or collection failure nothing is mutated. A superseded bidder's amount is
// credited to the withdrawable ledger before the standing-bid fields change.
func (e *Engine) Bid(ctx context.Context, auctionID uint64, bidder Address, amount decimal.Decimal) (*Bid, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	e.mu.Lock()
	auction, err := e.lookup(auctionID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	now := e.now()
	switch {
	case auction.Ended:
		err = ErrAuctionEnded
	case now.After(auction.EndTime):
		err = ErrAuctionExpired
	case bidder == auction.Seller:
		err = ErrSellerCannotBid
	// The bid-too-low gate only applies once a prior bidder exists; the
	// reserve gate always applies, so a first bid exactly at the reserve
	// is accepted.
	case auction.HasStandingBid() && amount.LessThanOrEqual(auction.CurrentBidAmount):
		err = ErrBidTooLow
	case amount.LessThan(auction.ReservePrice):
		err = ErrReservePriceNotMet
	}
	e.mu.Unlock()
	if err != nil {
		log.Warn("Bid rejected",
			zap.Uint64("auctionID", auctionID),
			zap.String("bidder", string(bidder)),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	// Interaction: the attached value moves into custody. The busy flag
	// still excludes other mutators, so the gates above remain valid.
	if err := e.treasury.Collect(ctx, bidder, amount); err != nil {
		log.Warn("Bid rejected: value collection failed",
			zap.Uint64("auctionID", auctionID),
			zap.String("bidder", string(bidder)),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	e.mu.Lock()
	var superseded *Event
	if auction.HasStandingBid() {
		e.credit(auction.CurrentBidder, auction.CurrentBidAmount)
		superseded = &Event{
			Type:      EventRefundQueued,
			AuctionID: auction.ID,
			Party:     auction.CurrentBidder,
			Amount:    auction.CurrentBidAmount,
			At:        now,
		}
	}
	auction.CurrentBidder = bidder
	auction.CurrentBidAmount = amount
	e.mu.Unlock()

	if superseded != nil {
		e.publish(*superseded)
	}
	bid := NewBid(uuid.New(), auction.ID, bidder, amount, now)
	e.publish(Event{
		Type:      EventBidPlaced,
		AuctionID: auction.ID,
		Bidder:    bidder,
		Amount:    amount,
		At:        now,
	})
	log.Info("Bid placed",
		zap.Uint64("auctionID", auction.ID),
		zap.String("bidID", bid.ID.String()),
		zap.String("bidder", string(bidder)),
		zap.String("amount", amount.String()),
	)
	return bid, nil
}

// End is the seller-initiated early close. It is gated on the auction still
// being open: after expiry any party settles through Finalize instead.
func (e *Engine) End(ctx context.Context, auctionID uint64, caller Address) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	e.mu.Lock()
	auction, err := e.lookup(auctionID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	switch {
	case auction.Ended:
		err = ErrAuctionEnded
	case e.now().After(auction.EndTime):
		err = ErrAuctionExpired
	case caller != auction.Seller:
		err = ErrNotSeller
	case !auction.HasStandingBid() || auction.CurrentBidAmount.LessThan(auction.ReservePrice):
		err = ErrReservePriceNotMet
	}
	e.mu.Unlock()
	if err != nil {
		log.Warn("End rejected",
			zap.Uint64("auctionID", auctionID),
			zap.String("caller", string(caller)),
			zap.Error(err),
		)
		return err
	}
	return e.settle(ctx, auction)
}

// Finalize closes an expired auction; any party may call it. With the
// reserve met it settles like End; otherwise the asset goes back to the
// seller and a below-reserve standing bid is credited back to its bidder.
func (e *Engine) Finalize(ctx context.Context, auctionID uint64) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	e.mu.Lock()
	auction, err := e.lookup(auctionID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	now := e.now()
	won := false
	switch {
	case auction.Ended:
		err = ErrAuctionEnded
	case !now.After(auction.EndTime):
		err = ErrAuctionNotExpired
	default:
		won = auction.HasStandingBid() && auction.CurrentBidAmount.GreaterThanOrEqual(auction.ReservePrice)
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if won {
		return e.settle(ctx, auction)
	}

	// No winner. Effects before the external transfer so a rollback can
	// undo exactly what was applied.
	e.mu.Lock()
	auction.Ended = true
	refunded := auction.HasStandingBid()
	if refunded {
		e.credit(auction.CurrentBidder, auction.CurrentBidAmount)
	}
	e.mu.Unlock()

	if err := auction.Registry.Transfer(ctx, e.addr, e.addr, auction.Seller, auction.AssetID); err != nil {
		e.mu.Lock()
		auction.Ended = false
		if refunded {
			e.debit(auction.CurrentBidder, auction.CurrentBidAmount)
		}
		e.mu.Unlock()
		log.Error("Finalize failed: could not return asset to seller",
			zap.Uint64("auctionID", auction.ID),
			zap.String("assetID", auction.AssetID),
			zap.Error(err),
		)
		return err
	}

	if refunded {
		e.publish(Event{
			Type:      EventRefundQueued,
			AuctionID: auction.ID,
			Party:     auction.CurrentBidder,
			Amount:    auction.CurrentBidAmount,
			At:        now,
		})
	}
	e.publish(Event{
		Type:      EventAuctionEnded,
		AuctionID: auction.ID,
		Seller:    auction.Seller,
		Amount:    decimal.Zero,
		At:        now,
	})
	log.Info("Auction finalized without winner",
		zap.Uint64("auctionID", auction.ID),
		zap.Bool("bidRefunded", refunded),
	)
	return nil
}

// settle commits a won auction: the terminal flag and the seller's ledger
// credit are applied before the external asset transfer, and both are rolled
// back if the transfer fails. The seller leg is pull-style so an
// uncooperative seller address cannot block settlement.
func (e *Engine) settle(ctx context.Context, auction *Auction) error {
	e.mu.Lock()
	auction.Ended = true
	e.credit(auction.Seller, auction.CurrentBidAmount)
	winner := auction.CurrentBidder
	amount := auction.CurrentBidAmount
	e.mu.Unlock()

	if err := auction.Registry.Transfer(ctx, e.addr, e.addr, winner, auction.AssetID); err != nil {
		e.mu.Lock()
		auction.Ended = false
		e.debit(auction.Seller, amount)
		e.mu.Unlock()
		log.Error("Settlement failed: asset transfer to winner rejected",
			zap.Uint64("auctionID", auction.ID),
			zap.String("assetID", auction.AssetID),
			zap.String("winner", string(winner)),
			zap.Error(err),
		)
		return err
	}

	e.publish(Event{
		Type:      EventAuctionEnded,
		AuctionID: auction.ID,
		Seller:    auction.Seller,
		Bidder:    winner,
		Amount:    amount,
		At:        e.now(),
	})
	log.Info("Auction settled",
		zap.Uint64("auctionID", auction.ID),
		zap.String("winner", string(winner)),
		zap.String("amount", amount.String()),
	)
	return nil
}

// Withdraw pays out the caller's full accumulated ledger balance. The entry
// is zeroed before the treasury push; a failed push restores it, so funds
// are never logically credited with the ledger already zeroed.
func (e *Engine) Withdraw(ctx context.Context, caller Address) (decimal.Decimal, error) {
	if err := e.acquire(); err != nil {
		return decimal.Zero, err
	}
	defer e.release()

	e.mu.Lock()
	amount, ok := e.ledger[caller]
	if !ok || amount.IsZero() {
		e.mu.Unlock()
		return decimal.Zero, ErrNothingToWithdraw
	}
	delete(e.ledger, caller)
	e.mu.Unlock()

	if err := e.treasury.Pay(ctx, caller, amount); err != nil {
		e.mu.Lock()
		e.credit(caller, amount)
		e.mu.Unlock()
		log.Error("Withdraw failed: treasury push rejected, ledger restored",
			zap.String("caller", string(caller)),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return decimal.Zero, err
	}

	e.publish(Event{
		Type:   EventWithdrawn,
		Party:  caller,
		Amount: amount,
		At:     e.now(),
	})
	log.Info("Funds withdrawn",
		zap.String("caller", string(caller)),
		zap.String("amount", amount.String()),
	)
	return amount, nil
}

// OnAssetReceived implements the registry receive hook. The engine accepts
// any incoming asset unconditionally.
func (e *Engine) OnAssetReceived(ctx context.Context, operator, from Address, assetID string) (string, error) {
	return AssetReceivedAck, nil
}

// GetAuction returns a snapshot of one auction record.
func (e *Engine) GetAuction(auctionID uint64) (*Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	auction, err := e.lookup(auctionID)
	if err != nil {
		return nil, err
	}
	snapshot := *auction
	return &snapshot, nil
}

// Auctions returns snapshots of every auction record, open and ended.
func (e *Engine) Auctions() []Auction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Auction, 0, len(e.auctions))
	for _, a := range e.auctions {
		out = append(out, *a)
	}
	return out
}

// OpenAuctions returns the identities of all non-ended auctions whose
// bidding window is still open.
func (e *Engine) OpenAuctions() []uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	out := make([]uint64, 0, len(e.auctions))
	for _, a := range e.auctions {
		if a.Open(now) {
			out = append(out, a.ID)
		}
	}
	return out
}

// PendingWithdrawal returns a party's accumulated withdrawable balance.
func (e *Engine) PendingWithdrawal(party Address) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	if amount, ok := e.ledger[party]; ok {
		return amount
	}
	return decimal.Zero
}

// OutstandingLiabilities sums every open standing bid and every unwithdrawn
// ledger credit: the engine's custodied value must always cover it.
func (e *Engine) OutstandingLiabilities() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := decimal.Zero
	for _, a := range e.auctions {
		if !a.Ended && a.HasStandingBid() {
			total = total.Add(a.CurrentBidAmount)
		}
	}
	for _, amount := range e.ledger {
		total = total.Add(amount)
	}
	return total
}

// lookup requires e.mu to be held.
func (e *Engine) lookup(auctionID uint64) (*Auction, error) {
	if auctionID >= uint64(len(e.auctions)) {
		return nil, ErrAuctionNotFound
	}
	return e.auctions[auctionID], nil
}

// credit and debit require e.mu to be held.
func (e *Engine) credit(party Address, amount decimal.Decimal) {
	e.ledger[party] = e.ledger[party].Add(amount)
}

func (e *Engine) debit(party Address, amount decimal.Decimal) {
	remaining := e.ledger[party].Sub(amount)
	if remaining.IsZero() {
		delete(e.ledger, party)
		return
	}
	e.ledger[party] = remaining
}

func (e *Engine) publish(event Event) {
	if e.notifier == nil {
		return
	}
	event.ID = uuid.New()
	e.notifier.Publish(event)
}
