package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AssetReceivedAck is the fixed acknowledgement a recipient must return from
// its receive hook for an asset transfer to complete. Any other value makes
// the registry reject the transfer.
const AssetReceivedAck = "asset-received"

// AssetRegistry is the capability exposed by the external asset-issuing
// registry. Minting and approval management belong to the collaborator; the
// engine only queries ownership/approval and moves custody.
type AssetRegistry interface {
	OwnerOf(ctx context.Context, assetID string) (Address, error)
	IsApproved(ctx context.Context, assetID string, operator Address) (bool, error)
	// Transfer moves custody of assetID from `from` to `to` on behalf of
	// `operator`. It fails if operator is neither the owner nor approved,
	// and if the recipient's receive hook does not acknowledge.
	Transfer(ctx context.Context, operator, from, to Address, assetID string) error
}

// AssetReceiver is the receive hook the engine implements so a registry can
// hand it custody of an asset.
type AssetReceiver interface {
	OnAssetReceived(ctx context.Context, operator, from Address, assetID string) (string, error)
}

// Treasury is the value-transfer substrate. Collect models value attached
// atomically to a call (it moves funds from the caller into engine custody);
// Pay pushes custodied value out and may fail if the recipient rejects it.
type Treasury interface {
	Collect(ctx context.Context, from Address, amount decimal.Decimal) error
	Pay(ctx context.Context, to Address, amount decimal.Decimal) error
}

// Notifier receives one Event per committed state transition.
type Notifier interface {
	Publish(event Event)
}

// SettlementArchive is the permanent historical record kept outside the
// engine's in-memory state. Implementations must be side-effect free on the
// engine; write failures are the caller's problem to log, never to unwind.
type SettlementArchive interface {
	SaveAuction(ctx context.Context, auction *Auction) error
	SaveBid(ctx context.Context, bid *Bid) error
	SaveSettlement(ctx context.Context, auctionID uint64, winner Address, amount decimal.Decimal, at time.Time) error
	SaveWithdrawal(ctx context.Context, party Address, amount decimal.Decimal, at time.Time) error
}
