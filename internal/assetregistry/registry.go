// Package assetregistry is the asset-issuing collaborator: an in-memory
// registry of non-fungible assets with mint, approval, ownership query and
// custody transfer. The auction engine consumes it through the
// domain.AssetRegistry capability and never touches minting or approvals.
package assetregistry

import (
	"context"
	"errors"
	"sync"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

var (
	ErrAssetNotFound      = errors.New("asset not found in registry")
	ErrAssetAlreadyMinted = errors.New("asset already minted")
	ErrNotAssetOwner      = errors.New("from address does not own the asset")
	ErrNotApproved        = errors.New("operator is not approved for the asset")
	ErrTransferRejected   = errors.New("recipient rejected the asset transfer")
)

// Registry is a minimal in-memory asset registry. Recipients registered as
// receivers get the receive-hook handshake: a transfer only completes when
// the hook returns domain.AssetReceivedAck.
type Registry struct {
	mu        sync.Mutex
	owners    map[string]domain.Address
	approvals map[string]domain.Address
	receivers map[domain.Address]domain.AssetReceiver
}

func New() *Registry {
	return &Registry{
		owners:    make(map[string]domain.Address),
		approvals: make(map[string]domain.Address),
		receivers: make(map[domain.Address]domain.AssetReceiver),
	}
}

// Mint creates a new asset owned by the given address.
func (r *Registry) Mint(assetID string, owner domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[assetID]; ok {
		return ErrAssetAlreadyMinted
	}
	r.owners[assetID] = owner
	log.Info("Asset minted",
		zap.String("assetID", assetID),
		zap.String("owner", string(owner)),
	)
	return nil
}

// Approve authorizes operator to transfer the asset on the owner's behalf.
// Only the current owner may approve.
func (r *Registry) Approve(assetID string, owner, operator domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.owners[assetID]
	if !ok {
		return ErrAssetNotFound
	}
	if current != owner {
		return ErrNotAssetOwner
	}
	r.approvals[assetID] = operator
	return nil
}

// RegisterReceiver wires a receive hook for an address. Transfers to an
// address with no registered receiver complete without the handshake.
func (r *Registry) RegisterReceiver(addr domain.Address, receiver domain.AssetReceiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receivers[addr] = receiver
}

// OwnerOf implements domain.AssetRegistry.
func (r *Registry) OwnerOf(ctx context.Context, assetID string) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[assetID]
	if !ok {
		return domain.NoAddress, ErrAssetNotFound
	}
	return owner, nil
}

// IsApproved implements domain.AssetRegistry.
func (r *Registry) IsApproved(ctx context.Context, assetID string, operator domain.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[assetID]; !ok {
		return false, ErrAssetNotFound
	}
	return r.approvals[assetID] == operator, nil
}

// Transfer implements domain.AssetRegistry. Custody moves only if operator
// is the owner or approved, and the recipient's receive hook (if any)
// acknowledges. Approval is consumed by the transfer.
func (r *Registry) Transfer(ctx context.Context, operator, from, to domain.Address, assetID string) error {
	r.mu.Lock()
	owner, ok := r.owners[assetID]
	if !ok {
		r.mu.Unlock()
		return ErrAssetNotFound
	}
	if owner != from {
		r.mu.Unlock()
		return ErrNotAssetOwner
	}
	if operator != owner && r.approvals[assetID] != operator {
		r.mu.Unlock()
		return ErrNotApproved
	}
	receiver := r.receivers[to]
	r.mu.Unlock()

	// Hook runs outside the registry lock: recipients may call back into
	// the registry (or anything else) while deciding.
	if receiver != nil {
		ack, err := receiver.OnAssetReceived(ctx, operator, from, assetID)
		if err != nil || ack != domain.AssetReceivedAck {
			log.Warn("Asset transfer rejected by recipient hook",
				zap.String("assetID", assetID),
				zap.String("to", string(to)),
				zap.Error(err),
			)
			if err != nil {
				return err
			}
			return ErrTransferRejected
		}
	}

	r.mu.Lock()
	r.owners[assetID] = to
	delete(r.approvals, assetID)
	r.mu.Unlock()

	log.Info("Asset custody transferred",
		zap.String("assetID", assetID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("operator", string(operator)),
	)
	return nil
}
