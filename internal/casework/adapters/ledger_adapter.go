package adapters

import (
	"context"

	"ayuda/internal/casework/ports"
	invmodels "ayuda/internal/inventory/models"
	invService "ayuda/internal/inventory/service"
	id "ayuda/pkg/domain"
)

// LedgerAdapter exposes the in-process stock ledger to the workflow. When
// the workflow runs on postgres the debit joins the fulfillment transaction
// through the context.
type LedgerAdapter struct {
	ledger *invService.Ledger
}

func NewLedgerAdapter(ledger *invService.Ledger) *LedgerAdapter {
	return &LedgerAdapter{ledger: ledger}
}

var _ ports.StockLedger = (*LedgerAdapter)(nil)

func (a *LedgerAdapter) DeliverItem(ctx context.Context, actorID id.UserID, supplyID id.SupplyID, itemID id.CaseItemID, quantity int64) (*ports.Delivery, error) {
	origin := itemID
	supply, movement, err := a.ledger.Debit(ctx, actorID, invmodels.DebitRequest{
		SupplyID:     supplyID,
		Quantity:     quantity,
		Reason:       invmodels.ReasonDelivery,
		Notes:        "case item " + itemID.String(),
		OriginItemID: &origin,
	})
	if err != nil {
		return nil, err
	}
	return &ports.Delivery{MovementID: movement.ID, StockAfter: supply.CurrentStock}, nil
}

// SupplyExists satisfies SupplyLookup for ReferenceAdapter.
func (a *LedgerAdapter) SupplyExists(ctx context.Context, supplyID id.SupplyID) error {
	_, err := a.ledger.Balance(ctx, supplyID)
	return err
}
