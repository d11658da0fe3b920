package models

import id "ayuda/pkg/domain"

// ItemResult is the outcome of a single-item operation, including the case
// status it left behind.
type ItemResult struct {
	Item          *CaseItem
	CaseNumber    string
	CaseStatus    CaseStatus
	StatusChanged bool

	// MovementID is set when a fulfillment debited stock.
	MovementID *id.MovementID
	// StockSkipped is set when a best-effort fulfillment delivered without
	// a debit.
	StockSkipped bool
}
