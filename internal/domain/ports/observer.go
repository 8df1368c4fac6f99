package ports

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeAttempt describes a charge or refund attempt as it starts.
type ChargeAttempt struct {
	Flow      string // "charge_card", "charge_profile", "refund"
	InvoiceID int64
	RefID     string
	Amount    decimal.Decimal
}

// GatewayExchange describes a completed gateway round trip.
type GatewayExchange struct {
	Flow     string
	RefID    string
	Outcome  Outcome
	Code     string
	Duration time.Duration
}

// Reconciliation describes the committed local state change after an
// approved charge.
type Reconciliation struct {
	InvoiceID     int64
	TransactionID string
	GatewayTxnID  string
	Amount        decimal.Decimal
}

// PaymentObserver receives structured events from the payment flows. Tests
// assert on events instead of matching log output; production wires the
// prometheus+zap implementation in pkg/observability.
type PaymentObserver interface {
	AttemptStarted(attempt ChargeAttempt)
	GatewayResponded(exchange GatewayExchange)
	ReconciliationCommitted(rec Reconciliation)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) AttemptStarted(ChargeAttempt)           {}
func (NopObserver) GatewayResponded(GatewayExchange)       {}
func (NopObserver) ReconciliationCommitted(Reconciliation) {}
