package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes charge records from refund records
type TransactionKind string

const (
	TransactionKindCharge TransactionKind = "charge"
	TransactionKindRefund TransactionKind = "refund"
)

// Transaction is the audit record of a gateway charge or refund. It is
// written before the invoice mutation so it is the source of truth for
// reconciliation if the process dies mid-sequence; invoice_id plus
// gateway_transaction_id form the correlation key.
type Transaction struct {
	ID               string // uuid
	InvoiceID        int64
	ContactID        int64
	SalespersonID    int64
	Kind             TransactionKind
	RefID            string // per-attempt gateway correlation id, unique
	CardNumberMasked string
	Amount           decimal.Decimal
	GatewayTxnID     string
	ResponseCode     string
	ResponseMessage  string
	RequestPayload   []byte // gateway request scrubbed of card data and credentials
	ResponsePayload  []byte // raw gateway response body
	CreatedAt        time.Time
}
