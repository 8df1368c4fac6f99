package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
)

// Wallet nonce descriptors understood by the gateway.
const (
	NonceDescriptorAcceptJS  = "COMMON.ACCEPT.INAPP.PAYMENT"
	NonceDescriptorApplePay  = "COMMON.APPLE.INAPP.PAYMENT"
	NonceDescriptorGooglePay = "COMMON.GOOGLE.INAPP.PAYMENT"
)

// Card is a raw card instrument.
type Card struct {
	Number          string
	ExpirationYear  string
	ExpirationMonth string
	CVV             string
}

// Expiration formats the card expiry the way the gateway expects (YYYY-MM).
func (c Card) Expiration() string {
	return c.ExpirationYear + "-" + c.ExpirationMonth
}

// Nonce is a tokenized one-time instrument (Accept.js, Apple Pay, Google Pay).
type Nonce struct {
	Descriptor string
	Value      string
}

// ProfileRef charges a previously stored customer/payment profile pair.
type ProfileRef struct {
	CustomerProfileID string
	PaymentProfileID  string
}

// PaymentInstrument is a tagged union: exactly one member must be set.
// Supplying none or more than one is an input error, caught before any
// network call.
type PaymentInstrument struct {
	Card    *Card
	Nonce   *Nonce
	Profile *ProfileRef
}

// Validate enforces the exactly-one-shape rule.
func (p PaymentInstrument) Validate() error {
	n := 0
	if p.Card != nil {
		n++
	}
	if p.Nonce != nil {
		n++
	}
	if p.Profile != nil {
		n++
	}
	switch n {
	case 0:
		return domain.ErrPaymentMethodMissing
	case 1:
		return nil
	default:
		return domain.ErrPaymentMethodUnknown
	}
}

// CustomerInfo identifies the payer on a transaction request.
type CustomerInfo struct {
	ID    string
	Email string
}

// ChargeRequest represents one authCaptureTransaction against the gateway.
type ChargeRequest struct {
	RefID         string
	Amount        decimal.Decimal
	Instrument    PaymentInstrument
	InvoiceNumber string
	Description   string
	BillTo        models.BillingInfo
	Customer      CustomerInfo
}

// RefundRequest represents a refundTransaction referencing a settled charge.
type RefundRequest struct {
	RefID            string
	Amount           decimal.Decimal
	RefTransID       string
	CardNumberMasked string
}

// CreateCustomerProfileRequest creates the gateway-side payer record.
type CreateCustomerProfileRequest struct {
	RefID              string
	MerchantCustomerID string
	Email              string
}

// CreatePaymentProfileRequest stores an instrument under a customer profile.
type CreatePaymentProfileRequest struct {
	CustomerProfileID string
	Instrument        PaymentInstrument
	BillTo            models.BillingInfo
}

// GetPaymentProfileRequest fetches a stored payment profile.
type GetPaymentProfileRequest struct {
	RefID             string
	CustomerProfileID string
	PaymentProfileID  string
}

// Outcome classifies a gateway response after both message levels have been
// interpreted. Transport failures are ordinary errors, not outcomes.
type Outcome string

const (
	// OutcomeApproved - wrapper Ok and no transaction-level errors
	OutcomeApproved Outcome = "approved"
	// OutcomeDeclined - the network processed the request and rejected the charge
	OutcomeDeclined Outcome = "declined"
	// OutcomeError - the request was rejected before card processing
	OutcomeError Outcome = "error"
)

// GatewayResult is the normalized result of a charge or refund call.
type GatewayResult struct {
	Outcome             Outcome
	GatewayTxnID        string
	AccountNumberMasked string
	Code                string
	Message             string

	// RawRequest is the request envelope scrubbed for persistence: no full
	// card number, no CVV, no merchant credential. RawResponse is the
	// response body as received.
	RawRequest  []byte
	RawResponse []byte
}

// Approved reports whether the charge settled.
func (r *GatewayResult) Approved() bool { return r.Outcome == OutcomeApproved }

// ProfileResult is the normalized result of a profile management call.
// Duplicate is set for the one error code ("duplicate profile") that profile
// creation treats as non-fatal.
type ProfileResult struct {
	Outcome           Outcome
	CustomerProfileID string
	PaymentProfileID  string
	CardNumberMasked  string
	Code              string
	Message           string
	Duplicate         bool
	RawResponse       []byte
}

// PaymentGateway is the card network client. Every call is synchronous,
// carries a caller-minted refId, and is bounded by the adapter's own timeout.
// Transport failures return a GATEWAY_TRANSPORT domain error with no partial
// side effects; declines and gateway rejections come back in the result.
type PaymentGateway interface {
	Charge(ctx context.Context, auth models.MerchantCredential, req *ChargeRequest) (*GatewayResult, error)
	Refund(ctx context.Context, auth models.MerchantCredential, req *RefundRequest) (*GatewayResult, error)
	CreateCustomerProfile(ctx context.Context, auth models.MerchantCredential, req *CreateCustomerProfileRequest) (*ProfileResult, error)
	CreatePaymentProfile(ctx context.Context, auth models.MerchantCredential, req *CreatePaymentProfileRequest) (*ProfileResult, error)
	GetPaymentProfile(ctx context.Context, auth models.MerchantCredential, req *GetPaymentProfileRequest) (*ProfileResult, error)
}
