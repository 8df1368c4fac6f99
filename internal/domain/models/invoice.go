package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice is the billing record a charge reconciles against. Once the status
// reaches paid no further charge may be attempted; the transition to paid is
// performed with a conditional update so concurrent attempts cannot both
// succeed.
type Invoice struct {
	ID                int64
	InvoiceNumber     string
	Status            InvoiceStatus
	TotalAmount       decimal.Decimal
	ContactID         int64
	SalespersonID     int64
	CustomerNote      string
	CardNumberMasked  string
	GatewayTxnID      string
	PaymentProfileRef int64 // local payment_profiles row referenced for profile charges; 0 when unset
	AppointmentID     int64 // linked appointment; 0 when unset
	UpdatedAt         time.Time
}

// AppointmentStatus represents the scheduling state of a linked appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment is the calendar record optionally linked to an invoice. A paid
// invoice completes its appointment only when the scheduled end time has
// already passed.
type Appointment struct {
	ID     int64
	Status AppointmentStatus
	EndAt  time.Time
}
