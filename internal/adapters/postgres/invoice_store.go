package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// InvoiceStore implements ports.InvoiceStore
type InvoiceStore struct{}

// NewInvoiceStore creates a new invoice store
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{}
}

const getInvoiceByIDQuery = `
SELECT id, invoice_number, status, total_amount, contact_id, salesperson_id,
       customer_note, card_number_masked, gateway_transaction_id,
       payment_profile_id, appointment_id, updated_at
FROM invoices
WHERE id = $1`

// GetByID retrieves an invoice by its ID
func (s *InvoiceStore) GetByID(ctx context.Context, db ports.DBTX, id int64) (*models.Invoice, error) {
	var (
		invoice     models.Invoice
		amount      pgtype.Numeric
		note        pgtype.Text
		cardMasked  pgtype.Text
		gatewayTxn  pgtype.Text
		profileRef  pgtype.Int8
		appointment pgtype.Int8
	)

	err := db.QueryRow(ctx, getInvoiceByIDQuery, id).Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.Status,
		&amount,
		&invoice.ContactID,
		&invoice.SalespersonID,
		&note,
		&cardMasked,
		&gatewayTxn,
		&profileRef,
		&appointment,
		&invoice.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}

	invoice.TotalAmount, err = numericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert invoice amount: %w", err)
	}
	invoice.CustomerNote = note.String
	invoice.CardNumberMasked = cardMasked.String
	invoice.GatewayTxnID = gatewayTxn.String
	invoice.PaymentProfileRef = profileRef.Int64
	invoice.AppointmentID = appointment.Int64

	return &invoice, nil
}

const markInvoicePaidQuery = `
UPDATE invoices
SET status = 'paid',
    card_number_masked = $2,
    gateway_transaction_id = $3,
    updated_at = now()
WHERE id = $1 AND status <> 'paid'`

// MarkPaid transitions the invoice to paid as a single conditional update.
// Zero affected rows means another attempt won the race (or the id is gone).
func (s *InvoiceStore) MarkPaid(ctx context.Context, tx ports.DBTX, id int64, cardNumberMasked, gatewayTxnID string) error {
	tag, err := tx.Exec(ctx, markInvoicePaidQuery, id, nullText(cardNumberMasked), nullText(gatewayTxnID))
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyPaid
	}
	return nil
}

const setInvoicePaymentProfileQuery = `
UPDATE invoices
SET card_number_masked = $2,
    payment_profile_id = $3,
    updated_at = now()
WHERE id = $1`

// SetPaymentProfile records the masked card and the stored payment profile a
// later profile charge should use
func (s *InvoiceStore) SetPaymentProfile(ctx context.Context, db ports.DBTX, id int64, cardNumberMasked string, paymentProfileID int64) error {
	tag, err := db.Exec(ctx, setInvoicePaymentProfileQuery, id, nullText(cardNumberMasked), nullInt8(paymentProfileID))
	if err != nil {
		return fmt.Errorf("set invoice payment profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
