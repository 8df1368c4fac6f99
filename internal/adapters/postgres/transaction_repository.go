package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// TransactionRepository implements ports.TransactionRepository
type TransactionRepository struct{}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

const createTransactionQuery = `
INSERT INTO transactions (
    id, invoice_id, contact_id, salesperson_id, kind, ref_id,
    card_number_masked, amount, gateway_transaction_id,
    response_code, response_message, request_payload, response_payload
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// Create persists a gateway audit record
func (r *TransactionRepository) Create(ctx context.Context, tx ports.DBTX, transaction *models.Transaction) error {
	txID, err := uuid.Parse(transaction.ID)
	if err != nil {
		return fmt.Errorf("invalid transaction ID: %w", err)
	}

	amount, err := decimalToNumeric(transaction.Amount)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, createTransactionQuery,
		txID,
		transaction.InvoiceID,
		transaction.ContactID,
		transaction.SalespersonID,
		string(transaction.Kind),
		transaction.RefID,
		nullText(transaction.CardNumberMasked),
		amount,
		nullText(transaction.GatewayTxnID),
		nullText(transaction.ResponseCode),
		nullText(transaction.ResponseMessage),
		transaction.RequestPayload,
		transaction.ResponsePayload,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

const getTransactionByIDQuery = `
SELECT id, invoice_id, contact_id, salesperson_id, kind, ref_id,
       card_number_masked, amount, gateway_transaction_id,
       response_code, response_message, request_payload, response_payload,
       created_at
FROM transactions
WHERE id = $1`

// GetByID retrieves a transaction audit record by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Transaction, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrTxnNotFound
	}

	var (
		rowID      uuid.UUID
		txn        models.Transaction
		cardMasked pgtype.Text
		amount     pgtype.Numeric
		gatewayTxn pgtype.Text
		respCode   pgtype.Text
		respMsg    pgtype.Text
	)

	err = db.QueryRow(ctx, getTransactionByIDQuery, txID).Scan(
		&rowID,
		&txn.InvoiceID,
		&txn.ContactID,
		&txn.SalespersonID,
		&txn.Kind,
		&txn.RefID,
		&cardMasked,
		&amount,
		&gatewayTxn,
		&respCode,
		&respMsg,
		&txn.RequestPayload,
		&txn.ResponsePayload,
		&txn.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTxnNotFound
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}

	txn.ID = rowID.String()
	txn.CardNumberMasked = cardMasked.String
	txn.GatewayTxnID = gatewayTxn.String
	txn.ResponseCode = respCode.String
	txn.ResponseMessage = respMsg.String

	txn.Amount, err = numericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert transaction amount: %w", err)
	}

	return &txn, nil
}
