package refund

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
	"github.com/kevin07696/payment-orchestrator/internal/services/authorization"
)

// Receipt is the caller-facing result of a settled refund.
type Receipt struct {
	TransactionID    string
	GatewayTxnID     string
	CardNumberMasked string
	Amount           decimal.Decimal
}

// Processor refunds settled charges. A refund references the original
// transaction's gateway id and masked card; the invoice itself is never
// reverted, the refund lives as its own transaction record.
type Processor struct {
	db           ports.DBPort
	transactions ports.TransactionRepository
	gateway      ports.PaymentGateway
	resolver     *authorization.MerchantResolver
	observer     ports.PaymentObserver
	logger       *zap.Logger
	now          func() time.Time
}

// NewProcessor creates a new refund processor
func NewProcessor(
	db ports.DBPort,
	transactions ports.TransactionRepository,
	gateway ports.PaymentGateway,
	resolver *authorization.MerchantResolver,
	observer ports.PaymentObserver,
	logger *zap.Logger,
) *Processor {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &Processor{
		db:           db,
		transactions: transactions,
		gateway:      gateway,
		resolver:     resolver,
		observer:     observer,
		logger:       logger,
		now:          time.Now,
	}
}

// Refund refunds up to the originally charged amount against the
// transaction's settled gateway charge.
func (p *Processor) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (*Receipt, error) {
	db := p.db.GetDB()

	original, err := p.transactions.GetByID(ctx, db, transactionID)
	if err != nil {
		return nil, err
	}

	if !amount.IsPositive() {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid,
			"refund amount must be positive")
	}
	// Bound check happens before any network call.
	if amount.GreaterThan(original.Amount) {
		return nil, domain.ErrAmountExceeds.
			WithDetail("transaction_id", transactionID).
			WithDetail("charged_amount", original.Amount.String())
	}

	credential, err := p.resolver.Resolve(ctx, db, original.SalespersonID)
	if err != nil {
		return nil, err
	}

	refID := models.MintRefID()
	p.observer.AttemptStarted(ports.ChargeAttempt{
		Flow:      "refund",
		InvoiceID: original.InvoiceID,
		RefID:     refID,
		Amount:    amount,
	})

	start := p.now()
	result, err := p.gateway.Refund(ctx, credential, &ports.RefundRequest{
		RefID:            refID,
		Amount:           amount,
		RefTransID:       original.GatewayTxnID,
		CardNumberMasked: original.CardNumberMasked,
	})
	if err != nil {
		p.observer.GatewayResponded(ports.GatewayExchange{
			Flow: "refund", RefID: refID, Outcome: ports.OutcomeError, Duration: p.now().Sub(start),
		})
		return nil, err
	}

	p.observer.GatewayResponded(ports.GatewayExchange{
		Flow:     "refund",
		RefID:    refID,
		Outcome:  result.Outcome,
		Code:     result.Code,
		Duration: p.now().Sub(start),
	})

	if !result.Approved() {
		p.logger.Warn("refund not approved",
			zap.String("transaction_id", transactionID),
			zap.String("ref_id", refID),
			zap.String("outcome", string(result.Outcome)),
			zap.String("code", result.Code))

		code := domain.ErrorCodeGatewayError
		if result.Outcome == ports.OutcomeDeclined {
			code = domain.ErrorCodeGatewayDeclined
		}
		return nil, domain.GatewayFailure(code, result.Code, result.Message)
	}

	record := &models.Transaction{
		ID:               uuid.New().String(),
		InvoiceID:        original.InvoiceID,
		ContactID:        original.ContactID,
		SalespersonID:    original.SalespersonID,
		Kind:             models.TransactionKindRefund,
		RefID:            refID,
		CardNumberMasked: original.CardNumberMasked,
		Amount:           amount,
		GatewayTxnID:     result.GatewayTxnID,
		ResponseCode:     result.Code,
		ResponseMessage:  result.Message,
		RequestPayload:   result.RawRequest,
		ResponsePayload:  result.RawResponse,
		CreatedAt:        p.now(),
	}

	err = p.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return p.transactions.Create(ctx, tx, record)
	})
	if err != nil {
		p.logger.Error("refund record write failed after gateway approval",
			zap.String("transaction_id", transactionID),
			zap.String("gateway_transaction_id", result.GatewayTxnID),
			zap.Error(err))
		return nil, err
	}

	p.observer.ReconciliationCommitted(ports.Reconciliation{
		InvoiceID:     original.InvoiceID,
		TransactionID: record.ID,
		GatewayTxnID:  result.GatewayTxnID,
		Amount:        amount,
	})

	p.logger.Info("refund settled",
		zap.String("original_transaction_id", transactionID),
		zap.String("refund_transaction_id", record.ID),
		zap.String("card_number_masked", original.CardNumberMasked))

	return &Receipt{
		TransactionID:    record.ID,
		GatewayTxnID:     result.GatewayTxnID,
		CardNumberMasked: original.CardNumberMasked,
		Amount:           amount,
	}, nil
}
