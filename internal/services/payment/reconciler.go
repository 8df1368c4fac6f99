package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
	"github.com/kevin07696/payment-orchestrator/internal/services/authorization"
)

// Receipt is the caller-facing result of a settled charge.
type Receipt struct {
	TransactionID    string
	GatewayTxnID     string
	CardNumberMasked string
	Amount           decimal.Decimal
	Code             string
	Message          string
}

// TransactionReconciler drives a charge end to end: guard chain, gateway
// call, then the transaction record and the invoice paid transition committed
// together. Attempts for the same invoice are serialized in-process and the
// paid transition is a compare-and-set, so a lost race surfaces as
// CONFLICT_ALREADY_PAID instead of a double charge.
type TransactionReconciler struct {
	db           ports.DBPort
	invoices     ports.InvoiceStore
	directory    ports.DirectoryStore
	appointments ports.AppointmentStore
	transactions ports.TransactionRepository
	profiles     ports.ProfileRepository
	gateway      ports.PaymentGateway
	resolver     *authorization.MerchantResolver
	observer     ports.PaymentObserver
	validate     *validator.Validate
	locks        *invoiceLocks
	logger       *zap.Logger
	now          func() time.Time
}

// NewTransactionReconciler creates a new reconciler
func NewTransactionReconciler(
	db ports.DBPort,
	invoices ports.InvoiceStore,
	directory ports.DirectoryStore,
	appointments ports.AppointmentStore,
	transactions ports.TransactionRepository,
	profiles ports.ProfileRepository,
	gateway ports.PaymentGateway,
	resolver *authorization.MerchantResolver,
	observer ports.PaymentObserver,
	logger *zap.Logger,
) *TransactionReconciler {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &TransactionReconciler{
		db:           db,
		invoices:     invoices,
		directory:    directory,
		appointments: appointments,
		transactions: transactions,
		profiles:     profiles,
		gateway:      gateway,
		resolver:     resolver,
		observer:     observer,
		validate:     newValidator(),
		locks:        newInvoiceLocks(),
		logger:       logger,
		now:          time.Now,
	}
}

// ChargeCard charges an invoice with a raw card.
func (t *TransactionReconciler) ChargeCard(ctx context.Context, invoiceID int64, card CardPayment) (*Receipt, error) {
	if err := checkPayload(t.validate, card); err != nil {
		return nil, err
	}

	instrument := ports.PaymentInstrument{Card: &ports.Card{
		Number:          card.CardNumber,
		ExpirationYear:  card.ExpirationYear,
		ExpirationMonth: card.ExpirationMonth,
		CVV:             card.CVV,
	}}
	return t.charge(ctx, "charge_card", invoiceID, func(*models.Invoice) (ports.PaymentInstrument, error) {
		return instrument, nil
	})
}

// ChargeApplePay charges an invoice with an Apple Pay wallet token.
func (t *TransactionReconciler) ChargeApplePay(ctx context.Context, invoiceID int64, wallet WalletPayment) (*Receipt, error) {
	return t.chargeWallet(ctx, "charge_apple_pay", invoiceID, ports.NonceDescriptorApplePay, wallet)
}

// ChargeGooglePay charges an invoice with a Google Pay wallet token.
func (t *TransactionReconciler) ChargeGooglePay(ctx context.Context, invoiceID int64, wallet WalletPayment) (*Receipt, error) {
	return t.chargeWallet(ctx, "charge_google_pay", invoiceID, ports.NonceDescriptorGooglePay, wallet)
}

func (t *TransactionReconciler) chargeWallet(ctx context.Context, flow string, invoiceID int64, descriptor string, wallet WalletPayment) (*Receipt, error) {
	if err := checkPayload(t.validate, wallet); err != nil {
		return nil, err
	}

	instrument := ports.PaymentInstrument{Nonce: &ports.Nonce{
		Descriptor: descriptor,
		Value:      wallet.Token,
	}}
	return t.charge(ctx, flow, invoiceID, func(*models.Invoice) (ports.PaymentInstrument, error) {
		return instrument, nil
	})
}

// ChargeProfile charges an invoice against its stored payment profile.
func (t *TransactionReconciler) ChargeProfile(ctx context.Context, invoiceID int64) (*Receipt, error) {
	return t.charge(ctx, "charge_profile", invoiceID, func(invoice *models.Invoice) (ports.PaymentInstrument, error) {
		if invoice.PaymentProfileRef == 0 {
			return ports.PaymentInstrument{}, domain.ErrProfileNotFound.
				WithDetail("invoice_id", invoice.ID)
		}

		db := t.db.GetDB()
		paymentProfile, err := t.profiles.GetPaymentProfileByID(ctx, db, invoice.PaymentProfileRef)
		if err != nil {
			return ports.PaymentInstrument{}, err
		}
		customerProfile, err := t.profiles.GetCustomerProfileByID(ctx, db, paymentProfile.CustomerProfile)
		if err != nil {
			return ports.PaymentInstrument{}, err
		}

		return ports.PaymentInstrument{Profile: &ports.ProfileRef{
			CustomerProfileID: customerProfile.RemoteProfileID,
			PaymentProfileID:  paymentProfile.RemoteProfileID,
		}}, nil
	})
}

// charge runs the shared flow. The instrument builder runs after the guard
// chain so profile lookups see a validated invoice.
func (t *TransactionReconciler) charge(ctx context.Context, flow string, invoiceID int64, buildInstrument func(*models.Invoice) (ports.PaymentInstrument, error)) (*Receipt, error) {
	unlock := t.locks.Lock(invoiceID)
	defer unlock()

	db := t.db.GetDB()

	invoice, contact, credential, err := t.runGuards(ctx, db, invoiceID)
	if err != nil {
		return nil, err
	}

	instrument, err := buildInstrument(invoice)
	if err != nil {
		return nil, err
	}

	refID := models.MintRefID()
	t.observer.AttemptStarted(ports.ChargeAttempt{
		Flow:      flow,
		InvoiceID: invoiceID,
		RefID:     refID,
		Amount:    invoice.TotalAmount,
	})

	req := &ports.ChargeRequest{
		RefID:         refID,
		Amount:        invoice.TotalAmount,
		Instrument:    instrument,
		InvoiceNumber: invoice.InvoiceNumber,
		Description:   invoice.CustomerNote,
		BillTo: models.BillingInfo{
			FirstName: contact.FirstName,
			LastName:  contact.LastName,
			Email:     contact.Email,
			Phone:     contact.Phone,
		},
		Customer: ports.CustomerInfo{
			ID:    strconv.FormatInt(contact.ID, 10),
			Email: contact.Email,
		},
	}

	start := t.now()
	result, err := t.gateway.Charge(ctx, credential, req)
	if err != nil {
		t.observer.GatewayResponded(ports.GatewayExchange{
			Flow: flow, RefID: refID, Outcome: ports.OutcomeError, Duration: t.now().Sub(start),
		})
		return nil, err
	}

	t.observer.GatewayResponded(ports.GatewayExchange{
		Flow:     flow,
		RefID:    refID,
		Outcome:  result.Outcome,
		Code:     result.Code,
		Duration: t.now().Sub(start),
	})

	if !result.Approved() {
		t.logger.Warn("charge not approved",
			zap.String("flow", flow),
			zap.Int64("invoice_id", invoiceID),
			zap.String("ref_id", refID),
			zap.String("outcome", string(result.Outcome)),
			zap.String("code", result.Code))

		code := domain.ErrorCodeGatewayError
		if result.Outcome == ports.OutcomeDeclined {
			code = domain.ErrorCodeGatewayDeclined
		}
		return nil, domain.GatewayFailure(code, result.Code, result.Message)
	}

	transaction := &models.Transaction{
		ID:               uuid.New().String(),
		InvoiceID:        invoice.ID,
		ContactID:        invoice.ContactID,
		SalespersonID:    invoice.SalespersonID,
		Kind:             models.TransactionKindCharge,
		RefID:            refID,
		CardNumberMasked: result.AccountNumberMasked,
		Amount:           invoice.TotalAmount,
		GatewayTxnID:     result.GatewayTxnID,
		ResponseCode:     result.Code,
		ResponseMessage:  result.Message,
		RequestPayload:   result.RawRequest,
		ResponsePayload:  result.RawResponse,
		CreatedAt:        t.now(),
	}

	// Audit record first, invoice mutation second, one transaction. If the
	// process dies between the gateway approval and this commit, the gateway
	// transaction id in the audit trail is what reconciliation recovers from.
	err = t.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := t.transactions.Create(ctx, tx, transaction); err != nil {
			return err
		}
		if err := t.invoices.MarkPaid(ctx, tx, invoice.ID, result.AccountNumberMasked, result.GatewayTxnID); err != nil {
			return err
		}
		return t.completeAppointment(ctx, tx, invoice)
	})
	if err != nil {
		t.logger.Error("reconciliation failed after gateway approval",
			zap.Int64("invoice_id", invoiceID),
			zap.String("ref_id", refID),
			zap.String("gateway_transaction_id", result.GatewayTxnID),
			zap.Error(err))
		return nil, err
	}

	t.observer.ReconciliationCommitted(ports.Reconciliation{
		InvoiceID:     invoice.ID,
		TransactionID: transaction.ID,
		GatewayTxnID:  result.GatewayTxnID,
		Amount:        invoice.TotalAmount,
	})

	t.logger.Info("invoice charged",
		zap.String("flow", flow),
		zap.Int64("invoice_id", invoiceID),
		zap.String("transaction_id", transaction.ID),
		zap.String("card_number_masked", result.AccountNumberMasked))

	return &Receipt{
		TransactionID:    transaction.ID,
		GatewayTxnID:     result.GatewayTxnID,
		CardNumberMasked: result.AccountNumberMasked,
		Amount:           invoice.TotalAmount,
		Code:             result.Code,
		Message:          result.Message,
	}, nil
}

// runGuards executes the ordered guard chain: invoice exists, not already
// paid, contact exists, salesperson and credential resolve. No state changes.
func (t *TransactionReconciler) runGuards(ctx context.Context, db ports.DBTX, invoiceID int64) (*models.Invoice, *models.Contact, models.MerchantCredential, error) {
	var none models.MerchantCredential

	invoice, err := t.invoices.GetByID(ctx, db, invoiceID)
	if err != nil {
		return nil, nil, none, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, nil, none, domain.ErrAlreadyPaid.WithDetail("invoice_id", invoiceID)
	}
	if !invoice.TotalAmount.IsPositive() {
		return nil, nil, none, domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid,
			"invoice amount must be positive").WithDetail("invoice_id", invoiceID)
	}

	contact, err := t.directory.GetContact(ctx, db, invoice.ContactID)
	if err != nil {
		return nil, nil, none, err
	}

	credential, err := t.resolver.Resolve(ctx, db, invoice.SalespersonID)
	if err != nil {
		return nil, nil, none, err
	}

	return invoice, contact, credential, nil
}

// completeAppointment marks the linked appointment completed when its
// scheduled end has already passed. Future appointments stay scheduled.
func (t *TransactionReconciler) completeAppointment(ctx context.Context, tx ports.DBTX, invoice *models.Invoice) error {
	if invoice.AppointmentID == 0 {
		return nil
	}

	appointment, err := t.appointments.GetByID(ctx, tx, invoice.AppointmentID)
	if err != nil {
		return fmt.Errorf("load linked appointment: %w", err)
	}
	if appointment.Status == models.AppointmentStatusCompleted {
		return nil
	}
	if appointment.EndAt.After(t.now()) {
		return nil
	}
	return t.appointments.MarkCompleted(ctx, tx, invoice.AppointmentID)
}
