package profile

import (
	"context"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
	"github.com/kevin07696/payment-orchestrator/internal/services/authorization"
	"github.com/kevin07696/payment-orchestrator/internal/services/payment"
)

// duplicateIDPattern pulls the existing record id out of the gateway's
// duplicate-profile message ("A duplicate record with ID 12345 already
// exists.") when the structured field is absent.
var duplicateIDPattern = regexp.MustCompile(`[iI][dD] (\d+)`)

// Receipt reports the stored profile pair after a successful save.
type Receipt struct {
	CustomerProfileID   string // remote
	PaymentProfileID    string // remote
	LocalPaymentProfile int64
	CardNumberMasked    string
}

// Manager stores a card as a gateway payment profile and records the
// cross-references locally so later charges run against the stored profile
// instead of raw card data.
//
// Remote writes go first; each local write is durable on its own so a crash
// between steps leaves remote state discoverable through the xref rows rather
// than orphaned.
type Manager struct {
	db        ports.DBPort
	invoices  ports.InvoiceStore
	directory ports.DirectoryStore
	profiles  ports.ProfileRepository
	gateway   ports.PaymentGateway
	resolver  *authorization.MerchantResolver
	logger    *zap.Logger
}

// NewManager creates a new profile manager
func NewManager(
	db ports.DBPort,
	invoices ports.InvoiceStore,
	directory ports.DirectoryStore,
	profiles ports.ProfileRepository,
	gateway ports.PaymentGateway,
	resolver *authorization.MerchantResolver,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		db:        db,
		invoices:  invoices,
		directory: directory,
		profiles:  profiles,
		gateway:   gateway,
		resolver:  resolver,
		logger:    logger,
	}
}

// SaveCardProfile stores the card under the invoice's contact as a gateway
// payment profile and links it to the invoice for future profile charges.
func (m *Manager) SaveCardProfile(ctx context.Context, invoiceID int64, card payment.CardPayment, billing models.BillingInfo) (*Receipt, error) {
	if err := payment.ValidateCard(card); err != nil {
		return nil, err
	}

	db := m.db.GetDB()

	invoice, err := m.invoices.GetByID(ctx, db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, domain.ErrAlreadyPaid.WithDetail("invoice_id", invoiceID)
	}

	contact, err := m.directory.GetContact(ctx, db, invoice.ContactID)
	if err != nil {
		return nil, err
	}

	credential, err := m.resolver.Resolve(ctx, db, invoice.SalespersonID)
	if err != nil {
		return nil, err
	}

	customerXref, err := m.ensureCustomerProfile(ctx, credential, contact)
	if err != nil {
		return nil, err
	}

	instrument := ports.PaymentInstrument{Card: &ports.Card{
		Number:          card.CardNumber,
		ExpirationYear:  card.ExpirationYear,
		ExpirationMonth: card.ExpirationMonth,
		CVV:             card.CVV,
	}}

	remotePaymentID, masked, err := m.ensurePaymentProfile(ctx, credential, customerXref.RemoteProfileID, instrument, billing, card.CardNumber)
	if err != nil {
		return nil, err
	}

	localID, err := m.profiles.UpsertPaymentProfile(ctx, db, &models.PaymentProfile{
		ContactID:        contact.ID,
		CustomerProfile:  customerXref.ID,
		RemoteProfileID:  remotePaymentID,
		CardNumberMasked: masked,
	})
	if err != nil {
		return nil, err
	}

	if err := m.invoices.SetPaymentProfile(ctx, db, invoice.ID, masked, localID); err != nil {
		return nil, err
	}

	m.logger.Info("payment profile stored",
		zap.Int64("invoice_id", invoiceID),
		zap.Int64("contact_id", contact.ID),
		zap.String("card_number_masked", masked))

	return &Receipt{
		CustomerProfileID:   customerXref.RemoteProfileID,
		PaymentProfileID:    remotePaymentID,
		LocalPaymentProfile: localID,
		CardNumberMasked:    masked,
	}, nil
}

// ensureCustomerProfile reuses the local cross-reference when one exists so
// the gateway never accumulates duplicate customer profiles for a contact.
func (m *Manager) ensureCustomerProfile(ctx context.Context, credential models.MerchantCredential, contact *models.Contact) (*models.CustomerProfile, error) {
	db := m.db.GetDB()

	existing, err := m.profiles.GetCustomerProfileByContact(ctx, db, contact.ID)
	if err == nil {
		return existing, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, err
	}

	refID := models.MintRefID()
	result, err := m.gateway.CreateCustomerProfile(ctx, credential, &ports.CreateCustomerProfileRequest{
		RefID:              refID,
		MerchantCustomerID: strconv.FormatInt(contact.ID, 10),
		Email:              contact.Email,
	})
	if err != nil {
		return nil, err
	}

	remoteID := result.CustomerProfileID
	if result.Outcome != ports.OutcomeApproved {
		if !result.Duplicate {
			return nil, domain.GatewayFailure(domain.ErrorCodeGatewayError, result.Code, result.Message)
		}
		// Remote profile already exists from a prior attempt; the message
		// carries its id.
		if remoteID == "" {
			remoteID = extractDuplicateID(result.Message)
		}
		if remoteID == "" {
			return nil, domain.GatewayFailure(domain.ErrorCodeGatewayError, result.Code, result.Message)
		}
	}

	xref := &models.CustomerProfile{
		ContactID:       contact.ID,
		RemoteProfileID: remoteID,
		RefID:           refID,
	}
	id, err := m.profiles.UpsertCustomerProfile(ctx, db, xref)
	if err != nil {
		return nil, err
	}
	xref.ID = id
	return xref, nil
}

// ensurePaymentProfile creates the remote payment profile, tolerating the
// duplicate-record response: the existing profile id is resolved from the
// response or, failing that, confirmed through a fetch.
func (m *Manager) ensurePaymentProfile(ctx context.Context, credential models.MerchantCredential, customerProfileID string, instrument ports.PaymentInstrument, billing models.BillingInfo, cardNumber string) (string, string, error) {
	result, err := m.gateway.CreatePaymentProfile(ctx, credential, &ports.CreatePaymentProfileRequest{
		CustomerProfileID: customerProfileID,
		Instrument:        instrument,
		BillTo:            billing,
	})
	if err != nil {
		return "", "", err
	}

	if result.Outcome == ports.OutcomeApproved {
		return result.PaymentProfileID, models.MaskCardNumber(cardNumber), nil
	}
	if !result.Duplicate {
		return "", "", domain.GatewayFailure(domain.ErrorCodeGatewayError, result.Code, result.Message)
	}

	remoteID := result.PaymentProfileID
	if remoteID == "" {
		remoteID = extractDuplicateID(result.Message)
	}
	if remoteID == "" {
		return "", "", domain.GatewayFailure(domain.ErrorCodeGatewayError, result.Code, result.Message)
	}

	// Confirm the existing profile and take the gateway's own masked number.
	fetched, err := m.gateway.GetPaymentProfile(ctx, credential, &ports.GetPaymentProfileRequest{
		RefID:             models.MintRefID(),
		CustomerProfileID: customerProfileID,
		PaymentProfileID:  remoteID,
	})
	if err != nil {
		return "", "", err
	}
	if fetched.Outcome != ports.OutcomeApproved {
		return "", "", domain.GatewayFailure(domain.ErrorCodeGatewayError, fetched.Code, fetched.Message)
	}

	masked := fetched.CardNumberMasked
	if masked == "" {
		masked = models.MaskCardNumber(cardNumber)
	}
	return remoteID, masked, nil
}

func extractDuplicateID(message string) string {
	match := duplicateIDPattern.FindStringSubmatch(message)
	if len(match) != 2 {
		return ""
	}
	return match[1]
}
