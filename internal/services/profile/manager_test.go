package profile_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
	"github.com/kevin07696/payment-orchestrator/internal/services/authorization"
	"github.com/kevin07696/payment-orchestrator/internal/services/payment"
	"github.com/kevin07696/payment-orchestrator/internal/services/profile"
)

type MockDBPort struct{ mock.Mock }

func (m *MockDBPort) GetDB() *pgxpool.Pool { return nil }

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

type MockInvoiceStore struct{ mock.Mock }

func (m *MockInvoiceStore) GetByID(ctx context.Context, db ports.DBTX, id int64) (*models.Invoice, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) MarkPaid(ctx context.Context, tx ports.DBTX, id int64, cardNumberMasked, gatewayTxnID string) error {
	args := m.Called(id, cardNumberMasked, gatewayTxnID)
	return args.Error(0)
}

func (m *MockInvoiceStore) SetPaymentProfile(ctx context.Context, db ports.DBTX, id int64, cardNumberMasked string, paymentProfileID int64) error {
	args := m.Called(id, cardNumberMasked, paymentProfileID)
	return args.Error(0)
}

type MockDirectoryStore struct{ mock.Mock }

func (m *MockDirectoryStore) GetContact(ctx context.Context, db ports.DBTX, id int64) (*models.Contact, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockDirectoryStore) GetUser(ctx context.Context, db ports.DBTX, id int64) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCredentialStore struct{ mock.Mock }

func (m *MockCredentialStore) GetByUser(ctx context.Context, db ports.DBTX, userID int64) (*models.StoredCredential, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredCredential), args.Error(1)
}

type MockProfileRepository struct{ mock.Mock }

func (m *MockProfileRepository) GetCustomerProfileByContact(ctx context.Context, db ports.DBTX, contactID int64) (*models.CustomerProfile, error) {
	args := m.Called(contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerProfile), args.Error(1)
}

func (m *MockProfileRepository) GetCustomerProfileByID(ctx context.Context, db ports.DBTX, id int64) (*models.CustomerProfile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerProfile), args.Error(1)
}

func (m *MockProfileRepository) UpsertCustomerProfile(ctx context.Context, db ports.DBTX, p *models.CustomerProfile) (int64, error) {
	args := m.Called(p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepository) GetPaymentProfileByID(ctx context.Context, db ports.DBTX, id int64) (*models.PaymentProfile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentProfile), args.Error(1)
}

func (m *MockProfileRepository) GetPaymentProfileByRemoteID(ctx context.Context, db ports.DBTX, contactID int64, remoteID string) (*models.PaymentProfile, error) {
	args := m.Called(contactID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentProfile), args.Error(1)
}

func (m *MockProfileRepository) UpsertPaymentProfile(ctx context.Context, db ports.DBTX, p *models.PaymentProfile) (int64, error) {
	args := m.Called(p)
	return args.Get(0).(int64), args.Error(1)
}

type MockGateway struct{ mock.Mock }

func (m *MockGateway) Charge(ctx context.Context, auth models.MerchantCredential, req *ports.ChargeRequest) (*ports.GatewayResult, error) {
	args := m.Called(auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.GatewayResult), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, auth models.MerchantCredential, req *ports.RefundRequest) (*ports.GatewayResult, error) {
	args := m.Called(auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.GatewayResult), args.Error(1)
}

func (m *MockGateway) CreateCustomerProfile(ctx context.Context, auth models.MerchantCredential, req *ports.CreateCustomerProfileRequest) (*ports.ProfileResult, error) {
	args := m.Called(auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ProfileResult), args.Error(1)
}

func (m *MockGateway) CreatePaymentProfile(ctx context.Context, auth models.MerchantCredential, req *ports.CreatePaymentProfileRequest) (*ports.ProfileResult, error) {
	args := m.Called(auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ProfileResult), args.Error(1)
}

func (m *MockGateway) GetPaymentProfile(ctx context.Context, auth models.MerchantCredential, req *ports.GetPaymentProfileRequest) (*ports.ProfileResult, error) {
	args := m.Called(auth, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ProfileResult), args.Error(1)
}

type managerFixture struct {
	db          *MockDBPort
	invoices    *MockInvoiceStore
	directory   *MockDirectoryStore
	credentials *MockCredentialStore
	profiles    *MockProfileRepository
	gateway     *MockGateway
	manager     *profile.Manager
}

func newManagerFixture() *managerFixture {
	f := &managerFixture{
		db:          &MockDBPort{},
		invoices:    &MockInvoiceStore{},
		directory:   &MockDirectoryStore{},
		credentials: &MockCredentialStore{},
		profiles:    &MockProfileRepository{},
		gateway:     &MockGateway{},
	}
	resolver := authorization.NewMerchantResolver(f.directory, f.credentials, zap.NewNop())
	f.manager = profile.NewManager(f.db, f.invoices, f.directory, f.profiles, f.gateway, resolver, zap.NewNop())
	return f
}

var testCard = payment.CardPayment{
	CardNumber:      "4111111111111111",
	ExpirationYear:  "2027",
	ExpirationMonth: "11",
	CVV:             "123",
}

func (f *managerFixture) expectGuardsPass() {
	f.invoices.On("GetByID", int64(10)).Return(&models.Invoice{
		ID:            10,
		Status:        models.InvoiceStatusUnpaid,
		TotalAmount:   decimal.RequireFromString("150.00"),
		ContactID:     20,
		SalespersonID: 30,
	}, nil)
	f.directory.On("GetContact", int64(20)).Return(&models.Contact{
		ID: 20, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	}, nil)
	f.directory.On("GetUser", int64(30)).Return(&models.User{ID: 30}, nil)

	stored := authorization.Codec{}.Encode(30, models.MerchantCredential{
		LoginID:        "login123",
		TransactionKey: "key456",
	})
	f.credentials.On("GetByUser", int64(30)).Return(&stored, nil)
}

// Existing local xref short-circuits remote customer profile creation
func TestSaveCardProfileReusesCustomerProfile(t *testing.T) {
	f := newManagerFixture()
	f.expectGuardsPass()
	f.profiles.On("GetCustomerProfileByContact", int64(20)).Return(&models.CustomerProfile{
		ID: 3, ContactID: 20, RemoteProfileID: "920001",
	}, nil)
	f.gateway.On("CreatePaymentProfile", mock.Anything, mock.MatchedBy(func(req *ports.CreatePaymentProfileRequest) bool {
		return req.CustomerProfileID == "920001" && req.Instrument.Card != nil
	})).Return(&ports.ProfileResult{
		Outcome:          ports.OutcomeApproved,
		PaymentProfileID: "880002",
	}, nil)
	f.profiles.On("UpsertPaymentProfile", mock.Anything).Return(int64(5), nil)
	f.invoices.On("SetPaymentProfile", int64(10), "1111", int64(5)).Return(nil)

	receipt, err := f.manager.SaveCardProfile(context.Background(), 10, testCard, models.BillingInfo{})

	require.NoError(t, err)
	assert.Equal(t, "920001", receipt.CustomerProfileID)
	assert.Equal(t, "880002", receipt.PaymentProfileID)
	assert.Equal(t, int64(5), receipt.LocalPaymentProfile)
	assert.Equal(t, "1111", receipt.CardNumberMasked)
	f.gateway.AssertNotCalled(t, "CreateCustomerProfile", mock.Anything, mock.Anything)
}

// No local xref: the remote customer profile is created and recorded
func TestSaveCardProfileCreatesCustomerProfile(t *testing.T) {
	f := newManagerFixture()
	f.expectGuardsPass()
	f.profiles.On("GetCustomerProfileByContact", int64(20)).Return(nil, domain.ErrProfileNotFound)
	f.gateway.On("CreateCustomerProfile", mock.Anything, mock.MatchedBy(func(req *ports.CreateCustomerProfileRequest) bool {
		return req.MerchantCustomerID == "20" && req.Email == "jane@example.com"
	})).Return(&ports.ProfileResult{
		Outcome:           ports.OutcomeApproved,
		CustomerProfileID: "920001",
	}, nil)
	f.profiles.On("UpsertCustomerProfile", mock.MatchedBy(func(p *models.CustomerProfile) bool {
		return p.ContactID == 20 && p.RemoteProfileID == "920001" && p.RefID != ""
	})).Return(int64(3), nil)
	f.gateway.On("CreatePaymentProfile", mock.Anything, mock.Anything).Return(&ports.ProfileResult{
		Outcome:          ports.OutcomeApproved,
		PaymentProfileID: "880002",
	}, nil)
	f.profiles.On("UpsertPaymentProfile", mock.Anything).Return(int64(5), nil)
	f.invoices.On("SetPaymentProfile", int64(10), "1111", int64(5)).Return(nil)

	receipt, err := f.manager.SaveCardProfile(context.Background(), 10, testCard, models.BillingInfo{})

	require.NoError(t, err)
	assert.Equal(t, "920001", receipt.CustomerProfileID)
}

// Duplicate payment profile response is non-fatal; the existing id is
// confirmed through a fetch and stored
func TestSaveCardProfileDuplicateTolerated(t *testing.T) {
	f := newManagerFixture()
	f.expectGuardsPass()
	f.profiles.On("GetCustomerProfileByContact", int64(20)).Return(&models.CustomerProfile{
		ID: 3, ContactID: 20, RemoteProfileID: "920001",
	}, nil)
	f.gateway.On("CreatePaymentProfile", mock.Anything, mock.Anything).Return(&ports.ProfileResult{
		Outcome:          ports.OutcomeError,
		Code:             "E00039",
		Message:          "A duplicate customer payment profile already exists.",
		PaymentProfileID: "880002",
		Duplicate:        true,
	}, nil)
	f.gateway.On("GetPaymentProfile", mock.Anything, mock.MatchedBy(func(req *ports.GetPaymentProfileRequest) bool {
		return req.CustomerProfileID == "920001" && req.PaymentProfileID == "880002"
	})).Return(&ports.ProfileResult{
		Outcome:          ports.OutcomeApproved,
		PaymentProfileID: "880002",
		CardNumberMasked: "1111",
	}, nil)
	f.profiles.On("UpsertPaymentProfile", mock.MatchedBy(func(p *models.PaymentProfile) bool {
		return p.RemoteProfileID == "880002" && p.CardNumberMasked == "1111"
	})).Return(int64(5), nil)
	f.invoices.On("SetPaymentProfile", int64(10), "1111", int64(5)).Return(nil)

	receipt, err := f.manager.SaveCardProfile(context.Background(), 10, testCard, models.BillingInfo{})

	require.NoError(t, err)
	assert.Equal(t, "880002", receipt.PaymentProfileID)
}

// Duplicate response without the structured id falls back to the message text
func TestSaveCardProfileDuplicateIDFromMessage(t *testing.T) {
	f := newManagerFixture()
	f.expectGuardsPass()
	f.profiles.On("GetCustomerProfileByContact", int64(20)).Return(&models.CustomerProfile{
		ID: 3, ContactID: 20, RemoteProfileID: "920001",
	}, nil)
	f.gateway.On("CreatePaymentProfile", mock.Anything, mock.Anything).Return(&ports.ProfileResult{
		Outcome:   ports.OutcomeError,
		Code:      "E00039",
		Message:   "A duplicate record with ID 880777 already exists.",
		Duplicate: true,
	}, nil)
	f.gateway.On("GetPaymentProfile", mock.Anything, mock.MatchedBy(func(req *ports.GetPaymentProfileRequest) bool {
		return req.PaymentProfileID == "880777"
	})).Return(&ports.ProfileResult{
		Outcome:          ports.OutcomeApproved,
		PaymentProfileID: "880777",
		CardNumberMasked: "1111",
	}, nil)
	f.profiles.On("UpsertPaymentProfile", mock.Anything).Return(int64(6), nil)
	f.invoices.On("SetPaymentProfile", int64(10), "1111", int64(6)).Return(nil)

	receipt, err := f.manager.SaveCardProfile(context.Background(), 10, testCard, models.BillingInfo{})

	require.NoError(t, err)
	assert.Equal(t, "880777", receipt.PaymentProfileID)
}

// A non-duplicate gateway rejection aborts with no local writes
func TestSaveCardProfileGatewayError(t *testing.T) {
	f := newManagerFixture()
	f.expectGuardsPass()
	f.profiles.On("GetCustomerProfileByContact", int64(20)).Return(&models.CustomerProfile{
		ID: 3, ContactID: 20, RemoteProfileID: "920001",
	}, nil)
	f.gateway.On("CreatePaymentProfile", mock.Anything, mock.Anything).Return(&ports.ProfileResult{
		Outcome: ports.OutcomeError,
		Code:    "E00027",
		Message: "The transaction was unsuccessful.",
	}, nil)

	_, err := f.manager.SaveCardProfile(context.Background(), 10, testCard, models.BillingInfo{})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeGatewayError, domain.GetErrorCode(err))
	f.profiles.AssertNotCalled(t, "UpsertPaymentProfile", mock.Anything)
	f.invoices.AssertNotCalled(t, "SetPaymentProfile", mock.Anything, mock.Anything, mock.Anything)
}

// Profile creation runs the same already-paid guard as a charge
func TestSaveCardProfileAlreadyPaid(t *testing.T) {
	f := newManagerFixture()
	f.invoices.On("GetByID", int64(10)).Return(&models.Invoice{
		ID: 10, Status: models.InvoiceStatusPaid, ContactID: 20, SalespersonID: 30,
	}, nil)

	_, err := f.manager.SaveCardProfile(context.Background(), 10, testCard, models.BillingInfo{})

	assert.Equal(t, domain.ErrorCodeAlreadyPaid, domain.GetErrorCode(err))
	f.gateway.AssertNotCalled(t, "CreatePaymentProfile", mock.Anything, mock.Anything)
}
