package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

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
)

// MockDBPort mocks the database port
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	// Execute the function with a nil transaction for testing
	return fn(ctx, nil)
}

// MockInvoiceStore mocks the invoice store
type MockInvoiceStore struct {
	mock.Mock
}

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

// MockDirectoryStore mocks the contact/user directory
type MockDirectoryStore struct {
	mock.Mock
}

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

// MockAppointmentStore mocks the appointment store
type MockAppointmentStore struct {
	mock.Mock
}

func (m *MockAppointmentStore) GetByID(ctx context.Context, db ports.DBTX, id int64) (*models.Appointment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentStore) MarkCompleted(ctx context.Context, db ports.DBTX, id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCredentialStore mocks the stored credential lookup
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByUser(ctx context.Context, db ports.DBTX, userID int64) (*models.StoredCredential, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredCredential), args.Error(1)
}

// MockTransactionRepository mocks the transaction audit repository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx ports.DBTX, transaction *models.Transaction) error {
	args := m.Called(transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

// MockProfileRepository mocks the profile cross-reference repository
type MockProfileRepository struct {
	mock.Mock
}

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

func (m *MockProfileRepository) UpsertCustomerProfile(ctx context.Context, db ports.DBTX, profile *models.CustomerProfile) (int64, error) {
	args := m.Called(profile)
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

func (m *MockProfileRepository) UpsertPaymentProfile(ctx context.Context, db ports.DBTX, profile *models.PaymentProfile) (int64, error) {
	args := m.Called(profile)
	return args.Get(0).(int64), args.Error(1)
}

// MockGateway mocks the card network client
type MockGateway struct {
	mock.Mock
}

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

// recorderObserver captures observer events so tests can assert on them
type recorderObserver struct {
	mu        sync.Mutex
	attempts  []ports.ChargeAttempt
	exchanges []ports.GatewayExchange
	commits   []ports.Reconciliation
}

func (r *recorderObserver) AttemptStarted(a ports.ChargeAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func (r *recorderObserver) GatewayResponded(e ports.GatewayExchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, e)
}

func (r *recorderObserver) ReconciliationCommitted(rec ports.Reconciliation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, rec)
}

type reconcilerFixture struct {
	db           *MockDBPort
	invoices     *MockInvoiceStore
	directory    *MockDirectoryStore
	appointments *MockAppointmentStore
	credentials  *MockCredentialStore
	transactions *MockTransactionRepository
	profiles     *MockProfileRepository
	gateway      *MockGateway
	observer     *recorderObserver
	reconciler   *payment.TransactionReconciler
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		db:           &MockDBPort{},
		invoices:     &MockInvoiceStore{},
		directory:    &MockDirectoryStore{},
		appointments: &MockAppointmentStore{},
		credentials:  &MockCredentialStore{},
		transactions: &MockTransactionRepository{},
		profiles:     &MockProfileRepository{},
		gateway:      &MockGateway{},
		observer:     &recorderObserver{},
	}

	resolver := authorization.NewMerchantResolver(f.directory, f.credentials, zap.NewNop())
	f.reconciler = payment.NewTransactionReconciler(
		f.db, f.invoices, f.directory, f.appointments, f.transactions, f.profiles,
		f.gateway, resolver, f.observer, zap.NewNop())
	return f
}

var testCard = payment.CardPayment{
	CardNumber:      "4111111111111111",
	ExpirationYear:  "2027",
	ExpirationMonth: "11",
	CVV:             "123",
}

func unpaidInvoice() *models.Invoice {
	return &models.Invoice{
		ID:            10,
		InvoiceNumber: "INV-10",
		Status:        models.InvoiceStatusUnpaid,
		TotalAmount:   decimal.RequireFromString("150.00"),
		ContactID:     20,
		SalespersonID: 30,
	}
}

func (f *reconcilerFixture) expectGuardsPass() {
	f.directory.On("GetContact", int64(20)).Return(&models.Contact{
		ID: 20, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	}, nil)
	f.directory.On("GetUser", int64(30)).Return(&models.User{ID: 30, ParentID: 0}, nil)

	stored := authorization.Codec{}.Encode(30, models.MerchantCredential{
		LoginID:        "login123",
		TransactionKey: "key456",
	})
	f.credentials.On("GetByUser", int64(30)).Return(&stored, nil)
}

func approvedResult() *ports.GatewayResult {
	return &ports.GatewayResult{
		Outcome:             ports.OutcomeApproved,
		GatewayTxnID:        "60123",
		AccountNumberMasked: "1111",
		Code:                "1",
		Message:             "This transaction has been approved.",
		RawRequest:          []byte(`{}`),
		RawResponse:         []byte(`{}`),
	}
}

func TestChargeCardApproved(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.expectGuardsPass()
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(approvedResult(), nil)
	f.transactions.On("Create", mock.Anything).Return(nil)
	f.invoices.On("MarkPaid", int64(10), "1111", "60123").Return(nil)

	receipt, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.NoError(t, err)
	assert.Equal(t, "60123", receipt.GatewayTxnID)
	assert.Equal(t, "1111", receipt.CardNumberMasked)
	assert.True(t, receipt.Amount.Equal(decimal.RequireFromString("150.00")))
	assert.NotEmpty(t, receipt.TransactionID)

	// Audit row carries only the masked card
	f.transactions.AssertCalled(t, "Create", mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.CardNumberMasked == "1111" &&
			txn.Kind == models.TransactionKindCharge &&
			txn.GatewayTxnID == "60123" &&
			txn.InvoiceID == 10
	}))

	require.Len(t, f.observer.attempts, 1)
	require.Len(t, f.observer.exchanges, 1)
	require.Len(t, f.observer.commits, 1)
	assert.Equal(t, "charge_card", f.observer.attempts[0].Flow)
	assert.Equal(t, ports.OutcomeApproved, f.observer.exchanges[0].Outcome)
	assert.Equal(t, receipt.TransactionID, f.observer.commits[0].TransactionID)
}

// Guard chain stops at the first failure and never reaches the gateway
func TestChargeCardGuardOrder(t *testing.T) {
	t.Run("invoice missing", func(t *testing.T) {
		f := newReconcilerFixture()
		f.invoices.On("GetByID", int64(10)).Return(nil, domain.ErrInvoiceNotFound)

		_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

		assert.Equal(t, domain.ErrorCodeInvoiceNotFound, domain.GetErrorCode(err))
		f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newReconcilerFixture()
		paid := unpaidInvoice()
		paid.Status = models.InvoiceStatusPaid
		f.invoices.On("GetByID", int64(10)).Return(paid, nil)

		_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

		assert.Equal(t, domain.ErrorCodeAlreadyPaid, domain.GetErrorCode(err))
		f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("contact missing", func(t *testing.T) {
		f := newReconcilerFixture()
		f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
		f.directory.On("GetContact", int64(20)).Return(nil, domain.ErrContactNotFound)

		_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

		assert.Equal(t, domain.ErrorCodeContactNotFound, domain.GetErrorCode(err))
		f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("salesperson missing", func(t *testing.T) {
		f := newReconcilerFixture()
		f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
		f.directory.On("GetContact", int64(20)).Return(&models.Contact{ID: 20}, nil)
		f.directory.On("GetUser", int64(30)).Return(nil, domain.ErrSalespersonNotFound)

		_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

		assert.Equal(t, domain.ErrorCodeSalespersonNotFound, domain.GetErrorCode(err))
		f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})

	t.Run("credential missing", func(t *testing.T) {
		f := newReconcilerFixture()
		f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
		f.directory.On("GetContact", int64(20)).Return(&models.Contact{ID: 20}, nil)
		f.directory.On("GetUser", int64(30)).Return(&models.User{ID: 30}, nil)
		f.credentials.On("GetByUser", int64(30)).Return(nil, domain.ErrCredentialNotFound)

		_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

		assert.Equal(t, domain.ErrorCodeCredentialNotFound, domain.GetErrorCode(err))
		f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
	})
}

// Sub-accounts settle against the parent's credential
func TestChargeCardParentDelegation(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.directory.On("GetContact", int64(20)).Return(&models.Contact{ID: 20}, nil)
	f.directory.On("GetUser", int64(30)).Return(&models.User{ID: 30, ParentID: 99}, nil)

	stored := authorization.Codec{}.Encode(99, models.MerchantCredential{
		LoginID:        "parent-login",
		TransactionKey: "parent-key",
	})
	f.credentials.On("GetByUser", int64(99)).Return(&stored, nil)

	f.gateway.On("Charge", mock.MatchedBy(func(auth models.MerchantCredential) bool {
		return auth.LoginID == "parent-login"
	}), mock.Anything).Return(approvedResult(), nil)
	f.transactions.On("Create", mock.Anything).Return(nil)
	f.invoices.On("MarkPaid", int64(10), "1111", "60123").Return(nil)

	_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.NoError(t, err)
	f.credentials.AssertNotCalled(t, "GetByUser", int64(30))
}

// Scenario: declined charge persists nothing and surfaces the gateway code
func TestChargeCardDeclined(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.expectGuardsPass()
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(&ports.GatewayResult{
		Outcome: ports.OutcomeDeclined,
		Code:    "2",
		Message: "This transaction has been declined.",
	}, nil)

	_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeGatewayDeclined, domain.GetErrorCode(err))
	assert.Contains(t, err.Error(), "This transaction has been declined.")
	f.transactions.AssertNotCalled(t, "Create", mock.Anything)
	f.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

// Transport failures are retryable and persist nothing
func TestChargeCardTransportFailure(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.expectGuardsPass()
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(nil,
		domain.NewDomainError(domain.ErrorCodeGatewayTransport, "gateway request failed"))

	_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	f.transactions.AssertNotCalled(t, "Create", mock.Anything)
	f.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

// Consecutive attempts mint distinct refIds
func TestChargeRefIDFreshPerAttempt(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.expectGuardsPass()

	var refIDs []string
	f.gateway.On("Charge", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		req := args.Get(1).(*ports.ChargeRequest)
		refIDs = append(refIDs, req.RefID)
	}).Return(nil, domain.NewDomainError(domain.ErrorCodeGatewayTransport, "gateway request failed"))

	_, _ = f.reconciler.ChargeCard(context.Background(), 10, testCard)
	_, _ = f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.Len(t, refIDs, 2)
	assert.NotEqual(t, refIDs[0], refIDs[1])
	assert.Regexp(t, `^ref\d+`, refIDs[0])
}

func TestChargeCardPayloadValidation(t *testing.T) {
	f := newReconcilerFixture()

	_, err := f.reconciler.ChargeCard(context.Background(), 10, payment.CardPayment{
		CardNumber:      "not-a-card",
		ExpirationYear:  "2027",
		ExpirationMonth: "11",
	})

	assert.True(t, domain.IsValidationError(err))
	f.invoices.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestChargeApplePayDescriptor(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.expectGuardsPass()
	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req *ports.ChargeRequest) bool {
		return req.Instrument.Nonce != nil &&
			req.Instrument.Nonce.Descriptor == ports.NonceDescriptorApplePay
	})).Return(approvedResult(), nil)
	f.transactions.On("Create", mock.Anything).Return(nil)
	f.invoices.On("MarkPaid", int64(10), "1111", "60123").Return(nil)

	_, err := f.reconciler.ChargeApplePay(context.Background(), 10, payment.WalletPayment{Token: "tok"})

	require.NoError(t, err)
}

func TestChargeProfileUsesStoredProfile(t *testing.T) {
	f := newReconcilerFixture()
	invoice := unpaidInvoice()
	invoice.PaymentProfileRef = 5
	f.invoices.On("GetByID", int64(10)).Return(invoice, nil)
	f.expectGuardsPass()
	f.profiles.On("GetPaymentProfileByID", int64(5)).Return(&models.PaymentProfile{
		ID: 5, ContactID: 20, CustomerProfile: 3, RemoteProfileID: "880002", CardNumberMasked: "1111",
	}, nil)
	f.profiles.On("GetCustomerProfileByID", int64(3)).Return(&models.CustomerProfile{
		ID: 3, ContactID: 20, RemoteProfileID: "920001",
	}, nil)
	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(req *ports.ChargeRequest) bool {
		return req.Instrument.Profile != nil &&
			req.Instrument.Profile.CustomerProfileID == "920001" &&
			req.Instrument.Profile.PaymentProfileID == "880002"
	})).Return(approvedResult(), nil)
	f.transactions.On("Create", mock.Anything).Return(nil)
	f.invoices.On("MarkPaid", int64(10), "1111", "60123").Return(nil)

	_, err := f.reconciler.ChargeProfile(context.Background(), 10)

	require.NoError(t, err)
}

func TestChargeProfileWithoutStoredProfile(t *testing.T) {
	f := newReconcilerFixture()
	f.invoices.On("GetByID", int64(10)).Return(unpaidInvoice(), nil)
	f.expectGuardsPass()

	_, err := f.reconciler.ChargeProfile(context.Background(), 10)

	assert.Equal(t, domain.ErrorCodeProfileNotFound, domain.GetErrorCode(err))
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

// A paid invoice completes its appointment only when the end time has passed
func TestChargeCompletesPastAppointment(t *testing.T) {
	f := newReconcilerFixture()
	invoice := unpaidInvoice()
	invoice.AppointmentID = 77
	f.invoices.On("GetByID", int64(10)).Return(invoice, nil)
	f.expectGuardsPass()
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(approvedResult(), nil)
	f.transactions.On("Create", mock.Anything).Return(nil)
	f.invoices.On("MarkPaid", int64(10), "1111", "60123").Return(nil)
	f.appointments.On("GetByID", int64(77)).Return(&models.Appointment{
		ID: 77, Status: models.AppointmentStatusScheduled, EndAt: time.Now().Add(-time.Hour),
	}, nil)
	f.appointments.On("MarkCompleted", int64(77)).Return(nil)

	_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.NoError(t, err)
	f.appointments.AssertCalled(t, "MarkCompleted", int64(77))
}

func TestChargeLeavesFutureAppointmentScheduled(t *testing.T) {
	f := newReconcilerFixture()
	invoice := unpaidInvoice()
	invoice.AppointmentID = 77
	f.invoices.On("GetByID", int64(10)).Return(invoice, nil)
	f.expectGuardsPass()
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(approvedResult(), nil)
	f.transactions.On("Create", mock.Anything).Return(nil)
	f.invoices.On("MarkPaid", int64(10), "1111", "60123").Return(nil)
	f.appointments.On("GetByID", int64(77)).Return(&models.Appointment{
		ID: 77, Status: models.AppointmentStatusScheduled, EndAt: time.Now().Add(time.Hour),
	}, nil)

	_, err := f.reconciler.ChargeCard(context.Background(), 10, testCard)

	require.NoError(t, err)
	f.appointments.AssertNotCalled(t, "MarkCompleted", mock.Anything)
}
