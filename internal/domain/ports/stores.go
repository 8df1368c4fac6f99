package ports

import (
	"context"

	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
)

// InvoiceStore reads and mutates invoice records. All lookups return a
// NOT_FOUND domain error when the row is absent.
type InvoiceStore interface {
	GetByID(ctx context.Context, db DBTX, id int64) (*models.Invoice, error)

	// MarkPaid transitions the invoice from any non-paid status to paid and
	// records the masked card and gateway transaction id, as one conditional
	// update. Returns CONFLICT_ALREADY_PAID when the invoice was already
	// paid, so a lost race never produces a second transition.
	MarkPaid(ctx context.Context, tx DBTX, id int64, cardNumberMasked, gatewayTxnID string) error

	// SetPaymentProfile records the masked card and the local payment
	// profile row a future profile charge should use.
	SetPaymentProfile(ctx context.Context, db DBTX, id int64, cardNumberMasked string, paymentProfileID int64) error
}

// DirectoryStore resolves contact and salesperson records.
type DirectoryStore interface {
	GetContact(ctx context.Context, db DBTX, id int64) (*models.Contact, error)
	GetUser(ctx context.Context, db DBTX, id int64) (*models.User, error)
}

// AppointmentStore reads and completes appointments linked to invoices.
type AppointmentStore interface {
	GetByID(ctx context.Context, db DBTX, id int64) (*models.Appointment, error)
	MarkCompleted(ctx context.Context, db DBTX, id int64) error
}

// CredentialStore resolves a merchant account's stored (encoded) credential.
type CredentialStore interface {
	GetByUser(ctx context.Context, db DBTX, userID int64) (*models.StoredCredential, error)
}

// TransactionRepository persists gateway transaction audit records.
type TransactionRepository interface {
	Create(ctx context.Context, tx DBTX, transaction *models.Transaction) error
	GetByID(ctx context.Context, db DBTX, id string) (*models.Transaction, error)
}

// ProfileRepository persists the local customer/payment profile
// cross-references. Upserts rely on the storage-layer uniqueness constraints
// (contact for customer profiles, contact+remote id for payment profiles)
// rather than check-then-create alone.
type ProfileRepository interface {
	GetCustomerProfileByContact(ctx context.Context, db DBTX, contactID int64) (*models.CustomerProfile, error)
	GetCustomerProfileByID(ctx context.Context, db DBTX, id int64) (*models.CustomerProfile, error)
	UpsertCustomerProfile(ctx context.Context, db DBTX, profile *models.CustomerProfile) (int64, error)
	GetPaymentProfileByID(ctx context.Context, db DBTX, id int64) (*models.PaymentProfile, error)
	GetPaymentProfileByRemoteID(ctx context.Context, db DBTX, contactID int64, remoteID string) (*models.PaymentProfile, error)
	UpsertPaymentProfile(ctx context.Context, db DBTX, profile *models.PaymentProfile) (int64, error)
}
