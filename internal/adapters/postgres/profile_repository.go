package postgres

import (
	"context"
	"fmt"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// ProfileRepository implements ports.ProfileRepository
type ProfileRepository struct{}

// NewProfileRepository creates a new profile repository
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

const getCustomerProfileByContactQuery = `
SELECT id, contact_id, remote_profile_id, ref_id, created_at, updated_at
FROM customer_profiles
WHERE contact_id = $1`

// GetCustomerProfileByContact retrieves the customer profile cross-reference
// for a contact. At most one row exists per contact.
func (r *ProfileRepository) GetCustomerProfileByContact(ctx context.Context, db ports.DBTX, contactID int64) (*models.CustomerProfile, error) {
	return scanCustomerProfile(db.QueryRow(ctx, getCustomerProfileByContactQuery, contactID))
}

const getCustomerProfileByIDQuery = `
SELECT id, contact_id, remote_profile_id, ref_id, created_at, updated_at
FROM customer_profiles
WHERE id = $1`

// GetCustomerProfileByID retrieves a customer profile cross-reference by row id
func (r *ProfileRepository) GetCustomerProfileByID(ctx context.Context, db ports.DBTX, id int64) (*models.CustomerProfile, error) {
	return scanCustomerProfile(db.QueryRow(ctx, getCustomerProfileByIDQuery, id))
}

const upsertCustomerProfileQuery = `
INSERT INTO customer_profiles (contact_id, remote_profile_id, ref_id)
VALUES ($1, $2, $3)
ON CONFLICT (contact_id) DO UPDATE
SET remote_profile_id = EXCLUDED.remote_profile_id,
    ref_id = EXCLUDED.ref_id,
    updated_at = now()
RETURNING id`

// UpsertCustomerProfile writes the cross-reference, relying on the
// per-contact uniqueness constraint so concurrent creators converge on one row
func (r *ProfileRepository) UpsertCustomerProfile(ctx context.Context, db ports.DBTX, profile *models.CustomerProfile) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, upsertCustomerProfileQuery,
		profile.ContactID, profile.RemoteProfileID, profile.RefID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert customer profile: %w", err)
	}
	return id, nil
}

const getPaymentProfileByIDQuery = `
SELECT id, contact_id, customer_profile_id, remote_profile_id, card_number_masked, created_at
FROM payment_profiles
WHERE id = $1`

// GetPaymentProfileByID retrieves a payment profile cross-reference by row id
func (r *ProfileRepository) GetPaymentProfileByID(ctx context.Context, db ports.DBTX, id int64) (*models.PaymentProfile, error) {
	return scanPaymentProfile(db.QueryRow(ctx, getPaymentProfileByIDQuery, id))
}

const getPaymentProfileByRemoteIDQuery = `
SELECT id, contact_id, customer_profile_id, remote_profile_id, card_number_masked, created_at
FROM payment_profiles
WHERE contact_id = $1 AND remote_profile_id = $2`

// GetPaymentProfileByRemoteID retrieves a payment profile by its gateway id
// within a contact
func (r *ProfileRepository) GetPaymentProfileByRemoteID(ctx context.Context, db ports.DBTX, contactID int64, remoteID string) (*models.PaymentProfile, error) {
	return scanPaymentProfile(db.QueryRow(ctx, getPaymentProfileByRemoteIDQuery, contactID, remoteID))
}

const upsertPaymentProfileQuery = `
INSERT INTO payment_profiles (contact_id, customer_profile_id, remote_profile_id, card_number_masked)
VALUES ($1, $2, $3, $4)
ON CONFLICT (contact_id, remote_profile_id) DO UPDATE
SET card_number_masked = EXCLUDED.card_number_masked
RETURNING id`

// UpsertPaymentProfile writes the cross-reference keyed on
// (contact, remote payment profile id)
func (r *ProfileRepository) UpsertPaymentProfile(ctx context.Context, db ports.DBTX, profile *models.PaymentProfile) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, upsertPaymentProfileQuery,
		profile.ContactID, profile.CustomerProfile, profile.RemoteProfileID,
		profile.CardNumberMasked).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert payment profile: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomerProfile(row rowScanner) (*models.CustomerProfile, error) {
	var p models.CustomerProfile
	err := row.Scan(&p.ID, &p.ContactID, &p.RemoteProfileID, &p.RefID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get customer profile: %w", err)
	}
	return &p, nil
}

func scanPaymentProfile(row rowScanner) (*models.PaymentProfile, error) {
	var p models.PaymentProfile
	err := row.Scan(&p.ID, &p.ContactID, &p.CustomerProfile, &p.RemoteProfileID, &p.CardNumberMasked, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get payment profile: %w", err)
	}
	return &p, nil
}
