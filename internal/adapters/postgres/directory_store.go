package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// DirectoryStore implements ports.DirectoryStore over the contacts and users
// tables owned by the billing application.
type DirectoryStore struct{}

// NewDirectoryStore creates a new directory store
func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{}
}

const getContactQuery = `
SELECT id, first_name, last_name, email, phone
FROM contacts
WHERE id = $1`

// GetContact retrieves the payer record an invoice bills against
func (s *DirectoryStore) GetContact(ctx context.Context, db ports.DBTX, id int64) (*models.Contact, error) {
	var (
		contact models.Contact
		email   pgtype.Text
		phone   pgtype.Text
	)

	err := db.QueryRow(ctx, getContactQuery, id).Scan(
		&contact.ID, &contact.FirstName, &contact.LastName, &email, &phone)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}

	contact.Email = email.String
	contact.Phone = phone.String
	return &contact, nil
}

const getUserQuery = `
SELECT id, parent_id, email
FROM users
WHERE id = $1`

// GetUser retrieves a salesperson account. ParentID is zero for accounts that
// hold their own merchant credential.
func (s *DirectoryStore) GetUser(ctx context.Context, db ports.DBTX, id int64) (*models.User, error) {
	var (
		user   models.User
		parent pgtype.Int8
	)

	err := db.QueryRow(ctx, getUserQuery, id).Scan(&user.ID, &parent, &user.Email)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSalespersonNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.ParentID = parent.Int64
	return &user, nil
}
