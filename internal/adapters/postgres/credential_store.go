package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// CredentialStore implements ports.CredentialStore. Rows hold encoded
// credential text only; decoding happens in the authorization service.
type CredentialStore struct{}

// NewCredentialStore creates a new credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

const getCredentialByUserQuery = `
SELECT user_id, login_id, transaction_key, client_key, format_version
FROM merchant_credentials
WHERE user_id = $1`

// GetByUser retrieves the stored (encoded) merchant credential for a user
func (s *CredentialStore) GetByUser(ctx context.Context, db ports.DBTX, userID int64) (*models.StoredCredential, error) {
	var (
		cred      models.StoredCredential
		clientKey pgtype.Text
		version   pgtype.Text
	)

	err := db.QueryRow(ctx, getCredentialByUserQuery, userID).Scan(
		&cred.UserID, &cred.LoginID, &cred.TransactionKey, &clientKey, &version)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("get merchant credential: %w", err)
	}

	cred.ClientKey = clientKey.String
	cred.FormatVersion = version.String
	return &cred, nil
}
