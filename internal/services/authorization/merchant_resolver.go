package authorization

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	adapterports "github.com/kevin07696/payment-orchestrator/internal/adapters/ports"
	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// MerchantResolver resolves the effective merchant credential for a
// salesperson. Sub-accounts delegate to their parent: the parent's stored
// credential authenticates the charge. The decoded triple is returned to the
// caller for a single gateway call and must not be persisted.
type MerchantResolver struct {
	directory   ports.DirectoryStore
	credentials ports.CredentialStore
	secrets     adapterports.SecretStore // optional off-database backend
	secretPath  func(userID int64) string
	codec       Codec
	logger      *zap.Logger
}

// NewMerchantResolver creates a resolver backed by the database credential
// store.
func NewMerchantResolver(directory ports.DirectoryStore, credentials ports.CredentialStore, logger *zap.Logger) *MerchantResolver {
	return &MerchantResolver{
		directory:   directory,
		credentials: credentials,
		logger:      logger,
	}
}

// WithSecretStore routes credential-at-rest reads through a secret manager
// backend (Vault, AWS Secrets Manager) instead of the database row. The
// stored value is still the encoded blob of the credential codec.
func (r *MerchantResolver) WithSecretStore(secrets adapterports.SecretStore, pathFor func(userID int64) string) *MerchantResolver {
	r.secrets = secrets
	r.secretPath = pathFor
	return r
}

// Resolve loads the salesperson, walks up to the parent account when one
// exists, fetches the stored credential, and decodes it. A credential missing
// either the login id or the transaction key counts as not found.
func (r *MerchantResolver) Resolve(ctx context.Context, db ports.DBTX, salespersonID int64) (models.MerchantCredential, error) {
	user, err := r.directory.GetUser(ctx, db, salespersonID)
	if err != nil {
		return models.MerchantCredential{}, err
	}

	merchantID := user.ID
	if user.ParentID != 0 {
		merchantID = user.ParentID
	}

	stored, err := r.lookupStored(ctx, db, merchantID)
	if err != nil {
		return models.MerchantCredential{}, err
	}
	if stored == nil || stored.LoginID == "" || stored.TransactionKey == "" {
		return models.MerchantCredential{}, domain.ErrCredentialNotFound.
			WithDetail("merchant_user_id", merchantID)
	}

	cred, err := r.codec.Decode(*stored)
	if err != nil {
		return models.MerchantCredential{}, err
	}
	if cred.LoginID == "" || cred.TransactionKey == "" {
		return models.MerchantCredential{}, domain.ErrCredentialNotFound.
			WithDetail("merchant_user_id", merchantID)
	}

	r.logger.Debug("resolved effective merchant",
		zap.Int64("salesperson_id", salespersonID),
		zap.Int64("merchant_user_id", merchantID))

	return cred, nil
}

func (r *MerchantResolver) lookupStored(ctx context.Context, db ports.DBTX, merchantID int64) (*models.StoredCredential, error) {
	if r.secrets == nil {
		stored, err := r.credentials.GetByUser(ctx, db, merchantID)
		if err != nil {
			if domain.IsNotFoundError(err) {
				return nil, domain.ErrCredentialNotFound.WithDetail("merchant_user_id", merchantID)
			}
			return nil, err
		}
		return stored, nil
	}

	secret, err := r.secrets.GetSecret(ctx, r.secretPath(merchantID))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeCredentialNotFound,
			fmt.Sprintf("merchant credential secret for user %d", merchantID), err)
	}
	return decodeSecretBlob(merchantID, secret)
}
