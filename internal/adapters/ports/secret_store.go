package ports

import "context"

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value    string
	Version  string
	Metadata map[string]string
}

// SecretStore is the port for credential-at-rest backends other than the
// database row: HashiCorp Vault and AWS Secrets Manager implementations live
// in internal/adapters/secrets. The stored value is the encoded credential
// blob, never the decoded triple.
type SecretStore interface {
	// GetSecret retrieves a secret by path. Path format depends on backend:
	//   - Vault: "secret/data/payments/merchants/{user_id}"
	//   - AWS:   "payments/merchants/{user_id}"
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret and returns the new version.
	PutSecret(ctx context.Context, path string, value string) (string, error)
}
