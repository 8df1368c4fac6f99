package authorization

import (
	"encoding/json"
	"fmt"

	adapterports "github.com/kevin07696/payment-orchestrator/internal/adapters/ports"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
)

// credentialBlob is the JSON document stored in a secret manager backend.
// Field values are the encoded (obfuscated) texts, same as the database
// columns.
type credentialBlob struct {
	LoginID        string `json:"login_id"`
	TransactionKey string `json:"transaction_key"`
	ClientKey      string `json:"client_key"`
	FormatVersion  string `json:"format_version"`
}

// EncodeSecretBlob serializes a stored credential for a secret manager
// backend. Used by the admin CLI when provisioning off-database credentials.
func EncodeSecretBlob(stored models.StoredCredential) (string, error) {
	raw, err := json.Marshal(credentialBlob{
		LoginID:        stored.LoginID,
		TransactionKey: stored.TransactionKey,
		ClientKey:      stored.ClientKey,
		FormatVersion:  stored.FormatVersion,
	})
	if err != nil {
		return "", fmt.Errorf("marshal credential blob: %w", err)
	}
	return string(raw), nil
}

func decodeSecretBlob(userID int64, secret *adapterports.Secret) (*models.StoredCredential, error) {
	var blob credentialBlob
	if err := json.Unmarshal([]byte(secret.Value), &blob); err != nil {
		return nil, fmt.Errorf("unmarshal credential blob: %w", err)
	}
	return &models.StoredCredential{
		UserID:         userID,
		LoginID:        blob.LoginID,
		TransactionKey: blob.TransactionKey,
		ClientKey:      blob.ClientKey,
		FormatVersion:  blob.FormatVersion,
	}, nil
}
