package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/adapters/ports"
)

// localSecretStore implements SecretStore using the local filesystem.
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type localSecretStore struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalSecretStore creates a new local filesystem secret store
func NewLocalSecretStore(basePath string, logger *zap.Logger) ports.SecretStore {
	return &localSecretStore{
		basePath: basePath,
		logger:   logger,
	}
}

// GetSecret retrieves a secret from the local filesystem
func (m *localSecretStore) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	filePath := filepath.Join(m.basePath, secretPath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("read secret: %w", err)
	}

	return &ports.Secret{
		Value:   string(data),
		Version: "v1",
	}, nil
}

// PutSecret stores a secret in the local filesystem
func (m *localSecretStore) PutSecret(ctx context.Context, secretPath, secretValue string) (string, error) {
	filePath := filepath.Join(m.basePath, secretPath)

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return "", fmt.Errorf("create secret directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(secretValue), 0600); err != nil {
		return "", fmt.Errorf("write secret: %w", err)
	}

	m.logger.Info("secret stored to filesystem", zap.String("path", secretPath))
	return "v1", nil
}
