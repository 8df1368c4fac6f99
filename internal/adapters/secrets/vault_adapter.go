package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/adapters/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault backend
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// Cache settings
	CacheTTL    time.Duration
	EnableCache bool

	// TLS configuration
	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration for the Vault backend
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		MountPath:   "secret",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// vaultStore implements the SecretStore port against a KV v2 mount
type vaultStore struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultStore creates a new HashiCorp Vault secret store
func NewVaultStore(cfg *VaultConfig, logger *zap.Logger) (ports.SecretStore, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{Insecure: true}); err != nil {
			return nil, fmt.Errorf("configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required for Vault auth")
	}
	client.SetToken(cfg.Token)

	logger.Info("Vault secret store initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", cfg.MountPath),
	)

	return &vaultStore{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret retrieves a secret by its path under the KV v2 mount
func (s *vaultStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		s.logger.Debug("secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	fullPath := fmt.Sprintf("%s/data/%s", s.config.MountPath, path)

	startTime := time.Now()
	secret, err := s.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		s.logger.Error("failed to retrieve secret from Vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("read secret from Vault: %w", err)
	}
	if secret == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	s.logger.Debug("secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	// KV v2 wraps data in a "data" field
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format from Vault")
	}

	value, _ := data["value"].(string)
	if value == "" {
		return nil, fmt.Errorf("secret value is empty: %s", path)
	}

	var version string
	if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
		if v, ok := metadata["version"].(json.Number); ok {
			version = v.String()
		}
	}

	result := &ports.Secret{
		Value:    value,
		Version:  version,
		Metadata: make(map[string]string),
	}
	for k, v := range data {
		if str, ok := v.(string); ok && k != "value" {
			result.Metadata[k] = str
		}
	}

	s.cache.set(path, result)
	return result, nil
}

// PutSecret creates or updates a secret and returns the new version
func (s *vaultStore) PutSecret(ctx context.Context, path string, value string) (string, error) {
	fullPath := fmt.Sprintf("%s/data/%s", s.config.MountPath, path)

	resp, err := s.client.Logical().WriteWithContext(ctx, fullPath, map[string]interface{}{
		"data": map[string]interface{}{"value": value},
	})
	if err != nil {
		s.logger.Error("failed to write secret to Vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return "", fmt.Errorf("write secret: %w", err)
	}

	version := "1"
	if resp != nil && resp.Data != nil {
		if v, ok := resp.Data["version"].(json.Number); ok {
			version = v.String()
		}
	}

	s.logger.Info("secret written",
		zap.String("path", path),
		zap.String("version", version),
	)

	s.cache.invalidate(path)
	return version, nil
}
