// internal/secrets/vault.go
package secrets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/config"
)

// VaultManager implements the SecretManager interface for HashiCorp Vault.
type VaultManager struct {
	client *vault.Client
	cfg    *config.Config
	mount  string
	logger *zap.Logger
}

func NewVaultManager(cfg *config.Config, baseLogger *zap.Logger) (*VaultManager, error) {
	log := baseLogger.Named("vault-manager")
	if !cfg.VaultEnabled {
		log.Debug("Vault secret manager is disabled via configuration.")
		return &VaultManager{cfg: cfg, logger: log}, nil
	}

	log.Info("Initializing Vault secret manager", zap.String("address", cfg.VaultAddr))

	vConfig := vault.DefaultConfig()
	vConfig.Address = cfg.VaultAddr
	vConfig.Timeout = 10 * time.Second

	tlsConfig := &vault.TLSConfig{
		CACert:   cfg.VaultCACert,
		Insecure: cfg.VaultSkipVerify,
	}
	if err := vConfig.ConfigureTLS(tlsConfig); err != nil {
		return nil, fmt.Errorf("failed to configure Vault TLS: %w", err)
	}

	client, err := vault.NewClient(vConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.VaultToken != "" {
		log.Info("Using Vault token authentication")
		client.SetToken(cfg.VaultToken)
	} else {
		log.Warn("Vault is enabled, but no VAULT_TOKEN provided; relying on the client's default token lookup.")
	}

	mount := cfg.VaultKVMount
	if mount == "" {
		mount = "secret"
	}

	return &VaultManager{
		client: client,
		cfg:    cfg,
		mount:  mount,
		logger: log,
	}, nil
}

func (m *VaultManager) IsEnabled() bool {
	return m != nil && m.cfg != nil && m.cfg.VaultEnabled && m.client != nil
}

// GetCredentials reads an Oracle username/password pair from the KV v2 engine.
func (m *VaultManager) GetCredentials(ctx context.Context, path, usernameKey, passwordKey string) (*Credentials, error) {
	if !m.IsEnabled() {
		return nil, fmt.Errorf("Vault manager is not enabled or not initialized")
	}
	if path == "" {
		return nil, fmt.Errorf("Vault secret path cannot be empty")
	}
	if usernameKey == "" {
		usernameKey = "username"
	}
	if passwordKey == "" {
		passwordKey = "password"
	}

	log := m.logger.With(zap.String("vault_mount", m.mount), zap.String("vault_path", path))
	log.Info("Reading Oracle credentials from Vault KV v2", zap.String("username_key", usernameKey), zap.String("password_key", passwordKey))

	secret, err := m.client.KVv2(m.mount).Get(ctx, path)
	if err != nil {
		if vaultErr, ok := err.(*vault.ResponseError); ok && vaultErr.StatusCode == http.StatusNotFound {
			log.Error("Secret not found in Vault", zap.Error(err))
			return nil, fmt.Errorf("secret '%s' not found in Vault: %w", path, err)
		}
		log.Error("Failed to read secret from Vault", zap.Error(err))
		return nil, fmt.Errorf("failed to read secret '%s' from Vault: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		log.Error("Vault secret data is empty")
		return nil, fmt.Errorf("secret data for '%s' is empty", path)
	}

	creds, err := credentialsFromData(secret.Data, usernameKey, passwordKey)
	if err != nil {
		log.Error("Vault secret does not hold usable credentials", zap.Error(err))
		return nil, fmt.Errorf("secret '%s': %w", path, err)
	}

	log.Info("Successfully retrieved credentials from Vault")
	return creds, nil
}

// credentialsFromData picks the username and password out of a KV v2 data map.
func credentialsFromData(data map[string]interface{}, usernameKey, passwordKey string) (*Credentials, error) {
	passwordVal, ok := data[passwordKey]
	if !ok || passwordVal == nil {
		return nil, fmt.Errorf("password key '%s' not found or is null", passwordKey)
	}
	password, ok := passwordVal.(string)
	if !ok || password == "" {
		return nil, fmt.Errorf("password value for key '%s' is not a non-empty string", passwordKey)
	}

	username := ""
	if usernameVal, ok := data[usernameKey]; ok && usernameVal != nil {
		username, _ = usernameVal.(string)
	}
	return &Credentials{Username: username, Password: password}, nil
}
