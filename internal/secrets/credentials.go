// internal/secrets/credentials.go
package secrets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/config"
)

// LoadOracleCredentials returns the credentials of the configured Oracle
// instance: ORACLE_PASSWORD when set, otherwise the first secret manager
// that yields a password for ORACLE_SECRET_PATH.
func LoadOracleCredentials(ctx context.Context, dbCfg config.DatabaseConfig, managers []SecretManager, log *zap.Logger) (*Credentials, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("db", "oracle"))

	if dbCfg.Password != "" {
		log.Info("Using password directly from environment variable.")
		if dbCfg.User == "" {
			return nil, fmt.Errorf("ORACLE_PASSWORD is set but ORACLE_USER is missing")
		}
		return &Credentials{Username: dbCfg.User, Password: dbCfg.Password}, nil
	}

	if dbCfg.SecretPath == "" {
		return nil, fmt.Errorf("could not load oracle credentials: set ORACLE_PASSWORD or ORACLE_SECRET_PATH with VAULT_ENABLED=true")
	}
	if len(managers) == 0 {
		log.Warn("Secret path is configured, but no secret managers are active/enabled.")
	}

	for _, sm := range managers {
		if !sm.IsEnabled() {
			continue
		}
		getCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		creds, err := sm.GetCredentials(getCtx, dbCfg.SecretPath, dbCfg.UsernameKey, dbCfg.PasswordKey)
		cancel()
		if err != nil || creds == nil {
			log.Warn("Failed to retrieve credentials from secret manager. Trying next if available.",
				zap.String("manager_type", fmt.Sprintf("%T", sm)),
				zap.Error(err))
			continue
		}
		if creds.Username == "" {
			log.Warn("Username field empty in retrieved secret. Falling back to ORACLE_USER.")
			creds.Username = dbCfg.User
			if creds.Username == "" {
				return nil, fmt.Errorf("password retrieved from %T, but username is missing in both secret and ORACLE_USER", sm)
			}
		}
		return creds, nil
	}

	log.Error("No enabled secret manager provided valid credentials.", zap.String("path_or_id", dbCfg.SecretPath))
	return nil, fmt.Errorf("could not load oracle credentials from secret path %q", dbCfg.SecretPath)
}
