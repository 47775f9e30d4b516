// cmd_db.go
package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/db"
	"github.com/arwahdevops/oradelta/internal/secrets"
)

// connectOracle loads credentials and opens the configured Oracle instance.
func (a *app) connectOracle(ctx context.Context) (*db.Connector, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	// Initialize Secret Managers
	vaultMgr, vaultErr := secrets.NewVaultManager(a.cfg, a.log)
	if vaultErr != nil {
		if a.cfg.VaultEnabled {
			a.log.Error("Failed to initialize Vault secret manager", zap.Error(vaultErr))
			return nil, vaultErr
		}
		a.log.Warn("Could not initialize Vault secret manager (Vault not enabled or config error)", zap.Error(vaultErr))
	}
	availableSecretManagers := make([]secrets.SecretManager, 0)
	if vaultMgr != nil && vaultMgr.IsEnabled() {
		availableSecretManagers = append(availableSecretManagers, vaultMgr)
	}

	a.log.Info("Loading database credentials...")
	creds, err := secrets.LoadOracleCredentials(ctx, a.cfg.Oracle, availableSecretManagers, a.log)
	if err != nil {
		a.log.Error("Failed to load Oracle credentials", zap.Error(err))
		return nil, err
	}

	ci := db.ConnectionInfo{
		Host:     a.cfg.Oracle.Host,
		Port:     a.cfg.Oracle.Port,
		Service:  a.cfg.Oracle.Service,
		User:     creds.Username,
		Password: creds.Password,
	}
	conn, err := db.ConnectWithRetry(ctx, ci, a.cfg.MaxRetries, a.cfg.RetryInterval, a.log)
	if err != nil {
		a.metrics.DBConnections.WithLabelValues("oracle").Set(0)
		return nil, fmt.Errorf("failed to establish oracle connection: %w", err)
	}

	if err := conn.Optimize(a.cfg.ConnPoolSize, a.cfg.ConnMaxLifetime); err != nil {
		a.log.Warn("Failed to optimize DB pool", zap.Error(err))
	}
	if banner, err := conn.Version(ctx); err == nil {
		a.log.Info("Connected to Oracle", zap.String("version", banner))
	} else {
		a.log.Debug("Could not read Oracle version banner", zap.Error(err))
	}
	a.metrics.DBConnections.WithLabelValues("oracle").Set(float64(conn.DB.Stats().OpenConnections))
	return conn, nil
}

// closeOracle closes conn and logs any error.
func (a *app) closeOracle(conn *db.Connector) {
	if err := conn.Close(); err != nil {
		a.log.Error("Error closing Oracle DB", zap.Error(err))
	}
}
