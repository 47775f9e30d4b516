// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	go_ora "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/logger"
)

// DriverName is the database/sql driver registered by go-ora.
const DriverName = "oracle"

type Connector struct {
	DB      *sql.DB
	Service string
}

// ConnectionInfo describes one Oracle endpoint.
type ConnectionInfo struct {
	Host     string
	Port     int
	Service  string
	User     string
	Password string
	Options  map[string]string // go-ora URL options, e.g. SSL, TIMEOUT
}

// URL builds the go-ora connection URL.
func (ci ConnectionInfo) URL() string {
	options := map[string]string{}
	for k, v := range ci.Options {
		options[k] = v
	}
	if _, ok := options["TIMEOUT"]; !ok {
		options["TIMEOUT"] = "30"
	}
	return go_ora.BuildUrl(ci.Host, ci.Port, ci.Service, ci.User, ci.Password, options)
}

func New(ci ConnectionInfo) (*Connector, error) {
	if ci.Host == "" || ci.Service == "" {
		return nil, fmt.Errorf("oracle host and service are required")
	}
	db, err := sql.Open(DriverName, ci.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open oracle connection (%s:%d/%s): %w", ci.Host, ci.Port, ci.Service, err)
	}
	return &Connector{DB: db, Service: ci.Service}, nil
}

// Optimize configures the underlying connection pool.
func (c *Connector) Optimize(poolSize int, maxLifetime time.Duration) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("connector is not initialized")
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	if maxLifetime <= 0 {
		maxLifetime = time.Hour
	}
	c.DB.SetMaxIdleConns((poolSize + 1) / 2)
	c.DB.SetMaxOpenConns(poolSize)
	c.DB.SetConnMaxLifetime(maxLifetime)
	return nil
}

func (c *Connector) Ping(ctx context.Context) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("connector is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.DB.PingContext(pingCtx)
}

// Version returns the banner of the connected instance.
func (c *Connector) Version(ctx context.Context) (string, error) {
	var banner string
	row := c.DB.QueryRowContext(ctx, `SELECT BANNER_FULL FROM V$VERSION WHERE ROWNUM = 1`)
	if err := row.Scan(&banner); err != nil {
		return "", fmt.Errorf("failed to read oracle version: %w", err)
	}
	return banner, nil
}

func (c *Connector) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	if logger.Log != nil {
		logger.Log.Info("Closing database connection pool", zap.String("service", c.Service))
	}
	return c.DB.Close()
}

// ConnectWithRetry opens a connector and pings it, retrying up to maxRetries
// times with retryInterval between attempts.
func ConnectWithRetry(ctx context.Context, ci ConnectionInfo, maxRetries int, retryInterval time.Duration, log *zap.Logger) (*Connector, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("host", ci.Host), zap.Int("port", ci.Port), zap.String("service", ci.Service))
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		attemptStartTime := time.Now()
		if i > 0 {
			log.Warn("Retrying database connection",
				zap.Int("attempt", i+1),
				zap.Int("max_attempts", maxRetries+1),
				zap.Duration("wait_interval", retryInterval),
				zap.NamedError("previous_error", lastErr))
			timer := time.NewTimer(retryInterval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("context cancelled while waiting to retry connection (attempt %d): %w; last error: %v", i+1, ctx.Err(), lastErr)
			}
		}

		log.Info("Attempting to connect", zap.String("user", ci.User), zap.Int("attempt", i+1))

		conn, err := New(ci)
		if err != nil {
			lastErr = fmt.Errorf("connect attempt %d/%d failed: %w", i+1, maxRetries+1, err)
			continue
		}

		if pingErr := conn.Ping(ctx); pingErr != nil {
			lastErr = fmt.Errorf("ping attempt %d/%d failed: %w", i+1, maxRetries+1, pingErr)
			_ = conn.Close()
			continue
		}

		log.Info("Database connection successful", zap.Duration("connect_duration", time.Since(attemptStartTime)))
		return conn, nil
	}

	log.Error("Failed to connect to database after all retries",
		zap.Int("attempts", maxRetries+1),
		zap.NamedError("final_error", lastErr))
	return nil, fmt.Errorf("failed to connect to oracle at %s:%d/%s after %d attempts: %w", ci.Host, ci.Port, ci.Service, maxRetries+1, lastErr)
}
