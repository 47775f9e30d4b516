// internal/secrets/secrets_test.go
package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arwahdevops/oradelta/internal/config"
)

type stubManager struct {
	enabled bool
	creds   *Credentials
	err     error
	calls   int
}

func (s *stubManager) GetCredentials(_ context.Context, _, _, _ string) (*Credentials, error) {
	s.calls++
	return s.creds, s.err
}

func (s *stubManager) IsEnabled() bool { return s.enabled }

func TestLoadOracleCredentials(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	t.Run("env password wins", func(t *testing.T) {
		sm := &stubManager{enabled: true}
		creds, err := LoadOracleCredentials(ctx, config.DatabaseConfig{User: "app", Password: "pw", SecretPath: "p"}, []SecretManager{sm}, log)
		require.NoError(t, err)
		assert.Equal(t, &Credentials{Username: "app", Password: "pw"}, creds)
		assert.Zero(t, sm.calls)
	})

	t.Run("env password without user", func(t *testing.T) {
		_, err := LoadOracleCredentials(ctx, config.DatabaseConfig{Password: "pw"}, nil, log)
		assert.ErrorContains(t, err, "ORACLE_USER")
	})

	t.Run("first working manager", func(t *testing.T) {
		failing := &stubManager{enabled: true, err: errors.New("permission denied")}
		disabled := &stubManager{enabled: false, creds: &Credentials{Username: "x", Password: "y"}}
		working := &stubManager{enabled: true, creds: &Credentials{Password: "vault-pw"}}

		creds, err := LoadOracleCredentials(ctx, config.DatabaseConfig{User: "fallback", SecretPath: "oracle/app"},
			[]SecretManager{failing, disabled, working}, log)
		require.NoError(t, err)
		assert.Equal(t, "fallback", creds.Username)
		assert.Equal(t, "vault-pw", creds.Password)
		assert.Equal(t, 1, failing.calls)
		assert.Zero(t, disabled.calls)
	})

	t.Run("no username anywhere", func(t *testing.T) {
		sm := &stubManager{enabled: true, creds: &Credentials{Password: "pw"}}
		_, err := LoadOracleCredentials(ctx, config.DatabaseConfig{SecretPath: "oracle/app"}, []SecretManager{sm}, log)
		assert.ErrorContains(t, err, "username is missing")
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := LoadOracleCredentials(ctx, config.DatabaseConfig{}, nil, log)
		assert.Error(t, err)
	})
}

func TestCredentialsFromData(t *testing.T) {
	creds, err := credentialsFromData(map[string]interface{}{"user": "app", "pass": "pw"}, "user", "pass")
	require.NoError(t, err)
	assert.Equal(t, "app", creds.Username)

	_, err = credentialsFromData(map[string]interface{}{"user": "app"}, "user", "pass")
	assert.ErrorContains(t, err, "not found")

	_, err = credentialsFromData(map[string]interface{}{"pass": 42}, "user", "pass")
	assert.ErrorContains(t, err, "non-empty string")
}

func TestVaultManager_Disabled(t *testing.T) {
	m, err := NewVaultManager(&config.Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, m.IsEnabled())

	_, err = m.GetCredentials(context.Background(), "oracle/app", "", "")
	assert.Error(t, err)
}
