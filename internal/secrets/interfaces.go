// internal/secrets/interfaces.go
package secrets

import "context"

// Credentials holds an Oracle username and password.
type Credentials struct {
	Username string
	Password string
}

// SecretManager is a secret backend that can hand out Oracle credentials.
type SecretManager interface {
	// GetCredentials reads the secret at pathOrID and picks the username and
	// password out of it by key.
	GetCredentials(ctx context.Context, pathOrID string, usernameKey string, passwordKey string) (*Credentials, error)

	IsEnabled() bool
}
