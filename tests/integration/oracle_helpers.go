//go:build integration

package integration

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/arwahdevops/oradelta/internal/db"
)

const (
	oracleImage    = "gvenzl/oracle-free:23-slim-faststart"
	oracleService  = "FREEPDB1"
	oraclePassword = "Or4delta_test"
	oraclePort     = nat.Port("1521/tcp")
)

// TestOracleInstance menyimpan detail instance Oracle untuk test.
type TestOracleInstance struct {
	Container testcontainers.Container
	Conn      *db.Connector
	Host      string
	Port      nat.Port
	Username  string
	Password  string
	Service   string
}

// mustPortInt adalah helper untuk mengkonversi nat.Port ke int.
func mustPortInt(t *testing.T, port nat.Port) int {
	t.Helper()
	p, err := strconv.Atoi(port.Port())
	if err != nil {
		t.Fatalf("Failed to convert port %s to int: %v", port.Port(), err)
	}
	return p
}

// startOracleContainer memulai kontainer Oracle Free dan terhubung sebagai SYSTEM.
func startOracleContainer(ctx context.Context, t *testing.T) *TestOracleInstance {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        oracleImage,
		ExposedPorts: []string{string(oraclePort)},
		Env: map[string]string{
			"ORACLE_PASSWORD": oraclePassword,
		},
		WaitingFor: wait.ForLog("DATABASE IS READY TO USE!").
			WithStartupTimeout(5 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start oracle container: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("Failed to get oracle container host: %s", err)
	}
	mappedPort, err := container.MappedPort(ctx, oraclePort)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("Failed to get mapped port for oracle: %s", err)
	}

	ci := db.ConnectionInfo{
		Host:     host,
		Port:     mustPortInt(t, mappedPort),
		Service:  oracleService,
		User:     "SYSTEM",
		Password: oraclePassword,
	}
	conn, err := db.ConnectWithRetry(ctx, ci, 10, 3*time.Second, zaptest.NewLogger(t))
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("Failed to connect to test oracle instance: %s", err)
	}
	_ = conn.Optimize(2, time.Minute)

	t.Logf("Oracle container started. Host: %s, Port: %s", host, mappedPort.Port())

	return &TestOracleInstance{
		Container: container,
		Conn:      conn,
		Host:      host,
		Port:      mappedPort,
		Username:  ci.User,
		Password:  ci.Password,
		Service:   ci.Service,
	}
}

// stopContainer menutup koneksi lalu menghentikan kontainer test.
func stopContainer(ctx context.Context, t *testing.T, instance *TestOracleInstance) {
	t.Helper()
	if instance == nil {
		return
	}
	if err := instance.Conn.Close(); err != nil {
		t.Logf("Warning: error closing oracle connection: %v", err)
	}
	if instance.Container != nil {
		if err := instance.Container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate oracle container: %s", err)
		} else {
			t.Logf("Oracle container terminated successfully.")
		}
	}
}

// countRows runs a COUNT(*) query with one bind.
func countRows(ctx context.Context, t *testing.T, instance *TestOracleInstance, query string, arg any) int {
	t.Helper()
	var n int
	if err := instance.Conn.DB.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		t.Fatalf("Query failed: %v\n%s", err, query)
	}
	return n
}
