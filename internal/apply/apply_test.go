// internal/apply/apply_test.go
package apply

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sijms/go-ora/v2/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arwahdevops/oradelta/internal/metrics"
)

// fakeExecer records statements and fails those whose prefix is mapped.
type fakeExecer struct {
	executed []string
	failures map[string]error
}

func (f *fakeExecer) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.executed = append(f.executed, query)
	for prefix, err := range f.failures {
		if strings.HasPrefix(query, prefix) {
			return nil, err
		}
	}
	return nil, nil
}

const sampleScript = `CREATE USER "SALES" NO AUTHENTICATION;

DECLARE
BEGIN
	EXECUTE IMMEDIATE 'CREATE SEQUENCE "SALES"."S1"';
	EXCEPTION WHEN OTHERS THEN
		IF SQLCODE = -955 THEN NULL; ELSE RAISE; END IF;
END;
/

CREATE TABLE "HR"."DEPT" (
	"ID" NUMBER NOT NULL
);
COMMENT ON TABLE "HR"."DEPT" IS 'departments';

-- DROP TABLE "HR"."OLD";

/*
ALTER TABLE "HR"."DEPT" ADD ("X" CLOB);

COMMENT ON COLUMN "HR"."DEPT"."X" IS 'x'; */

CREATE OR REPLACE TYPE "ADDR" AS OBJECT (
	"CITY" VARCHAR2(100)
);`

func TestSplitStatements(t *testing.T) {
	got := SplitStatements(sampleScript)

	want := []string{
		`CREATE USER "SALES" NO AUTHENTICATION`,
		"DECLARE\nBEGIN\n\tEXECUTE IMMEDIATE 'CREATE SEQUENCE \"SALES\".\"S1\"';\n\tEXCEPTION WHEN OTHERS THEN\n\t\tIF SQLCODE = -955 THEN NULL; ELSE RAISE; END IF;\nEND;",
		"CREATE TABLE \"HR\".\"DEPT\" (\n\t\"ID\" NUMBER NOT NULL\n)",
		`COMMENT ON TABLE "HR"."DEPT" IS 'departments'`,
		"CREATE OR REPLACE TYPE \"ADDR\" AS OBJECT (\n\t\"CITY\" VARCHAR2(100)\n)",
	}
	assert.Equal(t, want, got)
}

func TestSplitStatements_Edges(t *testing.T) {
	testCases := []struct {
		name   string
		script string
		want   []string
	}{
		{name: "empty", script: "  \n\n ", want: nil},
		{name: "windows newlines", script: "DROP VIEW \"V\";\r\n\r\nDROP TABLE \"T\";", want: []string{`DROP VIEW "V"`, `DROP TABLE "T"`}},
		{name: "trailing slash and semicolons", script: "BEGIN NULL; END;\n/", want: []string{"BEGIN NULL; END;"}},
		{name: "only comments", script: "-- a;\n-- b;\n\n/* c */", want: nil},
		{name: "whitespace only separator line", script: "DROP INDEX \"I\";\n  \t\nDROP INDEX \"J\";", want: []string{`DROP INDEX "I"`, `DROP INDEX "J"`}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitStatements(tc.script))
		})
	}
}

func TestOracleErrorCode(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		wantCode  int
		wantOK    bool
		ignorable bool
	}{
		{name: "nil", err: nil},
		{name: "driver error", err: &network.OracleError{ErrCode: 955, ErrMsg: "ORA-00955: name is already used by an existing object"}, wantCode: 955, wantOK: true, ignorable: true},
		{name: "wrapped driver error", err: fmt.Errorf("exec: %w", &network.OracleError{ErrCode: 1920, ErrMsg: "ORA-01920: user name 'X' conflicts"}), wantCode: 1920, wantOK: true, ignorable: true},
		{name: "message only", err: errors.New("ORA-00942: table or view does not exist"), wantCode: 942, wantOK: true},
		{name: "no code", err: errors.New("connection reset"), wantOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, ok := OracleErrorCode(tc.err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.ignorable, IsIgnorable(tc.err))
		})
	}
}

func TestExecutor_Apply(t *testing.T) {
	fake := &fakeExecer{failures: map[string]error{
		`CREATE USER`: errors.New("ORA-01920: user name 'SALES' conflicts with another user or role name"),
	}}
	store := metrics.NewMetricsStore()
	exec := NewExecutor(fake, Options{ContinueOnError: true}, zaptest.NewLogger(t), store)

	res, err := exec.Apply(context.Background(), sampleScript)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 4, res.Executed)
	assert.Equal(t, 1, res.Ignored)
	assert.Len(t, fake.executed, 5)

	assert.Equal(t, float64(4), testutil.ToFloat64(store.StatementsExecutedTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(store.StatementsExecutedTotal.WithLabelValues("ignored")))
	assert.Equal(t, float64(0), testutil.ToFloat64(store.ApplyRunning))
}

func TestExecutor_ContinueOnError(t *testing.T) {
	failures := map[string]error{
		`CREATE TABLE`: errors.New("ORA-01031: insufficient privileges"),
		`COMMENT ON`:   errors.New("ORA-00942: table or view does not exist"),
	}

	t.Run("accumulates", func(t *testing.T) {
		fake := &fakeExecer{failures: failures}
		exec := NewExecutor(fake, Options{ContinueOnError: true}, zaptest.NewLogger(t), nil)

		res, err := exec.Apply(context.Background(), sampleScript)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotAllExecuted)
		assert.Contains(t, err.Error(), "ORA-01031")
		assert.Contains(t, err.Error(), "ORA-00942")
		assert.Equal(t, 2, res.Failed)
		assert.Len(t, fake.executed, 5, "every statement is attempted")
	})

	t.Run("stops on first failure", func(t *testing.T) {
		fake := &fakeExecer{failures: failures}
		exec := NewExecutor(fake, Options{}, zaptest.NewLogger(t), nil)

		res, err := exec.Apply(context.Background(), sampleScript)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotAllExecuted)
		assert.NotContains(t, err.Error(), "ORA-00942")
		assert.Equal(t, 1, res.Failed)
		assert.Len(t, fake.executed, 3)
	})
}

func TestExecutor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeExecer{}
	exec := NewExecutor(fake, Options{ContinueOnError: true}, zaptest.NewLogger(t), nil)
	_, err := exec.Apply(ctx, sampleScript)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.executed)
}
