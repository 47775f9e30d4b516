// internal/reverse/source.go
package reverse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arwahdevops/oradelta/internal/logger"
)

// RawSequence is one row of ALL_SEQUENCES as read from the dictionary.
// Numeric columns are kept as text so that 28 digit bounds survive.
type RawSequence struct {
	SequenceName string
	Sharing      string
	MinValue     string
	MaxValue     string
	Increment    string
	CacheValue   string
	Cycle        string // Y/N flags
	Order        string
	Scale        string
	Extend       string
	Shard        string
	Session      string
	Keep         string
	DDLScript    string
}

// Source reads the dictionary of one schema.
type Source interface {
	Sequences(ctx context.Context, schema string) ([]RawSequence, error)
	SequenceDDL(ctx context.Context, schema string) (map[string]string, error)
	ObjectDDL(ctx context.Context, schema string) ([]string, error)
}

// Querier is the part of *sql.DB used by OracleSource.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// OracleSource reads sequences and DDL through database/sql.
type OracleSource struct {
	DB     Querier
	Tracer *logger.SQLTracer // optional
}

const sequencesQuery = `
SELECT ALL_OBJECTS.OBJECT_NAME,
       ALL_OBJECTS.SHARING,
       TO_CHAR(ALL_SEQUENCES.MIN_VALUE),
       TO_CHAR(ALL_SEQUENCES.MAX_VALUE),
       TO_CHAR(ALL_SEQUENCES.INCREMENT_BY),
       TO_CHAR(ALL_SEQUENCES.CACHE_SIZE),
       ALL_SEQUENCES.CYCLE_FLAG,
       ALL_SEQUENCES.ORDER_FLAG,
       ALL_SEQUENCES.SCALE_FLAG,
       ALL_SEQUENCES.EXTEND_FLAG,
       ALL_SEQUENCES.SHARDED_FLAG,
       ALL_SEQUENCES.SESSION_FLAG,
       ALL_SEQUENCES.KEEP_VALUE
FROM ALL_OBJECTS
LEFT JOIN ALL_SEQUENCES
       ON ALL_SEQUENCES.SEQUENCE_OWNER = ALL_OBJECTS.OWNER
      AND ALL_SEQUENCES.SEQUENCE_NAME = ALL_OBJECTS.OBJECT_NAME
WHERE ALL_OBJECTS.OBJECT_TYPE = 'SEQUENCE'
  AND ALL_OBJECTS.OWNER = :1`

const sequenceDDLQuery = `
SELECT OBJECT_NAME, DBMS_METADATA.GET_DDL(OBJECT_TYPE, OBJECT_NAME, OWNER)
FROM ALL_OBJECTS
WHERE OBJECT_TYPE = 'SEQUENCE'
  AND OWNER = :1`

const objectDDLQuery = `
SELECT DBMS_METADATA.GET_DDL(OBJECT_TYPE, OBJECT_NAME, OWNER)
FROM ALL_OBJECTS
WHERE OBJECT_TYPE IN ('TABLE', 'VIEW')
  AND OWNER = :1
  AND OBJECT_NAME NOT LIKE 'BIN$%'`

func (s *OracleSource) query(ctx context.Context, query string, schema string) (*sql.Rows, error) {
	begin := time.Now()
	rows, err := s.DB.QueryContext(ctx, query, schema)
	if s.Tracer != nil {
		s.Tracer.Trace(begin, query, err)
	}
	return rows, err
}

// Sequences implements Source.
func (s *OracleSource) Sequences(ctx context.Context, schema string) ([]RawSequence, error) {
	rows, err := s.query(ctx, sequencesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequences of %s: %w", schema, err)
	}
	defer rows.Close()

	var out []RawSequence
	for rows.Next() {
		var name string
		var cols [12]sql.NullString
		dest := []any{&name}
		for i := range cols {
			dest = append(dest, &cols[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan sequence row of %s: %w", schema, err)
		}
		out = append(out, RawSequence{
			SequenceName: name,
			Sharing:      cols[0].String,
			MinValue:     cols[1].String,
			MaxValue:     cols[2].String,
			Increment:    cols[3].String,
			CacheValue:   cols[4].String,
			Cycle:        cols[5].String,
			Order:        cols[6].String,
			Scale:        cols[7].String,
			Extend:       cols[8].String,
			Shard:        cols[9].String,
			Session:      cols[10].String,
			Keep:         cols[11].String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sequences of %s: %w", schema, err)
	}
	return out, nil
}

// SequenceDDL implements Source.
func (s *OracleSource) SequenceDDL(ctx context.Context, schema string) (map[string]string, error) {
	rows, err := s.query(ctx, sequenceDDLQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequence DDL of %s: %w", schema, err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name string
		var ddl sql.NullString
		if err := rows.Scan(&name, &ddl); err != nil {
			return nil, fmt.Errorf("failed to scan sequence DDL of %s: %w", schema, err)
		}
		out[name] = ddl.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sequence DDL of %s: %w", schema, err)
	}
	return out, nil
}

// ObjectDDL implements Source.
func (s *OracleSource) ObjectDDL(ctx context.Context, schema string) ([]string, error) {
	rows, err := s.query(ctx, objectDDLQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query table/view DDL of %s: %w", schema, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ddl sql.NullString
		if err := rows.Scan(&ddl); err != nil {
			return nil, fmt.Errorf("failed to scan table/view DDL of %s: %w", schema, err)
		}
		if ddl.Valid {
			out = append(out, ddl.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table/view DDL of %s: %w", schema, err)
	}
	return out, nil
}
