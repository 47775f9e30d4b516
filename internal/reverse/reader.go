// internal/reverse/reader.go
package reverse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/metrics"
)

// SchemaSequences is the reverse result of one schema.
type SchemaSequences struct {
	Schema    string           `json:"schema" yaml:"schema"`
	Sequences []delta.Sequence `json:"sequences" yaml:"sequences"`
}

// Reader reverse engineers sequences of several schemas concurrently.
type Reader struct {
	source      Source
	logger      *zap.Logger
	metrics     *metrics.Store
	concurrency int
	filterUsage bool
}

// NewReader creates a Reader. metricsStore may be nil.
func NewReader(source Source, concurrency int, filterUsage bool, log *zap.Logger, metricsStore *metrics.Store) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Reader{
		source:      source,
		logger:      log.Named("reverse"),
		metrics:     metricsStore,
		concurrency: concurrency,
		filterUsage: filterUsage,
	}
}

// Read returns the sequences of every schema, sorted by schema name. A
// failing schema does not stop the others; its error is accumulated and the
// schema is returned without sequences.
func (r *Reader) Read(ctx context.Context, schemas []string) ([]SchemaSequences, error) {
	results := make([]SchemaSequences, len(schemas))
	var (
		mu   sync.Mutex
		errs error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, schema := range schemas {
		g.Go(func() error {
			seqs, err := r.ReadSchema(gctx, schema)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			results[i] = SchemaSequences{Schema: schema, Sequences: seqs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reverse engineering cancelled: %w", err)
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Schema < results[b].Schema })
	return results, errs
}

// ReadSchema returns the sequences of one schema, optionally limited to the
// ones used by its tables and views.
func (r *Reader) ReadSchema(ctx context.Context, schema string) ([]delta.Sequence, error) {
	log := r.logger.With(zap.String("schema", schema))

	raws, err := r.source.Sequences(ctx, schema)
	if err != nil {
		log.Error("Cannot get sequences", zap.Error(err))
		return nil, err
	}
	if len(raws) == 0 {
		log.Debug("Schema has no sequences")
		return nil, nil
	}

	ddlByName, err := r.source.SequenceDDL(ctx, schema)
	if err != nil {
		// Tanpa DDL, START WITH jatuh ke batas bawah.
		log.Warn("Cannot get sequences DDL", zap.Error(err))
		ddlByName = map[string]string{}
	}

	sequences := make([]delta.Sequence, 0, len(raws))
	for _, raw := range raws {
		raw.DDLScript = ddlByName[raw.SequenceName]
		sequences = append(sequences, MapSequence(raw))
	}

	if r.filterUsage {
		ddls, err := r.source.ObjectDDL(ctx, schema)
		if err != nil {
			log.Error("Cannot get table/view DDL for sequence usage filter", zap.Error(err))
			return nil, err
		}
		before := len(sequences)
		sequences = FilterUsed(sequences, ddls)
		log.Debug("Sequence usage filter applied", zap.Int("read", before), zap.Int("kept", len(sequences)))
	}

	if r.metrics != nil {
		r.metrics.SequencesReadTotal.WithLabelValues(schema).Add(float64(len(sequences)))
	}
	log.Info("Sequences read", zap.Int("count", len(sequences)))
	return sequences, nil
}
