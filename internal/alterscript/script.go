// internal/alterscript/script.go
package alterscript

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
	"github.com/arwahdevops/oradelta/internal/metrics"
	"github.com/arwahdevops/oradelta/internal/utils"
)

// Generator produces alter scripts from delta payloads. Defaults fill in
// the dialect when the payload does not name one.
type Generator struct {
	defaults ddl.Target
	logger   *zap.Logger
	metrics  *metrics.Store
}

// NewGenerator creates a Generator. metricsStore may be nil.
func NewGenerator(defaults ddl.Target, logger *zap.Logger, metricsStore *metrics.Store) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{defaults: defaults, logger: logger.Named("alterscript"), metrics: metricsStore}
}

var defaultGenerator = NewGenerator(ddl.Target{}, nil, nil)

// Target resolves the dialect of a request.
func (g *Generator) Target(p *delta.Payload) ddl.Target {
	return ddl.Target{
		ScriptFormat: utils.FirstNonEmpty(p.ScriptFormat(), g.defaults.ScriptFormat),
		DBVersion:    utils.FirstNonEmpty(p.DBVersion(), g.defaults.DBVersion),
	}
}

// Synthesize returns the statement DTOs for the requested level.
func (g *Generator) Synthesize(p *delta.Payload, level delta.Level) ([]*AlterScriptDto, error) {
	start := time.Now()
	t := g.Target(p)
	log := g.logger.With(zap.String("level", string(level)), zap.String("db_version", t.DBVersion))

	dtos, err := synthesize(p, level, t, log)
	if err != nil {
		log.Error("Alter script generation failed", zap.Error(err))
		if g.metrics != nil {
			g.metrics.GenerationErrorsTotal.WithLabelValues(string(level)).Inc()
		}
		return nil, err
	}

	if g.metrics != nil {
		g.metrics.ScriptsGeneratedTotal.WithLabelValues(string(level)).Inc()
		g.metrics.ScriptGenerationDuration.WithLabelValues(string(level)).Observe(time.Since(start).Seconds())
		for _, dto := range dtos {
			for _, s := range dto.Scripts {
				kind := "other"
				if s.IsDropScript {
					kind = "drop"
				}
				g.metrics.StatementsGeneratedTotal.WithLabelValues(kind).Inc()
			}
		}
	}
	log.Debug("Alter script DTOs generated", zap.Int("count", len(dtos)), zap.Duration("duration", time.Since(start)))
	return dtos, nil
}

// Generate renders the script of the requested level.
func (g *Generator) Generate(p *delta.Payload, level delta.Level) (string, error) {
	dtos, err := g.Synthesize(p, level)
	if err != nil {
		return "", err
	}
	return BuildScript(dtos, p.ApplyDropStatements()), nil
}

// GenerateEntityLevelScript renders the script of an entity level request.
func (g *Generator) GenerateEntityLevelScript(p *delta.Payload) (string, error) {
	return g.Generate(p, delta.LevelEntity)
}

// GenerateContainerLevelScript renders the script of a container level request.
func (g *Generator) GenerateContainerLevelScript(p *delta.Payload) (string, error) {
	return g.Generate(p, delta.LevelContainer)
}

// ContainsDropStatements reports whether the script of the requested level
// would carry any drop fragment.
func (g *Generator) ContainsDropStatements(p *delta.Payload, level delta.Level) (bool, error) {
	dtos, err := g.Synthesize(p, level)
	if err != nil {
		return false, err
	}
	for _, dto := range dtos {
		if dto.HasDropScript() {
			return true, nil
		}
	}
	return false, nil
}

// GenerateEntityLevelScript renders an entity level request with the
// default generator.
func GenerateEntityLevelScript(p *delta.Payload) (string, error) {
	return defaultGenerator.GenerateEntityLevelScript(p)
}

// GenerateContainerLevelScript renders a container level request with the
// default generator.
func GenerateContainerLevelScript(p *delta.Payload) (string, error) {
	return defaultGenerator.GenerateContainerLevelScript(p)
}

// ContainsDropStatements checks a request with the default generator.
func ContainsDropStatements(p *delta.Payload, level delta.Level) (bool, error) {
	return defaultGenerator.ContainsDropStatements(p, level)
}

// BuildScript joins the fragments of all DTOs with a blank line. Fragments
// of deactivated DTOs are commented out, and so are drop fragments unless
// applyDropStatements is set.
func BuildScript(dtos []*AlterScriptDto, applyDropStatements bool) string {
	var parts []string
	for _, dto := range dtos {
		if dto == nil {
			continue
		}
		for _, s := range dto.Scripts {
			active := dto.IsActivated && (applyDropStatements || !s.IsDropScript)
			script := strings.TrimSpace(ddl.CommentIfDeactivated(s.Script, active, false))
			if script != "" {
				parts = append(parts, script)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}
