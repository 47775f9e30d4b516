// internal/logger/logger.go
package logger

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log *zap.Logger
)

// SQLTracer logs executed statements through zap, redacting credentials and
// flagging slow statements.
type SQLTracer struct {
	*zap.Logger
	SlowThreshold  time.Duration
	SensitiveWords []string
	Verbose        bool // Log setiap statement di level Debug
	redactors      []*regexp.Regexp
}

// identifiedBy catches "IDENTIFIED BY <secret>" in CREATE/ALTER USER.
var identifiedBy = regexp.MustCompile(`(?i)(identified\s+by\s+)("[^"]*"|\S+)`)

// Init initializes the global Zap logger.
// jsonOutput controls whether logs are formatted as JSON.
func Init(debug bool, jsonOutput bool) error {
	var config zap.Config
	var encoderConfig zapcore.EncoderConfig

	if debug {
		config = zap.NewDevelopmentConfig()
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // Colored level for dev console
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	} else {
		config = zap.NewProductionConfig()
		encoderConfig = zap.NewProductionEncoderConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		config.DisableCaller = true
	}

	// Common encoder settings
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.LevelKey = "level"
	encoderConfig.NameKey = "logger"
	encoderConfig.MessageKey = "msg"
	encoderConfig.StacktraceKey = "stacktrace"
	if !config.DisableCaller {
		encoderConfig.CallerKey = "caller"
	}

	config.EncoderConfig = encoderConfig
	config.DisableStacktrace = !debug

	if jsonOutput {
		config.Encoding = "json"
	} else {
		config.Encoding = "console"
	}
	// Script dan hasil JSON/YAML ditulis ke stdout, log ke stderr.
	config.OutputPaths = []string{"stderr"}

	var err error
	Log, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to build zap logger: %w", err)
	}

	Log.Debug("Logger initialized",
		zap.Bool("debug_mode", debug),
		zap.Bool("json_output", jsonOutput),
		zap.String("log_level", config.Level.Level().String()),
	)
	return nil
}

// NewSQLTracer creates a statement tracer on top of base. A nil base falls
// back to the global logger.
func NewSQLTracer(base *zap.Logger, debug bool) *SQLTracer {
	if base == nil {
		base = Log
	}
	if base == nil {
		panic("Zap logger (Log) is not initialized before creating SQLTracer")
	}

	t := &SQLTracer{
		Logger:         base.Named("sql"),
		SlowThreshold:  2 * time.Second, // DDL lebih lambat dari query biasa
		SensitiveWords: []string{"password", "token", "secret", "apikey", "credential"},
		Verbose:        debug,
	}
	for _, word := range t.SensitiveWords {
		t.redactors = append(t.redactors,
			regexp.MustCompile(fmt.Sprintf(`(?i)(%s\s*[:=]\s*)('.*?'|".*?"|\S+)`, regexp.QuoteMeta(word))))
	}
	return t
}

// Redact masks credentials embedded in a statement.
func (l *SQLTracer) Redact(sql string) string {
	redacted := identifiedBy.ReplaceAllString(sql, `${1}***REDACTED***`)
	for _, re := range l.redactors {
		redacted = re.ReplaceAllString(redacted, `${1}***REDACTED***`)
	}
	return redacted
}

// Trace logs one executed statement.
func (l *SQLTracer) Trace(begin time.Time, sql string, err error) {
	elapsed := time.Since(begin)

	fields := []zap.Field{
		zap.Duration("duration", elapsed.Round(time.Millisecond)),
		zap.String("sql", Summarize(l.Redact(sql), 150)),
	}

	switch {
	case err != nil:
		fields = append(fields, zap.Error(err))
		l.Logger.Error("SQL Error", fields...)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold:
		fields = append(fields, zap.Duration("threshold", l.SlowThreshold))
		l.Logger.Warn("Slow Statement", fields...)
	case l.Verbose:
		l.Logger.Debug("SQL Statement", fields...)
	}
}

// Summarize returns the first line of a statement cut to max runes.
func Summarize(sql string, max int) string {
	line := strings.TrimSpace(sql)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	runes := []rune(line)
	if max > 0 && len(runes) > max {
		return string(runes[:max])
	}
	return line
}
