// Package logger configures the application's logging and monitoring.
//
// It uses *zerolog* for every log line: the root logger built from the
// observability config, the request-scoped child loggers carried in
// context.Context, and the pgx query logger used in local development.
// When a license key is configured it also owns the *New Relic*
// application, forwards JSON logs to it and adds trace ids to loggers.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deppfellow/go-users/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// newRelicShutdownTimeout bounds the final harvest on shutdown.
const newRelicShutdownTimeout = 10 * time.Second

// LoggerService holds the New Relic application, if one is configured.
// A nil *LoggerService behaves like one without an application.
type LoggerService struct {
	nrApp *newrelic.Application
}

// NewLoggerService starts the New Relic agent when cfg carries a license
// key. Without one the service is returned empty and every New Relic
// integration stays off. opts are applied after the options derived from cfg.
func NewLoggerService(cfg *config.ObservabilityConfig, opts ...newrelic.ConfigOption) (*LoggerService, error) {
	service := &LoggerService{}

	if !cfg.IsNewRelicEnabled() {
		return service, nil
	}

	configOptions := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
		func(c *newrelic.Config) {
			c.Labels = map[string]string{"environment": cfg.Environment}
		},
	}

	if cfg.NewRelic.DebugLogging {
		configOptions = append(configOptions, newrelic.ConfigDebugLogger(os.Stdout))
	}

	configOptions = append(configOptions, opts...)

	app, err := newrelic.NewApplication(configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize new relic: %w", err)
	}

	service.nrApp = app
	return service, nil
}

// GetApplication returns the New Relic application, or nil.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// Shutdown flushes pending New Relic data.
func (ls *LoggerService) Shutdown() {
	if app := ls.GetApplication(); app != nil {
		app.Shutdown(newRelicShutdownTimeout)
	}
}

// New builds the root logger.
//
// JSON goes to stdout (CloudWatch picks it up as-is); "console" switches to
// zerolog's human-friendly writer for local runs.
func New(cfg *config.ObservabilityConfig) *zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewLoggerWithService is New, forwarding JSON log lines to New Relic when
// ls has an application and log forwarding is enabled.
func NewLoggerWithService(cfg *config.ObservabilityConfig, ls *LoggerService) *zerolog.Logger {
	var out io.Writer = os.Stdout

	if app := ls.GetApplication(); app != nil && cfg.NewRelic.AppLogForwardingEnabled && cfg.Logging.Format != "console" {
		out = zerologWriter.New(os.Stdout, app)
	}

	return NewWithWriter(cfg, out)
}

// NewWithWriter is New with an explicit destination, used by tests.
func NewWithWriter(cfg *config.ObservabilityConfig, w io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	// Lets Err() on errors wrapped with pkg/errors emit a "stack" field.
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var writer io.Writer = w
	if cfg.Logging.Format == "console" {
		writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	return &logger
}

// WithContext stores l in ctx so lower layers can log with the same fields.
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithTraceContext adds the New Relic trace and span ids of txn to l.
func WithTraceContext(l zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return l
	}

	metadata := txn.GetTraceMetadata()

	return l.With().
		Str("trace.id", metadata.TraceID).
		Str("span.id", metadata.SpanID).
		Logger()
}

// NewPgxLogger creates the logger used for pgx query tracing.
//
// It is console-formatted and only wired in the local environment, where
// reading SQL by eye is the point.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.Kitchen,
	}).
		Level(level).
		With().
		Timestamp().
		Str("component", "database").
		Logger()
}

// GetPgxTraceLogLevel maps a zerolog level onto the pgx tracelog level.
func GetPgxTraceLogLevel(level zerolog.Level) tracelog.LogLevel {
	switch level {
	case zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelNone
	}
}
