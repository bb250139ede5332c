package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOptions configures the global logger
type LoggerOptions struct {
	Service string
	Version string
	// Env "development" switches to human-readable console output.
	Env   string
	Level string
	// Output defaults to stdout.
	Output io.Writer
}

// InitLogger initializes the global zerolog logger
func InitLogger(opts LoggerOptions) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.Env == "development" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("service", opts.Service).
			Logger()
		return
	}

	ctx := zerolog.New(out).With().Timestamp().Caller().Str("service", opts.Service)
	if opts.Version != "" {
		ctx = ctx.Str("version", opts.Version)
	}
	log.Logger = ctx.Logger()
}

// LoggerFromContext returns the global logger tagged with the trace and span ids of ctx
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}

	return &logger
}
