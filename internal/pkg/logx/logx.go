/*
Package logx provides a structured logging wrapper based on zerolog.

It initializes the global logger (JSON in production, console output in development),
hands out per-component child loggers, and offers key/value helpers for the common levels.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger initializes the global zerolog instance.
// Development runs at Debug level with a human-readable console writer;
// production runs at Info level with JSON output. Every entry carries a
// Unix timestamp and the caller.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns a pointer to the global zerolog.Logger instance.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// checkFields drops the field list when it is not made of key/value pairs,
// since zerolog would otherwise panic on it.
func checkFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msgf("logx %s call received an odd number of fields, ignoring them: %v", level, fields)
		return nil
	}
	return fields
}

// Debug records a message at the Debug level with optional key/value fields.
func Debug(msg string, fields ...any) {
	fields = checkFields("Debug", fields)
	Logger().Debug().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Info records a message at the Info level with optional key/value fields.
func Info(msg string, fields ...any) {
	fields = checkFields("Info", fields)
	Logger().Info().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Warn records a message at the Warn level with optional key/value fields.
func Warn(msg string, fields ...any) {
	fields = checkFields("Warn", fields)
	Logger().Warn().Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Error records err and a message at the Error level with optional key/value fields.
func Error(err error, msg string, fields ...any) {
	fields = checkFields("Error", fields)
	Logger().Error().Err(err).Fields(fields).CallerSkipFrame(1).Msg(msg)
}

// Fatal records err at the Fatal level and exits the process.
func Fatal(err error, msg string, fields ...any) {
	fields = checkFields("Fatal", fields)
	Logger().Fatal().Err(err).Fields(fields).CallerSkipFrame(1).Msg(msg)
}
