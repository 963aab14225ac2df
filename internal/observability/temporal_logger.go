package observability

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TemporalLogger adapts zerolog to the Temporal SDK's log.Logger interface
// so workflow and activity logs land in the same structured stream as the
// rest of the service.
type TemporalLogger struct {
	logger zerolog.Logger
}

// NewTemporalLogger wraps the given zerolog.Logger, tagging every entry
// with a "component":"temporal-sdk" field.
func NewTemporalLogger(logger zerolog.Logger) *TemporalLogger {
	return &TemporalLogger{logger: logger.With().Str("component", "temporal-sdk").Logger()}
}

func (l *TemporalLogger) Debug(msg string, keyvals ...any) {
	l.logger.Debug().Fields(fieldsFromKeyvals(keyvals)).Msg(msg)
}

func (l *TemporalLogger) Info(msg string, keyvals ...any) {
	l.logger.Info().Fields(fieldsFromKeyvals(keyvals)).Msg(msg)
}

func (l *TemporalLogger) Warn(msg string, keyvals ...any) {
	l.logger.Warn().Fields(fieldsFromKeyvals(keyvals)).Msg(msg)
}

func (l *TemporalLogger) Error(msg string, keyvals ...any) {
	l.logger.Error().Fields(fieldsFromKeyvals(keyvals)).Msg(msg)
}

// fieldsFromKeyvals converts the SDK's alternating key-value slice into a
// zerolog field map. A dangling value without a key is kept under "_extra"
// rather than silently dropped.
func fieldsFromKeyvals(keyvals []any) map[string]any {
	m := make(map[string]any, len(keyvals)/2+1)
	i := 0
	for ; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvals[i])
		}
		m[key] = keyvals[i+1]
	}
	if i < len(keyvals) {
		m["_extra"] = keyvals[i]
	}
	return m
}
