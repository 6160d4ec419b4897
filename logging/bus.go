package logging

import "github.com/rs/zerolog"

// BusLogger adapts zerolog.Logger to the events.Logger interface.
type BusLogger struct {
	logger zerolog.Logger
}

// NewBusLogger creates a new BusLogger wrapping a zerolog.Logger.
func NewBusLogger(logger zerolog.Logger) *BusLogger {
	return &BusLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *BusLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(toFields(keysAndValues)).Msg(msg)
}

// Info logs an info message with optional key-value pairs.
func (l *BusLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(toFields(keysAndValues)).Msg(msg)
}

// Error logs an error message with optional key-value pairs.
func (l *BusLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(toFields(keysAndValues)).Msg(msg)
}

func toFields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
