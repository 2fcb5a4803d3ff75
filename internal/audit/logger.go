package audit

import (
	"context"
	"log"
)

// LogLogger writes audit entries to a standard logger when no database is configured.
type LogLogger struct {
	logger *log.Logger
}

// NewLogLogger constructs a log-backed audit logger.
func NewLogLogger(logger *log.Logger) *LogLogger {
	if logger == nil {
		logger = log.Default()
	}
	return &LogLogger{logger: logger}
}

// Log prints the entry.
func (l *LogLogger) Log(_ context.Context, entry Entry) error {
	entry = Prepare(entry)
	l.logger.Printf("audit: action=%s actor=%s role=%s resource=%s/%s digest=%s",
		entry.Action, entry.Actor, entry.Role, entry.ResourceType, entry.ResourceID, entry.PayloadDigest)
	return nil
}
