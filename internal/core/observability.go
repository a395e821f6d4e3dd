package core

import (
	"context"
	"sync"
	"time"

	"agricore/pkg/domain"
)

// Service operations are discrete, nameable events that telemetry
// collaborators observe by wrapping calls.
const (
	OpEntityAdded     = "entity.added"
	OpEntityUpdated   = "entity.updated"
	OpEntityRemoved   = "entity.removed"
	OpInsightComputed = "insight.computed"
)

// Logger receives structured key-value log lines from the service.
// *slog.Logger satisfies the interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus reports the outcome recorded for an audited operation.
type AuditStatus string

// Audit outcomes.
const (
	AuditSucceeded AuditStatus = "succeeded"
	AuditFailed    AuditStatus = "failed"
)

// AuditEntry captures audit trail metadata for a registry operation.
type AuditEntry struct {
	Operation  string            `json:"operation"`
	Entity     domain.EntityType `json:"entity,omitempty"`
	EntityID   string            `json:"entity_id,omitempty"`
	Status     AuditStatus       `json:"status"`
	Error      string            `json:"error,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// AuditRecorder records registry audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAuditLog retains audit entries in memory. Intended for tests and
// development.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record appends the entry to the log.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all recorded entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// MetricsRecorder observes operation outcomes and durations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span, recording the operation error if any.
type TraceSpan interface {
	End(err error)
}
