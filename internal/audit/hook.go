package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// EntryWriter persists audit entries.
type EntryWriter interface {
	Record(ctx context.Context, entry Entry) error
}

// HookMetrics counts audit trail activity.
type HookMetrics interface {
	IncAuditEntry(action string)
}

// Hook consumes document-change events and writes the audit trail. Hooks
// run independently per document event; no ordering is guaranteed across
// documents.
type Hook struct {
	writer  EntryWriter
	logger  *slog.Logger
	metrics HookMetrics
}

// NewHook constructs a Hook.
func NewHook(writer EntryWriter, logger *slog.Logger, metrics HookMetrics) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{writer: writer, logger: logger, metrics: metrics}
}

// Handle processes one TaskTypeChange task. CREATE and DELETE always
// produce an entry; UPDATE only when the change detector confirms a
// non-system field differs. Persistence failures are logged and the task is
// not retried: the trail is best effort by contract.
func (h *Hook) Handle(ctx context.Context, t *asynq.Task) error {
	var change Change
	if err := json.Unmarshal(t.Payload(), &change); err != nil {
		h.logger.Error("audit hook payload", slog.Any("error", err))
		return fmt.Errorf("audit: decode change: %v: %w", err, asynq.SkipRetry)
	}

	if change.Action == ActionUpdate && !Changed(change.Before, change.After) {
		return nil
	}

	entry := Entry{
		EntityType: change.Collection,
		EntityID:   change.DocumentID,
		Action:     change.Action,
		OldData:    change.Before,
		NewData:    change.After,
		Source:     change.Source,
		OccurredAt: time.Now().UTC(),
	}
	if change.ActorUID != "" || change.ActorEmail != "" {
		entry.Actor = &Actor{UID: change.ActorUID, Email: change.ActorEmail}
	}

	if err := h.writer.Record(ctx, entry); err != nil {
		h.logger.Error("audit hook record",
			slog.String("collection", change.Collection),
			slog.String("document_id", change.DocumentID),
			slog.Any("error", err))
		return fmt.Errorf("audit: record: %v: %w", err, asynq.SkipRetry)
	}
	if h.metrics != nil {
		h.metrics.IncAuditEntry(string(change.Action))
	}
	return nil
}
