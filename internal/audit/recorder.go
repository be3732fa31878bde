package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// TaskTypeChange is the asynq task type carrying document-change events.
const TaskTypeChange = "audit:change"

// NewChangeTask builds the asynq task for a document-change event.
func NewChangeTask(change Change) (*asynq.Task, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeChange, data), nil
}

// Enqueuer is the slice of asynq.Client the recorder needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Recorder publishes document-change events for asynchronous audit logging.
// Publishing is best effort: a failed enqueue is logged and never blocks or
// rolls back the mutation it describes.
type Recorder struct {
	client Enqueuer
	logger *slog.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(client Enqueuer, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{client: client, logger: logger}
}

// DocumentChanged enqueues the change for the audit hook.
func (r *Recorder) DocumentChanged(ctx context.Context, change Change) {
	if r == nil || r.client == nil {
		return
	}
	task, err := NewChangeTask(change)
	if err != nil {
		r.logger.Error("audit change marshal",
			slog.String("collection", change.Collection), slog.Any("error", err))
		return
	}
	if _, err := r.client.EnqueueContext(ctx, task, asynq.Queue(QueueAudit)); err != nil {
		r.logger.Error("audit change enqueue",
			slog.String("collection", change.Collection),
			slog.String("document_id", change.DocumentID),
			slog.Any("error", err))
	}
}

// QueueAudit is the asynq queue processing audit hooks.
const QueueAudit = "audit"
