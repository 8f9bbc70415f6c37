package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TaskDocumentUploaded is published once per document creation and
	// consumed at-least-once by the processing worker.
	TaskDocumentUploaded = "document:uploaded"
)

// UploadEvent is the message body signaling a newly created document. An
// empty StoragePath means the file bytes were never stored and there is
// nothing for the worker to process.
type UploadEvent struct {
	DocumentID  uuid.UUID `json:"documentId"`
	FileName    string    `json:"fileName"`
	StoragePath string    `json:"storagePath,omitempty"`
	UploadedAt  time.Time `json:"uploadedAtUtc"`
}

// EnqueueUploadEvent publishes an upload event to the durable document queue.
// This is the producer side of the contract; the REST layer calls it after
// the document record and its metadata row are created.
func EnqueueUploadEvent(ctx context.Context, client *asynq.Client, queueName string, event UploadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal upload event: %w", err)
	}
	task := asynq.NewTask(TaskDocumentUploaded, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.Queue(queueName), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue upload event: %w", err)
	}
	return nil
}
