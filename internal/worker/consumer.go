package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/dharsanguruparan/docmill/internal/queue"
)

// Consumer is the transport layer around the pipeline. It owns
// acknowledgment policy: business failures are contained inside
// Pipeline.Handle so the task always completes; only an undecodable payload
// is retired without retry, keeping a poison message from blocking the
// queue.
type Consumer struct {
	pipeline *Pipeline
	log      zerolog.Logger
}

// NewConsumer constructs the consumer.
func NewConsumer(pipeline *Pipeline, log zerolog.Logger) *Consumer {
	return &Consumer{
		pipeline: pipeline,
		log:      log.With().Str("component", "consumer").Logger(),
	}
}

// Mux registers the upload-event handler.
func (c *Consumer) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskDocumentUploaded, c.handleUploadEvent)
	return mux
}

func (c *Consumer) handleUploadEvent(ctx context.Context, task *asynq.Task) error {
	var event queue.UploadEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		c.log.Error().Err(err).Msg("dropping undecodable upload event")
		return fmt.Errorf("decode upload event: %v: %w", err, asynq.SkipRetry)
	}
	c.pipeline.Handle(ctx, event)
	return nil
}
