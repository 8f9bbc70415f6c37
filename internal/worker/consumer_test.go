package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/docmill/internal/queue"
)

func TestHandleUploadEventAcksBusinessFailures(t *testing.T) {
	f := newFixture()
	f.blobs.err = assert.AnError
	c := NewConsumer(f.pipeline, zerolog.Nop())

	payload, err := json.Marshal(seededEvent(f))
	require.NoError(t, err)
	task := asynq.NewTask(queue.TaskDocumentUploaded, payload)

	// A failing stage must not surface as a task error, or the broker
	// would requeue the message forever.
	assert.NoError(t, c.handleUploadEvent(context.Background(), task))
}

func TestHandleUploadEventDropsPoisonMessages(t *testing.T) {
	f := newFixture()
	c := NewConsumer(f.pipeline, zerolog.Nop())

	task := asynq.NewTask(queue.TaskDocumentUploaded, []byte("{not valid json"))
	err := c.handleUploadEvent(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, f.blobs.calls)
}
