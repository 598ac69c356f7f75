package dialogue

import (
	"context"
	"fmt"

	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// Publisher enqueues deferred-callback jobs for asynchronous processing.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("dialogue: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueCallback publishes a refine-and-deliver job. The job runs to
// completion on the worker regardless of what happens to the request
// that scheduled it.
func (p *Publisher) EnqueueCallback(ctx context.Context, job CallbackJob) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, body, err := encodePayload(queuePayload{Kind: jobTypeCallback, Callback: &job})
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("dialogue: failed to enqueue callback job: %w", err)
	}

	p.logger.Debug("callback job enqueued", "job_id", payload.ID, "user_id", job.UserID)
	return nil
}
