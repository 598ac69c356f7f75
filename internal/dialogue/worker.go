package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 2
	defaultBatchSize    = 5
	maxWaitSeconds      = 20
	maxReceiveBatchSize = 10
	deleteTimeoutSecs   = 5
)

// DraftRefiner turns a draft into the final answer within a budget. A
// zero budget must return the draft unchanged.
type DraftRefiner interface {
	RefineDraft(ctx context.Context, utterance, draft string, budget time.Duration) string
}

var _ DraftRefiner = (*Refiner)(nil)

// Worker consumes deferred-callback jobs from the queue, refines each
// draft within the remaining deadline budget, and POSTs the result to
// the job's callback URL. Jobs always run to completion; a request that
// scheduled one never cancels it.
type Worker struct {
	refiner   DraftRefiner
	queue     queueClient
	messenger CallbackMessenger
	logger    *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	maxLLMBudget     time.Duration
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the queue long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithWorkerMaxBudget caps the per-job LLM budget regardless of how
// much deadline headroom the job arrived with.
func WithWorkerMaxBudget(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.maxLLMBudget = d
		}
	}
}

// NewWorker constructs a queue consumer around the provided refiner.
func NewWorker(refiner DraftRefiner, queue queueClient, messenger CallbackMessenger, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if refiner == nil {
		panic("dialogue: refiner cannot be nil")
	}
	if queue == nil {
		panic("dialogue: queue cannot be nil")
	}
	if messenger == nil {
		panic("dialogue: callback messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
		maxLLMBudget:     45 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		refiner:   refiner,
		queue:     queue,
		messenger: messenger,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("callback worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("callback worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive callback jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	// A received job always runs to completion. Shutdown stops new
	// receives, but it must not abort the refinement or the callback
	// POST of a job already in flight.
	ctx = context.WithoutCancel(ctx)

	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode callback job", "error", err)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}

	if payload.Kind != jobTypeCallback || payload.Callback == nil {
		w.logger.Error("unknown callback job", "job_id", payload.ID, "kind", payload.Kind)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}
	job := *payload.Callback

	w.logger.Info("worker processing callback job",
		"job_id", payload.ID,
		"user_id", job.UserID,
		"deadline", job.Deadline,
	)

	budget := time.Until(job.Deadline)
	if budget > w.cfg.maxLLMBudget {
		budget = w.cfg.maxLLMBudget
	}

	text := w.refiner.RefineDraft(ctx, job.Utterance, job.Draft, budget)
	outcome := "refined"
	if text == job.Draft {
		outcome = "draft"
	}
	refineOutcomeTotal.WithLabelValues("callback", outcome).Inc()

	// The URL is single-use; a stale one just fails the POST, so an
	// expired deadline is logged but still attempted.
	if !job.Deadline.IsZero() && time.Now().After(job.Deadline) {
		w.logger.Warn("callback deadline passed, attempting delivery anyway", "job_id", payload.ID)
	}

	if err := w.messenger.DeliverCallback(ctx, CallbackReply{URL: job.CallbackURL, Text: text}); err != nil {
		callbackDeliveryTotal.WithLabelValues("error").Inc()
		w.logger.Error("callback job failed", "error", err, "job_id", payload.ID, "user_id", job.UserID)
	} else {
		callbackDeliveryTotal.WithLabelValues("ok").Inc()
		w.logger.Debug("callback job processed", "job_id", payload.ID, "outcome", outcome)
	}

	w.deleteMessage(ctx, msg.ReceiptHandle)
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSecs*time.Second)
	defer cancel()

	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete callback job", "error", err)
	}
}
