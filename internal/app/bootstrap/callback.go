package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wonpyo/jeju-chatpi/internal/config"
	"github.com/wonpyo/jeju-chatpi/internal/dialogue"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// BuildCallbackPipeline wires the deferred-answer path. With the memory
// queue the consumer worker runs in-process and is returned alongside
// the publisher; with SQS only the publisher is returned and the
// callback-worker binary consumes the queue. A disabled callback mode
// returns all nils, which keeps the orchestrator synchronous.
func BuildCallbackPipeline(cfg *appconfig.Config, refiner *dialogue.Refiner, sqsClient *sqs.Client, logger *logging.Logger) (*dialogue.Publisher, *dialogue.Worker, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.CallbackEnabled {
		logger.Info("callback mode disabled, all turns answered synchronously")
		return nil, nil, nil
	}
	if refiner == nil {
		return nil, nil, fmt.Errorf("bootstrap: refiner is required for the callback pipeline")
	}

	if cfg.UseMemoryQueue {
		queue := dialogue.NewMemoryQueue(0)
		publisher := dialogue.NewPublisher(queue, logger)
		worker := dialogue.NewWorker(
			refiner,
			queue,
			dialogue.NewHTTPCallbackSender(logger),
			logger,
			dialogue.WithWorkerCount(cfg.WorkerCount),
			dialogue.WithWorkerMaxBudget(cfg.CallbackMaxLLMBudget),
		)
		logger.Info("callback pipeline", "queue", "memory", "workers", cfg.WorkerCount)
		return publisher, worker, nil
	}

	if sqsClient == nil {
		return nil, nil, fmt.Errorf("bootstrap: sqs client is required for the sqs queue")
	}
	if strings.TrimSpace(cfg.CallbackQueueURL) == "" {
		return nil, nil, fmt.Errorf("bootstrap: CALLBACK_QUEUE_URL is required for the sqs queue")
	}

	queue := dialogue.NewSQSQueue(sqsClient, cfg.CallbackQueueURL)
	logger.Info("callback pipeline", "queue", "sqs", "url", cfg.CallbackQueueURL)
	return dialogue.NewPublisher(queue, logger), nil, nil
}
