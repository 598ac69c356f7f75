package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/wonpyo/jeju-chatpi/cmd/mainconfig"
	"github.com/wonpyo/jeju-chatpi/internal/app/bootstrap"
	appconfig "github.com/wonpyo/jeju-chatpi/internal/config"
	"github.com/wonpyo/jeju-chatpi/internal/dialogue"
	"github.com/wonpyo/jeju-chatpi/internal/knowledge"
	"github.com/wonpyo/jeju-chatpi/internal/search"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// Standalone consumer for deployments that run the callback queue on
// SQS. It shares the worker implementation the in-process mode uses, so
// the deferred-answer semantics are identical either way.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting jeju-chatpi callback worker",
		"env", cfg.Env,
		"queue_url", cfg.CallbackQueueURL,
	)

	if strings.TrimSpace(cfg.CallbackQueueURL) == "" {
		logger.Error("CALLBACK_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	llm, model, err := bootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}

	store := knowledge.NewStore(cfg.DataDir, cfg.DocsDir, logger)

	refinerOpts := []dialogue.RefinerOption{
		dialogue.WithFastMode(cfg.FastMode),
		dialogue.WithMaxTokens(int32(cfg.LLMMaxTokens)),
	}
	if guidelines := store.Guidelines(); guidelines != "" {
		refinerOpts = append(refinerOpts, dialogue.WithGuidelines(guidelines))
	}
	if cfg.SearchEnabled && cfg.NaverClientID != "" && cfg.NaverClientSecret != "" {
		searcher := search.NewClient(cfg.NaverClientID, cfg.NaverClientSecret, cfg.SearchTimeout, logger)
		refinerOpts = append(refinerOpts, dialogue.WithSearchProvider(searcher))
	}
	refiner := dialogue.NewRefiner(llm, model, logger, refinerOpts...)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := dialogue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CallbackQueueURL)

	worker := dialogue.NewWorker(
		refiner,
		queue,
		dialogue.NewHTTPCallbackSender(logger),
		logger,
		dialogue.WithWorkerCount(cfg.WorkerCount),
		dialogue.WithWorkerMaxBudget(cfg.CallbackMaxLLMBudget),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	worker.Start(runCtx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down callback worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("callback worker stopped")
	case <-doneCtx.Done():
		logger.Error("callback worker shutdown timed out", "error", doneCtx.Err())
	}
}
