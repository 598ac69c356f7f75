package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonpyo/jeju-chatpi/cmd/mainconfig"
	"github.com/wonpyo/jeju-chatpi/internal/api/router"
	"github.com/wonpyo/jeju-chatpi/internal/app/bootstrap"
	appconfig "github.com/wonpyo/jeju-chatpi/internal/config"
	"github.com/wonpyo/jeju-chatpi/internal/dialogue"
	"github.com/wonpyo/jeju-chatpi/internal/knowledge"
	"github.com/wonpyo/jeju-chatpi/internal/observability/metrics"
	"github.com/wonpyo/jeju-chatpi/internal/search"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting jeju-chatpi API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	llm, model, err := bootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}

	store := knowledge.NewStore(cfg.DataDir, cfg.DocsDir, logger)
	searcher := buildSearchClient(cfg, logger)
	refiner := buildRefiner(llm, model, cfg, store, searcher, logger)
	sessions := bootstrap.BuildSessionStore(ctx, cfg, logger)

	var sqsClient *sqs.Client
	if cfg.CallbackEnabled && !cfg.UseMemoryQueue {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sqsClient = sqs.NewFromConfig(awsCfg)
	}

	publisher, worker, err := bootstrap.BuildCallbackPipeline(cfg, refiner, sqsClient, logger)
	if err != nil {
		logger.Error("failed to build callback pipeline", "error", err)
		os.Exit(1)
	}

	orchOpts := []dialogue.OrchestratorOption{
		dialogue.WithGuardEnabled(cfg.GuardEnabled),
		dialogue.WithSyncBudget(cfg.LLMTimeout),
		dialogue.WithCallbackWindow(cfg.CallbackWindow, cfg.CallbackSafetyMargin),
	}
	if publisher != nil {
		orchOpts = append(orchOpts, dialogue.WithPublisher(publisher))
	}
	if searcher.Enabled() {
		orchOpts = append(orchOpts, dialogue.WithTurnSearch(searcher))
	}
	orch := dialogue.NewOrchestrator(sessions, store, refiner, logger, orchOpts...)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if worker != nil {
		worker.Start(workerCtx)
	}

	r := router.New(&router.Config{
		Logger:         logger,
		SkillHandler:   dialogue.NewHandler(orch, logger),
		AppConfig:      cfg,
		Knowledge:      store,
		Searcher:       searcher,
		MetricsHandler: promhttp.Handler(),
		HTTPMetrics:    metrics.NewHTTPMetrics(nil),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Scheduled callback jobs finish even though no new receives start.
	stopWorker()
	waitForWorker(worker, 30*time.Second, logger)

	logger.Info("server stopped")
}

// buildSearchClient always returns a client so the router and debug
// endpoints have one to interrogate; disabling search just withholds
// the credentials, which the client reports through Enabled.
func buildSearchClient(cfg *appconfig.Config, logger *logging.Logger) *search.Client {
	clientID, clientSecret := "", ""
	if cfg.SearchEnabled {
		clientID, clientSecret = cfg.NaverClientID, cfg.NaverClientSecret
	}
	return search.NewClient(clientID, clientSecret, cfg.SearchTimeout, logger)
}

func buildRefiner(llm dialogue.LLMClient, model string, cfg *appconfig.Config, store *knowledge.Store, searcher *search.Client, logger *logging.Logger) *dialogue.Refiner {
	opts := []dialogue.RefinerOption{
		dialogue.WithFastMode(cfg.FastMode),
		dialogue.WithMaxTokens(int32(cfg.LLMMaxTokens)),
	}
	if guidelines := store.Guidelines(); guidelines != "" {
		opts = append(opts, dialogue.WithGuidelines(guidelines))
	}
	if searcher.Enabled() {
		opts = append(opts, dialogue.WithSearchProvider(searcher))
	}
	return dialogue.NewRefiner(llm, model, logger, opts...)
}

// waitForWorker blocks until the worker drains or the timeout passes.
func waitForWorker(worker *dialogue.Worker, timeout time.Duration, logger *logging.Logger) {
	if worker == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		worker.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("callback worker stopped")
	case <-time.After(timeout):
		logger.Error("callback worker shutdown timed out", "timeout", timeout.String())
	}
}
