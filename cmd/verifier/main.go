package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"certverify/internal/browser"
	"certverify/internal/checks"
	"certverify/internal/common/camunda"
	"certverify/internal/common/config"
	"certverify/internal/common/database"
	"certverify/internal/common/httpclient"
	"certverify/internal/common/logger"
	"certverify/internal/common/observability"
	"certverify/internal/document"
	"certverify/internal/external"
	"certverify/internal/llm"
	"certverify/internal/ocr"
	"certverify/internal/refstore"
	"certverify/internal/verifier"
	cv "certverify/internal/workers/certificate-verify"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting certificate verifier",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.Plaintext,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         30 * time.Second,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Zeebe client connected")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected")

	// --- Shared clients ---
	httpClient := httpclient.NewClient(cfg.Scraper.RequestTimeout, cfg.Scraper.MaxAttempts)
	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout, cfg.LLM.MaxAttempts, log)

	var renderer browser.Renderer
	if cfg.Browser.Enabled {
		renderer = browser.NewChromeRenderer(cfg.Browser.Timeout, cfg.Browser.MaxSessions, log)
	}

	var ocrEngine ocr.Engine
	if cfg.OCR.Enabled {
		engine := ocr.NewTesseract(cfg.OCR.Languages)
		defer engine.Close()
		ocrEngine = engine
	}

	// --- Verification pipeline ---
	refs := refstore.New(pg, log)

	registry := checks.NewRegistry()
	registry.MustRegister(
		checks.NewMetadataCheck(),
		checks.NewELACheck(),
		checks.NewStructureCheck(),
		checks.NewColorCheck(cfg.Checks.BrandColors),
		checks.NewSignatureImageCheck(),
		checks.NewPHashCheck(refs),
		checks.NewTextFieldCheck(ocrEngine),
		checks.NewFingerprintCheck(),
	)
	orchestrator := checks.NewOrchestrator(registry, log)

	scraper := external.NewScraper(renderer, httpClient, ocrEngine,
		cfg.Scraper.MaxPDFs, cfg.Scraper.MinTextLength, log)
	pipeline := external.NewPipeline(scraper, external.NewExtractor(llmClient), log)
	classifier := verifier.NewClassifier(llmClient, log)

	var cache *verifier.ResultCache
	if cfg.Verifier.CacheEnabled {
		cache = verifier.NewResultCache(redis, cfg.Verifier.CacheTTL, log)
	}

	service := verifier.New(
		document.NewAcquirer(httpClient),
		orchestrator,
		pipeline,
		classifier,
		cache,
		refs,
		verifier.Thresholds{
			ExternalScore: cfg.Verifier.ExternalScoreThreshold,
			ForensicScore: cfg.Verifier.ForensicScoreThreshold,
		},
		log,
	)

	// --- Worker registration ---
	workerCfg := cfg.Workers[cv.TaskType]
	if !workerCfg.Enabled {
		zapLog.Fatal("no workers enabled, nothing to do")
	}

	handlerCfg := cv.LoadConfig()
	if workerCfg.Timeout > 0 {
		handlerCfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
	}
	handler := cv.NewHandler(handlerCfg, service, log)

	w := camunda.NewWorker(camundaClient.GetClient(), cv.TaskType, workerCfg.MaxJobsActive, handler, zapLog)
	w.Start()

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	w.Stop(shutdownCtx)

	zapLog.Info("certificate verifier stopped")
}
