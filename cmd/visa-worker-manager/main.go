// cmd/visa-worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"visa-workers/internal/api"
	"visa-workers/internal/assessor"
	"visa-workers/internal/assessor/genai"
	"visa-workers/internal/common/camunda"
	"visa-workers/internal/common/config"
	httpclient "visa-workers/internal/common/http"
	"visa-workers/internal/common/logger"
	"visa-workers/internal/common/observability"

	ava "visa-workers/internal/workers/visa/assess-visa-application"
	vvd "visa-workers/internal/workers/visa/validate-visa-documents"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
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
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	envFile := config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLog.Sync() }()

	zapLog.Info("Starting visa worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("envFile", envFile),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLog); err != nil {
		zapLog.Error("worker manager stopped with error", zap.Error(err))
		_ = zapLog.Sync()
		os.Exit(1)
	}
	zapLog.Info("worker manager stopped")
}

func run(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) error {
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("meter provider shutdown failed", zap.Error(err))
		}
	}()

	service, err := newAssessorService(cfg, obs, log)
	if err != nil {
		return err
	}
	zapLog.Info("assessors registered",
		zap.Strings("assessors", service.Names()),
		zap.String("default", service.Default()),
		zap.Bool("fallbackToLocal", cfg.Assessor.FallbackToLocal),
	)

	// --- Zeebe client and workers ---
	var (
		zeebe   *camunda.Client
		workers *camunda.WorkerGroup
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.Connect(ctx, &camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			}, log)
			return err
		}, 3, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			return fmt.Errorf("zeebe client: %w", err)
		}
		defer func() {
			if err := zeebe.Close(); err != nil {
				zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}()
		zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

		workers = camunda.NewWorkerGroup(zeebe.GetClient(), log)
		startWorkers(cfg, workers, service, log)
	} else {
		zapLog.Info("Camunda disabled, serving HTTP API only")
	}

	// --- HTTP API, health & metrics ---
	handler := api.NewHandler(service, log, cfg.Server.MaxBodyBytes)
	router := api.NewRouter(handler, readinessCheck(zeebe))

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: config.GetDuration(cfg.Server.ReadHeaderTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping...")

		shutdownTimeout := config.GetDuration(cfg.Server.ShutdownTimeout)
		if workers != nil {
			workers.Close(shutdownTimeout)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newAssessorService(cfg *config.Config, obs *observability.Observability, log logger.Logger) (*assessor.Service, error) {
	var remote []assessor.Assessor
	if cfg.APIs.GenAI.Enabled {
		g := cfg.APIs.GenAI
		remote = append(remote, genai.New(&genai.Config{
			BaseURL:     g.BaseURL,
			APIKey:      g.APIKey,
			Timeout:     config.GetDuration(g.Timeout),
			MaxRetries:  g.MaxRetries,
			MaxTokens:   g.MaxTokens,
			Temperature: g.Temperature,
		}, httpclient.NewClient(config.GetDuration(g.Timeout)+5*time.Second), log))
	}

	service, err := assessor.NewService(assessor.Options{
		Default:         cfg.Assessor.Default,
		FallbackToLocal: cfg.Assessor.FallbackToLocal,
		Observability:   obs,
		Logger:          log,
	}, remote...)
	if err != nil {
		return nil, fmt.Errorf("assessor service: %w", err)
	}
	return service, nil
}

func startWorkers(cfg *config.Config, workers *camunda.WorkerGroup, service *assessor.Service, log logger.Logger) {
	{
		taskType := ava.TaskType
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := ava.NewHandler(ava.NewConfig(wcfg), service, log)
		workers.Start(taskType, wcfg, handler.Handle)
	}
	{
		taskType := vvd.TaskType
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := vvd.NewHandler(vvd.NewConfig(wcfg), service, log)
		workers.Start(taskType, wcfg, handler.Handle)
	}

	log.Info("workers registered", map[string]interface{}{"running": workers.Running()})
}

func readinessCheck(zeebe *camunda.Client) api.ReadinessCheck {
	if zeebe == nil {
		return nil
	}
	return zeebe.HealthCheck
}
