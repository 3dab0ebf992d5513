package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pharmadesk/pharmadesk/internal/analytics"
	"github.com/pharmadesk/pharmadesk/internal/app"
	dashboardhttp "github.com/pharmadesk/pharmadesk/internal/dashboard/http"
	jobmetrics "github.com/pharmadesk/pharmadesk/internal/jobs"
	"github.com/pharmadesk/pharmadesk/internal/observability"
	"github.com/pharmadesk/pharmadesk/internal/platform/cache"
	"github.com/pharmadesk/pharmadesk/internal/store"
	"github.com/pharmadesk/pharmadesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("pharmadesk exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	today := analytics.StartOfDay(time.Now())
	seed, err := store.LoadSeedFile(cfg.SeedPath, today)
	if err != nil {
		return err
	}
	st := store.New(seed, store.WithLogger(logger))
	logger.Info("data set loaded",
		slog.Int("medicines", len(seed.Medicines)),
		slog.Int("batches", len(seed.Batches)),
		slog.Int("sales", len(seed.Sales)),
	)

	// Dashboards are computed on every request when Redis is unreachable.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	analyticsService := analytics.NewService(st, newAnalyticsCache(redisClient, cfg.CacheTTL), cfg.Policy()).WithObserver(metrics)
	st.OnChange(analyticsService.Invalidate)

	dashboardHandler := dashboardhttp.NewHandler(logger, analyticsService, st)

	group, groupCtx := errgroup.WithContext(ctx)

	var jobHandler *jobs.Handler
	if cfg.WorkerEnabled && redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		scanJob := jobs.NewAlertScanJob(st, analyticsService, metrics, cfg.Policy(), logger, jobmetrics.NewMetrics(metrics.Registerer()))
		scanTask, err := jobs.NewAlertScanTask(time.Time{})
		if err != nil {
			return err
		}
		worker, err := jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: redisOpts,
			Logger:    logger,
			Handlers:  []jobs.TaskHandler{{Type: jobs.TaskAlertScan, Handler: scanJob.Handle}},
			Cron:      []jobs.CronRegistration{{Spec: cfg.AlertScanCron, Task: scanTask}},
		})
		if err != nil {
			return err
		}
		client, err := jobs.NewClient(redisOpts)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, client, logger)

		group.Go(func() error {
			return worker.Run(groupCtx)
		})
	} else {
		jobHandler = jobs.NewHandler(nil, nil, logger)
		logger.Info("job worker disabled")
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
		}
		return nil
	})

	return group.Wait()
}

func newAnalyticsCache(client *redis.Client, ttl time.Duration) *analytics.Cache {
	if client == nil {
		return nil
	}
	return analytics.NewCache(client, ttl)
}
