package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	healthcheck "github.com/studentbits/Food-Delivery-System/internal/health"
	"github.com/studentbits/Food-Delivery-System/internal/metrics"
	"github.com/studentbits/Food-Delivery-System/internal/service/admin"
	"github.com/studentbits/Food-Delivery-System/internal/service/idempotency"
	"github.com/studentbits/Food-Delivery-System/internal/service/menu"
	"github.com/studentbits/Food-Delivery-System/internal/service/order"
	"github.com/studentbits/Food-Delivery-System/internal/service/resolver"
	"github.com/studentbits/Food-Delivery-System/internal/service/rest"
	"github.com/studentbits/Food-Delivery-System/internal/service/user"
	"github.com/studentbits/Food-Delivery-System/internal/version"
)

// Run поднимает хранилище, HTTP API и сервер метрик и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	router := buildRouter(cfg, deps, logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.storageChecker != nil {
		healthHandler.RegisterChecker("storage", deps.storageChecker)
	}
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	cleanup := idempotency.NewCleanupWorker(deps.idempotency,
		idempotency.WithLogger(logger.WithField("worker", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	go cleanup.Run(workerCtx)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger, cfg.ShutdownTimeout)
		return err
	}

	apiSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", lis.Addr())
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger, cfg.ShutdownTimeout)
		shutdownHTTP(metricsSrv, logger, cfg.ShutdownTimeout)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger, cfg.ShutdownTimeout)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildRouter собирает сервисы поверх репозиториев и регистрирует маршруты.
func buildRouter(cfg Config, deps *runtimeDependencies, logger *log.Entry) *gin.Engine {
	serviceMetrics := metrics.NewServiceMetrics()
	refs := resolver.New(deps.users, cfg.StrictReferences)

	var policy domain.StatusPolicy = domain.OpenStatusPolicy{}
	if cfg.StrictOrderStatus {
		policy = domain.StrictStatusPolicy{}
	}

	return rest.NewRouter(rest.Deps{
		Users: user.NewService(deps.users, logger.WithField("service", "user")),
		Menus: menu.NewService(deps.menus,
			menu.WithResolver(refs),
			menu.WithMetrics(serviceMetrics),
			menu.WithLogger(logger.WithField("service", "menu")),
		),
		Orders: order.NewService(deps.orders,
			order.WithTimeline(deps.timeline),
			order.WithStatusPolicy(policy),
			order.WithResolver(refs),
			order.WithMetrics(serviceMetrics),
			order.WithLogger(logger.WithField("service", "order")),
		),
		Admin:          admin.NewService(deps.users, deps.menus, deps.orders, logger.WithField("service", "admin")),
		Idempotency:    deps.idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Metrics:        serviceMetrics,
		Logger:         logger.WithField("layer", "http"),
	})
}

// startMetricsServer запускает HTTP-обработчики /metrics и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger, 0)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry, timeout time.Duration) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
