package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	healthcheck "github.com/studentbits/Food-Delivery-System/internal/health"
	"github.com/studentbits/Food-Delivery-System/internal/storage/memory"
	"github.com/studentbits/Food-Delivery-System/internal/storage/mongo"
	"github.com/studentbits/Food-Delivery-System/internal/storage/postgres"
)

const (
	storageInitTimeout = 15 * time.Second
	storagePingTimeout = 2 * time.Second
)

// runtimeDependencies — репозитории выбранного хранилища и способ его закрыть.
type runtimeDependencies struct {
	users       domain.UserRepository
	menus       domain.MenuRepository
	orders      domain.OrderRepository
	timeline    domain.TimelineRepository
	idempotency domain.IdempotencyRepository

	// storageChecker равен nil для хранилища в памяти.
	storageChecker healthcheck.Checker
	closeFn        func() error
}

func (d *runtimeDependencies) close() error {
	if d == nil || d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch driver {
	case "", StorageDriverMemory:
		logger.Info("storage driver: memory")
		return &runtimeDependencies{
			users:       memory.NewUserRepository(),
			menus:       memory.NewMenuRepository(),
			orders:      memory.NewOrderRepository(),
			timeline:    memory.NewTimelineRepository(),
			idempotency: memory.NewIdempotencyRepository(),
		}, nil
	case StorageDriverPostgres:
		return initPostgres(ctx, cfg, logger)
	case StorageDriverMongo:
		return initMongo(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func initPostgres(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		return nil, errors.New("postgres storage requires FDS_POSTGRES_DSN")
	}

	initCtx, cancel := context.WithTimeout(ctx, storageInitTimeout)
	defer cancel()

	store, err := postgres.Open(initCtx, dsn, postgres.WithLogger(logger.WithField("storage", "postgres")))
	if err != nil {
		return nil, fmt.Errorf("init postgres storage: %w", err)
	}
	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(initCtx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
	}

	logger.WithField("auto_migrate", cfg.PostgresAutoMigrate).Info("storage driver: postgres")
	return &runtimeDependencies{
		users:          postgres.NewUserRepository(store),
		menus:          postgres.NewMenuRepository(store),
		orders:         postgres.NewOrderRepository(store),
		timeline:       postgres.NewTimelineRepository(store),
		idempotency:    postgres.NewIdempotencyRepository(store),
		storageChecker: healthcheck.NewPingChecker("postgres", store.Ping, storagePingTimeout),
		closeFn:        store.Close,
	}, nil
}

func initMongo(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	uri := strings.TrimSpace(cfg.MongoURI)
	if uri == "" {
		return nil, errors.New("mongo storage requires MONGO_URI")
	}

	initCtx, cancel := context.WithTimeout(ctx, storageInitTimeout)
	defer cancel()

	store, err := mongo.Connect(initCtx, uri, cfg.MongoDatabase, mongo.WithLogger(logger.WithField("storage", "mongo")))
	if err != nil {
		return nil, fmt.Errorf("init mongo storage: %w", err)
	}
	// Без индексов сервис работает, но без гарантии уникальности email.
	if err := store.EnsureIndexes(initCtx); err != nil {
		logger.WithError(err).Warn("failed to ensure mongo indexes")
	}

	logger.WithField("database", cfg.MongoDatabase).Info("storage driver: mongo")
	return &runtimeDependencies{
		users:          mongo.NewUserRepository(store),
		menus:          mongo.NewMenuRepository(store),
		orders:         mongo.NewOrderRepository(store),
		timeline:       mongo.NewTimelineRepository(store),
		idempotency:    mongo.NewIdempotencyRepository(store),
		storageChecker: healthcheck.NewPingChecker("mongo", store.Ping, storagePingTimeout),
		closeFn: func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.Close(closeCtx)
		},
	}, nil
}
