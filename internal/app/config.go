package app

import (
	"time"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/service/idempotency"
	"github.com/studentbits/Food-Delivery-System/internal/storage/mongo"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
)

// Config описывает настройки запуска. Структура сравнима по значению.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	MongoURI            string
	MongoDatabase       string

	// StrictReferences включает проверку ролей пользователей по ссылкам.
	StrictReferences bool
	// StrictOrderStatus включает таблицу допустимых переходов статуса.
	StrictOrderStatus bool

	IdempotencyTTL              time.Duration
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска на памяти.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                    ":5000",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		MongoDatabase:               mongo.DefaultDatabase,
		IdempotencyTTL:              domain.DefaultIdempotencyTTL,
		IdempotencyCleanupInterval:  idempotency.DefaultCleanupInterval,
		IdempotencyCleanupBatchSize: idempotency.DefaultCleanupBatchSize,
		ShutdownTimeout:             5 * time.Second,
	}
}
