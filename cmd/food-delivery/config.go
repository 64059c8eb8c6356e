package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/studentbits/Food-Delivery-System/internal/app"
)

const (
	envHTTPAddr                    = "FDS_HTTP_ADDR"
	envMetricsAddr                 = "FDS_METRICS_ADDR"
	envStorageDriver               = "FDS_STORAGE_DRIVER"
	envPostgresDSN                 = "FDS_POSTGRES_DSN"
	envPostgresAutoMigrate         = "FDS_POSTGRES_AUTO_MIGRATE"
	envMongoURI                    = "MONGO_URI"
	envMongoDatabase               = "FDS_MONGO_DATABASE"
	envStrictReferences            = "FDS_STRICT_REFERENCES"
	envStrictOrderStatus           = "FDS_STRICT_ORDER_STATUS"
	envIdempotencyTTL              = "FDS_IDEMPOTENCY_TTL"
	envIdempotencyCleanupInterval  = "FDS_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "FDS_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	envShutdownTimeout             = "FDS_SHUTDOWN_TIMEOUT"
	envLogLevel                    = "FDS_LOG_LEVEL"
	envLogFormat                   = "FDS_LOG_FORMAT"
)

type envLookup func(key string) (string, bool)

// readConfig формирует конфигурацию из окружения процесса.
func readConfig() (app.Config, []string) {
	return readConfigFromEnv(os.LookupEnv)
}

// readConfigFromEnv применяет переопределения поверх app.DefaultConfig.
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию,
// а описание проблемы попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("invalid %s=%q: %v", key, value, err))
	}
	positiveInt := func(v int) bool { return v > 0 }
	positiveDuration := func(v time.Duration) bool { return v > 0 }

	if v, ok := lookupTrimmed(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envStorageDriver); ok {
		cfg.StorageDriver = strings.ToLower(v)
	}
	if v, ok := lookupTrimmed(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, envMongoURI); ok {
		cfg.MongoURI = v
	}
	if v, ok := lookupTrimmed(lookup, envMongoDatabase); ok {
		cfg.MongoDatabase = v
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{envPostgresAutoMigrate, &cfg.PostgresAutoMigrate},
		{envStrictReferences, &cfg.StrictReferences},
		{envStrictOrderStatus, &cfg.StrictOrderStatus},
	}
	for _, b := range bools {
		v, ok := lookupTrimmed(lookup, b.key)
		if !ok {
			continue
		}
		parsed, err := parseBool(v)
		if err != nil {
			warn(b.key, v, err)
			continue
		}
		*b.target = parsed
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{envIdempotencyTTL, &cfg.IdempotencyTTL},
		{envIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval},
		{envShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v, ok := lookupTrimmed(lookup, d.key)
		if !ok {
			continue
		}
		parsed, err := parseDuration(v, positiveDuration, "must be > 0")
		if err != nil {
			warn(d.key, v, err)
			continue
		}
		*d.target = parsed
	}

	if v, ok := lookupTrimmed(lookup, envIdempotencyCleanupBatchSize); ok {
		parsed, err := parseInt(v, positiveInt, "must be > 0")
		if err != nil {
			warn(envIdempotencyCleanupBatchSize, v, err)
		} else {
			cfg.IdempotencyCleanupBatchSize = parsed
		}
	}

	return cfg, warnings
}

// lookupTrimmed считает пустое значение отсутствующим.
func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected one of true/false/yes/no/on/off/1/0")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(v) {
		return 0, fmt.Errorf("%s", rule)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(v) {
		return 0, fmt.Errorf("%s", rule)
	}
	return v, nil
}
