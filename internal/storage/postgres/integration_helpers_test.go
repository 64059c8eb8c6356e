package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

func openPostgresStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(testContext(t), 10*time.Second)
	defer cancel()

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	truncateAllTablesForIntegrationTest(t, store)

	return store
}

// openRawPostgresStoreForIntegrationTest пробует DSN из окружения, затем
// поднимает контейнер. Без Docker тест пропускается.
func openRawPostgresStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	var openErrs []string
	for _, dsn := range []string{
		strings.TrimSpace(os.Getenv("FDS_POSTGRES_TEST_DSN")),
		strings.TrimSpace(os.Getenv("FDS_POSTGRES_DSN")),
	} {
		if dsn == "" {
			continue
		}
		store, err := openWithTimeout(t, dsn)
		if err == nil {
			return store
		}
		openErrs = append(openErrs, fmt.Sprintf("%s: %v", dsn, err))
	}

	if testing.Short() {
		t.Skip("postgres integration tests are skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	dsn, err := sharedContainerDSN()
	if err != nil {
		openErrs = append(openErrs, fmt.Sprintf("container: %v", err))
		t.Skipf("postgres is not available for integration tests: %s", strings.Join(openErrs, " | "))
	}

	store, err := openWithTimeout(t, dsn)
	if err != nil {
		t.Fatalf("open postgres container: %v", err)
	}
	return store
}

func openWithTimeout(t *testing.T, dsn string) (*Store, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(testContext(t), 5*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, nil
}

// sharedContainerDSN запускает один контейнер на весь пакет; его остановит reaper.
func sharedContainerDSN() (string, error) {
	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("food_delivery"),
			tcpostgres.WithUsername("fds"),
			tcpostgres.WithPassword("fds"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerDSN, containerErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	return containerDSN, containerErr
}

func truncateAllTablesForIntegrationTest(t *testing.T, store *Store) {
	t.Helper()

	ctx, cancel := context.WithTimeout(testContext(t), 5*time.Second)
	defer cancel()

	_, err := store.DB().ExecContext(ctx, `
		TRUNCATE TABLE
			idempotency_keys,
			timeline_events,
			orders,
			menu_items,
			menus,
			users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("truncate integration tables: %v", err)
	}
}
