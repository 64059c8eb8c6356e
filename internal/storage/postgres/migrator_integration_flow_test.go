package postgres

import (
	"context"
	"testing"
	"time"
)

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(testContext(t), 20*time.Second)
	defer cancel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	total := len(migrations)
	latest := migrations[total-1].Version

	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down reset: %v", err)
	}
	assertMigrationState(t, store, MigrationState{Version: 0, Applied: 0, Pending: total})

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up all: %v", err)
	}
	assertMigrationState(t, store, MigrationState{Version: latest, Applied: total, Pending: 0})

	// Повторный up ничего не меняет.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("repeated migrate up: %v", err)
	}
	assertMigrationState(t, store, MigrationState{Version: latest, Applied: total, Pending: 0})

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down 1: %v", err)
	}
	state, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("status after down: %v", err)
	}
	if state.Pending != 1 || state.Applied != total-1 {
		t.Fatalf("unexpected state after down 1: %+v", state)
	}

	if err := store.MigrateUp(ctx, 1); err != nil {
		t.Fatalf("migrate up 1: %v", err)
	}
	assertMigrationState(t, store, MigrationState{Version: latest, Applied: total, Pending: 0})
}

func assertMigrationState(t *testing.T, store *Store, want MigrationState) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected migration state: want %+v, got %+v", want, got)
	}
}
