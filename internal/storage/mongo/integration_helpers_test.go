package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	containerOnce sync.Once
	containerURI  string
	containerErr  error
)

// openMongoStoreForIntegrationTest подключается к отдельной базе на каждый тест.
func openMongoStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	database := "fds_test_" + primitive.NewObjectID().Hex()

	var openErrs []string
	if uri := strings.TrimSpace(os.Getenv("FDS_MONGO_TEST_URI")); uri != "" {
		store, err := connectForTest(t, uri, database)
		if err == nil {
			return store
		}
		openErrs = append(openErrs, fmt.Sprintf("%s: %v", uri, err))
	}

	if testing.Short() {
		t.Skip("mongo integration tests are skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	uri, err := sharedContainerURI()
	if err != nil {
		openErrs = append(openErrs, fmt.Sprintf("container: %v", err))
		t.Skipf("mongo is not available for integration tests: %s", strings.Join(openErrs, " | "))
	}

	store, err := connectForTest(t, uri, database)
	if err != nil {
		t.Fatalf("connect mongo container: %v", err)
	}
	return store
}

func connectForTest(t *testing.T, uri, database string) (*Store, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(testContext(t), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, database)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.db.Drop(ctx)
		_ = store.Close(ctx)
	})
	return store, nil
}

func sharedContainerURI() (string, error) {
	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := tcmongo.Run(ctx, "mongo:7")
		if err != nil {
			containerErr = err
			return
		}
		containerURI, containerErr = container.ConnectionString(ctx)
	})
	return containerURI, containerErr
}
