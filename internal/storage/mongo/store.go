// Package mongo реализует репозитории поверх MongoDB. Коллекции и форма
// документов совместимы с уже существующей базой FoodDeliveryApp.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// DefaultDatabase — имя базы по умолчанию.
	DefaultDatabase = "FoodDeliveryApp"

	usersCollection       = "user"
	menusCollection       = "menu"
	ordersCollection      = "order"
	timelineCollection    = "order_timeline"
	idempotencyCollection = "idempotency_keys"

	defaultConnTimeout = 10 * time.Second
	opTimeout          = 5 * time.Second
)

// Store держит клиент MongoDB и выбранную базу.
type Store struct {
	client *driver.Client
	db     *driver.Database
	logger *log.Entry
}

// Option изменяет параметры подключения.
type Option func(*Store)

// WithLogger задаёт логгер хранилища.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Connect подключается к MongoDB и проверяет доступность primary.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if database == "" {
		database = DefaultDatabase
	}

	store := &Store{logger: log.WithField("component", "mongo-store")}
	for _, opt := range opts {
		opt(store)
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()

	client, err := driver.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store.client = client
	store.db = client.Database(database)
	return store, nil
}

// EnsureIndexes создаёт индексы, на которые опираются репозитории.
// Уже существующие индексы с теми же параметрами не пересоздаются.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()

	indexes := []struct {
		collection string
		model      driver.IndexModel
	}{
		{usersCollection, driver.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{menusCollection, driver.IndexModel{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{ordersCollection, driver.IndexModel{Keys: bson.D{{Key: "restaurant_id", Value: 1}}}},
		{ordersCollection, driver.IndexModel{Keys: bson.D{{Key: "delivery_person_id", Value: 1}}}},
		{timelineCollection, driver.IndexModel{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "occurred", Value: 1}}}},
		{idempotencyCollection, driver.IndexModel{Keys: bson.D{{Key: "ttl_at", Value: 1}}}},
	}

	for _, idx := range indexes {
		name, err := s.db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
		s.logger.WithFields(log.Fields{"collection": idx.collection, "index": name}).Debug("index ensured")
	}
	return nil
}

// Ping используется readiness-проверкой.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("mongo store is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// Close отключает клиента.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *driver.Collection {
	return s.db.Collection(name)
}
