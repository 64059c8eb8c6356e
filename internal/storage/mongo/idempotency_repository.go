package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type idempotencyRepository struct {
	keys *driver.Collection
}

// NewIdempotencyRepository создаёт реализацию IdempotencyRepository; ключ хранится в _id.
func NewIdempotencyRepository(store *Store) domain.IdempotencyRepository {
	return &idempotencyRepository{keys: store.collection(idempotencyCollection)}
}

func (r *idempotencyRepository) CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	// Mongo хранит время с точностью до миллисекунд.
	now := time.Now().UTC().Truncate(time.Millisecond)
	if ttlAt.IsZero() {
		ttlAt = now.Add(domain.DefaultIdempotencyTTL)
	}

	doc := idempotencyDocument{
		Key:         key,
		RequestHash: requestHash,
		Status:      string(domain.IdempotencyStatusProcessing),
		TTLAt:       ttlAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.keys.InsertOne(opCtx, doc); err != nil {
		if !driver.IsDuplicateKeyError(err) {
			return domain.IdempotencyRecord{}, domain.NewStoreError("create idempotency record", err)
		}
		existing, getErr := r.Get(ctx, key)
		if getErr != nil {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
		}
		if existing.RequestHash != requestHash {
			return existing, domain.ErrIdempotencyHashMismatch
		}
		return existing, domain.ErrIdempotencyKeyAlreadyExists
	}
	return doc.toDomain(), nil
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc idempotencyDocument
	err := r.keys.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	if err != nil {
		return domain.IdempotencyRecord{}, domain.NewStoreError("get idempotency record", err)
	}

	record := doc.toDomain()
	if !record.Status.Valid() {
		return domain.IdempotencyRecord{}, fmt.Errorf("invalid idempotency status %q for key %s", doc.Status, key)
	}
	return record, nil
}

func (r *idempotencyRepository) MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.finish(ctx, key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

func (r *idempotencyRepository) MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error {
	return r.finish(ctx, key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

// DeleteExpired сначала выбирает пачку ключей, затем удаляет её одним запросом.
func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	expired := bson.M{"ttl_at": bson.M{"$lte": before}}
	if limit <= 0 {
		res, err := r.keys.DeleteMany(ctx, expired)
		if err != nil {
			return 0, domain.NewStoreError("delete expired idempotency records", err)
		}
		return int(res.DeletedCount), nil
	}

	cursor, err := r.keys.Find(ctx, expired, options.Find().
		SetSort(bson.D{{Key: "ttl_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, domain.NewStoreError("find expired idempotency records", err)
	}
	var batch []struct {
		Key string `bson:"_id"`
	}
	if err := cursor.All(ctx, &batch); err != nil {
		return 0, domain.NewStoreError("decode expired idempotency records", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(batch))
	for _, doc := range batch {
		keys = append(keys, doc.Key)
	}
	res, err := r.keys.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}, "ttl_at": bson.M{"$lte": before}})
	if err != nil {
		return 0, domain.NewStoreError("delete expired idempotency records", err)
	}
	return int(res.DeletedCount), nil
}

func (r *idempotencyRepository) finish(ctx context.Context, key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.keys.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M{
		"response_body": responseBody,
		"http_status":   httpStatus,
		"status":        string(status),
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return domain.NewStoreError("mark idempotency key", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdempotencyKeyNotFound
	}
	return nil
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
