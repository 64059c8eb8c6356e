package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

// findAll читает все документы по фильтру в порядке вставки (_id растёт со временем).
func findAll[T any](ctx context.Context, coll *driver.Collection, filter any, op string) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return docs, nil
}

func deleteOne(ctx context.Context, coll *driver.Collection, filter any, op string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, domain.NewStoreError(op, err)
	}
	return res.DeletedCount, nil
}

func updateResult(res *driver.UpdateResult) domain.UpdateResult {
	if res == nil {
		return domain.UpdateResult{}
	}
	return domain.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
}

// matchOnly нужен для пустого патча: документ ищется, но не меняется.
func matchOnly(ctx context.Context, coll *driver.Collection, filter any) (domain.UpdateResult, error) {
	count, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return domain.UpdateResult{}, domain.NewStoreError("count documents", err)
	}
	return domain.UpdateResult{Matched: count}, nil
}
