package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type orderRepository struct {
	orders *driver.Collection
}

// NewOrderRepository создаёт реализацию OrderRepository над коллекцией order.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{orders: store.collection(ordersCollection)}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.orders.InsertOne(ctx, newOrderDocument(order)); err != nil {
		return domain.Order{}, domain.NewStoreError("insert order", err)
	}
	return order, nil
}

func (r *orderRepository) Get(ctx context.Context, id primitive.ObjectID) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc orderDocument
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, domain.NewStoreError("get order", err)
	}
	return doc.toDomain(), nil
}

func (r *orderRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return domain.UpdateResult{}, domain.NewStoreError("update order status", err)
	}
	return updateResult(res), nil
}

func (r *orderRepository) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]domain.Order, error) {
	return r.list(ctx, bson.M{"restaurant_id": restaurantID})
}

func (r *orderRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID primitive.ObjectID) ([]domain.Order, error) {
	return r.list(ctx, bson.M{"delivery_person_id": deliveryPersonID})
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *orderRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return deleteOne(ctx, r.orders, bson.M{"_id": id}, "delete order")
}

func (r *orderRepository) list(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	docs, err := findAll[orderDocument](ctx, r.orders, filter, "list orders")
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toDomain())
	}
	return orders, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
