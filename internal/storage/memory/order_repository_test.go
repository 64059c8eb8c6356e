package memory_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/storage/memory"
)

func newOrder(restaurantID, deliveryPersonID primitive.ObjectID) domain.Order {
	return domain.Order{
		UserID:           primitive.NewObjectID(),
		RestaurantID:     restaurantID,
		DeliveryPersonID: deliveryPersonID,
		Status:           "pending",
		MenuDetail:       []any{map[string]any{"product_name": "Pizza", "qty": float64(2)}},
		TotalPrice:       19,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	created, err := repo.Create(ctx, newOrder(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected generated id")
	}

	stored, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != created.ID || stored.TotalPrice != 19 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}

	if _, err := repo.Get(ctx, primitive.NewObjectID()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder(primitive.NewObjectID(), primitive.NewObjectID())
	order.ID = primitive.NewObjectID()

	if _, err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create(ctx, order); !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("expected store failure on duplicate id, got %v", err)
	}
}

func TestOrderRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	created, err := repo.Create(ctx, newOrder(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	res, err := repo.SetStatus(ctx, created.ID, "delivered")
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if res.Matched != 1 || res.Modified != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = repo.SetStatus(ctx, created.ID, "delivered")
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if res.Modified != 0 {
		t.Fatalf("same status must not modify, got %+v", res)
	}

	res, _ = repo.SetStatus(ctx, primitive.NewObjectID(), "delivered")
	if res.Matched != 0 {
		t.Fatalf("unknown order must not match, got %+v", res)
	}
}

func TestOrderRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	restaurantA, restaurantB := primitive.NewObjectID(), primitive.NewObjectID()
	courier := primitive.NewObjectID()

	first, _ := repo.Create(ctx, newOrder(restaurantA, courier))
	second, _ := repo.Create(ctx, newOrder(restaurantA, primitive.NewObjectID()))
	_, _ = repo.Create(ctx, newOrder(restaurantB, courier))

	byRestaurant, err := repo.ListByRestaurant(ctx, restaurantA)
	if err != nil {
		t.Fatalf("list by restaurant failed: %v", err)
	}
	if len(byRestaurant) != 2 || byRestaurant[0].ID != first.ID || byRestaurant[1].ID != second.ID {
		t.Fatalf("expected orders in insertion order, got %+v", byRestaurant)
	}

	byCourier, err := repo.ListByDeliveryPerson(ctx, courier)
	if err != nil {
		t.Fatalf("list by courier failed: %v", err)
	}
	if len(byCourier) != 2 {
		t.Fatalf("expected 2 orders for courier, got %d", len(byCourier))
	}

	all, _ := repo.List(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
}

func TestOrderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	created, _ := repo.Create(ctx, newOrder(primitive.NewObjectID(), primitive.NewObjectID()))

	deleted, err := repo.Delete(ctx, created.ID)
	if err != nil || deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d (%v)", deleted, err)
	}
	deleted, _ = repo.Delete(ctx, created.ID)
	if deleted != 0 {
		t.Fatalf("expected 0 deleted on second call, got %d", deleted)
	}
	if all, _ := repo.List(ctx); len(all) != 0 {
		t.Fatalf("expected empty list, got %d", len(all))
	}
}
