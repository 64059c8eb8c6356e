package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/service/order"
	"github.com/studentbits/Food-Delivery-System/internal/service/resolver"
	"github.com/studentbits/Food-Delivery-System/internal/storage/memory"
)

type fixture struct {
	svc      *order.Service
	orders   domain.OrderRepository
	timeline domain.TimelineRepository
}

func newFixture(t *testing.T, options ...order.Option) fixture {
	t.Helper()
	orders := memory.NewOrderRepository()
	timeline := memory.NewTimelineRepository()
	options = append([]order.Option{order.WithTimeline(timeline)}, options...)
	return fixture{
		svc:      order.NewService(orders, options...),
		orders:   orders,
		timeline: timeline,
	}
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func fullInput(deliveryPersonID string) order.CreateInput {
	return order.CreateInput{
		Status:           strPtr("pending"),
		MenuDetail:       json.RawMessage(`[{"product_name":"Pizza","qty":2}]`),
		TotalPrice:       floatPtr(19),
		DeliveryPersonID: strPtr(deliveryPersonID),
	}
}

func TestCreate_EchoesInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID().Hex()
	restaurantID := primitive.NewObjectID().Hex()
	courierID := primitive.NewObjectID().Hex()

	created, err := f.svc.Create(ctx, userID, restaurantID, fullInput(courierID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected fresh id")
	}
	if created.UserID.Hex() != userID || created.RestaurantID.Hex() != restaurantID || created.DeliveryPersonID.Hex() != courierID {
		t.Fatalf("references not echoed: %+v", created)
	}
	if created.Status != "pending" || created.TotalPrice != 19 {
		t.Fatalf("scalar fields not echoed: %+v", created)
	}
	detail, ok := created.MenuDetail.([]any)
	if !ok || len(detail) != 1 {
		t.Fatalf("menu_detail must be stored verbatim, got %#v", created.MenuDetail)
	}

	events, _ := f.timeline.List(ctx, created.ID.Hex())
	if len(events) != 1 || events[0].Type != domain.TimelineEventOrderCreated {
		t.Fatalf("expected OrderCreated event, got %+v", events)
	}
}

func TestCreate_MissingFieldsInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := primitive.NewObjectID().Hex()
	restaurantID := primitive.NewObjectID().Hex()
	courierID := primitive.NewObjectID().Hex()

	cases := []struct {
		field string
		strip func(*order.CreateInput)
	}{
		{"status", func(in *order.CreateInput) { in.Status = nil }},
		{"menu_detail", func(in *order.CreateInput) { in.MenuDetail = nil }},
		{"menu_detail", func(in *order.CreateInput) { in.MenuDetail = json.RawMessage("null") }},
		{"total_price", func(in *order.CreateInput) { in.TotalPrice = nil }},
		{"delivery_person_id", func(in *order.CreateInput) { in.DeliveryPersonID = nil }},
		{"status", func(in *order.CreateInput) { *in = order.CreateInput{} }},
	}

	for _, tc := range cases {
		input := fullInput(courierID)
		tc.strip(&input)

		_, err := f.svc.Create(ctx, userID, restaurantID, input)
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected validation error for %s, got %v", tc.field, err)
		}
		if validation.Field != tc.field || validation.Message != "Missing required field: "+tc.field {
			t.Fatalf("unexpected validation error: %+v (want field %s)", validation, tc.field)
		}
	}

	all, _ := f.orders.List(ctx)
	if len(all) != 0 {
		t.Fatalf("invalid requests must not store orders, got %d", len(all))
	}
}

func TestCreate_InvalidIdentifiers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	valid := primitive.NewObjectID().Hex()

	if _, err := f.svc.Create(ctx, "bad", valid, fullInput(valid)); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid user id, got %v", err)
	}
	if _, err := f.svc.Create(ctx, valid, valid, fullInput("bad")); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("expected invalid delivery person id, got %v", err)
	}
}

func TestUpdateStatus_AssignedCourierOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d1 := primitive.NewObjectID().Hex()
	d2 := primitive.NewObjectID().Hex()

	created, err := f.svc.Create(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), fullInput(d1))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, _, err := f.svc.UpdateStatus(ctx, created.ID.Hex(), d2, "delivered"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	stored, _ := f.orders.Get(ctx, created.ID)
	if stored.Status != "pending" {
		t.Fatalf("status must be unchanged after unauthorized attempt, got %q", stored.Status)
	}

	updated, outcome, err := f.svc.UpdateStatus(ctx, created.ID.Hex(), d1, "delivered")
	if err != nil || outcome != domain.OutcomeUpdated {
		t.Fatalf("expected update, got %s (%v)", outcome, err)
	}
	if updated.Status != "delivered" {
		t.Fatalf("expected delivered in result, got %q", updated.Status)
	}
	stored, _ = f.orders.Get(ctx, created.ID)
	if stored.Status != "delivered" {
		t.Fatalf("expected delivered in store, got %q", stored.Status)
	}

	_, outcome, err = f.svc.UpdateStatus(ctx, created.ID.Hex(), d1, "delivered")
	if err != nil || outcome != domain.OutcomeNoOp {
		t.Fatalf("expected noop, got %s (%v)", outcome, err)
	}

	events, err := f.svc.Timeline(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(events) != 2 || events[1].Reason != "pending -> delivered" {
		t.Fatalf("unexpected timeline: %+v", events)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), "delivered")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateStatus_StrictPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, order.WithStatusPolicy(domain.StrictStatusPolicy{}))
	courier := primitive.NewObjectID().Hex()

	input := fullInput(courier)
	input.Status = strPtr("delivered")
	if _, err := f.svc.Create(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), input); !errors.Is(err, domain.ErrStatusTransition) {
		t.Fatalf("strict mode must reject non-pending initial status, got %v", err)
	}

	created, err := f.svc.Create(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), fullInput(courier))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, _, err := f.svc.UpdateStatus(ctx, created.ID.Hex(), courier, "delivered"); !errors.Is(err, domain.ErrStatusTransition) {
		t.Fatalf("expected ErrStatusTransition, got %v", err)
	}
	if _, _, err := f.svc.UpdateStatus(ctx, created.ID.Hex(), courier, "accepted"); err != nil {
		t.Fatalf("pending -> accepted must be allowed, got %v", err)
	}
}

func TestCreate_StrictReferences(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	customer, _ := users.Create(ctx, domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleCustomer})
	owner, _ := users.Create(ctx, domain.User{Name: "Olga", Email: "olga@example.com", Role: domain.RoleRestaurantOwner})
	courier, _ := users.Create(ctx, domain.User{Name: "Dan", Email: "dan@example.com", Role: domain.RoleDeliveryPersonnel})

	f := newFixture(t, order.WithResolver(resolver.New(users, true)))

	if _, err := f.svc.Create(ctx, customer.ID.Hex(), owner.ID.Hex(), fullInput(courier.ID.Hex())); err != nil {
		t.Fatalf("valid references must be accepted, got %v", err)
	}
	if _, err := f.svc.Create(ctx, owner.ID.Hex(), owner.ID.Hex(), fullInput(courier.ID.Hex())); !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch for user, got %v", err)
	}
	if _, err := f.svc.Create(ctx, customer.ID.Hex(), owner.ID.Hex(), fullInput(primitive.NewObjectID().Hex())); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown courier, got %v", err)
	}
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	restaurantID := primitive.NewObjectID().Hex()
	courierID := primitive.NewObjectID().Hex()

	if _, err := f.svc.ListByRestaurant(ctx, restaurantID); !errors.Is(err, domain.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := f.svc.ListByDeliveryPerson(ctx, courierID); !errors.Is(err, domain.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	all, err := f.svc.ListAll(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("ListAll on empty store must succeed, got %d (%v)", len(all), err)
	}

	_, _ = f.svc.Create(ctx, primitive.NewObjectID().Hex(), restaurantID, fullInput(courierID))
	_, _ = f.svc.Create(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), fullInput(courierID))

	byRestaurant, err := f.svc.ListByRestaurant(ctx, restaurantID)
	if err != nil || len(byRestaurant) != 1 {
		t.Fatalf("expected 1 restaurant order, got %d (%v)", len(byRestaurant), err)
	}
	byCourier, err := f.svc.ListByDeliveryPerson(ctx, courierID)
	if err != nil || len(byCourier) != 2 {
		t.Fatalf("expected 2 courier orders, got %d (%v)", len(byCourier), err)
	}
}

type failingTimeline struct{}

func (failingTimeline) Append(context.Context, domain.TimelineEvent) error {
	return errors.New("timeline unavailable")
}

func (failingTimeline) List(context.Context, string) ([]domain.TimelineEvent, error) {
	return nil, nil
}

func TestCreate_TimelineFailureDoesNotFailMutation(t *testing.T) {
	svc := order.NewService(memory.NewOrderRepository(), order.WithTimeline(failingTimeline{}))

	if _, err := svc.Create(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), fullInput(primitive.NewObjectID().Hex())); err != nil {
		t.Fatalf("timeline failure must not fail create, got %v", err)
	}
}
