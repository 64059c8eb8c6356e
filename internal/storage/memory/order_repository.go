package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// order хранит порядок вставки, чтобы листинги совпадали с natural order документного хранилища.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]domain.Order
	order []primitive.ObjectID
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[primitive.ObjectID]domain.Order),
	}
}

// Create сохраняет новый заказ, назначая ID при необходимости.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, exists := r.items[order.ID]; exists {
		return domain.Order{}, domain.NewStoreError("insert order", errDuplicateKey)
	}
	r.items[order.ID] = order
	r.order = append(r.order, order.ID)
	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(_ context.Context, id primitive.ObjectID) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// SetStatus меняет статус; Modified == 0, если статус совпал.
func (r *orderRepositoryInMemory) SetStatus(_ context.Context, id primitive.ObjectID, status string) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	if order.Status == status {
		return domain.UpdateResult{Matched: 1}, nil
	}
	order.Status = status
	r.items[id] = order
	return domain.UpdateResult{Matched: 1, Modified: 1}, nil
}

func (r *orderRepositoryInMemory) ListByRestaurant(_ context.Context, restaurantID primitive.ObjectID) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.RestaurantID == restaurantID }), nil
}

func (r *orderRepositoryInMemory) ListByDeliveryPerson(_ context.Context, deliveryPersonID primitive.ObjectID) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.DeliveryPersonID == deliveryPersonID }), nil
}

func (r *orderRepositoryInMemory) List(_ context.Context) ([]domain.Order, error) {
	return r.filter(func(domain.Order) bool { return true }), nil
}

func (r *orderRepositoryInMemory) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return 1, nil
}

func (r *orderRepositoryInMemory) filter(match func(domain.Order) bool) []domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.order))
	for _, id := range r.order {
		if order := r.items[id]; match(order) {
			result = append(result, order)
		}
	}
	return result
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
