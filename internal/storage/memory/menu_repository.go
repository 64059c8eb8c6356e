package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

// menuRepositoryInMemory индексирует меню по ресторану. Все мутации
// выполняются под одной блокировкой, поэтому UpsertItem атомарен.
type menuRepositoryInMemory struct {
	mu    sync.RWMutex
	menus map[primitive.ObjectID]domain.Menu
	order []primitive.ObjectID
}

// NewMenuRepository создаёт in-memory реализацию MenuRepository.
func NewMenuRepository() domain.MenuRepository {
	return &menuRepositoryInMemory{menus: make(map[primitive.ObjectID]domain.Menu)}
}

func (r *menuRepositoryInMemory) GetByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (domain.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	menu, ok := r.menus[restaurantID]
	if !ok {
		return domain.Menu{}, domain.ErrMenuNotFound
	}
	return domain.CloneMenu(menu), nil
}

func (r *menuRepositoryInMemory) UpsertItem(_ context.Context, restaurantID primitive.ObjectID, item domain.MenuItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	menu, ok := r.menus[restaurantID]
	if !ok {
		r.menus[restaurantID] = domain.Menu{
			ID:           primitive.NewObjectID(),
			RestaurantID: restaurantID,
			Items:        []domain.MenuItem{item},
		}
		r.order = append(r.order, restaurantID)
		return true, nil
	}

	menu.Items = append(menu.Items, item)
	r.menus[restaurantID] = menu
	return false, nil
}

func (r *menuRepositoryInMemory) SetItem(_ context.Context, restaurantID primitive.ObjectID, ref domain.MenuItemRef, patch domain.MenuItemPatch) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	menu, ok := r.menus[restaurantID]
	if !ok {
		return domain.UpdateResult{}, nil
	}

	for i, item := range menu.Items {
		if !matchesRef(item, ref) {
			continue
		}
		updated, changed := patch.Apply(item)
		if !changed {
			return domain.UpdateResult{Matched: 1}, nil
		}
		menu = domain.CloneMenu(menu)
		menu.Items[i] = updated
		r.menus[restaurantID] = menu
		return domain.UpdateResult{Matched: 1, Modified: 1}, nil
	}

	return domain.UpdateResult{}, nil
}

func (r *menuRepositoryInMemory) PullItems(_ context.Context, restaurantID primitive.ObjectID, productName string) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	menu, ok := r.menus[restaurantID]
	if !ok {
		return domain.UpdateResult{}, nil
	}

	kept := make([]domain.MenuItem, 0, len(menu.Items))
	for _, item := range menu.Items {
		if item.ProductName != productName {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(menu.Items) {
		return domain.UpdateResult{Matched: 1}, nil
	}

	menu.Items = kept
	r.menus[restaurantID] = menu
	return domain.UpdateResult{Matched: 1, Modified: 1}, nil
}

func (r *menuRepositoryInMemory) List(_ context.Context) ([]domain.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Menu, 0, len(r.order))
	for _, restaurantID := range r.order {
		result = append(result, domain.CloneMenu(r.menus[restaurantID]))
	}
	return result, nil
}

func (r *menuRepositoryInMemory) DeleteByRestaurant(_ context.Context, restaurantID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.menus[restaurantID]; !ok {
		return 0, nil
	}
	delete(r.menus, restaurantID)
	r.order = removeID(r.order, restaurantID)
	return 1, nil
}

func matchesRef(item domain.MenuItem, ref domain.MenuItemRef) bool {
	if ref.Key != "" {
		return item.Key == ref.Key
	}
	return item.ProductName == ref.ProductName
}

var _ domain.MenuRepository = (*menuRepositoryInMemory)(nil)
