package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

// userRepositoryInMemory хранит пользователей в памяти в порядке регистрации.
// Уникальность email здесь не проверяется, это делает сервис регистрации.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]domain.User
	order []primitive.ObjectID
}

// NewUserRepository создаёт in-memory реализацию UserRepository.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{items: make(map[primitive.ObjectID]domain.User)}
}

func (r *userRepositoryInMemory) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, exists := r.items[user.ID]; exists {
		return domain.User{}, domain.NewStoreError("insert user", errDuplicateKey)
	}
	r.items[user.ID] = user
	r.order = append(r.order, user.ID)
	return user, nil
}

func (r *userRepositoryInMemory) Get(_ context.Context, id primitive.ObjectID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepositoryInMemory) FindByEmail(_ context.Context, email string) (domain.User, error) {
	return r.findFirst(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepositoryInMemory) FindByCredentials(_ context.Context, email, password string) (domain.User, error) {
	return r.findFirst(func(u domain.User) bool { return u.Email == email && u.Password == password })
}

func (r *userRepositoryInMemory) Update(_ context.Context, id primitive.ObjectID, patch domain.UserPatch) (domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.items[id]
	if !ok {
		return domain.UpdateResult{}, nil
	}
	updated, changed := patch.Apply(user)
	if !changed {
		return domain.UpdateResult{Matched: 1}, nil
	}
	r.items[id] = updated
	return domain.UpdateResult{Matched: 1, Modified: 1}, nil
}

func (r *userRepositoryInMemory) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id])
	}
	return result, nil
}

func (r *userRepositoryInMemory) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	return r.deleteIf(id, func(domain.User) bool { return true }), nil
}

func (r *userRepositoryInMemory) DeleteWithRole(_ context.Context, id primitive.ObjectID, role domain.Role) (int64, error) {
	return r.deleteIf(id, func(u domain.User) bool { return u.Role == role }), nil
}

func (r *userRepositoryInMemory) deleteIf(id primitive.ObjectID, match func(domain.User) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.items[id]
	if !ok || !match(user) {
		return 0
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return 1
}

func (r *userRepositoryInMemory) findFirst(match func(domain.User) bool) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if user := r.items[id]; match(user) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
