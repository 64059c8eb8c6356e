package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository описывает коллекцию пользователей.
type UserRepository interface {
	// Create сохраняет пользователя; пустой ID заполняется хранилищем.
	Create(ctx context.Context, user User) (User, error)
	// Get возвращает пользователя или ErrUserNotFound.
	Get(ctx context.Context, id primitive.ObjectID) (User, error)
	// FindByEmail возвращает пользователя с указанным email или ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (User, error)
	// FindByCredentials ищет точное совпадение email и пароля.
	FindByCredentials(ctx context.Context, email, password string) (User, error)
	// Update применяет патч; Modified == 0, если значения совпали.
	Update(ctx context.Context, id primitive.ObjectID, patch UserPatch) (UpdateResult, error)
	List(ctx context.Context) ([]User, error)
	// Delete возвращает количество удалённых записей (0 или 1).
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	// DeleteWithRole удаляет пользователя, только если у него указанная роль.
	DeleteWithRole(ctx context.Context, id primitive.ObjectID, role Role) (int64, error)
}

// MenuRepository описывает коллекцию меню с вложенными позициями.
type MenuRepository interface {
	// GetByRestaurant возвращает меню ресторана или ErrMenuNotFound.
	GetByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (Menu, error)
	// UpsertItem атомарно добавляет позицию в конец меню, создавая меню при
	// его отсутствии. created == true, если меню было создано.
	UpsertItem(ctx context.Context, restaurantID primitive.ObjectID, item MenuItem) (created bool, err error)
	// SetItem обновляет поля одной позиции.
	SetItem(ctx context.Context, restaurantID primitive.ObjectID, ref MenuItemRef, patch MenuItemPatch) (UpdateResult, error)
	// PullItems удаляет все позиции с указанным названием.
	PullItems(ctx context.Context, restaurantID primitive.ObjectID, productName string) (UpdateResult, error)
	List(ctx context.Context) ([]Menu, error)
	// DeleteByRestaurant удаляет все меню ресторана и возвращает их количество.
	DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (int64, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ; пустой ID заполняется хранилищем.
	Create(ctx context.Context, order Order) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id primitive.ObjectID) (Order, error)
	// SetStatus меняет только статус заказа.
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (UpdateResult, error)
	ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]Order, error)
	ListByDeliveryPerson(ctx context.Context, deliveryPersonID primitive.ObjectID) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// TimelineRepository хранит историю событий заказов.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	// List возвращает события заказа в хронологическом порядке.
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// IdempotencyRepository хранит состояние запросов с Idempotency-Key.
type IdempotencyRepository interface {
	// CreateProcessing резервирует ключ. Для занятого ключа возвращает
	// существующую запись и ErrIdempotencyKeyAlreadyExists или ErrIdempotencyHashMismatch.
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	// DeleteExpired удаляет не более limit записей с TTL <= before (limit <= 0 — без ограничения).
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}
