// Package resolver проверяет, что идентификатор, на который ссылается
// запись, указывает на существующего пользователя с ожидаемой ролью.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/idcodec"
)

// Resolver разрешает ссылки на пользователей. В выключенном режиме Check
// ничего не проверяет, так ссылки принимаются как есть.
type Resolver struct {
	users   domain.UserRepository
	enabled bool
}

// New создаёт резолвер. enabled == false соответствует нестрогому режиму.
func New(users domain.UserRepository, enabled bool) *Resolver {
	return &Resolver{users: users, enabled: enabled}
}

// Enabled сообщает, включена ли проверка ссылок.
func (r *Resolver) Enabled() bool {
	return r != nil && r.enabled && r.users != nil
}

// ResolveAndCheckRole декодирует id, находит пользователя и сверяет роль.
// Работает независимо от режима.
func (r *Resolver) ResolveAndCheckRole(ctx context.Context, id string, expected domain.Role) (domain.User, error) {
	oid, err := idcodec.Decode(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.resolve(ctx, oid, expected)
}

// Check проверяет уже декодированную ссылку, если проверка включена.
func (r *Resolver) Check(ctx context.Context, id primitive.ObjectID, expected domain.Role) error {
	if !r.Enabled() {
		return nil
	}
	_, err := r.resolve(ctx, id, expected)
	return err
}

func (r *Resolver) resolve(ctx context.Context, id primitive.ObjectID, expected domain.Role) (domain.User, error) {
	if r == nil || r.users == nil {
		return domain.User{}, errors.New("resolver has no user repository")
	}

	user, err := r.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if user.Role != expected {
		return domain.User{}, fmt.Errorf("%w: user %s has role %q, expected %q",
			domain.ErrRoleMismatch, idcodec.Encode(id), user.Role, expected)
	}
	return user, nil
}
