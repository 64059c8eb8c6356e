// Package user реализует регистрацию, вход и управление профилями.
package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/idcodec"
)

// RegisterInput — поля регистрации. Role проверяется первой.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Service управляет учётными записями.
type Service struct {
	users  domain.UserRepository
	logger *log.Entry
}

// NewService создаёт сервис пользователей. logger может быть nil.
func NewService(users domain.UserRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "user-service")
	}
	return &Service{users: users, logger: logger}
}

// Register создаёт пользователя после проверки роли, обязательных полей и
// уникальности email.
func (s *Service) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	role := domain.Role(input.Role)
	if !role.Valid() {
		return domain.User{}, domain.NewValidationError("role", "Invalid role")
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return domain.User{}, domain.NewValidationError("name", "Missing required fields")
	}
	if err := s.ensureEmailFree(ctx, input.Email, nil); err != nil {
		return domain.User{}, err
	}

	created, err := s.users.Create(ctx, domain.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     role,
	})
	if err != nil {
		s.logger.WithError(err).WithField("operation", "register").Warn("user store operation failed")
		return domain.User{}, err
	}
	return created, nil
}

// Update применяет переданные поля профиля. Повтор текущих значений
// возвращает OutcomeNoOp.
func (s *Service) Update(ctx context.Context, userID string, patch domain.UserPatch) (domain.User, domain.Outcome, error) {
	id, err := idcodec.DecodeField("user_id", userID)
	if err != nil {
		return domain.User{}, 0, err
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.User{}, 0, domain.NewValidationError("role", "Invalid role")
	}
	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, *patch.Email, &id); err != nil {
			return domain.User{}, 0, err
		}
	}

	res, err := s.users.Update(ctx, id, patch)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"operation": "update_user",
			"user_id":   userID,
		}).Warn("user store operation failed")
		return domain.User{}, 0, err
	}
	if res.Matched == 0 {
		return domain.User{}, 0, domain.ErrUserNotFound
	}
	if res.Modified == 0 {
		return domain.User{}, domain.OutcomeNoOp, nil
	}

	updated, err := s.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, 0, err
	}
	return updated, domain.OutcomeUpdated, nil
}

// Login ищет точное совпадение email и пароля.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	found, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	return found, nil
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Delete удаляет пользователя; ErrUserNotFound, если удалять нечего.
func (s *Service) Delete(ctx context.Context, userID string) error {
	id, err := idcodec.DecodeField("user_id", userID)
	if err != nil {
		return err
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ensureEmailFree проверяет, что email не занят другим пользователем.
// Postgres и Mongo дополнительно держат уникальный индекс по email.
func (s *Service) ensureEmailFree(ctx context.Context, email string, self *primitive.ObjectID) error {
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case self != nil && existing.ID == *self:
		return nil
	default:
		return domain.ErrDuplicateEmail
	}
}
