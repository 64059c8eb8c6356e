package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation — базовая ошибка для некорректных или отсутствующих полей запроса.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — базовая ошибка отсутствующей сущности или вложенной позиции.
	ErrNotFound = errors.New("not found")
	// ErrEmpty возвращается листингами, когда в хранилище нет ни одной подходящей записи.
	ErrEmpty = errors.New("no records found")
	// ErrDuplicateEmail — конфликт email при регистрации или обновлении профиля.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrUnauthorized — курьер не назначен на заказ.
	ErrUnauthorized = errors.New("delivery person is not assigned to this order")
	// ErrInvalidIdentifier — внешний идентификатор не является корректным ObjectID.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrRoleMismatch — ссылка указывает на пользователя с другой ролью.
	ErrRoleMismatch = errors.New("referenced user has unexpected role")
	// ErrInvalidCredentials — пара email/пароль не найдена.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStatusTransition — переход статуса запрещён строгой политикой.
	ErrStatusTransition = errors.New("status transition is not allowed")
	// ErrStoreFailure — хранилище недоступно или вернуло ошибку.
	ErrStoreFailure = errors.New("store failure")

	// ErrIdempotencyKeyRequired возвращается, если ключ идемпотентности пустой.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired возвращается, если хэш запроса пустой.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyNotFound — ключ не найден в хранилище.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyKeyAlreadyExists — ключ уже использован тем же запросом.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ уже использован другим запросом.
	ErrIdempotencyHashMismatch = errors.New("idempotency key reused with different request")
)

var (
	ErrUserNotFound     = &NotFoundError{Entity: "user"}
	ErrMenuNotFound     = &NotFoundError{Entity: "menu"}
	ErrMenuItemNotFound = &NotFoundError{Entity: "menu item"}
	ErrOrderNotFound    = &NotFoundError{Entity: "order"}
)

// NotFoundError описывает отсутствие конкретного вида сущности.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// Is позволяет сопоставлять любую NotFoundError с ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError указывает поле запроса и сообщение для клиента.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создаёт ошибку валидации.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// MissingFieldError — ошибка отсутствующего обязательного поля.
func MissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "Missing required field: " + field}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid field %q", e.Field)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError оборачивает ошибку драйвера хранилища, сохраняя её текст.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError возвращает nil, если err == nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// IsNotFound проверяет, относится ли ошибка к отсутствующим сущностям.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
