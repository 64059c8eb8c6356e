package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// OrderStatusPending — начальный статус заказа в строгом режиме.
const OrderStatusPending = "pending"

// Order — заказ. Ссылки на пользователя, ресторан и курьера неизменяемы
// после создания; меняется только Status.
type Order struct {
	ID               primitive.ObjectID
	UserID           primitive.ObjectID
	RestaurantID     primitive.ObjectID
	DeliveryPersonID primitive.ObjectID
	Status           string
	// MenuDetail — произвольное JSON-значение, сохраняется как есть.
	MenuDetail any
	TotalPrice float64
}

// StatusPolicy решает, допустим ли переход статуса заказа.
type StatusPolicy interface {
	CanCreate(status string) error
	CanTransition(from, to string) error
}

// OpenStatusPolicy допускает любой статус после любого.
type OpenStatusPolicy struct{}

func (OpenStatusPolicy) CanCreate(string) error { return nil }

func (OpenStatusPolicy) CanTransition(string, string) error { return nil }

type statusTransition struct {
	From string
	To   string
}

var strictTransitions = []statusTransition{
	{From: "pending", To: "accepted"},
	{From: "pending", To: "cancelled"},
	{From: "accepted", To: "preparing"},
	{From: "accepted", To: "cancelled"},
	{From: "preparing", To: "ready_for_pickup"},
	{From: "ready_for_pickup", To: "picked_up"},
	{From: "picked_up", To: "delivered"},
}

var strictTransitionSet = func() map[statusTransition]bool {
	m := make(map[statusTransition]bool, len(strictTransitions))
	for _, t := range strictTransitions {
		m[t] = true
	}
	return m
}()

// StrictStatusPolicy разрешает только переходы из таблицы strictTransitions.
type StrictStatusPolicy struct{}

// CanCreate требует, чтобы новый заказ начинался со статуса pending.
func (StrictStatusPolicy) CanCreate(status string) error {
	if status != OrderStatusPending {
		return &StatusTransitionError{To: status, Allowed: []string{OrderStatusPending}}
	}
	return nil
}

func (StrictStatusPolicy) CanTransition(from, to string) error {
	// Повтор текущего статуса — это no-op, а не переход.
	if from == to || strictTransitionSet[statusTransition{From: from, To: to}] {
		return nil
	}
	return &StatusTransitionError{From: from, To: to, Allowed: NextStatuses(from)}
}

// NextStatuses возвращает статусы, допустимые после from в строгом режиме.
func NextStatuses(from string) []string {
	var next []string
	for _, t := range strictTransitions {
		if t.From == from {
			next = append(next, t.To)
		}
	}
	return next
}

// StatusTransitionError описывает запрещённый переход.
type StatusTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *StatusTransitionError) Error() string {
	if e.From == "" {
		return "Invalid initial status: " + e.To
	}
	return "Invalid status transition: " + e.From + " -> " + e.To
}

func (e *StatusTransitionError) Is(target error) bool {
	return target == ErrStatusTransition
}
