package rest

import (
	"encoding/json"
	"time"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/idcodec"
)

// Тела запросов. Указатели отличают отсутствующее поле от нулевого значения.

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (r updateUserRequest) patch() domain.UserPatch {
	patch := domain.UserPatch{Name: r.Name, Email: r.Email, Password: r.Password}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type menuItemRequest struct {
	ProductName string   `json:"product_name"`
	Price       *float64 `json:"price"`
	Detail      *string  `json:"detail"`
}

type createOrderRequest struct {
	Status           *string         `json:"status"`
	MenuDetail       json.RawMessage `json:"menu_detail"`
	TotalPrice       *float64        `json:"total_price"`
	DeliveryPersonID *string         `json:"delivery_person_id"`
}

type updateStatusRequest struct {
	DeliveryPersonID *string `json:"delivery_person_id"`
	Status           *string `json:"status"`
}

// Представления ответов. Пароль наружу не отдаётся.

type userResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type menuItemResponse struct {
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Detail      string  `json:"detail"`
}

type menuResponse struct {
	ID           string             `json:"_id"`
	RestaurantID string             `json:"restaurant_id"`
	MenuItems    []menuItemResponse `json:"menu_items"`
}

type orderResponse struct {
	ID               string  `json:"_id"`
	UserID           string  `json:"user_id"`
	RestaurantID     string  `json:"restaurant_id"`
	DeliveryPersonID string  `json:"delivery_person_id"`
	Status           string  `json:"status"`
	MenuDetail       any     `json:"menu_detail"`
	TotalPrice       float64 `json:"total_price"`
}

type timelineEventResponse struct {
	Type       string    `json:"type"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:    idcodec.Encode(u.ID),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toMenuItemResponses(items []domain.MenuItem) []menuItemResponse {
	out := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, menuItemResponse{
			ProductName: item.ProductName,
			Price:       item.Price,
			Detail:      item.Detail,
		})
	}
	return out
}

func toMenuResponses(menus []domain.Menu) []menuResponse {
	out := make([]menuResponse, 0, len(menus))
	for _, m := range menus {
		out = append(out, menuResponse{
			ID:           idcodec.Encode(m.ID),
			RestaurantID: idcodec.Encode(m.RestaurantID),
			MenuItems:    toMenuItemResponses(m.Items),
		})
	}
	return out
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:               idcodec.Encode(o.ID),
		UserID:           idcodec.Encode(o.UserID),
		RestaurantID:     idcodec.Encode(o.RestaurantID),
		DeliveryPersonID: idcodec.Encode(o.DeliveryPersonID),
		Status:           o.Status,
		MenuDetail:       o.MenuDetail,
		TotalPrice:       o.TotalPrice,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toTimelineResponses(events []domain.TimelineEvent) []timelineEventResponse {
	out := make([]timelineEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, timelineEventResponse{Type: e.Type, Reason: e.Reason, OccurredAt: e.Occurred})
	}
	return out
}
