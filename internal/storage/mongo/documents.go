package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Role     string             `bson:"role"`
}

func newUserDocument(u domain.User) userDocument {
	return userDocument{ID: u.ID, Name: u.Name, Email: u.Email, Password: u.Password, Role: string(u.Role)}
}

func (d userDocument) toDomain() domain.User {
	return domain.User{ID: d.ID, Name: d.Name, Email: d.Email, Password: d.Password, Role: domain.Role(d.Role)}
}

// menuItemDocument: у позиций, созданных до появления ключей, item_key нет.
type menuItemDocument struct {
	Key         string  `bson:"item_key,omitempty"`
	ProductName string  `bson:"product_name"`
	Price       float64 `bson:"price"`
	Detail      string  `bson:"detail"`
}

type menuDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	RestaurantID primitive.ObjectID `bson:"restaurant_id"`
	Items        []menuItemDocument `bson:"menu_items"`
}

func newMenuItemDocument(item domain.MenuItem) menuItemDocument {
	return menuItemDocument{Key: item.Key, ProductName: item.ProductName, Price: item.Price, Detail: item.Detail}
}

func (d menuDocument) toDomain() domain.Menu {
	items := make([]domain.MenuItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.MenuItem{
			Key:         item.Key,
			ProductName: item.ProductName,
			Price:       item.Price,
			Detail:      item.Detail,
		})
	}
	return domain.Menu{ID: d.ID, RestaurantID: d.RestaurantID, Items: items}
}

type orderDocument struct {
	ID               primitive.ObjectID `bson:"_id"`
	UserID           primitive.ObjectID `bson:"user_id"`
	RestaurantID     primitive.ObjectID `bson:"restaurant_id"`
	Status           string             `bson:"status"`
	MenuDetail       any                `bson:"menu_detail"`
	TotalPrice       float64            `bson:"total_price"`
	DeliveryPersonID primitive.ObjectID `bson:"delivery_person_id"`
}

func newOrderDocument(o domain.Order) orderDocument {
	return orderDocument{
		ID:               o.ID,
		UserID:           o.UserID,
		RestaurantID:     o.RestaurantID,
		Status:           o.Status,
		MenuDetail:       o.MenuDetail,
		TotalPrice:       o.TotalPrice,
		DeliveryPersonID: o.DeliveryPersonID,
	}
}

func (d orderDocument) toDomain() domain.Order {
	return domain.Order{
		ID:               d.ID,
		UserID:           d.UserID,
		RestaurantID:     d.RestaurantID,
		DeliveryPersonID: d.DeliveryPersonID,
		Status:           d.Status,
		MenuDetail:       plainValue(d.MenuDetail),
		TotalPrice:       d.TotalPrice,
	}
}

type timelineDocument struct {
	OrderID  string    `bson:"order_id"`
	Type     string    `bson:"type"`
	Reason   string    `bson:"reason"`
	Occurred time.Time `bson:"occurred"`
}

type idempotencyDocument struct {
	Key          string    `bson:"_id"`
	RequestHash  string    `bson:"request_hash"`
	ResponseBody []byte    `bson:"response_body,omitempty"`
	HTTPStatus   int       `bson:"http_status,omitempty"`
	Status       string    `bson:"status"`
	TTLAt        time.Time `bson:"ttl_at"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d idempotencyDocument) toDomain() domain.IdempotencyRecord {
	return domain.IdempotencyRecord{
		Key:          d.Key,
		RequestHash:  d.RequestHash,
		ResponseBody: d.ResponseBody,
		HTTPStatus:   d.HTTPStatus,
		Status:       domain.IdempotencyStatus(d.Status),
		TTLAt:        d.TTLAt.UTC(),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// plainValue приводит значения из BSON к типам encoding/json:
// вложенные документы к map[string]any, массивы к []any.
func plainValue(v any) any {
	switch value := v.(type) {
	case bson.M:
		out := make(map[string]any, len(value))
		for k, inner := range value {
			out[k] = plainValue(inner)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(value))
		for _, e := range value {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(value))
		for i, inner := range value {
			out[i] = plainValue(inner)
		}
		return out
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	case primitive.ObjectID:
		return value.Hex()
	case primitive.DateTime:
		return value.Time().UTC()
	default:
		return value
	}
}
