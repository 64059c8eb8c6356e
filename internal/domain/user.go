package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role — роль пользователя платформы.
type Role string

const (
	RoleCustomer          Role = "customer"
	RoleRestaurantOwner   Role = "restaurant_owner"
	RoleDeliveryPersonnel Role = "delivery_personnel"
	RoleAdmin             Role = "admin"
)

// Valid проверяет, что роль входит в поддерживаемый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleDeliveryPersonnel, RoleAdmin:
		return true
	default:
		return false
	}
}

// User — учётная запись платформы. Пароль хранится в открытом виде.
type User struct {
	ID       primitive.ObjectID
	Name     string
	Email    string
	Password string
	Role     Role
}

// UserPatch содержит только переданные для обновления поля.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// Empty сообщает, что в патче нет ни одного поля.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Role == nil
}

// Apply возвращает копию пользователя с применёнными полями и признак изменения.
func (p UserPatch) Apply(user User) (User, bool) {
	changed := false
	if p.Name != nil && *p.Name != user.Name {
		user.Name = *p.Name
		changed = true
	}
	if p.Email != nil && *p.Email != user.Email {
		user.Email = *p.Email
		changed = true
	}
	if p.Password != nil && *p.Password != user.Password {
		user.Password = *p.Password
		changed = true
	}
	if p.Role != nil && *p.Role != user.Role {
		user.Role = *p.Role
		changed = true
	}
	return user, changed
}
