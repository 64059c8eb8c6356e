package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// MenuItem — позиция меню. Key — внутренний ключ позиции, наружу не отдаётся;
// публичным ключом поиска остаётся ProductName.
type MenuItem struct {
	Key         string
	ProductName string
	Price       float64
	Detail      string
}

// Menu — меню ресторана; на один ресторан приходится один документ.
type Menu struct {
	ID           primitive.ObjectID
	RestaurantID primitive.ObjectID
	Items        []MenuItem
}

// FirstItem возвращает первую позицию с указанным названием.
func (m Menu) FirstItem(productName string) (MenuItem, bool) {
	for _, item := range m.Items {
		if item.ProductName == productName {
			return item, true
		}
	}
	return MenuItem{}, false
}

// MenuItemRef адресует позицию внутри меню. Если Key пустой (позиции,
// созданные до появления ключей), хранилище ищет первую позицию по имени.
type MenuItemRef struct {
	Key         string
	ProductName string
}

// MenuItemPatch содержит переданные для обновления поля позиции.
type MenuItemPatch struct {
	Price  *float64
	Detail *string
}

// Empty сообщает, что ни одно обновляемое поле не передано.
func (p MenuItemPatch) Empty() bool {
	return p.Price == nil && p.Detail == nil
}

// Apply применяет патч к позиции и сообщает, изменилось ли что-нибудь.
func (p MenuItemPatch) Apply(item MenuItem) (MenuItem, bool) {
	changed := false
	if p.Price != nil && *p.Price != item.Price {
		item.Price = *p.Price
		changed = true
	}
	if p.Detail != nil && *p.Detail != item.Detail {
		item.Detail = *p.Detail
		changed = true
	}
	return item, changed
}

// CloneMenu копирует меню вместе со списком позиций.
func CloneMenu(src Menu) Menu {
	dst := src
	dst.Items = append([]MenuItem(nil), src.Items...)
	return dst
}
