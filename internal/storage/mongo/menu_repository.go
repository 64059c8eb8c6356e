package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type menuRepository struct {
	menus *driver.Collection
}

// NewMenuRepository создаёт реализацию MenuRepository над коллекцией menu.
// Один документ на ресторан, позиции лежат в массиве menu_items.
func NewMenuRepository(store *Store) domain.MenuRepository {
	return &menuRepository{menus: store.collection(menusCollection)}
}

func (r *menuRepository) GetByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (domain.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc menuDocument
	err := r.menus.FindOne(ctx, bson.M{"restaurant_id": restaurantID}).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.Menu{}, domain.ErrMenuNotFound
	}
	if err != nil {
		return domain.Menu{}, domain.NewStoreError("get menu", err)
	}
	return doc.toDomain(), nil
}

// UpsertItem выполняет одну upsert-операцию: $push в существующее меню или
// создание документа. Гонку двух первых вставок разрешает уникальный индекс
// restaurant_id, проигравший повторяет запрос уже как обновление.
func (r *menuRepository) UpsertItem(ctx context.Context, restaurantID primitive.ObjectID, item domain.MenuItem) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"restaurant_id": restaurantID}
	update := bson.M{
		"$push":        bson.M{"menu_items": newMenuItemDocument(item)},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	opts := options.Update().SetUpsert(true)

	res, err := r.menus.UpdateOne(ctx, filter, update, opts)
	if driver.IsDuplicateKeyError(err) {
		res, err = r.menus.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return false, domain.NewStoreError("upsert menu item", err)
	}
	return res.UpsertedCount > 0, nil
}

func (r *menuRepository) SetItem(ctx context.Context, restaurantID primitive.ObjectID, ref domain.MenuItemRef, patch domain.MenuItemPatch) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Позиционный оператор $ обновляет первый элемент, совпавший с фильтром.
	filter := bson.M{"restaurant_id": restaurantID}
	if ref.Key != "" {
		filter["menu_items.item_key"] = ref.Key
	} else {
		filter["menu_items.product_name"] = ref.ProductName
	}

	set := bson.M{}
	if patch.Price != nil {
		set["menu_items.$.price"] = *patch.Price
	}
	if patch.Detail != nil {
		set["menu_items.$.detail"] = *patch.Detail
	}
	if len(set) == 0 {
		return matchOnly(ctx, r.menus, filter)
	}

	res, err := r.menus.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return domain.UpdateResult{}, domain.NewStoreError("update menu item", err)
	}
	return updateResult(res), nil
}

func (r *menuRepository) PullItems(ctx context.Context, restaurantID primitive.ObjectID, productName string) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.menus.UpdateOne(ctx,
		bson.M{"restaurant_id": restaurantID},
		bson.M{"$pull": bson.M{"menu_items": bson.M{"product_name": productName}}},
	)
	if err != nil {
		return domain.UpdateResult{}, domain.NewStoreError("pull menu items", err)
	}
	return updateResult(res), nil
}

func (r *menuRepository) List(ctx context.Context) ([]domain.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	docs, err := findAll[menuDocument](ctx, r.menus, bson.M{}, "list menus")
	if err != nil {
		return nil, err
	}
	menus := make([]domain.Menu, 0, len(docs))
	for _, doc := range docs {
		menus = append(menus, doc.toDomain())
	}
	return menus, nil
}

func (r *menuRepository) DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.menus.DeleteMany(ctx, bson.M{"restaurant_id": restaurantID})
	if err != nil {
		return 0, domain.NewStoreError("delete menus", err)
	}
	return res.DeletedCount, nil
}

var _ domain.MenuRepository = (*menuRepository)(nil)
