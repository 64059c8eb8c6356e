package postgres

import (
	"context"
	"database/sql"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

type menuRepository struct {
	db *sql.DB
}

// NewMenuRepository создаёт PostgreSQL-реализацию MenuRepository.
// Позиции лежат в menu_items, порядок задаётся их суррогатным id.
func NewMenuRepository(store *Store) domain.MenuRepository {
	return &menuRepository{db: store.DB()}
}

func (r *menuRepository) GetByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (domain.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var menuID, restaurant string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, restaurant_id FROM menus WHERE restaurant_id = $1`, restaurantID.Hex(),
	).Scan(&menuID, &restaurant)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Menu{}, domain.ErrMenuNotFound
	}
	if err != nil {
		return domain.Menu{}, domain.NewStoreError("get menu", err)
	}

	menus, err := r.attachItems(ctx, []menuRow{{id: menuID, restaurantID: restaurant}}, `WHERE menu_id = $1`, menuID)
	if err != nil {
		return domain.Menu{}, err
	}
	return menus[0], nil
}

// UpsertItem создаёт меню или блокирует существующую строку через
// ON CONFLICT DO UPDATE, после чего добавляет позицию в той же транзакции.
func (r *menuRepository) UpsertItem(ctx context.Context, restaurantID primitive.ObjectID, item domain.MenuItem) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var created bool
	err := inTx(ctx, r.db, "upsert menu item", func(tx *sql.Tx) error {
		var menuID string
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO menus (id, restaurant_id)
			VALUES ($1, $2)
			ON CONFLICT (restaurant_id) DO UPDATE SET restaurant_id = EXCLUDED.restaurant_id
			RETURNING id, (xmax = 0)
		`, primitive.NewObjectID().Hex(), restaurantID.Hex()).Scan(&menuID, &created); err != nil {
			return domain.NewStoreError("upsert menu", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (menu_id, item_key, product_name, price, detail)
			VALUES ($1,$2,$3,$4,$5)
		`, menuID, item.Key, item.ProductName, item.Price, item.Detail); err != nil {
			return domain.NewStoreError("insert menu item", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *menuRepository) SetItem(ctx context.Context, restaurantID primitive.ObjectID, ref domain.MenuItemRef, patch domain.MenuItemPatch) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Без ключа адресуем первую позицию с таким названием.
	match, arg := `i.item_key = $2`, ref.Key
	if ref.Key == "" {
		match, arg = `i.product_name = $2`, ref.ProductName
	}

	var result domain.UpdateResult
	err := inTx(ctx, r.db, "update menu item", func(tx *sql.Tx) error {
		var (
			rowID int64
			item  domain.MenuItem
		)
		err := tx.QueryRowContext(ctx, `
			SELECT i.id, i.item_key, i.product_name, i.price, i.detail
			FROM menu_items i
			JOIN menus m ON m.id = i.menu_id
			WHERE m.restaurant_id = $1 AND `+match+`
			ORDER BY i.id
			LIMIT 1
			FOR UPDATE OF i
		`, restaurantID.Hex(), arg).Scan(&rowID, &item.Key, &item.ProductName, &item.Price, &item.Detail)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return domain.NewStoreError("select menu item", err)
		}
		result.Matched = 1

		updated, changed := patch.Apply(item)
		if !changed {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE menu_items SET price = $2, detail = $3 WHERE id = $1`,
			rowID, updated.Price, updated.Detail,
		); err != nil {
			return domain.NewStoreError("update menu item", err)
		}
		result.Modified = 1
		return nil
	})
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return result, nil
}

func (r *menuRepository) PullItems(ctx context.Context, restaurantID primitive.ObjectID, productName string) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result domain.UpdateResult
	err := inTx(ctx, r.db, "pull menu items", func(tx *sql.Tx) error {
		var menuID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM menus WHERE restaurant_id = $1 FOR UPDATE`, restaurantID.Hex(),
		).Scan(&menuID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return domain.NewStoreError("select menu", err)
		}
		result.Matched = 1

		res, err := tx.ExecContext(ctx,
			`DELETE FROM menu_items WHERE menu_id = $1 AND product_name = $2`, menuID, productName)
		if err != nil {
			return domain.NewStoreError("delete menu items", err)
		}
		deleted, err := rowsAffected(res, "delete menu items")
		if err != nil {
			return err
		}
		if deleted > 0 {
			result.Modified = 1
		}
		return nil
	})
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return result, nil
}

func (r *menuRepository) List(ctx context.Context) ([]domain.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, restaurant_id FROM menus ORDER BY seq`)
	if err != nil {
		return nil, domain.NewStoreError("list menus", err)
	}
	defer rows.Close()

	heads := make([]menuRow, 0)
	for rows.Next() {
		var head menuRow
		if err := rows.Scan(&head.id, &head.restaurantID); err != nil {
			return nil, domain.NewStoreError("scan menu", err)
		}
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("iterate menus", err)
	}
	if len(heads) == 0 {
		return []domain.Menu{}, nil
	}

	return r.attachItems(ctx, heads, "")
}

func (r *menuRepository) DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE restaurant_id = $1`, restaurantID.Hex())
	if err != nil {
		return 0, domain.NewStoreError("delete menu", err)
	}
	return rowsAffected(res, "delete menu")
}

type menuRow struct {
	id           string
	restaurantID string
}

// attachItems загружает позиции для heads и собирает меню в исходном порядке.
func (r *menuRepository) attachItems(ctx context.Context, heads []menuRow, where string, args ...any) ([]domain.Menu, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT menu_id, item_key, product_name, price, detail
		FROM menu_items `+where+`
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, domain.NewStoreError("list menu items", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.MenuItem, len(heads))
	for rows.Next() {
		var (
			menuID string
			item   domain.MenuItem
		)
		if err := rows.Scan(&menuID, &item.Key, &item.ProductName, &item.Price, &item.Detail); err != nil {
			return nil, domain.NewStoreError("scan menu item", err)
		}
		items[menuID] = append(items[menuID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("iterate menu items", err)
	}

	menus := make([]domain.Menu, 0, len(heads))
	for _, head := range heads {
		id, err := parseID(head.id)
		if err != nil {
			return nil, domain.NewStoreError("menu", err)
		}
		restaurantID, err := parseID(head.restaurantID)
		if err != nil {
			return nil, domain.NewStoreError("menu", err)
		}
		menuItems := items[head.id]
		if menuItems == nil {
			menuItems = []domain.MenuItem{}
		}
		menus = append(menus, domain.Menu{ID: id, RestaurantID: restaurantID, Items: menuItems})
	}
	return menus, nil
}

var _ domain.MenuRepository = (*menuRepository)(nil)
