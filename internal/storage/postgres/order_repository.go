package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

const orderColumns = `id, user_id, restaurant_id, delivery_person_id, status, menu_detail, total_price`

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
// menu_detail хранится в JSONB.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	detail, err := json.Marshal(order.MenuDetail)
	if err != nil {
		return domain.Order{}, domain.NewStoreError("encode menu_detail", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, restaurant_id, delivery_person_id, status, menu_detail, total_price)
		VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7)
	`,
		order.ID.Hex(), order.UserID.Hex(), order.RestaurantID.Hex(), order.DeliveryPersonID.Hex(),
		order.Status, string(detail), order.TotalPrice,
	); err != nil {
		return domain.Order{}, domain.NewStoreError("insert order", err)
	}
	return order, nil
}

func (r *orderRepository) Get(ctx context.Context, id primitive.ObjectID) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id.Hex()))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, domain.NewStoreError("get order", err)
	}
	return order, nil
}

// SetStatus обновляет строку, только если статус отличается. Если ничего не
// обновлено, отдельный запрос отличает «нет заказа» от «статус тот же».
func (r *orderRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1 AND status <> $2`, id.Hex(), status)
	if err != nil {
		return domain.UpdateResult{}, domain.NewStoreError("update order status", err)
	}
	affected, err := rowsAffected(res, "update order status")
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if affected > 0 {
		return domain.UpdateResult{Matched: 1, Modified: 1}, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id.Hex()).Scan(&exists); err != nil {
		return domain.UpdateResult{}, domain.NewStoreError("check order exists", err)
	}
	if !exists {
		return domain.UpdateResult{}, nil
	}
	return domain.UpdateResult{Matched: 1}, nil
}

func (r *orderRepository) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]domain.Order, error) {
	return r.list(ctx, `WHERE restaurant_id = $1`, restaurantID.Hex())
}

func (r *orderRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID primitive.ObjectID) ([]domain.Order, error) {
	return r.list(ctx, `WHERE delivery_person_id = $1`, deliveryPersonID.Hex())
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, "")
}

func (r *orderRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id.Hex())
	if err != nil {
		return 0, domain.NewStoreError("delete order", err)
	}
	return rowsAffected(res, "delete order")
}

func (r *orderRepository) list(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, domain.NewStoreError("list orders", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("iterate orders", err)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		detail []byte
	)
	var id, userID, restaurantID, deliveryID string
	if err := row.Scan(&id, &userID, &restaurantID, &deliveryID, &order.Status, &detail, &order.TotalPrice); err != nil {
		return domain.Order{}, err
	}

	var err error
	if order.ID, err = parseID(id); err != nil {
		return domain.Order{}, fmt.Errorf("order: %w", err)
	}
	if order.UserID, err = parseID(userID); err != nil {
		return domain.Order{}, fmt.Errorf("order user: %w", err)
	}
	if order.RestaurantID, err = parseID(restaurantID); err != nil {
		return domain.Order{}, fmt.Errorf("order restaurant: %w", err)
	}
	if order.DeliveryPersonID, err = parseID(deliveryID); err != nil {
		return domain.Order{}, fmt.Errorf("order delivery person: %w", err)
	}
	if err := json.Unmarshal(detail, &order.MenuDetail); err != nil {
		return domain.Order{}, fmt.Errorf("decode menu_detail: %w", err)
	}
	return order, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
