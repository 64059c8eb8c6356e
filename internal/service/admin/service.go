// Package admin объединяет административные листинги и удаления.
package admin

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/idcodec"
)

// RestaurantDeletion — результат каскадного удаления ресторана.
type RestaurantDeletion struct {
	UserDeleted        int64
	MenuEntriesDeleted int64
}

// Service выполняет операции панели администратора.
type Service struct {
	users  domain.UserRepository
	menus  domain.MenuRepository
	orders domain.OrderRepository
	logger *log.Entry
}

// NewService создаёт административный сервис.
func NewService(users domain.UserRepository, menus domain.MenuRepository, orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "admin-service")
	}
	return &Service{users: users, menus: menus, orders: orders, logger: logger}
}

func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Restaurants возвращает все меню: ресторан существует, пока у него есть меню.
func (s *Service) Restaurants(ctx context.Context) ([]domain.Menu, error) {
	return s.menus.List(ctx)
}

func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// DeleteUser удаляет пользователя любой роли.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
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

// DeleteOrder удаляет заказ.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	id, err := idcodec.DecodeField("order_id", orderID)
	if err != nil {
		return err
	}
	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// DeleteRestaurant удаляет владельца (только с ролью restaurant_owner) и все
// меню ресторана. Операции не транзакционны: удалённый владелец остаётся
// удалённым, даже если удаление меню завершилось ошибкой.
func (s *Service) DeleteRestaurant(ctx context.Context, restaurantID string) (RestaurantDeletion, error) {
	if !idcodec.Valid(restaurantID) {
		return RestaurantDeletion{}, domain.NewValidationError("restaurant_id", "Invalid restaurant ID")
	}
	id, err := idcodec.Decode(restaurantID)
	if err != nil {
		return RestaurantDeletion{}, err
	}

	var result RestaurantDeletion
	result.UserDeleted, err = s.users.DeleteWithRole(ctx, id, domain.RoleRestaurantOwner)
	if err != nil {
		return RestaurantDeletion{}, err
	}
	result.MenuEntriesDeleted, err = s.menus.DeleteByRestaurant(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"restaurant_id": restaurantID,
			"user_deleted":  result.UserDeleted,
		}).Error("restaurant menus were not deleted")
		return result, err
	}

	if result.UserDeleted == 0 && result.MenuEntriesDeleted == 0 {
		return RestaurantDeletion{}, &domain.NotFoundError{Entity: "restaurant"}
	}

	s.logger.WithFields(log.Fields{
		"restaurant_id":        restaurantID,
		"user_deleted":         result.UserDeleted,
		"menu_entries_deleted": result.MenuEntriesDeleted,
	}).Info("restaurant deleted")
	return result, nil
}
