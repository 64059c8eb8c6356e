// Package menu реализует операции над меню ресторана и его позициями.
package menu

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/idcodec"
	"github.com/studentbits/Food-Delivery-System/internal/metrics"
	"github.com/studentbits/Food-Delivery-System/internal/service/resolver"
)

const (
	operationAddItem    = "add_item"
	operationUpdateItem = "update_item"
	operationRemoveItem = "remove_item"
)

// ItemInput — позиция, пришедшая от клиента. Price — указатель, потому что
// обязательность проверяется по наличию поля, а 0 — допустимая цена.
type ItemInput struct {
	ProductName string
	Price       *float64
	Detail      string
}

// Options задаёт зависимости сервиса.
type Options struct {
	Resolver *resolver.Resolver
	Metrics  *metrics.ServiceMetrics
	Logger   *log.Entry
}

// Option настраивает Service.
type Option func(*Options)

// WithResolver включает проверку ссылки на владельца ресторана.
func WithResolver(r *resolver.Resolver) Option {
	return func(opts *Options) {
		opts.Resolver = r
	}
}

// WithMetrics задаёт сборщик метрик.
func WithMetrics(m *metrics.ServiceMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Service управляет меню. Каждая позиция получает внутренний ключ, по
// которому выполняется точечное обновление.
type Service struct {
	menus    domain.MenuRepository
	resolver *resolver.Resolver
	metrics  *metrics.ServiceMetrics
	logger   *log.Entry
	newKey   func() string
}

// NewService создаёт сервис меню.
func NewService(menus domain.MenuRepository, options ...Option) *Service {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "menu-service")
	}

	return &Service{
		menus:    menus,
		resolver: opts.Resolver,
		metrics:  opts.Metrics,
		logger:   logger,
		newKey:   uuid.NewString,
	}
}

// AddItem добавляет позицию в конец меню ресторана или создаёт меню с ней.
// Дубликаты по названию разрешены.
func (s *Service) AddItem(ctx context.Context, restaurantID string, input ItemInput) (domain.Outcome, error) {
	if strings.TrimSpace(input.ProductName) == "" || input.Price == nil || strings.TrimSpace(input.Detail) == "" {
		return 0, domain.NewValidationError("product_name", "Missing required fields (product_name, price, detail)")
	}

	rid, err := idcodec.DecodeField("restaurant_id", restaurantID)
	if err != nil {
		return 0, err
	}
	if err := s.resolver.Check(ctx, rid, domain.RoleRestaurantOwner); err != nil {
		return 0, err
	}

	started := time.Now()
	item := domain.MenuItem{
		Key:         s.newKey(),
		ProductName: input.ProductName,
		Price:       *input.Price,
		Detail:      input.Detail,
	}

	created, err := s.menus.UpsertItem(ctx, rid, item)
	if err != nil {
		s.logFailure(err, operationAddItem, restaurantID)
		return 0, err
	}

	outcome := domain.OutcomeAppended
	if created {
		outcome = domain.OutcomeCreated
	}
	s.metrics.RecordMenuMutation(operationAddItem, outcome.String())
	s.logger.WithFields(log.Fields{
		"restaurant_id": restaurantID,
		"product_name":  item.ProductName,
		"outcome":       outcome.String(),
		"duration":      time.Since(started),
	}).Debug("menu item added")

	return outcome, nil
}

// Items возвращает позиции меню в порядке хранения.
func (s *Service) Items(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	rid, err := idcodec.DecodeField("restaurant_id", restaurantID)
	if err != nil {
		return nil, err
	}

	menu, err := s.menus.GetByRestaurant(ctx, rid)
	if err != nil {
		return nil, err
	}
	return menu.Items, nil
}

// UpdateItem обновляет первую позицию с названием productName. Поля price и
// detail применяются независимо друг от друга.
func (s *Service) UpdateItem(ctx context.Context, restaurantID, productName string, patch domain.MenuItemPatch) (domain.Outcome, error) {
	rid, err := idcodec.DecodeField("restaurant_id", restaurantID)
	if err != nil {
		return 0, err
	}

	menu, err := s.menus.GetByRestaurant(ctx, rid)
	if err != nil {
		return 0, err
	}

	if productName == "" {
		return 0, domain.NewValidationError("product_name", "Product name is required")
	}
	item, ok := menu.FirstItem(productName)
	if !ok {
		return 0, domain.ErrMenuItemNotFound
	}
	if patch.Empty() {
		return 0, domain.NewValidationError("price", "No fields to update (price, detail)")
	}

	res, err := s.menus.SetItem(ctx, rid, domain.MenuItemRef{Key: item.Key, ProductName: productName}, patch)
	if err != nil {
		s.logFailure(err, operationUpdateItem, restaurantID)
		return 0, err
	}
	// Позицию могли удалить между чтением и обновлением.
	if res.Matched == 0 {
		return 0, domain.ErrMenuItemNotFound
	}

	outcome := domain.OutcomeUpdated
	if res.Modified == 0 {
		outcome = domain.OutcomeNoOp
	}
	s.metrics.RecordMenuMutation(operationUpdateItem, outcome.String())
	return outcome, nil
}

// RemoveItem удаляет все позиции с указанным названием.
func (s *Service) RemoveItem(ctx context.Context, restaurantID, productName string) (domain.Outcome, error) {
	rid, err := idcodec.DecodeField("restaurant_id", restaurantID)
	if err != nil {
		return 0, err
	}

	menu, err := s.menus.GetByRestaurant(ctx, rid)
	if err != nil {
		return 0, err
	}
	if _, ok := menu.FirstItem(productName); !ok {
		return 0, domain.ErrMenuItemNotFound
	}

	res, err := s.menus.PullItems(ctx, rid, productName)
	if err != nil {
		s.logFailure(err, operationRemoveItem, restaurantID)
		return 0, err
	}

	outcome := domain.OutcomeRemoved
	if res.Modified == 0 {
		outcome = domain.OutcomeNoOp
	}
	s.metrics.RecordMenuMutation(operationRemoveItem, outcome.String())
	return outcome, nil
}

// ListAll возвращает все меню; ErrEmpty, если меню нет ни одного.
func (s *Service) ListAll(ctx context.Context) ([]domain.Menu, error) {
	menus, err := s.menus.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, domain.ErrEmpty
	}
	return menus, nil
}

func (s *Service) logFailure(err error, operation, restaurantID string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.WithError(err).WithFields(log.Fields{
		"operation":     operation,
		"restaurant_id": restaurantID,
	}).Warn("menu store operation failed")
}
