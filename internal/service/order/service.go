// Package order реализует создание заказов, смену статуса назначенным
// курьером и листинги заказов.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/idcodec"
	"github.com/studentbits/Food-Delivery-System/internal/metrics"
	"github.com/studentbits/Food-Delivery-System/internal/service/resolver"
)

// CreateInput — поля тела запроса на создание заказа. nil означает, что
// поле отсутствует (или передано как null).
type CreateInput struct {
	Status           *string
	MenuDetail       json.RawMessage
	TotalPrice       *float64
	DeliveryPersonID *string
}

// Options задаёт зависимости сервиса.
type Options struct {
	Timeline domain.TimelineRepository
	Policy   domain.StatusPolicy
	Resolver *resolver.Resolver
	Metrics  *metrics.ServiceMetrics
	Logger   *log.Entry
}

// Option настраивает Service.
type Option func(*Options)

// WithTimeline включает запись истории заказа.
func WithTimeline(timeline domain.TimelineRepository) Option {
	return func(opts *Options) {
		opts.Timeline = timeline
	}
}

// WithStatusPolicy задаёт политику переходов статуса. По умолчанию — OpenStatusPolicy.
func WithStatusPolicy(policy domain.StatusPolicy) Option {
	return func(opts *Options) {
		opts.Policy = policy
	}
}

// WithResolver включает проверку ссылок на пользователей.
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

// Service управляет заказами.
type Service struct {
	orders   domain.OrderRepository
	timeline domain.TimelineRepository
	policy   domain.StatusPolicy
	resolver *resolver.Resolver
	metrics  *metrics.ServiceMetrics
	logger   *log.Entry
	now      func() time.Time
}

// NewService создаёт сервис заказов.
func NewService(orders domain.OrderRepository, options ...Option) *Service {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	policy := opts.Policy
	if policy == nil {
		policy = domain.OpenStatusPolicy{}
	}

	return &Service{
		orders:   orders,
		timeline: opts.Timeline,
		policy:   policy,
		resolver: opts.Resolver,
		metrics:  opts.Metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create проверяет обязательные поля, декодирует ссылки и сохраняет заказ.
func (s *Service) Create(ctx context.Context, userID, restaurantID string, input CreateInput) (domain.Order, error) {
	switch {
	case input.Status == nil:
		return domain.Order{}, domain.MissingFieldError("status")
	case isAbsent(input.MenuDetail):
		return domain.Order{}, domain.MissingFieldError("menu_detail")
	case input.TotalPrice == nil:
		return domain.Order{}, domain.MissingFieldError("total_price")
	case input.DeliveryPersonID == nil:
		return domain.Order{}, domain.MissingFieldError("delivery_person_id")
	}

	uid, err := idcodec.DecodeField("user_id", userID)
	if err != nil {
		return domain.Order{}, err
	}
	rid, err := idcodec.DecodeField("restaurant_id", restaurantID)
	if err != nil {
		return domain.Order{}, err
	}
	did, err := idcodec.DecodeField("delivery_person_id", *input.DeliveryPersonID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.policy.CanCreate(*input.Status); err != nil {
		return domain.Order{}, err
	}
	if err := s.checkReferences(ctx, uid, rid, did); err != nil {
		return domain.Order{}, err
	}

	var menuDetail any
	if err := json.Unmarshal(input.MenuDetail, &menuDetail); err != nil {
		return domain.Order{}, domain.NewValidationError("menu_detail", "Invalid menu_detail: "+err.Error())
	}

	created, err := s.orders.Create(ctx, domain.Order{
		UserID:           uid,
		RestaurantID:     rid,
		DeliveryPersonID: did,
		Status:           *input.Status,
		MenuDetail:       menuDetail,
		TotalPrice:       *input.TotalPrice,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"operation":     "create_order",
			"user_id":       userID,
			"restaurant_id": restaurantID,
		}).Warn("order store operation failed")
		return domain.Order{}, err
	}

	s.metrics.RecordOrderCreated()
	s.appendTimeline(ctx, idcodec.Encode(created.ID), domain.TimelineEventOrderCreated, "status: "+created.Status)
	return created, nil
}

// UpdateStatus меняет статус заказа, если запрос пришёл от назначенного курьера.
// При отказе сохранённый статус не меняется.
func (s *Service) UpdateStatus(ctx context.Context, orderID, deliveryPersonID, status string) (domain.Order, domain.Outcome, error) {
	oid, err := idcodec.DecodeField("order_id", orderID)
	if err != nil {
		return domain.Order{}, 0, err
	}

	current, err := s.orders.Get(ctx, oid)
	if err != nil {
		return domain.Order{}, 0, err
	}

	if idcodec.Encode(current.DeliveryPersonID) != deliveryPersonID {
		s.metrics.RecordStatusUpdate("unauthorized")
		s.logger.WithFields(log.Fields{
			"order_id":           orderID,
			"delivery_person_id": deliveryPersonID,
		}).Info("status update rejected: delivery person is not assigned")
		return domain.Order{}, 0, domain.ErrUnauthorized
	}
	if err := s.resolver.Check(ctx, current.DeliveryPersonID, domain.RoleDeliveryPersonnel); err != nil {
		return domain.Order{}, 0, err
	}
	if err := s.policy.CanTransition(current.Status, status); err != nil {
		s.metrics.RecordStatusUpdate("rejected")
		return domain.Order{}, 0, err
	}

	res, err := s.orders.SetStatus(ctx, oid, status)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"operation": "update_status",
			"order_id":  orderID,
		}).Warn("order store operation failed")
		return domain.Order{}, 0, err
	}
	if res.Matched == 0 {
		return domain.Order{}, 0, domain.ErrOrderNotFound
	}

	previous := current.Status
	current.Status = status
	if res.Modified == 0 {
		s.metrics.RecordStatusUpdate("noop")
		return current, domain.OutcomeNoOp, nil
	}

	s.metrics.RecordStatusUpdate("updated")
	s.appendTimeline(ctx, idcodec.Encode(oid), domain.TimelineEventOrderStatusChanged, previous+" -> "+status)
	return current, domain.OutcomeUpdated, nil
}

// ListByRestaurant возвращает заказы ресторана; ErrEmpty, если их нет.
func (s *Service) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	rid, err := idcodec.DecodeField("restaurant_id", restaurantID)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.orders.ListByRestaurant(ctx, rid))
}

// ListByDeliveryPerson возвращает заказы курьера; ErrEmpty, если их нет.
func (s *Service) ListByDeliveryPerson(ctx context.Context, deliveryPersonID string) ([]domain.Order, error) {
	did, err := idcodec.DecodeField("delivery_person_id", deliveryPersonID)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.orders.ListByDeliveryPerson(ctx, did))
}

// ListAll возвращает все заказы без фильтрации; пустой список не ошибка.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// Delete удаляет заказ и возвращает количество удалённых записей.
func (s *Service) Delete(ctx context.Context, orderID string) (int64, error) {
	oid, err := idcodec.DecodeField("order_id", orderID)
	if err != nil {
		return 0, err
	}
	return s.orders.Delete(ctx, oid)
}

// Timeline возвращает историю заказа в хронологическом порядке.
func (s *Service) Timeline(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	oid, err := idcodec.DecodeField("order_id", orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.Get(ctx, oid); err != nil {
		return nil, err
	}
	if s.timeline == nil {
		return []domain.TimelineEvent{}, nil
	}
	return s.timeline.List(ctx, idcodec.Encode(oid))
}

func (s *Service) checkReferences(ctx context.Context, userID, restaurantID, deliveryPersonID primitive.ObjectID) error {
	if !s.resolver.Enabled() {
		return nil
	}
	if err := s.resolver.Check(ctx, userID, domain.RoleCustomer); err != nil {
		return err
	}
	if err := s.resolver.Check(ctx, restaurantID, domain.RoleRestaurantOwner); err != nil {
		return err
	}
	return s.resolver.Check(ctx, deliveryPersonID, domain.RoleDeliveryPersonnel)
}

// appendTimeline пишет событие; ошибка записи не отменяет уже выполненную мутацию.
func (s *Service) appendTimeline(ctx context.Context, orderID, eventType, reason string) {
	if s.timeline == nil {
		return
	}
	err := s.timeline.Append(ctx, domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: s.now(),
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id":   orderID,
				"event_type": eventType,
			}).Warn("failed to append timeline event")
		}
		return
	}
	s.metrics.RecordTimelineEvent()
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func nonEmpty(orders []domain.Order, err error) ([]domain.Order, error) {
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrEmpty
	}
	return orders, nil
}
