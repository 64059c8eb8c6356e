// Package rest — HTTP/JSON граница сервиса на gin. Маршруты и тексты
// ответов совместимы с исходным API доставки.
package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/metrics"
	"github.com/studentbits/Food-Delivery-System/internal/service/admin"
	"github.com/studentbits/Food-Delivery-System/internal/service/menu"
	"github.com/studentbits/Food-Delivery-System/internal/service/order"
	"github.com/studentbits/Food-Delivery-System/internal/service/user"
	"github.com/studentbits/Food-Delivery-System/internal/version"
)

// Deps — сервисы и инфраструктура, которые нужны обработчикам.
type Deps struct {
	Users  *user.Service
	Menus  *menu.Service
	Orders *order.Service
	Admin  *admin.Service

	// Idempotency может быть nil: тогда Idempotency-Key игнорируется.
	Idempotency    domain.IdempotencyRepository
	IdempotencyTTL time.Duration

	Metrics *metrics.ServiceMetrics
	Logger  *log.Entry
}

// Handler содержит обработчики всех маршрутов.
type Handler struct {
	users  *user.Service
	menus  *menu.Service
	orders *order.Service
	admin  *admin.Service

	idempotency    domain.IdempotencyRepository
	idempotencyTTL time.Duration

	metrics *metrics.ServiceMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewHandler собирает Handler из зависимостей.
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = domain.DefaultIdempotencyTTL
	}

	return &Handler{
		users:          deps.Users,
		menus:          deps.Menus,
		orders:         deps.Orders,
		admin:          deps.Admin,
		idempotency:    deps.Idempotency,
		idempotencyTTL: ttl,
		metrics:        deps.Metrics,
		logger:         logger,
		now:            defaultNow,
	}
}

// NewRouter регистрирует все маршруты на новом gin.Engine.
func NewRouter(deps Deps) *gin.Engine {
	h := NewHandler(deps)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger), requestMetrics(h.metrics))
	h.Register(router)
	return router
}

// Register вешает маршруты на router.
func (h *Handler) Register(router gin.IRouter) {
	router.GET("/", h.welcome)

	// Пользователи
	router.POST("/register", h.registerUser)
	router.PUT("/users/:user_id", h.updateUser)
	router.GET("/users", h.listUsers)
	router.DELETE("/users/:user_id", h.deleteUser)
	router.POST("/login", h.login)

	// Меню
	router.POST("/menu/:restaurant_id", h.addMenuItem)
	router.GET("/menu/:restaurant_id", h.getMenu)
	router.PUT("/menu/:restaurant_id", h.updateMenuItem)
	router.DELETE("/menu/:restaurant_id/:product_name", h.deleteMenuItem)
	router.GET("/menu", h.listMenus)

	// Заказы
	router.POST("/order/:user_id/:restaurant_id", h.idempotent(), h.createOrder)
	router.PUT("/order/:order_id/status", h.updateOrderStatus)
	router.GET("/order/:order_id/timeline", h.orderTimeline)
	router.GET("/restaurant/orders/:restaurant_id", h.restaurantOrders)
	router.GET("/restaurant_specific/orders/:restaurant_id", h.restaurantOrders)
	router.GET("/delivery_person/orders/:delivery_person_id", h.deliveryPersonOrders)

	// Администрирование
	adminGroup := router.Group("/admin")
	adminGroup.GET("/all_users", h.adminUsers)
	adminGroup.GET("/all_restaurants", h.adminRestaurants)
	adminGroup.GET("/all_orders", h.adminOrders)
	adminGroup.DELETE("/user/:user_id", h.adminDeleteUser)
	adminGroup.DELETE("/restaurant/:restaurant_id", h.adminDeleteRestaurant)
	adminGroup.DELETE("/order/:order_id", h.adminDeleteOrder)
}

func (h *Handler) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"msg":     "Welcome to the Food Delivery App",
		"version": version.GetVersion(),
	})
}
