package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/metrics"
	"github.com/studentbits/Food-Delivery-System/internal/service/admin"
	"github.com/studentbits/Food-Delivery-System/internal/service/menu"
	"github.com/studentbits/Food-Delivery-System/internal/service/order"
	"github.com/studentbits/Food-Delivery-System/internal/service/user"
	"github.com/studentbits/Food-Delivery-System/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router      *gin.Engine
	users       domain.UserRepository
	orders      domain.OrderRepository
	idempotency domain.IdempotencyRepository
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	users := memory.NewUserRepository()
	menus := memory.NewMenuRepository()
	orders := memory.NewOrderRepository()
	timeline := memory.NewTimelineRepository()
	idem := memory.NewIdempotencyRepository()
	m := metrics.NewServiceMetricsWithRegisterer(prometheus.NewRegistry())

	router := NewRouter(Deps{
		Users:       user.NewService(users, nil),
		Menus:       menu.NewService(menus, menu.WithMetrics(m)),
		Orders:      order.NewService(orders, order.WithTimeline(timeline), order.WithMetrics(m)),
		Admin:       admin.NewService(users, menus, orders, nil),
		Idempotency: idem,
		Metrics:     m,
	})
	return testServer{router: router, users: users, orders: orders, idempotency: idem}
}

func (s testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	}
	return w, decoded
}

func TestWelcome(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to the Food Delivery App", body["msg"])
}

func TestMenuScenario_PizzaThenSoda(t *testing.T) {
	s := newTestServer(t)
	restaurant := "/menu/" + primitive.NewObjectID().Hex()

	w, body := s.do(t, http.MethodGet, restaurant, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No menu found for the given restaurant_id", body["msg"])

	w, body = s.do(t, http.MethodPost, restaurant, map[string]any{"product_name": "Pizza", "price": 9.5, "detail": "Cheese"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "New menu created and item added successfully", body["msg"])

	w, body = s.do(t, http.MethodGet, restaurant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{
		map[string]any{"product_name": "Pizza", "price": 9.5, "detail": "Cheese"},
	}, body["menu"])

	w, body = s.do(t, http.MethodPost, restaurant, map[string]any{"product_name": "Soda", "price": 2, "detail": "Cold"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Menu item added successfully to existing menu", body["msg"])

	_, body = s.do(t, http.MethodGet, restaurant, nil)
	assert.Equal(t, []any{
		map[string]any{"product_name": "Pizza", "price": 9.5, "detail": "Cheese"},
		map[string]any{"product_name": "Soda", "price": 2.0, "detail": "Cold"},
	}, body["menu"])
}

func TestMenuUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	restaurant := "/menu/" + primitive.NewObjectID().Hex()
	s.do(t, http.MethodPost, restaurant, map[string]any{"product_name": "Pizza", "price": 9.5, "detail": "Cheese"})

	w, body := s.do(t, http.MethodPut, restaurant, map[string]any{"product_name": "Pizza", "price": 11})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Menu item updated successfully", body["msg"])

	w, body = s.do(t, http.MethodPut, restaurant, map[string]any{"product_name": "Pizza", "price": 11})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No changes made to the product", body["msg"])

	w, body = s.do(t, http.MethodPut, restaurant, map[string]any{"product_name": "Burger", "price": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found in the menu", body["msg"])

	w, body = s.do(t, http.MethodPut, restaurant, map[string]any{"price": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Product name is required", body["msg"])

	w, body = s.do(t, http.MethodDelete, restaurant+"/Pizza", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Menu item deleted successfully", body["msg"])

	w, body = s.do(t, http.MethodDelete, restaurant+"/Pizza", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found in the menu", body["msg"])

	w, body = s.do(t, http.MethodDelete, "/menu/"+primitive.NewObjectID().Hex()+"/Pizza", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Restaurant menu not found", body["msg"])
}

func TestMenuValidationAndListing(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No menus found", body["msg"])

	w, body = s.do(t, http.MethodPost, "/menu/"+primitive.NewObjectID().Hex(), map[string]any{"product_name": "Pizza"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields (product_name, price, detail)", body["msg"])

	w, _ = s.do(t, http.MethodPost, "/menu/not-an-id", map[string]any{"product_name": "Pizza", "price": 1, "detail": "d"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	restaurantID := primitive.NewObjectID().Hex()
	s.do(t, http.MethodPost, "/menu/"+restaurantID, map[string]any{"product_name": "Pizza", "price": 1, "detail": "d"})

	w, body = s.do(t, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	menus := body["menus"].([]any)
	require.Len(t, menus, 1)
	assert.Equal(t, restaurantID, menus[0].(map[string]any)["restaurant_id"])
}

func createOrder(t *testing.T, s testServer, courierID string) map[string]any {
	t.Helper()
	path := "/order/" + primitive.NewObjectID().Hex() + "/" + primitive.NewObjectID().Hex()
	w, body := s.do(t, http.MethodPost, path, map[string]any{
		"status":             "pending",
		"menu_detail":        []any{map[string]any{"product_name": "Pizza", "qty": 1}},
		"total_price":        9.5,
		"delivery_person_id": courierID,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", body)
	return body["order_data"].(map[string]any)
}

func TestOrderScenario_AssignedCourier(t *testing.T) {
	s := newTestServer(t)
	d1 := primitive.NewObjectID().Hex()
	d2 := primitive.NewObjectID().Hex()

	created := createOrder(t, s, d1)
	orderID := created["_id"].(string)
	assert.Equal(t, d1, created["delivery_person_id"])
	assert.Equal(t, 9.5, created["total_price"])

	w, body := s.do(t, http.MethodPut, "/order/"+orderID+"/status", map[string]any{"delivery_person_id": d2, "status": "delivered"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized: You are not assigned to this order", body["msg"])

	oid, err := primitive.ObjectIDFromHex(orderID)
	require.NoError(t, err)
	stored, err := s.orders.Get(testContext(t), oid)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)

	w, body = s.do(t, http.MethodPut, "/order/"+orderID+"/status", map[string]any{"delivery_person_id": d1, "status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "delivered", body["order"].(map[string]any)["status"])

	w, body = s.do(t, http.MethodPut, "/order/"+orderID+"/status", map[string]any{"delivery_person_id": d1, "status": "delivered"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No changes made to the order", body["msg"])

	w, body = s.do(t, http.MethodGet, "/order/"+orderID+"/timeline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := body["events"].([]any)
	require.Len(t, events, 2)
	assert.Equal(t, "pending -> delivered", events[1].(map[string]any)["reason"])

	w, body = s.do(t, http.MethodPut, "/order/"+primitive.NewObjectID().Hex()+"/status", map[string]any{"delivery_person_id": d1, "status": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", body["msg"])

	w, body = s.do(t, http.MethodPut, "/order/"+orderID+"/status", map[string]any{"status": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: 'delivery_person_id' and 'status'", body["msg"])
}

func TestCreateOrder_MissingField(t *testing.T) {
	s := newTestServer(t)
	path := "/order/" + primitive.NewObjectID().Hex() + "/" + primitive.NewObjectID().Hex()

	w, body := s.do(t, http.MethodPost, path, map[string]any{
		"status":      "pending",
		"menu_detail": []any{},
		"total_price": 1,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: delivery_person_id", body["msg"])
}

func TestOrderListings(t *testing.T) {
	s := newTestServer(t)
	courier := primitive.NewObjectID().Hex()

	w, body := s.do(t, http.MethodGet, "/delivery_person/orders/"+courier, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No orders found for this delivery person.", body["message"])

	w, body = s.do(t, http.MethodGet, "/restaurant/orders/"+primitive.NewObjectID().Hex(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No orders found for this restaurant", body["msg"])

	created := createOrder(t, s, courier)

	w, body = s.do(t, http.MethodGet, "/delivery_person/orders/"+courier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)
	assert.NotContains(t, body, "msg")

	for _, prefix := range []string{"/restaurant/orders/", "/restaurant_specific/orders/"} {
		w, body = s.do(t, http.MethodGet, prefix+created["restaurant_id"].(string), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["orders"], 1)
	}

	w, body = s.do(t, http.MethodGet, "/admin/all_orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	path := "/order/" + primitive.NewObjectID().Hex() + "/" + primitive.NewObjectID().Hex()
	payload := `{"status":"pending","menu_detail":{"items":2},"total_price":5,"delivery_person_id":"` + primitive.NewObjectID().Hex() + `"}`

	first, firstBody := s.do(t, http.MethodPost, path, payload, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code)

	replay, replayBody := s.do(t, http.MethodPost, path, payload, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(idempotencyReplayedHeader))
	assert.Equal(t, firstBody["order_data"], replayBody["order_data"])

	all, err := s.orders.List(testContext(t))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	conflict, body := s.do(t, http.MethodPost, path, `{"status":"other"}`, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, "Idempotency-Key is already used with a different request", body["msg"])
}

func TestCreateOrder_IdempotencyInFlight(t *testing.T) {
	s := newTestServer(t)
	path := "/order/" + primitive.NewObjectID().Hex() + "/" + primitive.NewObjectID().Hex()
	payload := `{"status":"pending"}`

	_, err := s.idempotency.CreateProcessing(testContext(t), "busy", requestHash(http.MethodPost, path, []byte(payload)), time.Now().UTC().Add(domain.DefaultIdempotencyTTL))
	require.NoError(t, err)

	w, body := s.do(t, http.MethodPost, path, payload, "Idempotency-Key", "busy")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Request with the same Idempotency-Key is already processing", body["msg"])
}

func TestUsersFlow(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/register", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "pw", "role": "chef"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role", body["msg"])

	w, body = s.do(t, http.MethodPost, "/register", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "pw", "role": "customer"})
	require.Equal(t, http.StatusCreated, w.Code)
	userData := body["user_data"].(map[string]any)
	userID := userData["_id"].(string)
	assert.NotContains(t, userData, "password")

	w, body = s.do(t, http.MethodPost, "/register", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "pw", "role": "customer"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this email already exists", body["msg"])

	w, body = s.do(t, http.MethodPost, "/login", map[string]any{"email": "ann@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, body["user_id"])
	assert.Equal(t, "customer", body["role"])

	w, body = s.do(t, http.MethodPost, "/login", map[string]any{"email": "ann@example.com", "password": "bad"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", body["msg"])

	w, body = s.do(t, http.MethodPut, "/users/"+userID, map[string]any{"name": "Anna", "unknown": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Anna", body["user_data"].(map[string]any)["name"])

	w, body = s.do(t, http.MethodPut, "/users/"+userID, map[string]any{"name": "Anna"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No changes made to the user", body["msg"])

	w, body = s.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["users"], 1)

	w, _ = s.do(t, http.MethodDelete, "/users/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodDelete, "/users/"+userID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", body["msg"])
	assert.Equal(t, userID, body["user_id"])
}

func TestAdminDeleteRestaurant(t *testing.T) {
	s := newTestServer(t)

	owner, err := s.users.Create(testContext(t), domain.User{Name: "Olga", Email: "olga@example.com", Role: domain.RoleRestaurantOwner})
	require.NoError(t, err)
	s.do(t, http.MethodPost, "/menu/"+owner.ID.Hex(), map[string]any{"product_name": "Pizza", "price": 1, "detail": "d"})

	w, body := s.do(t, http.MethodDelete, "/admin/restaurant/nope", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid restaurant ID", body["msg"])

	w, body = s.do(t, http.MethodDelete, "/admin/restaurant/"+owner.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["user_deleted"])
	assert.Equal(t, 1.0, body["menu_entries_deleted"])

	w, body = s.do(t, http.MethodDelete, "/admin/restaurant/"+owner.ID.Hex(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Restaurant not found", body["msg"])
}

func TestStoreFailureMapsTo500(t *testing.T) {
	h := NewHandler(Deps{})

	status, body := h.errorBody(domain.NewStoreError("find menu", assert.AnError), failure{internal: "Error retrieving menu"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Error retrieving menu", body["msg"])
	assert.Contains(t, body["error"], "find menu")
}
