package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/service/order"
)

var orderNotFound = []notFoundMessage{{target: domain.ErrOrderNotFound, msg: "Order not found"}}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	created, err := h.orders.Create(c.Request.Context(), c.Param("user_id"), c.Param("restaurant_id"), order.CreateInput{
		Status:           req.Status,
		MenuDetail:       req.MenuDetail,
		TotalPrice:       req.TotalPrice,
		DeliveryPersonID: req.DeliveryPersonID,
	})
	if err != nil {
		h.respondError(c, err, failure{internal: "Error adding order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "Order added successfully", "order_data": toOrderResponse(created)})
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}
	if req.DeliveryPersonID == nil || req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Missing required fields: 'delivery_person_id' and 'status'"})
		return
	}

	updated, outcome, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("order_id"), *req.DeliveryPersonID, *req.Status)
	if err != nil {
		h.respondError(c, err, failure{internal: "Error updating order status", notFound: orderNotFound})
		return
	}

	if outcome == domain.OutcomeNoOp {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No changes made to the order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Order status updated successfully", "order": toOrderResponse(updated)})
}

func (h *Handler) orderTimeline(c *gin.Context) {
	events, err := h.orders.Timeline(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.respondError(c, err, failure{internal: "Error retrieving order timeline", notFound: orderNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Order timeline retrieved successfully", "events": toTimelineResponses(events)})
}

func (h *Handler) restaurantOrders(c *gin.Context) {
	orders, err := h.orders.ListByRestaurant(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		h.respondError(c, err, failure{
			internal: "Error retrieving orders",
			notFound: []notFoundMessage{{target: domain.ErrEmpty, msg: "No orders found for this restaurant"}},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Orders retrieved successfully", "orders": toOrderResponses(orders)})
}

// deliveryPersonOrders сохраняет исторический формат ответа: без msg, 404 с ключом message.
func (h *Handler) deliveryPersonOrders(c *gin.Context) {
	orders, err := h.orders.ListByDeliveryPerson(c.Request.Context(), c.Param("delivery_person_id"))
	switch {
	case errors.Is(err, domain.ErrEmpty):
		c.JSON(http.StatusNotFound, gin.H{"message": "No orders found for this delivery person."})
	case err != nil:
		h.respondError(c, err, failure{internal: "Error retrieving orders"})
	default:
		c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
	}
}
