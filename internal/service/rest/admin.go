package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminUsers(c *gin.Context) {
	users, err := h.admin.Users(c.Request.Context())
	if err != nil {
		h.respondError(c, err, failure{internal: "Error retrieving users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "All users retrieved successfully", "users": toUserResponses(users)})
}

func (h *Handler) adminRestaurants(c *gin.Context) {
	menus, err := h.admin.Restaurants(c.Request.Context())
	if err != nil {
		h.respondError(c, err, failure{internal: "Error retrieving restaurants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "All restaurants retrieved successfully", "restaurants": toMenuResponses(menus)})
}

func (h *Handler) adminOrders(c *gin.Context) {
	orders, err := h.admin.Orders(c.Request.Context())
	if err != nil {
		h.respondError(c, err, failure{internal: "Error retrieving orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "All orders retrieved successfully", "orders": toOrderResponses(orders)})
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.admin.DeleteUser(c.Request.Context(), userID); err != nil {
		h.respondError(c, err, failure{internal: "Error deleting user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted successfully", "user_id": userID})
}

func (h *Handler) adminDeleteRestaurant(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	result, err := h.admin.DeleteRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		h.respondError(c, err, failure{internal: "Error deleting restaurant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"msg":                  "Restaurant deleted successfully",
		"user_deleted":         result.UserDeleted,
		"menu_entries_deleted": result.MenuEntriesDeleted,
		"restaurant_id":        restaurantID,
	})
}

func (h *Handler) adminDeleteOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	if err := h.admin.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.respondError(c, err, failure{internal: "Error deleting order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Order deleted successfully", "order_id": orderID})
}
