package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/service/menu"
)

var menuMutationNotFound = []notFoundMessage{
	{target: domain.ErrMenuNotFound, msg: "Restaurant menu not found"},
	{target: domain.ErrMenuItemNotFound, msg: "Product not found in the menu"},
}

func (h *Handler) addMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	input := menu.ItemInput{ProductName: req.ProductName, Price: req.Price}
	if req.Detail != nil {
		input.Detail = *req.Detail
	}

	outcome, err := h.menus.AddItem(c.Request.Context(), c.Param("restaurant_id"), input)
	if err != nil {
		h.respondError(c, err, failure{internal: "Error adding menu item"})
		return
	}

	if outcome == domain.OutcomeCreated {
		c.JSON(http.StatusCreated, gin.H{"msg": "New menu created and item added successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Menu item added successfully to existing menu"})
}

func (h *Handler) getMenu(c *gin.Context) {
	items, err := h.menus.Items(c.Request.Context(), c.Param("restaurant_id"))
	if err != nil {
		h.respondError(c, err, failure{
			internal: "Error retrieving menu",
			notFound: []notFoundMessage{{target: domain.ErrMenuNotFound, msg: "No menu found for the given restaurant_id"}},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Menu retrieved successfully", "menu": toMenuItemResponses(items)})
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	outcome, err := h.menus.UpdateItem(c.Request.Context(), c.Param("restaurant_id"), req.ProductName, domain.MenuItemPatch{
		Price:  req.Price,
		Detail: req.Detail,
	})
	if err != nil {
		h.respondError(c, err, failure{internal: "Error updating menu", notFound: menuMutationNotFound})
		return
	}

	if outcome == domain.OutcomeNoOp {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No changes made to the product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Menu item updated successfully"})
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	outcome, err := h.menus.RemoveItem(c.Request.Context(), c.Param("restaurant_id"), c.Param("product_name"))
	if err != nil {
		h.respondError(c, err, failure{internal: "Error deleting menu item", notFound: menuMutationNotFound})
		return
	}

	if outcome == domain.OutcomeNoOp {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No changes made to the menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Menu item deleted successfully"})
}

func (h *Handler) listMenus(c *gin.Context) {
	menus, err := h.menus.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err, failure{
			internal: "Error fetching menus",
			notFound: []notFoundMessage{{target: domain.ErrEmpty, msg: "No menus found"}},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Menus retrieved successfully", "menus": toMenuResponses(menus)})
}
