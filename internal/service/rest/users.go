package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
	"github.com/studentbits/Food-Delivery-System/internal/service/user"
)

func (h *Handler) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	created, err := h.users.Register(c.Request.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(c, err, failure{internal: "Error registering user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "User registered successfully", "user_data": toUserResponse(created)})
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	updated, outcome, err := h.users.Update(c.Request.Context(), c.Param("user_id"), req.patch())
	if err != nil {
		h.respondError(c, err, failure{internal: "Error updating user"})
		return
	}
	if outcome == domain.OutcomeNoOp {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No changes made to the user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User updated successfully", "user_data": toUserResponse(updated)})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, failure{internal: "Error fetching users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Users retrieved successfully", "users": toUserResponses(users)})
}

func (h *Handler) deleteUser(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		h.respondError(c, err, failure{
			internal: "Error deleting user",
			extra:    gin.H{"user_id": userID},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted successfully", "user_id": userID})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	found, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, failure{internal: "Error logging in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Login successful", "user_id": found.ID.Hex(), "role": string(found.Role)})
}
