package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"algogate-backend/models"
	"algogate-backend/store"
)

type UserHandler struct {
	store store.Store
}

func NewUserHandler(store store.Store) *UserHandler {
	return &UserHandler{store: store}
}

func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req models.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		WalletAddress: req.WalletAddress,
		Name:          req.Name,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := h.store.UpsertUser(c, &user); err != nil {
		log.Printf("Failed to upsert profile for %s: %v", req.WalletAddress, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	walletAddress := c.Param("walletAddress")

	user, err := h.store.SelectUser(c, walletAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		log.Printf("Database error getting profile for %s: %v", walletAddress, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, user)
}
