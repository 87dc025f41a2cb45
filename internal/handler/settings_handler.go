package handler

import (
	"net/http"

	"dayplan/internal/model"
	"dayplan/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
}

func NewSettingsHandler(settingsRepo *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

type RolloverSettingsRequest struct {
	RolloverDestination string `json:"rollover_destination" binding:"required,oneof=backlog today"`
	RolloverPosition    string `json:"rollover_position" binding:"required,oneof=top bottom"`
}

type RolloverSettingsResponse struct {
	RolloverDestination string `json:"rollover_destination"`
	RolloverPosition    string `json:"rollover_position"`
}

// Get returns the user's rollover policy, falling back to the defaults the
// scheduler itself uses when nothing was ever saved.
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	settings, err := h.settingsRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
		return
	}

	resp := RolloverSettingsResponse{
		RolloverDestination: model.RolloverToToday,
		RolloverPosition:    model.RolloverPositionTop,
	}
	if settings != nil {
		resp.RolloverDestination = settings.RolloverDestination
		resp.RolloverPosition = settings.RolloverPosition
	}

	c.JSON(http.StatusOK, resp)
}

// Update saves the user's rollover policy.
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req RolloverSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	settings := &model.NotificationSettings{
		ID:                  uuid.New(),
		UserID:              userID,
		RolloverDestination: req.RolloverDestination,
		RolloverPosition:    req.RolloverPosition,
	}

	if err := h.settingsRepo.Upsert(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, RolloverSettingsResponse{
		RolloverDestination: req.RolloverDestination,
		RolloverPosition:    req.RolloverPosition,
	})
}
