package handler

import (
	"errors"
	"net/http"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/service"
	"dayplan/internal/timeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TimeBlockHandler struct {
	layout *service.LayoutService
}

func NewTimeBlockHandler(layout *service.LayoutService) *TimeBlockHandler {
	return &TimeBlockHandler{layout: layout}
}

type TimeBlockRequest struct {
	Date      string  `json:"date" binding:"required"`
	StartTime *int    `json:"start_time" binding:"required,min=0,max=1439"`
	EndTime   *int    `json:"end_time" binding:"required,min=1,max=1440"`
	TaskID    *string `json:"task_id"`
	Color     string  `json:"color"`
}

type TimeBlockResizeRequest struct {
	StartTime *int `json:"start_time" binding:"omitempty,min=0,max=1439"`
	EndTime   *int `json:"end_time" binding:"omitempty,min=1,max=1440"`
}

type TimeBlockMoveRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime *int   `json:"start_time" binding:"required,min=0,max=1439"`
}

type TimeBlockResponse struct {
	ID           string  `json:"id"`
	TaskID       *string `json:"task_id,omitempty"`
	Date         string  `json:"date"`
	StartTime    int     `json:"start_time"`
	EndTime      int     `json:"end_time"`
	DurationMins int     `json:"duration_mins"`
	Position     int     `json:"position"`
	Color        string  `json:"color"`
}

type TimeBlockChangeResponse struct {
	Block    TimeBlockResponse   `json:"block"`
	Cascaded []TimeBlockResponse `json:"cascaded"`
}

func toBlockResponse(block *model.TimeBlock) TimeBlockResponse {
	resp := TimeBlockResponse{
		ID:           block.ID.String(),
		Date:         block.Date,
		StartTime:    block.StartTime,
		EndTime:      block.EndTime,
		DurationMins: block.DurationMins(),
		Position:     block.Position,
		Color:        block.Color,
	}
	if block.TaskID != nil {
		id := block.TaskID.String()
		resp.TaskID = &id
	}
	return resp
}

func toBlockResponses(blocks []model.TimeBlock) []TimeBlockResponse {
	responses := make([]TimeBlockResponse, len(blocks))
	for i := range blocks {
		responses[i] = toBlockResponse(&blocks[i])
	}
	return responses
}

func blockErrorStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrBlockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Time block not found"})
	case errors.Is(err, timeline.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time range"})
	case errors.Is(err, timeline.ErrScheduleOverflow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Shifted blocks would pass the end of the day"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update time block"})
	}
}

// Create places a new block; edges snap to the configured grid first.
func (h *TimeBlockHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TimeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	date, ok := parseDate(req.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	var taskID *uuid.UUID
	if req.TaskID != nil {
		parsed, err := uuid.Parse(*req.TaskID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
			return
		}
		taskID = &parsed
	}

	block, err := h.layout.PlaceBlock(c.Request.Context(), userID, date, *req.StartTime, *req.EndTime, taskID, req.Color)
	if err != nil {
		blockErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBlockResponse(block))
}

// GetDay lists a day's blocks in timeline order.
func (h *TimeBlockHandler) GetDay(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	date, ok := parseDate(c.Param("date"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	blocks, err := h.layout.ListDay(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve time blocks"})
		return
	}

	c.JSON(http.StatusOK, toBlockResponses(blocks))
}

// Resize applies new edges and returns the cascaded blocks alongside.
func (h *TimeBlockHandler) Resize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block ID format"})
		return
	}

	var req TimeBlockResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.StartTime == nil && req.EndTime == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to resize"})
		return
	}

	block, cascaded, err := h.layout.ResizeBlock(c.Request.Context(), userID, blockID, req.StartTime, req.EndTime)
	if err != nil {
		blockErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, TimeBlockChangeResponse{
		Block:    toBlockResponse(block),
		Cascaded: toBlockResponses(cascaded),
	})
}

// Move drops the block on a new slot, duration fixed.
func (h *TimeBlockHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block ID format"})
		return
	}

	var req TimeBlockMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	date, ok := parseDate(req.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	block, cascaded, err := h.layout.MoveBlockToSlot(c.Request.Context(), userID, blockID, date, *req.StartTime)
	if err != nil {
		blockErrorStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, TimeBlockChangeResponse{
		Block:    toBlockResponse(block),
		Cascaded: toBlockResponses(cascaded),
	})
}

func (h *TimeBlockHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block ID format"})
		return
	}

	if err := h.layout.DeleteBlock(c.Request.Context(), userID, blockID); err != nil {
		if errors.Is(err, repository.ErrBlockNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Time block not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete time block"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Time block deleted"})
}
