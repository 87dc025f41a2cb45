package handler

import (
	"errors"
	"net/http"
	"time"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RolloverHandler exposes the scheduler's run for manual/admin re-trigger and
// the audit log for operators.
type RolloverHandler struct {
	rollover *service.RolloverService
	logRepo  *repository.RolloverLogRepository
}

func NewRolloverHandler(rollover *service.RolloverService, logRepo *repository.RolloverLogRepository) *RolloverHandler {
	return &RolloverHandler{rollover: rollover, logRepo: logRepo}
}

type RolloverRunRequest struct {
	Date string `json:"date"` // defaults to the timezone's current local date
}

type RolloverLogResponse struct {
	ID              string  `json:"id"`
	Timezone        string  `json:"timezone"`
	RolloverDate    string  `json:"rollover_date"`
	Status          string  `json:"status"`
	UsersProcessed  int     `json:"users_processed"`
	UsersSkipped    int     `json:"users_skipped"`
	TasksRolledOver int     `json:"tasks_rolled_over"`
	StartedAt       string  `json:"started_at"`
	FinishedAt      *string `json:"finished_at,omitempty"`
	DurationMs      int64   `json:"duration_ms"`
	ErrorMessage    *string `json:"error_message,omitempty"`
}

func toRolloverLogResponse(log *model.RolloverLog) RolloverLogResponse {
	resp := RolloverLogResponse{
		ID:              log.ID.String(),
		Timezone:        log.Timezone,
		RolloverDate:    log.RolloverDate,
		Status:          log.Status,
		UsersProcessed:  log.UsersProcessed,
		UsersSkipped:    log.UsersSkipped,
		TasksRolledOver: log.TasksRolledOver,
		StartedAt:       log.StartedAt.Format(time.RFC3339),
		DurationMs:      log.DurationMs,
		ErrorMessage:    log.ErrorMessage,
	}
	if log.FinishedAt != nil {
		formatted := log.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &formatted
	}
	return resp
}

// Run triggers the rollover for one timezone. 409 means the (timezone, date)
// key already ran; the existing row must be deleted before a re-run.
func (h *RolloverHandler) Run(c *gin.Context) {
	timezone := c.Param("timezone")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone"})
		return
	}

	// The body is optional; an empty one means "this timezone's today".
	var req RolloverRunRequest
	_ = c.ShouldBindJSON(&req)

	date := req.Date
	if date == "" {
		date = time.Now().In(loc).Format(model.DateLayout)
	} else if _, ok := parseDate(date); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	runLog, err := h.rollover.RunForTimezone(c.Request.Context(), timezone, date)
	if err != nil {
		if errors.Is(err, repository.ErrRolloverClaimed) {
			c.JSON(http.StatusConflict, gin.H{"error": "Rollover already ran for this timezone and date"})
			return
		}
		if runLog != nil {
			// Claimed but failed; the audit row carries the error.
			c.JSON(http.StatusInternalServerError, toRolloverLogResponse(runLog))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rollover failed"})
		return
	}

	c.JSON(http.StatusOK, toRolloverLogResponse(runLog))
}

// ListLogs returns recent rollover runs, newest first.
func (h *RolloverHandler) ListLogs(c *gin.Context) {
	logs, err := h.logRepo.List(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rollover logs"})
		return
	}

	responses := make([]RolloverLogResponse, len(logs))
	for i := range logs {
		responses[i] = toRolloverLogResponse(&logs[i])
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteLog clears a log row so an operator can re-trigger a failed run.
func (h *RolloverHandler) DeleteLog(c *gin.Context) {
	logID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log ID format"})
		return
	}

	if err := h.logRepo.Delete(c.Request.Context(), logID); err != nil {
		if errors.Is(err, repository.ErrRolloverLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rollover log not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rollover log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rollover log deleted"})
}
