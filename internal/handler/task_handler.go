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

type TaskHandler struct {
	taskRepo  *repository.TaskRepository
	placement *service.PlacementService
}

func NewTaskHandler(taskRepo *repository.TaskRepository, placement *service.PlacementService) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, placement: placement}
}

type TaskRequest struct {
	Title         string  `json:"title" binding:"required"`
	Notes         string  `json:"notes"`
	Bucket        string  `json:"bucket"` // "backlog" or YYYY-MM-DD; empty = backlog
	Priority      string  `json:"priority" binding:"omitempty,oneof=P0 P1 P2 P3"`
	EstimatedMins *int    `json:"estimated_mins"`
	SeriesID      *string `json:"series_id"`
}

type TaskMoveRequest struct {
	Bucket string `json:"bucket" binding:"required"`
	Index  *int   `json:"index" binding:"required,min=0"`
}

type ReorderRequest struct {
	TaskIDs []string `json:"task_ids" binding:"required,min=1"`
}

type TaskResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Notes         string  `json:"notes,omitempty"`
	Bucket        string  `json:"bucket"`
	Priority      string  `json:"priority"`
	Position      int     `json:"position"`
	EstimatedMins *int    `json:"estimated_mins,omitempty"`
	ActualMins    *int    `json:"actual_mins,omitempty"`
	CompletedAt   *string `json:"completed_at,omitempty"`
	SeriesID      *string `json:"series_id,omitempty"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:            task.ID.String(),
		Title:         task.Title,
		Notes:         task.Notes,
		Bucket:        bucketName(task.ScheduledDate),
		Priority:      task.Priority,
		Position:      task.Position,
		EstimatedMins: task.EstimatedMins,
		ActualMins:    task.ActualMins,
	}
	if task.CompletedAt != nil {
		formatted := task.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &formatted
	}
	if task.SeriesID != nil {
		id := task.SeriesID.String()
		resp.SeriesID = &id
	}
	return resp
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = toTaskResponse(&tasks[i])
	}
	return responses
}

// Create adds a task at the end of its bucket.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	bucket := req.Bucket
	if bucket == "" {
		bucket = BucketBacklog
	}
	date, ok := parseBucket(bucket)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityP2
	}

	var seriesID *uuid.UUID
	if req.SeriesID != nil {
		parsed, err := uuid.Parse(*req.SeriesID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid series ID format"})
			return
		}
		seriesID = &parsed
	}

	task := &model.Task{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         req.Title,
		Notes:         req.Notes,
		ScheduledDate: date,
		Priority:      priority,
		EstimatedMins: req.EstimatedMins,
		SeriesID:      seriesID,
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	// Place at the end of the bucket so creation order is preserved.
	placed, err := h.placement.MoveTask(c.Request.Context(), userID, task.ID, date, service.IndexEnd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place task"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(placed))
}

func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetOwned(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// GetBucket lists a bucket's tasks in position order, completed included.
func (h *TaskHandler) GetBucket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	date, ok := parseBucket(c.Param("bucket"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket"})
		return
	}

	tasks, err := h.taskRepo.ListBucket(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetOwned(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	task.Title = req.Title
	task.Notes = req.Notes
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	task.EstimatedMins = req.EstimatedMins

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Move places the task at an index within a bucket. Bucket changes and
// position changes are atomic; a concurrent collision surfaces as 409 after
// one internal retry.
func (h *TaskHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	date, ok := parseBucket(req.Bucket)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket"})
		return
	}

	task, err := h.placement.MoveTask(c.Request.Context(), userID, taskID, date, *req.Index)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, service.ErrPlacementConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Concurrent placement conflict, retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
		}
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Reorder applies a client-computed permutation of a bucket's open tasks.
func (h *TaskHandler) Reorder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	date, ok := parseBucket(c.Param("bucket"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket"})
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	orderedIDs := make([]uuid.UUID, len(req.TaskIDs))
	for i, raw := range req.TaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
			return
		}
		orderedIDs[i] = id
	}

	tasks, err := h.placement.ReorderBucket(c.Request.Context(), userID, date, orderedIDs)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReorder) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Reorder does not match bucket contents"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder bucket"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Complete marks the task done. Completed tasks keep their position value but
// leave the bucket's index space.
func (h *TaskHandler) Complete(c *gin.Context) {
	h.setCompletion(c, true)
}

// Reopen clears the completion timestamp.
func (h *TaskHandler) Reopen(c *gin.Context) {
	h.setCompletion(c, false)
}

func (h *TaskHandler) setCompletion(c *gin.Context, done bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var completedAt *time.Time
	if done {
		now := time.Now().UTC()
		completedAt = &now
	}

	if err := h.taskRepo.SetCompleted(c.Request.Context(), userID, taskID, completedAt); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	task, err := h.taskRepo.GetOwned(c.Request.Context(), userID, taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), userID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
