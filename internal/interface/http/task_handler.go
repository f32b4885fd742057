package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-task-tracker/internal/application"
	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/response"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/validation"
)

const msgTaskDeleted = "Task deleted"

type TaskHandler struct {
	Svc *application.TaskService
}

func NewTaskHandler(svc *application.TaskService) *TaskHandler {
	return &TaskHandler{Svc: svc}
}

type taskRequest struct {
	Title       *string `json:"title" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsCompleted *bool   `json:"is_completed"`
}

type listTasksQuery struct {
	Skip  int `form:"skip,default=0" binding:"gte=0"`
	Limit int `form:"limit,default=100" binding:"gte=0"`
}

type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     int64     `json:"owner_id"`
}

func toTaskResponse(t entity.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		OwnerID:     t.OwnerID,
	}
}

// Create POST /api/tasks/
func (h *TaskHandler) Create(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return
	}
	in := application.CreateTaskInput{Title: *req.Title, Description: req.Description}
	if req.IsCompleted != nil {
		in.IsCompleted = *req.IsCompleted
	}
	t, err := h.Svc.Create(c.Request.Context(), who, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(*t))
}

// List GET /api/tasks/?skip=&limit=
func (h *TaskHandler) List(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return
	}
	tasks, err := h.Svc.List(c.Request.Context(), who, q.Skip, q.Limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	response.Success(c, http.StatusOK, out)
}

// Update PUT /api/tasks/:id; fields left out of the body keep their value.
func (h *TaskHandler) Update(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), who, id, entity.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(*t))
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), who, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Message(c, msgTaskDeleted)
}

// taskID parses the :id path parameter. Anything that is not a task id is
// reported the same way as a task the caller cannot see.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, apperror.New(apperror.KindNotFound, application.MsgTaskNotFound))
		return 0, false
	}
	return id, true
}
