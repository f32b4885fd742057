package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-task-tracker/internal/application"
	"github.com/oksasatya/go-ddd-task-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/response"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Me GET /api/auth/me
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	u := id.User
	response.Success(c, http.StatusOK, userResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	})
}

// requireIdentity reads the caller stored by middleware.Auth, failing the
// request with 401 when the route was wired without it.
func requireIdentity(c *gin.Context) (application.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Fail(c, apperror.New(apperror.KindUnauthorized, response.MsgCouldNotValidate))
	}
	return id, ok
}
