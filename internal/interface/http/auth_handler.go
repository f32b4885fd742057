package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oksasatya/go-ddd-task-tracker/internal/application"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/response"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/validation"
)

type AuthHandler struct {
	Sessions *application.SessionService
}

func NewAuthHandler(sessions *application.SessionService) *AuthHandler {
	return &AuthHandler{Sessions: sessions}
}

// credentialsForm is the password-grant form; username carries the email.
type credentialsForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register POST /api/auth/register (form: username, password)
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsForm
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return
	}
	s, err := h.Sessions.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{AccessToken: s.AccessToken, TokenType: s.TokenType})
}

// Login POST /api/auth/login (form: username, password)
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsForm
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		response.Invalid(c, validation.ToDetails(err))
		return
	}
	s, err := h.Sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{AccessToken: s.AccessToken, TokenType: s.TokenType})
}
