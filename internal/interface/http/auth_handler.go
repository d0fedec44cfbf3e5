package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/domain/apperror"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-auth-service/pkg/response"
	"github.com/oksasatya/go-auth-service/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID    int64  `json:"user_id"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
}

// Register POST /api/register {name, email, password}
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user_id": id}, "user registered successfully", nil)
}

// Login POST /api/login {name, password}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{Name: req.Name, Password: req.Password})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse{
		UserID:    res.UserID,
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
	}, "login successful", nil)
}

// Protected GET /api/protected (auth required)
func (h *AuthHandler) Protected(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)
	response.Success(c, http.StatusOK, gin.H{"user_id": uid}, "this is a protected route", nil)
}

// writeError maps service failures to status codes. Internal causes are logged, never rendered.
func (h *AuthHandler) writeError(c *gin.Context, err error) {
	e, ok := apperror.As(err)
	if !ok {
		e = apperror.Internal(err)
	}
	switch e.Kind {
	case apperror.KindValidation:
		response.Error[any](c, http.StatusBadRequest, e.Message, e.Fields)
	case apperror.KindConflict:
		response.Error[any](c, http.StatusConflict, e.Message, nil)
	case apperror.KindAuthentication:
		response.Error[any](c, http.StatusUnauthorized, "authentication failed", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
