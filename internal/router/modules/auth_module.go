package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
)

// AuthModule wires the auth handlers into routes
// Public: POST /api/register, POST /api/login
// Protected: GET /api/protected
type AuthModule struct {
	Handler *handlers.AuthHandler
	Authz   middleware.Authorizer
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, authz middleware.Authorizer, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Authz: authz, Redis: rdb}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.Authz))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/protected", m.Handler.Protected)
	}
}
