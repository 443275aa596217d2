package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-user-registration/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-registration/internal/interface/middleware"
)

// RegisterModule exposes account registration.
// Public: POST /api/register, rate limited per client IP.
type RegisterModule struct {
	Handler   *handlers.RegisterHandler
	Redis     *redis.Client
	RateLimit int // requests per minute; 0 disables
}

func NewRegisterModule(h *handlers.RegisterHandler, rdb *redis.Client, rateLimit int) *RegisterModule {
	return &RegisterModule{Handler: h, Redis: rdb, RateLimit: rateLimit}
}

func (m *RegisterModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, m.RateLimit, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/register", limiter, m.Handler.Register)
}
