package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"user-service/internal/core/config"
	"user-service/internal/core/server"
	mdw "user-service/internal/transport/http/middleware"
	"user-service/internal/transport/http/validation"
)

type Deps struct {
	Log      *zap.Logger
	Registry *Registry
	Limits   config.Limits
	CORS     []string
	// 没开独立管理端口时，/metrics 挂在 API 端口上
	ExposeMetrics bool
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	validation.Init()
	r := server.NewRouter(l, d.CORS)

	// 中间件（外层先记录，再做限流/限时）
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.RateLimitPerIP(rate.Limit(d.Limits.PerIPRPS), d.Limits.PerIPBurst),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
		mdw.Timeout(time.Duration(d.Limits.RequestTimeoutSec)*time.Second),
		mdw.ConcurrencyLimit(d.Limits.MaxInflight),
		mdw.Recovery(l),
	)

	reg := d.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	reg.MountAllOps(&r.RouterGroup)
	if d.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// 前缀
	api := r.Group("/api/v1")
	reg.MountAllAPI(api)

	return r
}
