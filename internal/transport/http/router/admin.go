package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-service/internal/core/server"
	mdw "user-service/internal/transport/http/middleware"
)

// NewAdminEngine 管理端口：/metrics + 健康检查，只监听内网地址
func NewAdminEngine(l *zap.Logger, reg *Registry) *gin.Engine {
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(l, nil)
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
	)

	if reg != nil {
		reg.MountAllOps(&r.RouterGroup)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
