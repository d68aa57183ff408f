package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	resp "user-service/internal/transport/http/response"
)

// Pinger 就绪检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler liveness / readiness
type HealthHandler struct {
	service  string
	version  string
	deps     map[string]Pinger
	optional map[string]Pinger
	timeout  time.Duration
}

func NewHealthHandler(service, version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		service:  service,
		version:  version,
		deps:     deps,
		optional: map[string]Pinger{},
		timeout:  2 * time.Second,
	}
}

// WithOptional 只展示状态、不影响就绪的依赖（比如可回源的缓存）
func (h *HealthHandler) WithOptional(name string, p Pinger) *HealthHandler {
	h.optional[name] = p
	return h
}

func (h *HealthHandler) Priority() int { return 0 }

// MountOps 挂在根路由
func (h *HealthHandler) MountOps(r *gin.RouterGroup) {
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "service": h.service, "version": h.version})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := gin.H{}
	ready := ping(ctx, h.deps, status, "")
	ping(ctx, h.optional, status, "degraded: ")
	if !ready {
		c.JSON(http.StatusServiceUnavailable,
			resp.ErrorWithData(resp.CodeServiceUnavailable, "one or more dependencies unavailable", status))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "dependencies": status})
}

// ping 依次检查 deps，结果写进 status；全部正常时返回 true
func ping(ctx context.Context, deps map[string]Pinger, status gin.H, failPrefix string) bool {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	ok := true
	for _, name := range names {
		if err := deps[name].Ping(ctx); err != nil {
			status[name] = failPrefix + err.Error()
			ok = false
		} else {
			status[name] = "ok"
		}
	}
	return ok
}
