package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// APIModule 挂在 /api/v1 下的业务模块
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// OpsModule 挂在根路由的运维接口（健康检查等），API 和管理端口都会挂
type OpsModule interface{ MountOps(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 模块注册表，由 main 组装后传给各个 engine
type Registry struct {
	mu      sync.RWMutex
	apiMods []APIModule
	opsMods []OpsModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 根据类型断言分发到 API/Ops 列表
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		r.apiMods = append(r.apiMods, m)
	}
	if m, ok := mod.(OpsModule); ok {
		r.opsMods = append(r.opsMods, m)
	}
}

// MountAllAPI 在 /api/v1 上挂载所有 API 模块
func (r *Registry) MountAllAPI(api *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.apiMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

// MountAllOps 在根路由上挂载所有运维模块
func (r *Registry) MountAllOps(root *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]OpsModule(nil), r.opsMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountOps(root)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
