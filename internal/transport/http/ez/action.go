package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "user-service/internal/transport/http/response"
	"user-service/internal/transport/http/validation"
)

// 绑定方式
type Binder string

const (
	BindJSON Binder = "json" // 从 JSON 绑定
	BindURI  Binder = "uri"  // 从路径参数 /:email 绑定
	BindNone Binder = "none" // 不绑定
)

// ErrorMapper 业务错误 -> HTTP 状态 + 响应体，只在这里认识 HTTP
type ErrorMapper func(c *gin.Context, err error) (int, resp.Resp)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/users"、"/users/:email"
	Binder  Binder
	Status  int // 成功状态码，默认 200；204 不写 body
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在分组上注册一个动作
func RegisterAction[I any, O any](g *gin.RouterGroup, mapErr ErrorMapper, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodePayloadTooLarge, "request body too large"))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest,
				resp.ErrorWithData(resp.CodeBadRequest, "invalid payload", validation.ToDetails(bindErr)))
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)

		// 3) 统一错误映射
		if err != nil {
			_ = c.Error(err)
			code, body := mapErr(c, err)
			c.AbortWithStatusJSON(code, body)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		g.GET(a.Path, h)
	case http.MethodPut:
		g.PUT(a.Path, h)
	case http.MethodDelete:
		g.DELETE(a.Path, h)
	default: // 默认 POST
		g.POST(a.Path, h)
	}
}
