package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "user-service/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；Content-Length 超限直接 413，
// 其余情况由读 body 时的 *http.MaxBytesError 处理
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodePayloadTooLarge, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
