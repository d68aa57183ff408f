package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeyRequestID = "X-Request-ID"

// 上游传入的 id 超过这个长度就重新生成，防止日志被灌爆
const maxRequestIDLen = 64

// RequestID 透传或生成请求 id，写回响应头并放进 gin 上下文
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom 读取 RequestID 中间件放入的 id；没挂中间件时为空
func RequestIDFrom(c *gin.Context) string { return c.GetString(KeyRequestID) }

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		// 只收可打印 ASCII，拒绝换行之类的日志注入
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}
