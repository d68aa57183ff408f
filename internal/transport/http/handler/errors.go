package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-service/internal/domain"
	"user-service/internal/transport/http/ez"
	resp "user-service/internal/transport/http/response"
	"user-service/internal/transport/http/validation"
)

// MapError 用例错误 -> HTTP。5xx 打 error 日志，4xx 不打。
// 存储侧错误先判断：库里的脏数据会带着 ValidationError 被包进 UnavailableError，不能算成 400。
func MapError(l *zap.Logger) ez.ErrorMapper {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context, err error) (int, resp.Resp) {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			l.Warn("request timed out", zap.String("path", c.FullPath()), zap.Error(err))
			return http.StatusGatewayTimeout, resp.Error(resp.CodeGatewayTimeout, "timeout")
		case errors.Is(err, domain.ErrUnavailable):
			// 落到下面统一 500
		case errors.Is(err, domain.ErrValidation):
			return http.StatusBadRequest, resp.ErrorWithData(resp.CodeBadRequest, "invalid payload", validation.ToDetails(err))
		case errors.Is(err, domain.ErrDuplicateUser):
			return http.StatusConflict, resp.Error(resp.CodeConflict, "user already exists")
		case errors.Is(err, domain.ErrUserNotFound):
			return http.StatusNotFound, resp.Error(resp.CodeNotFound, "user not found")
		}
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		// 不把底层错误透给客户端
		return http.StatusInternalServerError, resp.Error(resp.CodeServerError, "")
	}
}
