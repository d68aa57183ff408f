package response

// 常见业务 系统级错误码（直接基于 HTTP 语义）
const (
	CodeOK                 = 0
	CodeBadRequest         = 400
	CodeNotFound           = 404
	CodeConflict           = 409
	CodePayloadTooLarge    = 413
	CodeTooManyRequests    = 429
	CodeServerError        = 500
	CodeServiceUnavailable = 503
	CodeGatewayTimeout     = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:                 "OK",
	CodeBadRequest:         "Bad Request",
	CodeNotFound:           "Not Found",
	CodeConflict:           "Conflict",
	CodePayloadTooLarge:    "Payload Too Large",
	CodeTooManyRequests:    "Too Many Requests",
	CodeServerError:        "Internal Server Error",
	CodeServiceUnavailable: "Service Unavailable",
	CodeGatewayTimeout:     "Gateway Timeout",
}
