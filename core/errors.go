// Package core - 统一错误类型
// 所有对外返回的错误都是 *ImgfansError，按 Kind 区分类别
package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// ErrorKind 错误类别
type ErrorKind string

const (
	KindConfiguration    ErrorKind = "configuration"          // 构造客户端时配置缺失
	KindInvalidInput     ErrorKind = "invalid_input"          // 字符串输入无法识别
	KindUnsupportedInput ErrorKind = "unsupported_input_type" // 不支持的输入类型
	KindTransport        ErrorKind = "transport"              // 非2xx响应或网络错误
	KindInvalidResponse  ErrorKind = "invalid_response_shape" // 响应结构不符合预期
)

// ImgfansError 图床客户端统一错误
type ImgfansError struct {
	Kind       ErrorKind // 错误类别
	Message    string    // 可读错误信息
	StatusCode int       // HTTP 状态码，无响应时为 0
	Payload    []byte    // 服务端原始响应体（可能为空）
	Err        error     // 底层错误
}

func (e *ImgfansError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("imgfans: %s: %v", e.Message, e.Err)
	}
	return "imgfans: " + e.Message
}

// Unwrap 支持标准库 errors.Is / errors.As
func (e *ImgfansError) Unwrap() error {
	return e.Err
}

// Cause 兼容 github.com/pkg/errors 的 Cause 链
func (e *ImgfansError) Cause() error {
	return e.Err
}

// NewError 创建指定类别的错误
func NewError(kind ErrorKind, message string, cause error) *ImgfansError {
	return &ImgfansError{Kind: kind, Message: message, Err: cause}
}

// IsKind 判断错误链中是否包含指定类别的 ImgfansError
func IsKind(err error, kind ErrorKind) bool {
	var ie *ImgfansError
	if !errors.As(err, &ie) {
		return false
	}
	return ie.Kind == kind
}

const (
	msgTooLarge     = "文件过大 (413 Payload Too Large)"
	msgUnsupported  = "不支持的文件类型 (415 Unsupported Media Type)"
	msgUnauthorized = "API Token 无效或缺失 (401 Unauthorized)"
	msgConnectivity = "无法连接图床服务，请检查网络 (connection refused)"
	msgGeneric      = "上传失败"
)

// StatusMessage 将 HTTP 状态码映射为可读信息
// 对任意状态码都有返回值：已知状态码使用固定文案，其余优先采用服务端信息
func StatusMessage(status int, serverMessage string) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return msgTooLarge
	case http.StatusUnsupportedMediaType:
		return msgUnsupported
	case http.StatusUnauthorized:
		return msgUnauthorized
	}
	if msg := strings.TrimSpace(serverMessage); msg != "" {
		return msg
	}
	if status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", msgGeneric, status)
	}
	return msgGeneric
}

// NewTransportError 根据状态码、响应体和底层错误构建传输错误
func NewTransportError(status int, payload []byte, cause error) *ImgfansError {
	var message string
	if status == 0 && errors.Is(cause, syscall.ECONNREFUSED) {
		message = msgConnectivity
	} else {
		message = StatusMessage(status, ServerMessage(payload))
	}
	return &ImgfansError{
		Kind:       KindTransport,
		Message:    message,
		StatusCode: status,
		Payload:    payload,
		Err:        cause,
	}
}

// ServerMessage 从服务端 JSON 响应中提取错误信息
// 依次尝试 message、error 字段，error 也可能是 {"message": "..."} 对象
func ServerMessage(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
