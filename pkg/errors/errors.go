package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 表示错误码类型
type ErrorCode int

// 定义应用程序的错误码
const (
	// 通用错误
	ErrUnknown ErrorCode = iota + 1000
	ErrInvalidParameter

	// 网关连接相关错误
	ErrResolution
	ErrConnection

	// 管理协议相关错误
	ErrWrite
	ErrRead
	ErrProtocolMismatch
	ErrEmptyResponse

	// 短信业务相关错误
	ErrNoRecipient

	// Redis存储相关错误
	ErrRedisOperationFailed
	ErrRecordNotFound
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:              "unknown",
	ErrInvalidParameter:     "invalid_parameter",
	ErrResolution:           "resolution",
	ErrConnection:           "connection",
	ErrWrite:                "write",
	ErrRead:                 "read",
	ErrProtocolMismatch:     "protocol_mismatch",
	ErrEmptyResponse:        "empty_response",
	ErrNoRecipient:          "no_recipient",
	ErrRedisOperationFailed: "redis_operation_failed",
	ErrRecordNotFound:       "record_not_found",
}

// String 返回错误码的可读名称
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}

// AppError 应用程序自定义错误类型
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持Go 1.13+的错误包装
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New 创建一个新的AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 使用格式化消息创建AppError
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装一个已有的错误
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrCode 检查错误链中是否存在指定错误码的AppError
func IsErrCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// CodeOf 返回错误链中第一个AppError的错误码，不存在时返回ErrUnknown
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknown
}
