package gwerrors

import (
	"errors"
	"fmt"
)

// Code 错误的机器可读代码
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeAuth       Code = "AUTH_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT_ERROR"
	CodeRateLimit  Code = "RATE_LIMIT_EXCEEDED"
	CodeIntegrity  Code = "INTEGRITY_ERROR"
	CodeUpstream   Code = "UPSTREAM_ERROR"
)

// Error 网关统一错误类型
// 携带机器可读代码、用户可读消息和结构化详情；内部细节只进审计日志，不对外暴露
type Error struct {
	Code    Code
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause 附加底层错误（仅用于审计/日志，不对外暴露）
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// NewValidation 输入校验错误，附带缺失/非法字段和示例请求
func NewValidation(message string, missing []string, invalid map[string]string, example map[string]interface{}) *Error {
	details := map[string]interface{}{}
	if len(missing) > 0 {
		details["missing_fields"] = missing
	}
	if len(invalid) > 0 {
		details["invalid_fields"] = invalid
	}
	if example != nil {
		details["example_request"] = example
	}
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// NewAuth 认证失败
func NewAuth(message string) *Error {
	return &Error{Code: CodeAuth, Message: message}
}

// NewNotFound 资源不存在
func NewNotFound(resourceType, identifier string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resourceType, identifier),
		Details: map[string]interface{}{
			"resource_type": resourceType,
			"identifier":    identifier,
		},
	}
}

// NewConflict 重复注册或变更重试次数耗尽
func NewConflict(message string, retries int) *Error {
	details := map[string]interface{}{}
	if retries > 0 {
		details["retries_attempted"] = retries
	}
	return &Error{Code: CodeConflict, Message: message, Details: details}
}

// NewRateLimit 限流拒绝，附带重试等待秒数
func NewRateLimit(message string, retryAfterSeconds int) *Error {
	return &Error{
		Code:    CodeRateLimit,
		Message: message,
		Details: map[string]interface{}{"retry_after_seconds": retryAfterSeconds},
	}
}

// NewIntegrity 解密标签校验失败（安全事件，区别于普通错误）
func NewIntegrity(message string) *Error {
	return &Error{Code: CodeIntegrity, Message: message}
}

// NewUpstream 外部平台不可用或重试耗尽
func NewUpstream(message string, statusCode int, cause error) *Error {
	details := map[string]interface{}{}
	if statusCode > 0 {
		details["status_code"] = statusCode
	}
	return &Error{Code: CodeUpstream, Message: message, Details: details, cause: cause}
}

// CodeOf 提取错误代码；非网关错误返回空串
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode 判断错误是否携带指定代码
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
