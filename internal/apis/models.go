package apis

import (
	"time"

	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// StandardResponse 标准API响应格式
type StandardResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Time    int64       `json:"time"`
}

// ErrorResponse 错误响应格式
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Time    int64       `json:"time"`
}

// SendSmsRequest 短信发送请求
type SendSmsRequest struct {
	To          string `json:"to" binding:"required" example:"+393331234567"`
	Message     string `json:"message" example:"hello world!"`
	GatewayPort int    `json:"gateway_port" binding:"omitempty,min=1" minimum:"1" example:"1"`
}

// NewStandardResponse 创建标准响应
func NewStandardResponse(data interface{}, message string, code int) StandardResponse {
	return StandardResponse{
		Code:    code,
		Data:    data,
		Message: message,
		Success: code == constants.SuccessCode,
		Time:    time.Now().Unix(),
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(message string, code int) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: message,
		Success: false,
		Time:    time.Now().Unix(),
	}
}
