package constants

// HTTP API 响应状态码
const (
	SuccessCode = 0
)

// API 响应消息
const (
	SuccessMessage = "success"
)

// API 路由前缀
const (
	APIPrefixV1 = "/api/v1"
)

// 短信相关API路径
const (
	SmsSendPath    = "/sms/send"
	SmsRecordsPath = "/sms/records"
	SmsRecordPath  = "/sms/records/:id"
)
