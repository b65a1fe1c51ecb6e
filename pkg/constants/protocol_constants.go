package constants

// TG网关管理协议常量定义
// 管理接口为Asterisk Call Manager方言，CRLF分隔的纯文本行协议

// ============================================================================
// 协议基础常量
// ============================================================================

const (
	// 行分隔符
	LineTerminator = "\r\n"

	// 登录应答的固定横幅
	BannerGreeting = "Asterisk Call Manager/1.1"
	BannerResponse = "Response: Success"
	BannerMessage  = "Message: Authentication accepted"

	// 登录应答行数（第4行只要求可读）
	BannerLineCount = 4

	// 发送短信后读取的应答行数（不校验内容）
	SendResponseLineCount = 4

	// Action名称
	ActionLogin      = "Login"
	ActionSmsCommand = "smscommand"
)

// ============================================================================
// 默认配置常量
// ============================================================================

const (
	DefaultProtocol    = "https"
	DefaultHost        = "localhost"
	DefaultPort        = 5038 // 管理接口默认端口
	DefaultGatewayPort = 1    // 默认GSM端口

	// 超时设置（秒）
	DialTimeoutDefault = 5  // 建立TCP连接超时
	IOTimeoutDefault   = 10 // 单次读写超时

	// 时间格式
	TimeFormatDefault = "2006-01-02 15:04:05"
)
