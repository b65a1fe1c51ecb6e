package smsgateway

import (
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/bujia-iot/tg-sms/pkg/constants"
	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
)

// Settings 一次短信发送所需的连接配置
type Settings struct {
	Protocol        string `mapstructure:"protocol"` // 仅保存，不参与通信
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Account         string `mapstructure:"account"`
	Password        string `mapstructure:"password"`
	RecipientNumber string `mapstructure:"to"`
	MessageBody     string `mapstructure:"message"`
	GatewayPort     int    `mapstructure:"gateway_port"` // 发送短信的GSM端口
	Debug           bool   `mapstructure:"debug"`        // 开启后记录诊断日志

	DialTimeout time.Duration `mapstructure:"-"`
	IOTimeout   time.Duration `mapstructure:"-"`
}

// DefaultSettings 返回默认配置
func DefaultSettings() Settings {
	return Settings{
		Protocol:    constants.DefaultProtocol,
		Host:        constants.DefaultHost,
		Port:        constants.DefaultPort,
		GatewayPort: constants.DefaultGatewayPort,
		DialTimeout: constants.DialTimeoutDefault * time.Second,
		IOTimeout:   constants.IOTimeoutDefault * time.Second,
	}
}

// SettingsFromMap 从键值表构建配置，未设置的键保留默认值。
// 可识别的键：protocol host port account password to message gateway_port debug，
// 出现其它键时返回 ErrInvalidParameter。
func SettingsFromMap(values map[string]interface{}) (Settings, error) {
	s := DefaultSettings()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return s, apperrors.Wrap(apperrors.ErrInvalidParameter, "create settings decoder", err)
	}

	if err := decoder.Decode(values); err != nil {
		return s, apperrors.Wrap(apperrors.ErrInvalidParameter, "decode settings", err)
	}

	if s.Port <= 0 || s.Port > 65535 {
		return s, apperrors.Newf(apperrors.ErrInvalidParameter, "port out of range: %d", s.Port)
	}
	if s.GatewayPort <= 0 {
		return s, apperrors.Newf(apperrors.ErrInvalidParameter, "gateway_port must be positive: %d", s.GatewayPort)
	}

	return s, nil
}

// WithRecipient 设置接收号码
func (s Settings) WithRecipient(to string) Settings {
	s.RecipientNumber = to
	return s
}

// WithMessage 设置短信内容
func (s Settings) WithMessage(message string) Settings {
	s.MessageBody = message
	return s
}

// WithGatewayPort 设置GSM端口
func (s Settings) WithGatewayPort(port int) Settings {
	s.GatewayPort = port
	return s
}
