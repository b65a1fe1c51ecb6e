package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// Config 是应用程序配置的结构体
type Config struct {
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	HTTPAPIServer HTTPAPIServerConfig `mapstructure:"httpApiServer"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Logger        LoggerConfig        `mapstructure:"logger"`
}

// GatewayConfig TG网关管理接口配置
type GatewayConfig struct {
	Host               string `mapstructure:"host" yaml:"host"`
	Port               int    `mapstructure:"port" yaml:"port"`
	Account            string `mapstructure:"account" yaml:"account"`
	Password           string `mapstructure:"password" yaml:"password"`
	GatewayPort        int    `mapstructure:"gatewayPort" yaml:"gatewayPort"` // 发送短信使用的GSM端口
	Debug              bool   `mapstructure:"debug" yaml:"debug"`
	DialTimeoutSeconds int    `mapstructure:"dialTimeoutSeconds" yaml:"dialTimeoutSeconds"`
	IOTimeoutSeconds   int    `mapstructure:"ioTimeoutSeconds" yaml:"ioTimeoutSeconds"` // 单次读写超时
}

// HTTPAPIServerConfig HTTP API服务器配置
type HTTPAPIServerConfig struct {
	Host               string  `mapstructure:"host"`
	Port               int     `mapstructure:"port"`
	TimeoutSeconds     int     `mapstructure:"timeoutSeconds"`
	RateLimitPerSecond float64 `mapstructure:"rateLimitPerSecond"`
	RateBurst          int     `mapstructure:"rateBurst"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Address        string `mapstructure:"address"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	PoolSize       int    `mapstructure:"poolSize"`
	DialTimeout    int    `mapstructure:"dialTimeout"`
	ReadTimeout    int    `mapstructure:"readTimeout"`
	WriteTimeout   int    `mapstructure:"writeTimeout"`
	RecordTTLHours int    `mapstructure:"recordTTLHours"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	FilePath      string `mapstructure:"filePath"`
	MaxSizeMB     int    `mapstructure:"maxSizeMB"`
	MaxBackups    int    `mapstructure:"maxBackups"`
	MaxAgeDays    int    `mapstructure:"maxAgeDays"`
	Compress      bool   `mapstructure:"compress"`
	EnableConsole bool   `mapstructure:"enableConsole"`
}

// 全局配置实例
var GlobalConfig = Default()

// Default 返回带默认值的配置
func Default() Config {
	return Config{
		Gateway: GatewayConfig{
			Host:               constants.DefaultHost,
			Port:               constants.DefaultPort,
			GatewayPort:        constants.DefaultGatewayPort,
			DialTimeoutSeconds: constants.DialTimeoutDefault,
			IOTimeoutSeconds:   constants.IOTimeoutDefault,
		},
		HTTPAPIServer: HTTPAPIServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			TimeoutSeconds:     30,
			RateLimitPerSecond: 1,
			RateBurst:          5,
		},
		Redis: RedisConfig{
			DB:             0,
			PoolSize:       4,
			DialTimeout:    5,
			ReadTimeout:    3,
			WriteTimeout:   3,
			RecordTTLHours: 72,
		},
		Logger: LoggerConfig{
			Level:         "info",
			Format:        "text",
			MaxSizeMB:     100,
			MaxBackups:    7,
			MaxAgeDays:    30,
			EnableConsole: true,
		},
	}
}

// Load 加载配置文件
func Load(configPath string) error {
	cfg, err := LoadFile(configPath)
	if err != nil {
		return err
	}
	GlobalConfig = *cfg
	return nil
}

// LoadFile 读取配置文件并返回配置，不修改全局配置
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 注册默认值，使环境变量覆盖对未出现在文件中的键同样生效
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("gateway.host", d.Gateway.Host)
	v.SetDefault("gateway.port", d.Gateway.Port)
	v.SetDefault("gateway.account", "")
	v.SetDefault("gateway.password", "")
	v.SetDefault("gateway.gatewayPort", d.Gateway.GatewayPort)
	v.SetDefault("gateway.debug", d.Gateway.Debug)
	v.SetDefault("gateway.dialTimeoutSeconds", d.Gateway.DialTimeoutSeconds)
	v.SetDefault("gateway.ioTimeoutSeconds", d.Gateway.IOTimeoutSeconds)

	v.SetDefault("httpApiServer.host", d.HTTPAPIServer.Host)
	v.SetDefault("httpApiServer.port", d.HTTPAPIServer.Port)
	v.SetDefault("httpApiServer.timeoutSeconds", d.HTTPAPIServer.TimeoutSeconds)
	v.SetDefault("httpApiServer.rateLimitPerSecond", d.HTTPAPIServer.RateLimitPerSecond)
	v.SetDefault("httpApiServer.rateBurst", d.HTTPAPIServer.RateBurst)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.poolSize", d.Redis.PoolSize)
	v.SetDefault("redis.dialTimeout", d.Redis.DialTimeout)
	v.SetDefault("redis.readTimeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.writeTimeout", d.Redis.WriteTimeout)
	v.SetDefault("redis.recordTTLHours", d.Redis.RecordTTLHours)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.filePath", "")
	v.SetDefault("logger.maxSizeMB", d.Logger.MaxSizeMB)
	v.SetDefault("logger.maxBackups", d.Logger.MaxBackups)
	v.SetDefault("logger.maxAgeDays", d.Logger.MaxAgeDays)
	v.SetDefault("logger.compress", d.Logger.Compress)
	v.SetDefault("logger.enableConsole", d.Logger.EnableConsole)
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return &GlobalConfig
}

// Address 格式化HTTP服务器地址为host:port格式
func (h HTTPAPIServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DialTimeout 建立连接的超时时间
func (g GatewayConfig) DialTimeout() time.Duration {
	return time.Duration(g.DialTimeoutSeconds) * time.Second
}

// IOTimeout 单次读写的超时时间
func (g GatewayConfig) IOTimeout() time.Duration {
	return time.Duration(g.IOTimeoutSeconds) * time.Second
}

// RecordTTL 发送记录的保留时间
func (r RedisConfig) RecordTTL() time.Duration {
	return time.Duration(r.RecordTTLHours) * time.Hour
}
