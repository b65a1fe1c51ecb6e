package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
	"github.com/bujia-iot/tg-sms/internal/infrastructure/logger"
	"github.com/bujia-iot/tg-sms/pkg/constants"
	"github.com/bujia-iot/tg-sms/pkg/smsgateway"
)

// 命令行参数
type sendParams struct {
	configFile  string
	host        string
	port        int
	account     string
	password    string
	to          string
	message     string
	gatewayPort int
	debug       bool
	timeout     time.Duration
}

func main() {
	params := parseFlags()

	settings, err := buildSettings(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误: %v\n", err)
		os.Exit(2)
	}

	client := smsgateway.NewClient(settings, smsgateway.WithLogger(logger.WithField("component", "sms_send")))

	ctx, cancel := context.WithTimeout(context.Background(), params.timeout)
	defer cancel()

	sendErr := client.SendSms(ctx)
	client.Close()

	if settings.Debug {
		for _, e := range client.Journal() {
			fmt.Printf("%s [%s] %s\n", e.Time.Format(constants.TimeFormatDefault), e.Level, e.Message)
		}
	}

	if sendErr != nil {
		fmt.Fprintf(os.Stderr, "❌ 短信发送失败: %v\n", sendErr)
		os.Exit(1)
	}
	fmt.Printf("✅ 短信已发送 (标识: %s)\n", client.LastCorrelationID())
}

// buildSettings 配置文件提供基础值，命令行中显式给出的参数覆盖之
func buildSettings(p *sendParams) (smsgateway.Settings, error) {
	values := map[string]interface{}{}
	var gw config.GatewayConfig

	if p.configFile != "" {
		if err := config.Load(p.configFile); err != nil {
			return smsgateway.Settings{}, err
		}
		cfg := config.GetConfig()
		if err := logger.Init(&cfg.Logger); err != nil {
			return smsgateway.Settings{}, err
		}
		gw = cfg.Gateway
		values["host"] = gw.Host
		values["port"] = gw.Port
		values["account"] = gw.Account
		values["password"] = gw.Password
		values["gateway_port"] = gw.GatewayPort
		values["debug"] = gw.Debug
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			values["host"] = p.host
		case "port":
			values["port"] = p.port
		case "account":
			values["account"] = p.account
		case "password":
			values["password"] = p.password
		case "gateway-port":
			values["gateway_port"] = p.gatewayPort
		case "debug":
			values["debug"] = p.debug
		}
	})
	values["to"] = p.to
	values["message"] = p.message

	settings, err := smsgateway.SettingsFromMap(values)
	if err != nil {
		return settings, err
	}
	if gw.DialTimeoutSeconds > 0 {
		settings.DialTimeout = gw.DialTimeout()
	}
	if gw.IOTimeoutSeconds > 0 {
		settings.IOTimeout = gw.IOTimeout()
	}
	return settings, nil
}

// 解析命令行参数
func parseFlags() *sendParams {
	p := &sendParams{}

	flag.StringVar(&p.configFile, "config", "", "配置文件路径（可选）")
	flag.StringVar(&p.host, "host", constants.DefaultHost, "网关地址")
	flag.IntVar(&p.port, "port", constants.DefaultPort, "管理接口端口")
	flag.StringVar(&p.account, "account", "", "管理接口账号")
	flag.StringVar(&p.password, "password", "", "管理接口密码")
	flag.StringVar(&p.to, "to", "", "接收号码")
	flag.StringVar(&p.message, "message", "", "短信内容")
	flag.IntVar(&p.gatewayPort, "gateway-port", constants.DefaultGatewayPort, "发送短信的GSM端口")
	flag.BoolVar(&p.debug, "debug", false, "输出诊断日志")
	flag.DurationVar(&p.timeout, "timeout", 30*time.Second, "整个发送过程的超时时间")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: %s [选项]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "选项:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n示例:\n")
		fmt.Fprintf(os.Stderr, "  %s -host 192.168.1.100 -account apiuser -password apipass -to +393331234567 -message \"hello world\" -debug\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config configs/tg-sms.yaml -to +393331234567 -message \"hello world\"\n", os.Args[0])
	}

	flag.Parse()
	return p
}
