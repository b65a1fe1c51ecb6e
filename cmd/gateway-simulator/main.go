package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/bujia-iot/tg-sms/pkg/constants"
	"github.com/bujia-iot/tg-sms/pkg/simulator"
)

func main() {
	addr := flag.String("addr", fmt.Sprintf("127.0.0.1:%d", constants.DefaultPort), "监听地址")
	mode := flag.String("mode", "ok", "应答模式: ok=正常, bad-banner=版本不符, reject=认证失败, drop=连接即断开, silent=短信无应答")
	verbose := flag.Bool("verbose", false, "是否输出详细日志")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: constants.TimeFormatDefault,
		ForceColors:     true,
	})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	behavior, err := behaviorFor(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	dev, err := simulator.Start(*addr, behavior, logrus.NewEntry(log))
	if err != nil {
		log.WithError(err).Fatal("模拟网关启动失败")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("收到退出信号")

	for _, cmd := range dev.SmsCommands() {
		log.WithFields(logrus.Fields{
			"gatewayPort":   cmd.GatewayPort,
			"recipient":     cmd.Recipient,
			"correlationId": cmd.CorrelationID,
		}).Info(cmd.Body)
	}
	dev.Close()
}

func behaviorFor(mode string) (simulator.Behavior, error) {
	switch mode {
	case "ok":
		return simulator.Behavior{GreetOnConnect: true}, nil
	case "bad-banner":
		return simulator.Behavior{Banner: []string{"Asterisk Call Manager/1.0", constants.BannerResponse, constants.BannerMessage, ""}}, nil
	case "reject":
		return simulator.Behavior{GreetOnConnect: true, Banner: []string{constants.BannerGreeting, "Response: Error", "Message: Authentication failed", ""}}, nil
	case "drop":
		return simulator.Behavior{CloseOnAccept: true}, nil
	case "silent":
		return simulator.Behavior{GreetOnConnect: true, CloseAfterSms: true}, nil
	default:
		return simulator.Behavior{}, fmt.Errorf("未知的应答模式: %s", mode)
	}
}
