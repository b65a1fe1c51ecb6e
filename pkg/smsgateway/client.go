// Package smsgateway 通过TG系列GSM网关的管理接口发送短信。
//
// 每次发送都是一次完整的线性交互：建立连接、登录、校验4行应答、
// 写入发送命令、读取4行应答。连接不复用，也不在多个调用方之间共享。
package smsgateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bujia-iot/tg-sms/pkg/ami"
	"github.com/bujia-iot/tg-sms/pkg/constants"
	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
)

// State 单次连接尝试所处的阶段
type State int

const (
	StateInit State = iota
	StateConnected
	StateAuthenticated
	StateSent
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// 登录应答前3行的期望内容，第4行只要求可读
var bannerLines = []string{
	constants.BannerGreeting,
	constants.BannerResponse,
	constants.BannerMessage,
}

// Client 网关短信客户端，非并发安全，一个实例对应一次发送
type Client struct {
	settings Settings
	journal  *Journal
	log      *logrus.Entry

	resolver         *net.Resolver
	dial             DialFunc
	newCorrelationID func() string

	conn   net.Conn
	reader *bufio.Reader
	usable bool
	state  State

	lastCorrelationID string
	lastResponse      string
}

// Option 客户端可选项
type Option func(*Client)

// DialFunc 建立到网关的连接
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// WithLogger 指定结构化日志输出
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) {
		c.log = entry
	}
}

// WithResolver 指定域名解析器
func WithResolver(r *net.Resolver) Option {
	return func(c *Client) {
		c.resolver = r
	}
}

// WithDialFunc 替换默认的TCP拨号，DialTimeout 此时由调用方负责
func WithDialFunc(fn DialFunc) Option {
	return func(c *Client) {
		c.dial = fn
	}
}

// WithCorrelationIDFunc 指定短信标识生成函数
func WithCorrelationIDFunc(fn func() string) Option {
	return func(c *Client) {
		c.newCorrelationID = fn
	}
}

// WithJournal 与其它客户端共享同一份诊断日志
func WithJournal(j *Journal) Option {
	return func(c *Client) {
		c.journal = j
	}
}

// NewClient 创建客户端，零值超时使用默认值
func NewClient(settings Settings, opts ...Option) *Client {
	if settings.DialTimeout <= 0 {
		settings.DialTimeout = constants.DialTimeoutDefault * time.Second
	}
	if settings.IOTimeout <= 0 {
		settings.IOTimeout = constants.IOTimeoutDefault * time.Second
	}

	c := &Client{
		settings:         settings,
		journal:          NewJournal(),
		resolver:         net.DefaultResolver,
		newCorrelationID: ami.GenerateCorrelationID,
		state:            StateInit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dial == nil {
		c.dial = (&net.Dialer{Timeout: settings.DialTimeout}).DialContext
	}
	if c.log == nil {
		c.log = logrus.NewEntry(logrus.StandardLogger())
	}
	c.log = c.log.WithFields(logrus.Fields{
		"host": settings.Host,
		"port": settings.Port,
	})

	return c
}

// Open 建立连接并登录。
// 失败时连接被标记为不可用，但句柄仍由客户端持有，调用 Close 释放。
func (c *Client) Open(ctx context.Context) error {
	// 上一次的连接不再使用
	if c.conn != nil {
		c.release()
	}
	c.usable = false
	c.state = StateInit

	ip, err := c.resolve(ctx)
	if err != nil {
		c.state = StateFailed
		c.debug(logrus.ErrorLevel, fmt.Sprintf("Cannot resolve host %s", c.settings.Host))
		c.log.WithError(err).Error("网关地址解析失败")
		return apperrors.Wrap(apperrors.ErrResolution, "resolve "+c.settings.Host, err)
	}

	addr := net.JoinHostPort(ip, strconv.Itoa(c.settings.Port))
	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		c.state = StateFailed
		c.debug(logrus.ErrorLevel, fmt.Sprintf("Error opening socket with %s", c.settings.Host))
		c.log.WithError(err).WithField("addr", addr).Error("连接网关失败")
		return apperrors.Wrap(apperrors.ErrConnection, "dial "+addr, err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.state = StateConnected
	c.debug(logrus.InfoLevel, fmt.Sprintf("Socket with %s opened", c.settings.Host))
	c.log.WithFields(logrus.Fields{
		"localAddr":  conn.LocalAddr().String(),
		"remoteAddr": conn.RemoteAddr().String(),
	}).Debug("连接网关成功")

	if err := c.write(ctx, ami.BuildLogin(c.settings.Account, c.settings.Password)); err != nil {
		c.state = StateFailed
		c.debug(logrus.ErrorLevel, "Error writing login action to the manager interface")
		c.log.WithError(err).Error("发送登录报文失败")
		return apperrors.Wrap(apperrors.ErrWrite, "write login action", err)
	}
	c.debug(logrus.InfoLevel, fmt.Sprintf("Login action sent to %s", c.settings.Host))

	for i, expected := range bannerLines {
		row := i + 1
		line, err := c.readLine(ctx)
		if err != nil || ami.TrimLine(line) != expected {
			c.state = StateFailed
			c.debug(logrus.ErrorLevel, fmt.Sprintf(
				"Authentication failed: response row (%d) must contain '%s'", row, expected))
			c.log.WithFields(logrus.Fields{
				"row":      row,
				"expected": expected,
				"got":      ami.TrimLine(line),
			}).WithError(err).Warn("登录应答校验失败")

			if err != nil {
				return apperrors.Wrap(apperrors.ErrRead, fmt.Sprintf("read banner row %d", row), err)
			}
			return apperrors.Newf(apperrors.ErrProtocolMismatch,
				"banner row %d: expected %q, got %q", row, expected, ami.TrimLine(line))
		}
		c.debug(logrus.InfoLevel, fmt.Sprintf("Authentication row (%d) contains '%s'", row, expected))
	}

	// 最后一行通常为空行，只要求能读到
	if _, err := c.readLine(ctx); err != nil {
		c.state = StateFailed
		c.debug(logrus.ErrorLevel, fmt.Sprintf(
			"Authentication failed: response row (%d) could not be read", constants.BannerLineCount))
		c.log.WithError(err).Warn("登录应答最后一行读取失败")
		return apperrors.Wrap(apperrors.ErrRead, fmt.Sprintf("read banner row %d", constants.BannerLineCount), err)
	}

	c.usable = true
	c.state = StateAuthenticated
	// 该条记录不受Debug开关控制
	c.journal.Append(logrus.InfoLevel, fmt.Sprintf(
		"Authentication success: response row (%d) read", constants.BannerLineCount))
	c.log.Info("网关登录成功")

	return nil
}

// SendSms 登录并发送短信。
// 先登录再检查接收号码，因此即使号码为空也会发生一次登录。
func (c *Client) SendSms(ctx context.Context) error {
	if err := c.Open(ctx); err != nil {
		return err
	}

	if c.settings.RecipientNumber == "" {
		c.state = StateFailed
		c.debug(logrus.WarnLevel, "No recipient number configured, nothing sent")
		c.log.Warn("接收号码为空，未发送短信")
		return apperrors.New(apperrors.ErrNoRecipient, "recipient number is empty")
	}

	c.lastCorrelationID = c.newCorrelationID()
	c.lastResponse = ""
	log := c.log.WithFields(logrus.Fields{
		"recipient":     c.settings.RecipientNumber,
		"gatewayPort":   c.settings.GatewayPort,
		"correlationId": c.lastCorrelationID,
	})

	payload := ami.BuildSendSms(c.settings.GatewayPort, c.settings.RecipientNumber,
		c.settings.MessageBody, c.lastCorrelationID)
	if err := c.write(ctx, payload); err != nil {
		c.state = StateFailed
		c.usable = false
		c.debug(logrus.ErrorLevel, "Error writing sms command to the manager interface")
		log.WithError(err).Error("发送短信命令失败")
		return apperrors.Wrap(apperrors.ErrWrite, "write sms command", err)
	}
	c.debug(logrus.InfoLevel, "Send sms command written")

	// 应答内容不做逐行校验，拼接后非空即视为成功
	var response strings.Builder
	for i := 0; i < constants.SendResponseLineCount; i++ {
		line, err := c.readLine(ctx)
		response.WriteString(line)
		if err != nil {
			log.WithError(err).WithField("row", i+1).Debug("短信应答读取结束")
			break
		}
	}
	c.lastResponse = response.String()

	if c.lastResponse == "" {
		c.state = StateFailed
		c.usable = false
		c.debug(logrus.ErrorLevel, "Empty response to sms command")
		log.Warn("短信命令无应答")
		return apperrors.New(apperrors.ErrEmptyResponse, "empty response to sms command")
	}

	c.state = StateSent
	c.debug(logrus.InfoLevel, "Sms message sent successfully")
	log.Info("短信发送成功")

	return nil
}

// Close 关闭连接，可重复调用，未打开过连接时同样安全
func (c *Client) Close() error {
	if c.conn != nil {
		c.release()
	}
	c.usable = false
	c.state = StateClosed
	c.debug(logrus.InfoLevel, "Socket connection closed")
	return nil
}

// Journal 返回诊断日志
func (c *Client) Journal() []JournalEntry {
	return c.journal.Entries()
}

// JournalMessages 返回诊断日志的消息文本
func (c *Client) JournalMessages() []string {
	return c.journal.Messages()
}

// State 当前阶段
func (c *Client) State() State {
	return c.state
}

// Usable 连接是否已登录且可继续交互
func (c *Client) Usable() bool {
	return c.usable
}

// Settings 客户端使用的配置
func (c *Client) Settings() Settings {
	return c.settings
}

// LastCorrelationID 最近一次发送使用的短信标识
func (c *Client) LastCorrelationID() string {
	return c.lastCorrelationID
}

// LastResponse 最近一次发送读到的原始应答，未做解析
func (c *Client) LastResponse() string {
	return c.lastResponse
}

// resolve 解析主机名，优先返回IPv4地址
func (c *Client) resolve(ctx context.Context) (string, error) {
	if ip := net.ParseIP(c.settings.Host); ip != nil {
		return ip.String(), nil
	}

	addrs, err := c.resolver.LookupIPAddr(ctx, c.settings.Host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no address for host %s", c.settings.Host)
	}
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}

func (c *Client) write(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return err
	}
	defer c.interruptOnCancel(ctx)()

	_, err := c.conn.Write(payload)
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		return ctxErr
	}
	return err
}

// readLine 读取一行，连接在行中途结束时返回已读到的部分
func (c *Client) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := c.conn.SetReadDeadline(c.deadline(ctx)); err != nil {
		return "", err
	}
	defer c.interruptOnCancel(ctx)()

	line, err := c.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		return line, ctxErr
	}
	return line, err
}

// interruptOnCancel ctx取消时把连接截止时间提前到当前，使阻塞中的读写立即返回
func (c *Client) interruptOnCancel(ctx context.Context) (stop func()) {
	conn := c.conn
	cancelStop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	return func() { cancelStop() }
}

// deadline 取单次读写超时与ctx截止时间中较早者
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.settings.IOTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func (c *Client) release() {
	if err := c.conn.Close(); err != nil {
		c.log.WithError(err).Debug("关闭连接出错")
	}
	c.conn = nil
	c.reader = nil
}

// debug 仅在Debug开启时写入诊断日志
func (c *Client) debug(level logrus.Level, message string) {
	if c.settings.Debug {
		c.journal.Append(level, message)
	}
}
