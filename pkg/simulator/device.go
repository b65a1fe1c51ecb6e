// Package simulator 模拟TG网关的管理接口，用于联调和测试。
package simulator

import (
	"bufio"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// DefaultBanner 登录成功时网关返回的4行
var DefaultBanner = []string{
	constants.BannerGreeting,
	constants.BannerResponse,
	constants.BannerMessage,
	"",
}

// DefaultSmsResponse 网关对短信命令的应答
var DefaultSmsResponse = []string{
	"Response: Follows",
	"Privilege: Command",
	"--END COMMAND--",
	"",
}

// Behavior 模拟设备的应答脚本
type Behavior struct {
	// Banner 登录应答各行，nil 使用 DefaultBanner
	Banner []string
	// GreetOnConnect 为 true 时第一行在建立连接后立即发送，与真实设备一致
	GreetOnConnect bool
	// CloseOnAccept 建立连接后立即断开
	CloseOnAccept bool
	// CloseAfterLogin 收到登录报文后直接断开
	CloseAfterLogin bool
	// SmsResponse 短信命令的应答行，nil 使用 DefaultSmsResponse
	SmsResponse []string
	// CloseAfterSms 收到短信命令后不应答直接断开
	CloseAfterSms bool
}

// Action 收到的一个请求报文
type Action struct {
	Name    string
	Headers map[string]string
	Raw     string
}

// SmsCommand 解析后的短信命令
type SmsCommand struct {
	GatewayPort   int
	Recipient     string
	EncodedBody   string
	Body          string
	CorrelationID string
}

// Device 模拟设备
type Device struct {
	listener net.Listener
	behavior Behavior
	log      *logrus.Entry

	mu      sync.Mutex
	actions []Action
	conns   map[net.Conn]struct{}
	closed  bool

	wg sync.WaitGroup
}

// Start 在addr上监听并开始服务，addr为空时使用随机本地端口
func Start(addr string, behavior Behavior, log *logrus.Entry) (*Device, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	d := &Device{
		listener: ln,
		behavior: behavior,
		log:      log.WithField("component", "gateway_simulator"),
		conns:    make(map[net.Conn]struct{}),
	}

	d.wg.Add(1)
	go d.acceptLoop()

	d.log.WithField("addr", ln.Addr().String()).Info("模拟网关已启动")
	return d, nil
}

// Addr 监听地址
func (d *Device) Addr() string {
	return d.listener.Addr().String()
}

// Host 监听IP
func (d *Device) Host() string {
	host, _, _ := net.SplitHostPort(d.Addr())
	return host
}

// Port 监听端口
func (d *Device) Port() int {
	_, port, _ := net.SplitHostPort(d.Addr())
	p, _ := strconv.Atoi(port)
	return p
}

// Actions 已收到的全部报文
func (d *Device) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

// SmsCommands 已收到的短信命令
func (d *Device) SmsCommands() []SmsCommand {
	var out []SmsCommand
	for _, a := range d.Actions() {
		if !strings.EqualFold(a.Name, constants.ActionSmsCommand) {
			continue
		}
		if cmd, err := ParseSmsCommand(a.Headers["command"]); err == nil {
			out = append(out, cmd)
		}
	}
	return out
}

// Close 停止监听并断开所有连接
func (d *Device) Close() error {
	err := d.listener.Close()

	d.mu.Lock()
	d.closed = true
	for conn := range d.conns {
		conn.Close()
	}
	d.mu.Unlock()

	d.wg.Wait()
	return err
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}

		d.mu.Lock()
		if d.closed {
			// Close 之后才接受的连接直接断开
			d.mu.Unlock()
			conn.Close()
			return
		}
		d.conns[conn] = struct{}{}
		d.wg.Add(1)
		d.mu.Unlock()

		go d.serve(conn)
	}
}

func (d *Device) serve(conn net.Conn) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.conns, conn)
		d.mu.Unlock()
		conn.Close()
	}()

	log := d.log.WithField("remoteAddr", conn.RemoteAddr().String())
	log.Debug("客户端已连接")

	if d.behavior.CloseOnAccept {
		return
	}

	banner := d.behavior.Banner
	if banner == nil {
		banner = DefaultBanner
	}
	if d.behavior.GreetOnConnect && len(banner) > 0 {
		if err := writeLines(conn, banner[:1]); err != nil {
			return
		}
		banner = banner[1:]
	}

	reader := bufio.NewReader(conn)
	for {
		action, err := readAction(reader)
		if err != nil {
			log.WithError(err).Debug("客户端断开")
			return
		}

		d.mu.Lock()
		d.actions = append(d.actions, action)
		d.mu.Unlock()

		log.WithFields(logrus.Fields{
			"action":  action.Name,
			"command": action.Headers["command"],
		}).Info("收到报文")

		switch {
		case strings.EqualFold(action.Name, constants.ActionLogin):
			if d.behavior.CloseAfterLogin {
				return
			}
			if err := writeLines(conn, banner); err != nil {
				return
			}
		case strings.EqualFold(action.Name, constants.ActionSmsCommand):
			if d.behavior.CloseAfterSms {
				return
			}
			resp := d.behavior.SmsResponse
			if resp == nil {
				resp = DefaultSmsResponse
			}
			if err := writeLines(conn, resp); err != nil {
				return
			}
		default:
			if err := writeLines(conn, []string{"Response: Error", "Message: Invalid/unknown command", ""}); err != nil {
				return
			}
		}
	}
}

// readAction 读取以空行结束的报文
func readAction(r *bufio.Reader) (Action, error) {
	action := Action{Headers: make(map[string]string)}
	var raw strings.Builder

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return action, err
		}
		raw.WriteString(line)

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if len(action.Headers) == 0 {
				continue
			}
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		action.Headers[key] = value
		if strings.EqualFold(key, "Action") {
			action.Name = value
		}
	}

	action.Raw = raw.String()
	return action, nil
}

func writeLines(conn net.Conn, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(constants.LineTerminator)
	}
	_, err := conn.Write([]byte(b.String()))
	return err
}

// ParseSmsCommand 解析 gsm send sms <port> <to> "<body>" <id>
func ParseSmsCommand(command string) (SmsCommand, error) {
	var cmd SmsCommand

	const prefix = "gsm send sms "
	if !strings.HasPrefix(command, prefix) {
		return cmd, fmt.Errorf("not a send sms command: %q", command)
	}
	rest := command[len(prefix):]

	portStr, rest, ok := strings.Cut(rest, " ")
	if !ok {
		return cmd, fmt.Errorf("missing recipient: %q", command)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return cmd, fmt.Errorf("invalid gateway port %q: %w", portStr, err)
	}

	recipient, rest, ok := strings.Cut(rest, " ")
	if !ok || !strings.HasPrefix(rest, `"`) {
		return cmd, fmt.Errorf("missing message body: %q", command)
	}

	end := strings.LastIndex(rest, `" `)
	if end <= 0 {
		return cmd, fmt.Errorf("unterminated message body: %q", command)
	}
	encoded := rest[1:end]
	body, err := url.QueryUnescape(encoded)
	if err != nil {
		return cmd, fmt.Errorf("invalid message encoding: %w", err)
	}

	cmd.GatewayPort = port
	cmd.Recipient = recipient
	cmd.EncodedBody = encoded
	cmd.Body = body
	cmd.CorrelationID = strings.TrimSpace(rest[end+2:])
	return cmd, nil
}
