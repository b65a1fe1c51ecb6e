package smsgateway

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bujia-iot/tg-sms/pkg/constants"
	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
	"github.com/bujia-iot/tg-sms/pkg/simulator"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func startDevice(t *testing.T, b simulator.Behavior) *simulator.Device {
	t.Helper()
	dev, err := simulator.Start("", b, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })
	return dev
}

func newTestClient(dev *simulator.Device, to, message string, opts ...Option) *Client {
	s := DefaultSettings()
	s.Host = dev.Host()
	s.Port = dev.Port()
	s.Account = "apiuser"
	s.Password = "apipass"
	s.RecipientNumber = to
	s.MessageBody = message
	s.Debug = true
	s.IOTimeout = 2 * time.Second

	opts = append([]Option{
		WithLogger(quietLogger()),
		WithCorrelationIDFunc(func() string { return "1700000000777" }),
	}, opts...)
	return NewClient(s, opts...)
}

// failingConn 前 allowed 次写入正常，之后的写入全部失败
type failingConn struct {
	net.Conn
	allowed int
	writes  int
}

func (c *failingConn) Write(p []byte) (int, error) {
	c.writes++
	if c.writes > c.allowed {
		return 0, errors.New("broken pipe")
	}
	return c.Conn.Write(p)
}

func dialFailingAfter(allowed int) DialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &failingConn{Conn: conn, allowed: allowed}, nil
	}
}

func actionNames(dev *simulator.Device) []string {
	var names []string
	for _, a := range dev.Actions() {
		names = append(names, a.Name)
	}
	return names
}

func TestSendSmsSuccess(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{GreetOnConnect: true})
	client := newTestClient(dev, "+393331234567", "hello world!")
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Open(ctx))
	assert.Equal(t, StateAuthenticated, client.State())
	assert.True(t, client.Usable())

	require.NoError(t, client.SendSms(ctx))
	assert.Equal(t, StateSent, client.State())
	assert.Equal(t, "1700000000777", client.LastCorrelationID())
	assert.Contains(t, client.LastResponse(), "--END COMMAND--")

	cmds := dev.SmsCommands()
	require.Len(t, cmds, 1)
	assert.Equal(t, 1, cmds[0].GatewayPort)
	assert.Equal(t, "+393331234567", cmds[0].Recipient)
	assert.Equal(t, "hello world!", cmds[0].Body)
	assert.Equal(t, "1700000000777", cmds[0].CorrelationID)

	// 编码后的内容原样出现在命令行中
	actions := dev.Actions()
	last := actions[len(actions)-1]
	assert.Equal(t,
		"Action: smscommand\r\ncommand: gsm send sms 1 +393331234567 \"hello+world%21\" 1700000000777\r\n\r\n",
		last.Raw)

	msgs := client.JournalMessages()
	expectedTrace := []string{
		"Socket with 127.0.0.1 opened",
		"Login action sent to 127.0.0.1",
		"Authentication row (1) contains 'Asterisk Call Manager/1.1'",
		"Authentication row (2) contains 'Response: Success'",
		"Authentication row (3) contains 'Message: Authentication accepted'",
		"Authentication success: response row (4) read",
		"Send sms command written",
		"Sms message sent successfully",
	}
	for _, want := range expectedTrace {
		assert.Contains(t, msgs, want)
	}
	assert.Equal(t, "Sms message sent successfully", msgs[len(msgs)-1])

	client.Close()
	assert.Equal(t, "Socket connection closed", client.JournalMessages()[len(client.JournalMessages())-1])
}

func TestLoginEncodesCredentials(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{})
	client := newTestClient(dev, "100", "x")
	client.settings.Account = "api user"
	client.settings.Password = "p&ss~"
	defer client.Close()

	require.NoError(t, client.Open(context.Background()))

	actions := dev.Actions()
	require.NotEmpty(t, actions)
	assert.Equal(t, "Action: Login\r\nUsername: api+user\r\nSecret: p%26ss%7E\r\n\r\n", actions[0].Raw)
}

func TestBannerMismatch(t *testing.T) {
	tests := []struct {
		name     string
		banner   []string
		wantLine string
	}{
		{
			name:     "第1行版本不符",
			banner:   []string{"Asterisk Call Manager/1.0", constants.BannerResponse, constants.BannerMessage, ""},
			wantLine: "Authentication failed: response row (1) must contain 'Asterisk Call Manager/1.1'",
		},
		{
			name:     "第2行认证失败",
			banner:   []string{constants.BannerGreeting, "Response: Error", "Message: Authentication failed", ""},
			wantLine: "Authentication failed: response row (2) must contain 'Response: Success'",
		},
		{
			name:     "第3行内容不符",
			banner:   []string{constants.BannerGreeting, constants.BannerResponse, "Message: Something else", ""},
			wantLine: "Authentication failed: response row (3) must contain 'Message: Authentication accepted'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := startDevice(t, simulator.Behavior{Banner: tt.banner})
			client := newTestClient(dev, "+390000", "hello")
			defer client.Close()

			err := client.SendSms(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.IsErrCode(err, apperrors.ErrProtocolMismatch), "got %v", err)
			assert.Equal(t, StateFailed, client.State())
			assert.False(t, client.Usable())

			// 登录失败后不会写入短信命令
			assert.Equal(t, []string{"Login"}, actionNames(dev))
			assert.Empty(t, dev.SmsCommands())

			msgs := client.JournalMessages()
			assert.Equal(t, tt.wantLine, msgs[len(msgs)-1])
			assert.NotContains(t, msgs, "Authentication success: response row (4) read")
		})
	}
}

func TestServerClosesOnAccept(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{CloseOnAccept: true})
	client := newTestClient(dev, "+390000", "hello")
	defer client.Close()

	err := client.Open(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrRead), "got %v", err)
	assert.False(t, client.Usable())

	msgs := client.JournalMessages()
	assert.Equal(t,
		"Authentication failed: response row (1) must contain 'Asterisk Call Manager/1.1'",
		msgs[len(msgs)-1])
}

func TestServerClosesAfterLogin(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{CloseAfterLogin: true})
	client := newTestClient(dev, "+390000", "hello")
	defer client.Close()

	err := client.SendSms(context.Background())
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrRead), "got %v", err)
	assert.Empty(t, dev.SmsCommands())
}

func TestFourthBannerLineUnreadable(t *testing.T) {
	// 只返回3行后保持连接，第4行读取超时
	dev := startDevice(t, simulator.Behavior{
		Banner: []string{constants.BannerGreeting, constants.BannerResponse, constants.BannerMessage},
	})
	client := newTestClient(dev, "+390000", "hello")
	client.settings.IOTimeout = 200 * time.Millisecond
	defer client.Close()

	err := client.Open(context.Background())
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrRead), "got %v", err)
	assert.Equal(t, StateFailed, client.State())

	msgs := client.JournalMessages()
	assert.Equal(t, "Authentication failed: response row (4) could not be read", msgs[len(msgs)-1])
}

func TestFourthBannerLineContentIgnored(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{
		Banner: []string{constants.BannerGreeting, constants.BannerResponse, constants.BannerMessage, "anything"},
	})
	client := newTestClient(dev, "+390000", "hello")
	defer client.Close()

	require.NoError(t, client.Open(context.Background()))
	assert.True(t, client.Usable())
}

func TestEmptyRecipient(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{})
	client := newTestClient(dev, "", "hello")
	defer client.Close()

	err := client.SendSms(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrNoRecipient), "got %v", err)
	assert.Empty(t, client.LastCorrelationID())

	// 登录照常发生，但没有短信命令
	assert.Equal(t, []string{"Login"}, actionNames(dev))
	assert.Empty(t, dev.SmsCommands())
}

func TestEmptySmsResponse(t *testing.T) {
	tests := []struct {
		name     string
		behavior simulator.Behavior
	}{
		{"发送后立即断开", simulator.Behavior{CloseAfterSms: true}},
		{"发送后无应答", simulator.Behavior{SmsResponse: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := startDevice(t, tt.behavior)
			client := newTestClient(dev, "+390000", "hello")
			client.settings.IOTimeout = 300 * time.Millisecond
			defer client.Close()

			err := client.SendSms(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.IsErrCode(err, apperrors.ErrEmptyResponse), "got %v", err)
			assert.Equal(t, StateFailed, client.State())
			assert.Len(t, dev.SmsCommands(), 1)
		})
	}
}

func TestAnyNonEmptyResponseCountsAsSent(t *testing.T) {
	// 应答内容不解析，报错的应答同样视为成功
	dev := startDevice(t, simulator.Behavior{
		SmsResponse: []string{"Response: Error", "Message: Port busy"},
	})
	client := newTestClient(dev, "+390000", "hello")
	client.settings.IOTimeout = 300 * time.Millisecond
	defer client.Close()

	require.NoError(t, client.SendSms(context.Background()))
	assert.Equal(t, "Response: Error\r\nMessage: Port busy\r\n", client.LastResponse())
}

func TestConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	s := DefaultSettings()
	s.Host = "127.0.0.1"
	s.Port = addr.Port
	s.RecipientNumber = "+390000"
	s.Debug = true
	client := NewClient(s, WithLogger(quietLogger()))
	defer client.Close()

	err = client.SendSms(context.Background())
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrConnection), "got %v", err)
	assert.Equal(t, StateFailed, client.State())
	assert.Equal(t, []string{"Error opening socket with 127.0.0.1"}, client.JournalMessages())
}

func TestResolutionFailure(t *testing.T) {
	s := DefaultSettings()
	s.Host = "no-such-gateway.invalid"
	s.Debug = true
	client := NewClient(s, WithLogger(quietLogger()))
	defer client.Close()

	err := client.Open(context.Background())
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrResolution), "got %v", err)
	assert.Equal(t, []string{"Cannot resolve host no-such-gateway.invalid"}, client.JournalMessages())
}

func TestCloseIsIdempotent(t *testing.T) {
	client := NewClient(DefaultSettings(), WithLogger(quietLogger()))

	// 从未打开过连接
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
	assert.Equal(t, StateClosed, client.State())
	assert.Empty(t, client.JournalMessages())

	dev := startDevice(t, simulator.Behavior{})
	opened := newTestClient(dev, "+390000", "hello")
	require.NoError(t, opened.Open(context.Background()))
	assert.NoError(t, opened.Close())
	assert.NoError(t, opened.Close())

	// Debug 开启时每次关闭都会记录
	closed := 0
	for _, m := range opened.JournalMessages() {
		if m == "Socket connection closed" {
			closed++
		}
	}
	assert.Equal(t, 2, closed)
}

func TestJournalWithoutDebug(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{})
	client := newTestClient(dev, "+390000", "hello")
	client.settings.Debug = false
	defer client.Close()

	require.NoError(t, client.SendSms(context.Background()))
	client.Close()

	// 只有登录成功这一条不受Debug开关控制
	assert.Equal(t, []string{"Authentication success: response row (4) read"}, client.JournalMessages())

	entries := client.Journal()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.False(t, entries[0].Time.IsZero())
}

func TestReopenReplacesConnection(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{})
	client := newTestClient(dev, "+390000", "hello")
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Open(ctx))
	require.NoError(t, client.Open(ctx))

	logins := 0
	for _, name := range actionNames(dev) {
		if strings.EqualFold(name, "Login") {
			logins++
		}
	}
	assert.Equal(t, 2, logins)
}

func TestCancelledContext(t *testing.T) {
	dev := startDevice(t, simulator.Behavior{})
	client := newTestClient(dev, "+390000", "hello")
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.SendSms(ctx)
	assert.Error(t, err)
	assert.False(t, client.Usable())
}

func TestWriteFailures(t *testing.T) {
	tests := []struct {
		name        string
		allowed     int
		wantLine    string
		wantActions []string
	}{
		{
			name:     "登录报文写入失败",
			allowed:  0,
			wantLine: "Error writing login action to the manager interface",
		},
		{
			name:        "短信命令写入失败",
			allowed:     1,
			wantLine:    "Error writing sms command to the manager interface",
			wantActions: []string{"Login"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := startDevice(t, simulator.Behavior{})
			client := newTestClient(dev, "+390000", "hello", WithDialFunc(dialFailingAfter(tt.allowed)))

			err := client.SendSms(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.IsErrCode(err, apperrors.ErrWrite), "got %v", err)
			assert.Equal(t, StateFailed, client.State())
			assert.False(t, client.Usable())
			assert.Empty(t, client.LastResponse())

			msgs := client.JournalMessages()
			assert.Equal(t, tt.wantLine, msgs[len(msgs)-1])
			assert.Empty(t, dev.SmsCommands())
			if tt.wantActions != nil {
				require.Eventually(t, func() bool { return len(dev.Actions()) == len(tt.wantActions) },
					time.Second, 10*time.Millisecond)
				assert.Equal(t, tt.wantActions, actionNames(dev))
			}

			// 失败后关闭仍然安全
			assert.NoError(t, client.Close())
			assert.NoError(t, client.Close())
			assert.Equal(t, StateClosed, client.State())
			msgs = client.JournalMessages()
			assert.Equal(t, "Socket connection closed", msgs[len(msgs)-1])
		})
	}
}

func TestCancelInterruptsBlockedRead(t *testing.T) {
	// 只返回3行后保持连接，读取第4行时阻塞
	dev := startDevice(t, simulator.Behavior{
		Banner: []string{constants.BannerGreeting, constants.BannerResponse, constants.BannerMessage},
	})
	client := newTestClient(dev, "+390000", "hello")
	client.settings.IOTimeout = 30 * time.Second
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(100*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	err := client.Open(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, StateFailed, client.State())
}
