// Package ami 实现TG系列GSM网关管理接口（Asterisk Call Manager方言）的报文编码。
//
// 只覆盖短信发送需要的两个Action：Login 与 smscommand。
// 报文为CRLF分隔的文本行，以一个空行结束。
package ami

import (
	"bytes"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bujia-iot/tg-sms/pkg/constants"
)

// Encode 按表单编码规则转义字段值，与网关期望的格式逐字节一致：
// 空格转为 '+'，除 A-Z a-z 0-9 - _ . 以外的字节全部转为 %XX。
func Encode(value string) string {
	// url.QueryEscape 不转义 '~'，网关侧按 %7E 解码
	return strings.ReplaceAll(url.QueryEscape(value), "~", "%7E")
}

// Action 管理接口的一个请求报文，字段按写入顺序排列
type Action struct {
	Headers []Header
}

// Header 报文中的一行 "Key: Value"
type Header struct {
	Key   string
	Value string
}

// Bytes 序列化为线上格式
func (a Action) Bytes() []byte {
	var buf bytes.Buffer
	for _, h := range a.Headers {
		buf.WriteString(h.Key)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString(constants.LineTerminator)
	}
	buf.WriteString(constants.LineTerminator)
	return buf.Bytes()
}

// BuildLogin 构建登录报文，账号和密码经过表单编码
func BuildLogin(account, secret string) []byte {
	return Action{Headers: []Header{
		{Key: "Action", Value: constants.ActionLogin},
		{Key: "Username", Value: Encode(account)},
		{Key: "Secret", Value: Encode(secret)},
	}}.Bytes()
}

// BuildSendSms 构建短信发送报文
//
//	Action: smscommand
//	command: gsm send sms <port> <to> "<encoded body>" <id>
func BuildSendSms(gatewayPort int, recipient, body, correlationID string) []byte {
	command := fmt.Sprintf("gsm send sms %d %s \"%s\" %s",
		gatewayPort, recipient, Encode(body), correlationID)

	return Action{Headers: []Header{
		{Key: "Action", Value: constants.ActionSmsCommand},
		{Key: "command", Value: command},
	}}.Bytes()
}

// NewCorrelationID 由时间戳（秒）和随机数直接拼接生成短信标识
func NewCorrelationID(now time.Time, random int64) string {
	return strconv.FormatInt(now.Unix(), 10) + strconv.FormatInt(random, 10)
}

// GenerateCorrelationID 使用当前时间和随机数生成短信标识
func GenerateCorrelationID() string {
	return NewCorrelationID(time.Now(), int64(rand.Int31()))
}

// TrimLine 去掉行首尾的换行和空白字符
func TrimLine(line string) string {
	return strings.Trim(line, " \t\r\n\x00\x0B")
}
