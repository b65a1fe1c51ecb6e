package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bujia-iot/tg-sms/internal/infrastructure/config"
)

func TestConfigureInvalidLevel(t *testing.T) {
	l := logrus.New()
	err := Configure(l, &config.LoggerConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestConfigureFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tg-sms.log")
	l := logrus.New()

	require.NoError(t, Configure(l, &config.LoggerConfig{
		Level:      "debug",
		Format:     "json",
		FilePath:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	}))

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l.WithField("recipient", "+390000").Info("短信发送成功")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recipient":"+390000"`)
	assert.Contains(t, string(data), "短信发送成功")
}

func TestConfigureTextFormat(t *testing.T) {
	l := logrus.New()
	require.NoError(t, Configure(l, &config.LoggerConfig{Level: "warn", Format: "text", EnableConsole: true}))

	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}
