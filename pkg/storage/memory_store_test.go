package storage

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
	"github.com/bujia-iot/tg-sms/pkg/smsgateway"
)

func sampleRecord(recipient string) *SendRecord {
	r := NewSendRecord("192.168.1.100", recipient, 1)
	r.CorrelationID = "1700000000777"
	r.Success = true
	r.Response = "Response: Follows\r\n"
	r.Journal = []smsgateway.JournalEntry{{Time: time.Now(), Level: logrus.InfoLevel, Message: "Sms message sent successfully"}}
	r.FinishedAt = r.StartedAt.Add(150 * time.Millisecond)
	return r
}

func TestNewSendRecord(t *testing.T) {
	a := NewSendRecord("h", "100", 1)
	b := NewSendRecord("h", "100", 1)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.Zero(t, a.Duration())
	assert.Equal(t, 150*time.Millisecond, sampleRecord("1").Duration())
}

func TestMemoryRecordStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore(2)

	first := sampleRecord("100")
	second := sampleRecord("200")
	third := sampleRecord("300")
	for _, r := range []*SendRecord{first, second, third} {
		require.NoError(t, store.Save(ctx, r))
	}

	// 超出容量时最早的记录被淘汰
	_, err := store.Get(ctx, first.ID)
	assert.True(t, apperrors.IsErrCode(err, apperrors.ErrRecordNotFound))

	got, err := store.Get(ctx, third.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", got.Recipient)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, third.ID, recent[0].ID)
	assert.Equal(t, second.ID, recent[1].ID)

	recent, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
