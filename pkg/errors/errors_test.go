package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	err := New(ErrNoRecipient, "recipient number is empty")
	assert.Equal(t, "[1008] recipient number is empty", err.Error())

	wrapped := Wrap(ErrRead, "read banner line 1", io.EOF)
	assert.Equal(t, "[1005] read banner line 1: EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, io.EOF)
}

func TestIsErrCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"nil错误", nil, ErrWrite, false},
		{"匹配错误码", New(ErrWrite, "x"), ErrWrite, true},
		{"不匹配错误码", New(ErrWrite, "x"), ErrRead, false},
		{"被fmt包装", fmt.Errorf("outer: %w", New(ErrConnection, "dial")), ErrConnection, true},
		{"普通错误", io.EOF, ErrRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsErrCode(tt.err, tt.code))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrEmptyResponse, CodeOf(New(ErrEmptyResponse, "empty")))
	assert.Equal(t, ErrUnknown, CodeOf(io.EOF))
	assert.Equal(t, "protocol_mismatch", ErrProtocolMismatch.String())
	assert.Equal(t, "code_42", ErrorCode(42).String())
}

func TestErrorCodesNamed(t *testing.T) {
	for code := ErrUnknown; code <= ErrRecordNotFound; code++ {
		assert.NotContains(t, code.String(), "code_", "code %d has no name", int(code))
	}
	assert.Len(t, codeNames, int(ErrRecordNotFound-ErrUnknown)+1)
}
