package transport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransferMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		transfer Transfer
		want     string
	}{
		{name: "default", transfer: Transfer{}, want: "GET"},
		{name: "post", transfer: Transfer{Marker: MarkerPost}, want: "POST"},
		{name: "upload", transfer: Transfer{Upload: true}, want: "PUT"},
		{name: "custom", transfer: Transfer{Marker: MarkerCustom, CustomMethod: "PATCH"}, want: "PATCH"},
		{name: "custom upload", transfer: Transfer{Marker: MarkerCustom, CustomMethod: "POST", Upload: true}, want: "POST"},
		{name: "custom without verb", transfer: Transfer{Marker: MarkerCustom}, want: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.transfer.Method())
		})
	}
}

func TestSourceLen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(3), FixedSource{Data: []byte("abc")}.Len())
	assert.Equal(t, UnknownSize, StreamSource{Reader: bytes.NewReader(nil), Length: UnknownSize}.Len())
	assert.Equal(t, int64(10), PullSource{Length: 10}.Len())
}

func TestTransferOptions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	transfer := &Transfer{
		Options: map[Option]any{
			OptFollowRedirects:  true,
			OptMaxRedirects:     3,
			OptTimeout:          5,
			OptConnectTimeout:   1500 * time.Millisecond,
			OptProxyURL:         "http://proxy:3128",
			OptUploadSpeedLimit: int64(1024),
			OptUploadProgress:   &buf,
			OptBinaryTransfer:   "yes",
		},
	}

	assert.True(t, transfer.BoolOption(OptFollowRedirects, false))
	assert.False(t, transfer.BoolOption(OptBinaryTransfer, false))
	assert.True(t, transfer.BoolOption(OptInsecureSkipVerify, true))
	assert.Equal(t, int64(3), transfer.IntOption(OptMaxRedirects, DefaultMaxRedirects))
	assert.Equal(t, int64(1024), transfer.IntOption(OptUploadSpeedLimit, 0))
	assert.Equal(t, int64(0), transfer.IntOption(OptDownloadSpeedLimit, 0))
	assert.Equal(t, 5*time.Second, transfer.DurationOption(OptTimeout))
	assert.Equal(t, 1500*time.Millisecond, transfer.DurationOption(OptConnectTimeout))
	assert.Equal(t, "http://proxy:3128", transfer.StringOption(OptProxyURL))
	assert.Empty(t, transfer.StringOption(OptUserAgent))
	assert.Same(t, &buf, transfer.WriterOption(OptUploadProgress))
	assert.Nil(t, transfer.WriterOption(OptDownloadProgress))
}

func TestErrorCodeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "couldn't resolve host", CodeCouldNotResolveHost.String())
	assert.Equal(t, "error code 999", ErrorCode(999).String())
	assert.False(t, (&Result{}).Failed())
	assert.True(t, (&Result{Code: CodeCouldNotConnect}).Failed())
}
