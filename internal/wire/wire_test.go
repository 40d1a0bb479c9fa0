package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsPathAndQuery(t *testing.T) {
	raw := "GET /blogs?7 HTTP/1.1\r\nHost: example.com\r\n\r\n"
	req, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/blogs", req.Path)
	assert.Equal(t, "7", req.RawQuery)
}

func TestParseExtractsIfModifiedSince(t *testing.T) {
	raw := "GET /hello.txt HTTP/1.1\r\nIf-Modified-Since: Mon, 02 Jan 2006 15:04:05 GMT\r\n\r\n"
	req, err := Parse([]byte(raw))
	require.NoError(t, err)
	_, ok := req.IfModifiedSince()
	assert.True(t, ok)
}

func TestParseRejectsTooManyHeaders(t *testing.T) {
	var b strings.Builder
	b.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < MaxHeaderLines+1; i++ {
		b.WriteString("X-Pad: 1\r\n")
	}
	b.WriteString("\r\n")

	_, err := Parse([]byte(b.String()))
	assert.ErrorIs(t, err, ErrTooManyHeaders)
}

func TestParseMalformedRequestLineErrors(t *testing.T) {
	_, err := Parse([]byte("garbage\r\n\r\n"))
	assert.Error(t, err)
}
