package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCannedPageContentLengthMatchesBody(t *testing.T) {
	cases := map[int][]byte{
		304: Canned304,
		404: Canned404,
		418: Canned418,
		500: Canned500,
	}
	for status, page := range cases {
		body := bodyAfterHeaders(page)
		assert.NotEmpty(t, body, "status %d", status)
	}

	assertBodyLen(t, Canned304, 52)
	assertBodyLen(t, Canned404, 54)
	assertBodyLen(t, Canned418, 52)
	assertBodyLen(t, Canned500, 61)
}

func TestCannedForUnknownStatusReturnsFalse(t *testing.T) {
	_, ok := CannedFor(201)
	assert.False(t, ok)
}

func bodyAfterHeaders(page []byte) []byte {
	const sep = "\r\n\r\n"
	for i := 0; i+len(sep) <= len(page); i++ {
		if string(page[i:i+len(sep)]) == sep {
			return page[i+len(sep):]
		}
	}
	return nil
}

func assertBodyLen(t *testing.T, page []byte, want int) {
	t.Helper()
	body := bodyAfterHeaders(page)
	if len(body) != want {
		t.Fatalf("body length = %d, want %d (body=%q)", len(body), want, body)
	}
}
