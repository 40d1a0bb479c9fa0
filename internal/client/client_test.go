package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aehttpd/aehttpd/internal/router"
	"github.com/aehttpd/aehttpd/internal/wire"
)

func TestIfModifiedSinceHiddenWithoutParseFlag(t *testing.T) {
	c := New(-1, nil, Env{})
	c.req = &wire.Request{Header: map[string][]string{
		"If-Modified-Since": {"Mon, 02 Jan 2006 15:04:05 GMT"},
	}}

	_, ok := c.IfModifiedSince()
	assert.False(t, ok, "route without ParseIfModifiedSince must not see the header")

	c.SetParseFlags(router.ParseIfModifiedSince)
	ts, ok := c.IfModifiedSince()
	assert.True(t, ok)
	assert.Equal(t, 2006, ts.Year())
}

func TestConnIDIsStablePerClient(t *testing.T) {
	a := New(-1, nil, Env{})
	b := New(-1, nil, Env{})
	assert.NotEmpty(t, a.ConnID())
	assert.NotEqual(t, a.ConnID(), b.ConnID())
	assert.Equal(t, a.ConnID(), a.ConnID())
}
