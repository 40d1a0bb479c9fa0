package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aehttpd/aehttpd/internal/reqctx"
)

func handlerNamed(name string) (reqctx.Handler, *string) {
	var called string
	return func(reqctx.Context) int {
		called = name
		return 200
	}, &called
}

func TestLongestPrefixMatchWins(t *testing.T) {
	r := New()

	hBlogs, calledBlogs := handlerNamed("blogs")
	hRoot, calledRoot := handlerNamed("root")

	r.Insert("/blogs", &Entry{Prefix: "/blogs", Handler: hBlogs})
	r.Insert("/", &Entry{Prefix: "/", Handler: hRoot})

	e := r.LongestPrefixMatch("/blogs/7")
	assert.NotNil(t, e)
	e.Handler(nil)
	assert.Equal(t, "blogs", *calledBlogs)
	assert.Empty(t, *calledRoot)

	e = r.LongestPrefixMatch("/hello.txt")
	assert.NotNil(t, e)
	e.Handler(nil)
	assert.Equal(t, "root", *calledRoot)
}

func TestNoMatchReturnsNil(t *testing.T) {
	r := New()
	r.Insert("/blogs", &Entry{Prefix: "/blogs"})

	assert.Nil(t, r.LongestPrefixMatch("/nope"))
}

func TestDeepestPayloadNodeWins(t *testing.T) {
	r := New()
	short, _ := handlerNamed("short")
	long, _ := handlerNamed("long")

	r.Insert("/a", &Entry{Prefix: "/a", Handler: short})
	r.Insert("/a/b/c", &Entry{Prefix: "/a/b/c", Handler: long})

	e := r.LongestPrefixMatch("/a/b/c/d")
	require := assert.New(t)
	require.NotNil(e)
	require.Equal("/a/b/c", e.Prefix)

	e = r.LongestPrefixMatch("/a/b")
	require.Equal("/a", e.Prefix)
}

func TestParseFlags(t *testing.T) {
	f := ParseQuery | ParseIfModifiedSince
	assert.True(t, f.Has(ParseQuery))
	assert.True(t, f.Has(ParseIfModifiedSince))
	assert.False(t, f.Has(ParseRange))
}
