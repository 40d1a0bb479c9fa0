package handler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aehttpd/aehttpd/internal/cachestore"
	"github.com/aehttpd/aehttpd/internal/respond"
)

// fakeContext is a minimal reqctx.Context for exercising handlers
// without a real Client/reactor.
type fakeContext struct {
	method, path, query string
	headers             map[string]string
	ims                 time.Time
	imsOK               bool

	documentRoot, blogDataDir, templateDir string
	cache                                  *cachestore.Cache

	mime    string
	added   map[string]string
	head    respond.Segment
	main    respond.Segment
	foot    respond.Segment
}

func newFakeContext(cache *cachestore.Cache) *fakeContext {
	return &fakeContext{headers: map[string]string{}, added: map[string]string{}, cache: cache}
}

func (f *fakeContext) Method() string     { return f.method }
func (f *fakeContext) Path() string       { return f.path }
func (f *fakeContext) RawQuery() string   { return f.query }
func (f *fakeContext) Header(n string) string { return f.headers[n] }
func (f *fakeContext) IfModifiedSince() (time.Time, bool) { return f.ims, f.imsOK }
func (f *fakeContext) DocumentRoot() string { return f.documentRoot }
func (f *fakeContext) BlogDataDir() string  { return f.blogDataDir }
func (f *fakeContext) TemplateDir() string  { return f.templateDir }
func (f *fakeContext) Cache() *cachestore.Cache { return f.cache }
func (f *fakeContext) Now() time.Time { return time.Now() }
func (f *fakeContext) SetMIME(m string) { f.mime = m }
func (f *fakeContext) AddHeader(k, v string) { f.added[k] = v }
func (f *fakeContext) SetBody(head, main, foot respond.Segment) {
	f.head, f.main, f.foot = head, main, foot
}

func TestStaticServesRootAsIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "index.html"), "hello"))

	c := newFakeContext(cachestore.New())
	c.path = "/"
	c.documentRoot = dir

	status := Static(c)
	assert.Equal(t, 200, status)
	assert.Equal(t, "hello", string(c.main.Bytes()))
	assert.Equal(t, "max-age=3600", c.added["Cache-Control"])
}

func TestStaticMissingFileIs404(t *testing.T) {
	c := newFakeContext(cachestore.New())
	c.path = "/nope.txt"
	c.documentRoot = t.TempDir()

	assert.Equal(t, 404, Static(c))
}

func TestStaticIfModifiedSinceReturns304(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "a.txt"), "x"))

	c := newFakeContext(cachestore.New())
	c.path = "/a.txt"
	c.documentRoot = dir
	c.ims = time.Now().Add(time.Hour)
	c.imsOK = true

	assert.Equal(t, 304, Static(c))
}

func TestBlogSuffixAndQueryRouteEquivalently(t *testing.T) {
	dataDir := t.TempDir()
	tmplDir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dataDir, "7"), `{"heading":"H","content":"C"}`))
	require.NoError(t, writeFile(filepath.Join(tmplDir, "blogs_header.html"), "<head>"))
	require.NoError(t, writeFile(filepath.Join(tmplDir, "blogs_footer.html"), "<foot>"))

	cache := cachestore.New()

	bySuffix := newFakeContext(cache)
	bySuffix.path = "/blogs/7"
	bySuffix.blogDataDir = dataDir
	bySuffix.templateDir = tmplDir
	assert.Equal(t, 200, Blog(bySuffix))

	byQuery := newFakeContext(cache)
	byQuery.path = "/blogs"
	byQuery.query = "7"
	byQuery.blogDataDir = dataDir
	byQuery.templateDir = tmplDir
	assert.Equal(t, 200, Blog(byQuery))

	assert.Equal(t, string(bySuffix.main.Bytes()), string(byQuery.main.Bytes()))
	assert.Contains(t, string(bySuffix.main.Bytes()), "H")
}

func TestBlogNonPositiveIDIs404(t *testing.T) {
	c := newFakeContext(cachestore.New())
	c.path = "/blogs/0"
	assert.Equal(t, 404, Blog(c))
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
