package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aehttpd/aehttpd/conf"
	"github.com/aehttpd/aehttpd/internal/handler"
	"github.com/aehttpd/aehttpd/internal/router"
)

func startTestServer(t *testing.T) (baseURL string, stop func()) {
	t.Helper()

	docRoot := t.TempDir()
	blogDir := t.TempDir()
	tmplDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(docRoot, "hello.txt"), []byte("hi\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "blogs_header.html"), []byte("<header>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "blogs_footer.html"), []byte("</footer>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(blogDir, "7"), []byte(`{"heading":"H","content":"C"}`), 0o644))

	rtr := router.New()
	rtr.Insert("/blogs", &router.Entry{Prefix: "/blogs", Handler: handler.Blog, Flags: router.ParseQuery})
	rtr.Insert("/", &router.Entry{Prefix: "/", Handler: handler.Static, Flags: router.ParseIfModifiedSince})

	cfg := &conf.Server{
		Address:              "127.0.0.1",
		Port:                 0,
		Workers:              2,
		DocumentRoot:         docRoot,
		BlogDataDir:          blogDir,
		TemplateDir:          tmplDir,
		HousekeepingInterval: time.Second,
		MaxAcceptPerWakeup:   64,
		RequestBufferSize:    8192,
	}
	idxCfg := &conf.Indexer{Interval: time.Hour}

	srv, err := New(cfg, idxCfg, rtr, nil)
	require.NoError(t, err)

	addr, err := srv.Addr()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	waitForHealthy(t, addr)

	return "http://" + addr, func() {
		srv.Stop()
		<-done
	}
}

func waitForHealthy(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/hello.txt")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not become reachable in time")
}

func TestStaticFileServedWithCacheHeaders(t *testing.T) {
	base, stop := startTestServer(t)
	defer stop()

	resp, err := http.Get(base + "/hello.txt")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "hi\n", string(body))
	assert.Equal(t, "max-age=3600", resp.Header.Get("Cache-Control"))
	assert.NotEmpty(t, resp.Header.Get("Last-Modified"))
}

func TestIfModifiedSinceReturns304(t *testing.T) {
	base, stop := startTestServer(t)
	defer stop()

	req, err := http.NewRequest(http.MethodGet, base+"/hello.txt", nil)
	require.NoError(t, err)
	req.Header.Set("If-Modified-Since", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 304, resp.StatusCode)
}

func TestMissingStaticFileIs404(t *testing.T) {
	base, stop := startTestServer(t)
	defer stop()

	resp, err := http.Get(base + "/does-not-exist.txt")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestBlogBySuffixAndByQueryAgree(t *testing.T) {
	base, stop := startTestServer(t)
	defer stop()

	bySuffix, err := http.Get(base + "/blogs/7")
	require.NoError(t, err)
	defer bySuffix.Body.Close()
	suffixBody, _ := io.ReadAll(bySuffix.Body)

	byQuery, err := http.Get(fmt.Sprintf("%s/blogs?7", base))
	require.NoError(t, err)
	defer byQuery.Body.Close()
	queryBody, _ := io.ReadAll(byQuery.Body)

	assert.Equal(t, 200, bySuffix.StatusCode)
	assert.Equal(t, 200, byQuery.StatusCode)
	assert.Equal(t, string(suffixBody), string(queryBody))
	assert.Contains(t, string(suffixBody), "H")
}
