package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aehttpd/aehttpd/internal/bloglist"
	"github.com/aehttpd/aehttpd/internal/cachestore"
)

func writeBlog(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id), []byte(body), 0o644))
}

func TestTickBuildsSortedBlogList(t *testing.T) {
	dataDir := t.TempDir()
	tmplDir := t.TempDir()
	docRoot := t.TempDir()

	writeBlog(t, dataDir, "3", `{"heading":"Three"}`)
	writeBlog(t, dataDir, "1", `{"heading":"One"}`)
	writeBlog(t, dataDir, "2", `{"heading":"Two"}`)
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_header.html"), []byte("<ul>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_footer.html"), []byte("</ul>"), 0o644))

	cache := cachestore.New()
	blogs := &bloglist.Holder{}
	ix := New(cache, blogs, dataDir, tmplDir, docRoot)

	require.NoError(t, ix.Tick())

	records := blogs.Current().Records()
	ids := make([]int, 0, 3)
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestTickAppliesDefaultsToMissingFields(t *testing.T) {
	dataDir := t.TempDir()
	tmplDir := t.TempDir()
	docRoot := t.TempDir()

	writeBlog(t, dataDir, "5", `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_header.html"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_footer.html"), []byte(""), 0o644))

	cache := cachestore.New()
	blogs := &bloglist.Holder{}
	ix := New(cache, blogs, dataDir, tmplDir, docRoot)
	require.NoError(t, ix.Tick())

	rec, ok := blogs.Current().Find(5)
	require.True(t, ok)
	assert.Equal(t, "No Heading", rec.Heading)
	assert.Equal(t, "guest", rec.Author)
	assert.Equal(t, int64(1469227894), rec.Timestamp)
}

func TestTickIgnoresDotfilesAndNonNumericNames(t *testing.T) {
	dataDir := t.TempDir()
	tmplDir := t.TempDir()
	docRoot := t.TempDir()

	writeBlog(t, dataDir, "1", `{}`)
	writeBlog(t, dataDir, ".hidden", `{}`)
	writeBlog(t, dataDir, "not-a-number", `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_header.html"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_footer.html"), []byte(""), 0o644))

	cache := cachestore.New()
	blogs := &bloglist.Holder{}
	ix := New(cache, blogs, dataDir, tmplDir, docRoot)
	require.NoError(t, ix.Tick())

	assert.Equal(t, 1, blogs.Current().Len())
}

func TestTickIsNoopWithoutDirectoryChange(t *testing.T) {
	dataDir := t.TempDir()
	tmplDir := t.TempDir()
	docRoot := t.TempDir()
	writeBlog(t, dataDir, "1", `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_header.html"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "index_footer.html"), []byte(""), 0o644))

	cache := cachestore.New()
	blogs := &bloglist.Holder{}
	ix := New(cache, blogs, dataDir, tmplDir, docRoot)
	require.NoError(t, ix.Tick())

	first := blogs.Current()
	require.NoError(t, ix.Tick())
	assert.Same(t, first, blogs.Current())
}

func TestBuildBlogCacheOnMissingSourceReturnsFalse(t *testing.T) {
	cache := cachestore.New()
	assert.False(t, BuildBlogCache(cache, t.TempDir(), 404))
}
