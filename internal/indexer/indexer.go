// Package indexer is the periodic job that rescans the blog data
// directory and, when it has changed, rebuilds the blog list, each
// blog's cached HTML page, and the combined index.html.
package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	json "github.com/goccy/go-json"

	"github.com/aehttpd/aehttpd/contrib/log"
	"github.com/aehttpd/aehttpd/internal/bloglist"
	"github.com/aehttpd/aehttpd/internal/cachestore"
)

// Indexer owns the directory-mtime bookkeeping and the cache/bloglist
// it rebuilds into.
type Indexer struct {
	dataDir      string
	templateDir  string
	documentRoot string

	cache *cachestore.Cache
	blogs *bloglist.Holder

	lastMtime time.Time
}

func New(cache *cachestore.Cache, blogs *bloglist.Holder, dataDir, templateDir, documentRoot string) *Indexer {
	return &Indexer{
		dataDir:      dataDir,
		templateDir:  templateDir,
		documentRoot: documentRoot,
		cache:        cache,
		blogs:        blogs,
	}
}

// Tick rescans the blog directory once. It is driven by the main
// reactor's periodic timerfd tick and is idempotent — the mtime
// comparison below means an extra call between real changes is a
// no-op.
func (ix *Indexer) Tick() error {
	info, err := os.Stat(ix.dataDir)
	if err != nil {
		// Leave the previous list and cache entries in place and retry
		// on the next tick.
		log.Warnf("indexer: stat %s: %s", ix.dataDir, err)
		return nil
	}
	if !info.ModTime().After(ix.lastMtime) {
		return nil
	}
	mtime := info.ModTime()

	ids, err := ix.listBlogIDs()
	if err != nil {
		log.Warnf("indexer: opendir %s: %s", ix.dataDir, err)
		return nil
	}
	sort.Ints(ids)

	fresh := make(map[string]*cachestore.Blob, len(ids))
	records := make([]bloglist.Record, 0, len(ids))

	for _, id := range ids {
		rec, err := ix.loadRecord(id)
		if err != nil {
			log.Warnf("indexer: load blog %d: %s", id, err)
			continue
		}
		records = append(records, rec)

		html := fmt.Sprintf(tmplBlog, rec.ID, rec.Heading, rec.SubHeading, rec.AuthorLink, rec.Author, rec.Content)
		fresh[ix.blogHTMLPath(id)] = &cachestore.Blob{Data: []byte(html), Mtime: mtime}
	}

	// One write-lock acquisition swaps the whole map in; stale entries
	// from the previous scan are dropped rather than evicted one by one.
	ix.cache.Replace(fresh)

	old := ix.blogs.Swap(bloglist.New(records))
	_ = old // freed outside the critical section simply by going out of scope

	if err := ix.buildIndexPage(records, mtime); err != nil {
		log.Warnf("indexer: build index page: %s", err)
	}

	ix.lastMtime = mtime
	return nil
}

func (ix *Indexer) listBlogIDs() ([]int, error) {
	entries, err := os.ReadDir(ix.dataDir)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		id, err := strconv.Atoi(name)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (ix *Indexer) loadRecord(id int) (bloglist.Record, error) {
	data, err := os.ReadFile(filepath.Join(ix.dataDir, strconv.Itoa(id)))
	if err != nil {
		return bloglist.Record{}, err
	}

	var partial struct {
		Heading    string `json:"heading"`
		SubHeading string `json:"sub_heading"`
		Author     string `json:"author"`
		AuthorLink string `json:"author_link"`
		Timestamp  int64  `json:"timestamp"`
		Content    string `json:"content"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return bloglist.Record{}, err
	}

	rec := bloglist.Record{
		ID:         id,
		Heading:    partial.Heading,
		SubHeading: partial.SubHeading,
		Author:     partial.Author,
		AuthorLink: partial.AuthorLink,
		Timestamp:  partial.Timestamp,
		Content:    partial.Content,
	}
	// Fill zero-value fields with the blog record defaults.
	if err := mergo.Merge(&rec, bloglist.Defaults); err != nil {
		return bloglist.Record{}, err
	}
	rec.ID = id
	return rec, nil
}

func (ix *Indexer) blogHTMLPath(id int) string {
	return filepath.Join(ix.dataDir, strconv.Itoa(id)+".html")
}

func (ix *Indexer) buildIndexPage(records []bloglist.Record, mtime time.Time) error {
	header, err := os.ReadFile(filepath.Join(ix.templateDir, "index_header.html"))
	if err != nil {
		return err
	}
	footer, err := os.ReadFile(filepath.Join(ix.templateDir, "index_footer.html"))
	if err != nil {
		return err
	}

	var b strings.Builder
	b.Write(header)
	for _, rec := range records {
		fmt.Fprintf(&b, tmplBlogInfo, rec.ID, rec.Heading, rec.SubHeading, rec.AuthorLink, rec.Author, rec.Timestamp)
	}
	b.Write(footer)

	ix.cache.Put(filepath.Join(ix.documentRoot, "index.html"), &cachestore.Blob{
		Data:  []byte(b.String()),
		Mtime: mtime,
	})
	return nil
}

// BuildBlogCache implements the blog handler's on-miss path: load the
// JSON source for id, format it with tmplBlog, and insert the result
// into cache. Returns false if the source file doesn't exist or fails
// to parse.
func BuildBlogCache(cache *cachestore.Cache, dataDir string, id int) bool {
	data, err := os.ReadFile(filepath.Join(dataDir, strconv.Itoa(id)))
	if err != nil {
		return false
	}

	var partial struct {
		Heading    string `json:"heading"`
		SubHeading string `json:"sub_heading"`
		Author     string `json:"author"`
		AuthorLink string `json:"author_link"`
		Timestamp  int64  `json:"timestamp"`
		Content    string `json:"content"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return false
	}

	rec := bloglist.Record{
		ID:         id,
		Heading:    partial.Heading,
		SubHeading: partial.SubHeading,
		Author:     partial.Author,
		AuthorLink: partial.AuthorLink,
		Timestamp:  partial.Timestamp,
		Content:    partial.Content,
	}
	if err := mergo.Merge(&rec, bloglist.Defaults); err != nil {
		return false
	}
	rec.ID = id

	html := fmt.Sprintf(tmplBlog, rec.ID, rec.Heading, rec.SubHeading, rec.AuthorLink, rec.Author, rec.Content)
	cache.Put(filepath.Join(dataDir, strconv.Itoa(id)+".html"), &cachestore.Blob{
		Data:  []byte(html),
		Mtime: time.Now(),
	})
	return true
}
