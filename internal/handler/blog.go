package handler

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aehttpd/aehttpd/internal/indexer"
	"github.com/aehttpd/aehttpd/internal/reqctx"
	"github.com/aehttpd/aehttpd/internal/respond"
)

// Blog serves a single post, addressed either as /blogs/<id> (suffix)
// or /blogs?<id> (bare query, no key=value form). On a cache miss it
// builds the post's cached HTML on demand before retrying the lookup.
func Blog(c reqctx.Context) int {
	id, ok := blogID(c)
	if !ok || id <= 0 {
		return 404
	}

	htmlPath := filepath.Join(c.BlogDataDir(), strconv.Itoa(id)+".html")
	body, ok := c.Cache().LookupOrLoad(htmlPath)
	if !ok {
		if !indexer.BuildBlogCache(c.Cache(), c.BlogDataDir(), id) {
			return 404
		}
		body, ok = c.Cache().LookupOrLoad(htmlPath)
		if !ok {
			return 404
		}
	}

	header, ok := c.Cache().LookupOrLoad(filepath.Join(c.TemplateDir(), "blogs_header.html"))
	if !ok {
		return 500
	}
	footer, ok := c.Cache().LookupOrLoad(filepath.Join(c.TemplateDir(), "blogs_footer.html"))
	if !ok {
		return 500
	}

	c.SetMIME("text/html")
	c.SetBody(respond.Borrowed(header.Data), respond.Borrowed(body.Data), respond.Borrowed(footer.Data))
	return 200
}

// blogID extracts the numeric id from either /blogs/<id> (a suffix
// after the installed prefix) or /blogs?<id> (the raw query string,
// with no key=value pairs expected).
func blogID(c reqctx.Context) (int, bool) {
	if suffix := strings.TrimPrefix(c.Path(), "/blogs/"); suffix != c.Path() && suffix != "" {
		id, err := strconv.Atoi(suffix)
		return id, err == nil
	}
	if q := c.RawQuery(); q != "" {
		id, err := strconv.Atoi(q)
		return id, err == nil
	}
	return 0, false
}
