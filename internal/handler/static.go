// Package handler holds the two concrete route handlers: static file
// serving and the blog post view.
package handler

import (
	"path/filepath"
	"strings"

	"github.com/aehttpd/aehttpd/internal/mimetype"
	"github.com/aehttpd/aehttpd/internal/reqctx"
	"github.com/aehttpd/aehttpd/internal/respond"
)

const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Static serves a file under the document root. "/" maps to
// index.html; any other path has its leading slash stripped and is
// joined onto the document root.
func Static(c reqctx.Context) int {
	rel := c.Path()
	if rel == "/" {
		rel = "index.html"
	} else {
		rel = strings.TrimPrefix(rel, "/")
	}

	path := filepath.Join(c.DocumentRoot(), rel)

	blob, ok := c.Cache().LookupOrLoad(path)
	if !ok {
		return 404
	}

	if ims, present := c.IfModifiedSince(); present && !blob.Mtime.After(ims) {
		return 304
	}

	c.SetMIME(mimetype.Lookup(path))
	c.AddHeader("Last-Modified", blob.Mtime.UTC().Format(dateFormat))
	c.AddHeader("Cache-Control", "max-age=3600")
	c.AddHeader("Date", c.Now().UTC().Format(dateFormat))
	c.SetBody(respond.Segment{}, respond.Borrowed(blob.Data), respond.Segment{})
	return 200
}
