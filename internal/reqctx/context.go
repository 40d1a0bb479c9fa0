// Package reqctx defines the capability a route Handler is given: the
// ability to read the parsed request and populate a response. It is
// deliberately a narrow interface, not the concrete Client type, so
// router and handler packages never need to import the client package
// that implements it.
package reqctx

import (
	"time"

	"github.com/aehttpd/aehttpd/internal/cachestore"
	"github.com/aehttpd/aehttpd/internal/respond"
)

// Handler populates a response for a request and returns the status
// code it produced.
type Handler func(Context) int

// Context is what a Handler needs: the parsed request half and
// mutators for the response half of a connection.
type Context interface {
	Method() string
	Path() string
	RawQuery() string
	Header(name string) string

	// IfModifiedSince returns the parsed If-Modified-Since request
	// header, if present and parseable as RFC1123 with a zone name or a
	// numeric zone.
	IfModifiedSince() (time.Time, bool)

	DocumentRoot() string
	BlogDataDir() string
	TemplateDir() string

	// Cache is the process-wide content cache; handlers call
	// LookupOrLoad directly on it.
	Cache() *cachestore.Cache

	Now() time.Time

	SetMIME(mime string)
	AddHeader(key, value string)
	SetBody(head, main, foot respond.Segment)
}
