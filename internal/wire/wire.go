// Package wire turns the raw bytes of one socket read into a parsed
// request. Parsing itself is delegated to net/http.ReadRequest; this
// package only enforces the header-count cap and extracts the handful
// of fields the router and handlers need.
package wire

import (
	"bufio"
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// MaxHeaderLines caps the number of header rows a request may carry.
// A request exceeding this is a parse error, not silently truncated.
const MaxHeaderLines = 128

// ErrTooManyHeaders is returned when a request carries more than
// MaxHeaderLines header rows.
var ErrTooManyHeaders = errors.New("wire: too many header lines")

// Request is the parsed subset of an HTTP/1.1 request the pipeline
// acts on.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
}

// HeaderValue returns the first value of name, or "" if absent.
func (r *Request) HeaderValue(name string) string {
	return r.Header.Get(name)
}

// IfModifiedSince parses the If-Modified-Since header as RFC 1123 with
// a zone name (such as GMT, what real HTTP clients send), falling back
// to RFC 1123 with a numeric timezone.
func (r *Request) IfModifiedSince() (time.Time, bool) {
	v := r.Header.Get("If-Modified-Since")
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC1123, v)
	if err != nil {
		t, err = time.Parse("Mon, 02 Jan 2006 15:04:05 -0700", v)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}

// Parse parses the bytes of exactly one socket read as an HTTP
// request. It never blocks on further I/O: the bufio.Reader it builds
// is sized to buf's length, so net/http.ReadRequest can only succeed
// or fail against what's already in hand — the one-read-delivers-the-
// full-request simplification the reactor's read path relies on.
func Parse(buf []byte) (*Request, error) {
	br := bufio.NewReaderSize(bytes.NewReader(buf), len(buf))
	raw, err := http.ReadRequest(br)
	if err != nil {
		return nil, err
	}

	n := 0
	for _, vs := range raw.Header {
		n += len(vs)
	}
	if n > MaxHeaderLines {
		return nil, ErrTooManyHeaders
	}

	u, err := url.ParseRequestURI(raw.RequestURI)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:   raw.Method,
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Header:   raw.Header,
	}, nil
}
