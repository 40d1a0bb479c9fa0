// Package client holds per-connection state: the request half (an
// 8 KiB read buffer and the parsed request) and the response half (an
// assembling Response and its write cursor). A Client is created on
// accept and destroyed on first error, EOF, or once its response has
// fully drained.
package client

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/aehttpd/aehttpd/internal/cachestore"
	"github.com/aehttpd/aehttpd/internal/reactor"
	"github.com/aehttpd/aehttpd/internal/respond"
	"github.com/aehttpd/aehttpd/internal/router"
	"github.com/aehttpd/aehttpd/internal/wire"
)

// RequestBufferCap is the default size of one socket read, used when
// Env.RequestBufferSize is left at zero. The pipeline assumes a single
// read delivers the full request; anything larger is a parse failure,
// not a retained partial buffer.
const RequestBufferCap = 8192

// Env is the set of server-wide, read-only values every Client needs
// to answer reqctx.Context without holding a reference to *server.Server
// (which would create an import cycle back through handler/router).
type Env struct {
	Cache             *cachestore.Cache
	DocumentRoot      string
	BlogDataDir       string
	TemplateDir       string
	RequestBufferSize int
}

// Client is one accepted connection, pinned to the reactor that owns
// its fd for its whole life.
type Client struct {
	fd      int
	connID  string
	reactor *reactor.Reactor
	env     Env
	flags   router.ParseFlags

	readBuf []byte

	req  *wire.Request
	resp respond.Response

	writeVec [][]byte
	writeIdx int
	writeOff int
}

// New creates a Client for an already-accepted, already-configured
// (non-blocking, TCP_NODELAY) fd.
func New(fd int, r *reactor.Reactor, env Env) *Client {
	bufSize := env.RequestBufferSize
	if bufSize <= 0 {
		bufSize = RequestBufferCap
	}
	return &Client{
		fd:      fd,
		connID:  uuid.NewString(),
		reactor: r,
		env:     env,
		readBuf: make([]byte, bufSize),
	}
}

func (c *Client) FD() int { return c.fd }

// ConnID is a per-connection correlation id, stable for the life of
// the Client, used to tie together log lines from one connection.
func (c *Client) ConnID() string { return c.connID }

// ReadOnce issues one read into the client's fixed-size buffer. It
// returns the bytes read, or ok=false on EAGAIN (caller re-arms),
// or an error on any other failure including EOF (caller destroys
// the client).
func (c *Client) ReadOnce() (n int, ok bool, err error) {
	n, err = unix.Read(c.fd, c.readBuf[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, unix.ECONNRESET // peer closed; treat as destroy-worthy
	}
	return n, true, nil
}

// SetParseFlags records which optional parsing policies the matched
// route asked for. Must be called before the handler runs; it gates
// what IfModifiedSince reports back.
func (c *Client) SetParseFlags(f router.ParseFlags) { c.flags = f }

// Parse parses the bytes of the most recent ReadOnce call.
func (c *Client) Parse(n int) error {
	req, err := wire.Parse(c.readBuf[:n])
	if err != nil {
		return err
	}
	c.req = req
	return nil
}

// PrepareWrite assembles the response and resets the write cursor to
// its start. Must be called exactly once after the handler runs.
func (c *Client) PrepareWrite() error {
	vec, err := c.resp.Assemble()
	if err != nil {
		return err
	}
	c.writeVec = vec
	c.writeIdx = 0
	c.writeOff = 0
	return nil
}

// WriteOnce writes from the current cursor with one plain write(2) per
// vector element (it does not use writev), advancing the cursor by
// however many bytes the kernel accepted. It stops at EAGAIN/EINTR or
// at a partial write, leaving the rest for the next writable wakeup.
// Returns done=true once the whole vector has drained.
func (c *Client) WriteOnce() (done bool, err error) {
	for c.writeIdx < len(c.writeVec) {
		buf := c.writeVec[c.writeIdx][c.writeOff:]
		if len(buf) == 0 {
			c.writeIdx++
			c.writeOff = 0
			continue
		}

		n, werr := unix.Write(c.fd, buf)
		if werr != nil {
			if werr == unix.EAGAIN || werr == unix.EWOULDBLOCK || werr == unix.EINTR {
				return false, nil
			}
			return false, werr
		}
		c.writeOff += n
		if c.writeOff >= len(c.writeVec[c.writeIdx]) {
			c.writeIdx++
			c.writeOff = 0
		} else {
			// Partial write on a non-blocking socket: stop here and let
			// the reactor re-arm write-readiness rather than spin.
			return false, nil
		}
	}
	return true, nil
}

// WriteRaw makes a canned page the whole write vector, bypassing
// response assembly; WriteOnce then sends it.
func (c *Client) WriteRaw(b []byte) {
	c.writeVec = [][]byte{b}
	c.writeIdx = 0
	c.writeOff = 0
}

// Destroy unregisters the client's fd from its reactor and closes it.
// It never touches cache-borrowed body segments — those are owned by
// the cache, not the Client.
func (c *Client) Destroy() {
	c.reactor.Remove(c.fd)
	_ = unix.Close(c.fd)
}

// Response exposes the mutable Response for the write path to read.
func (c *Client) Response() *respond.Response { return &c.resp }

// --- reqctx.Context ---

func (c *Client) Method() string   { return c.req.Method }
func (c *Client) Path() string     { return c.req.Path }
func (c *Client) RawQuery() string { return c.req.RawQuery }
func (c *Client) Header(name string) string {
	return c.req.HeaderValue(name)
}

// IfModifiedSince reports the parsed request header, but only for
// routes that asked for it via router.ParseIfModifiedSince; other
// routes see it as always absent.
func (c *Client) IfModifiedSince() (time.Time, bool) {
	if !c.flags.Has(router.ParseIfModifiedSince) {
		return time.Time{}, false
	}
	return c.req.IfModifiedSince()
}

func (c *Client) DocumentRoot() string     { return c.env.DocumentRoot }
func (c *Client) BlogDataDir() string      { return c.env.BlogDataDir }
func (c *Client) TemplateDir() string      { return c.env.TemplateDir }
func (c *Client) Cache() *cachestore.Cache { return c.env.Cache }

func (c *Client) Now() time.Time { return time.Now() }

func (c *Client) SetMIME(mime string)         { c.resp.MIME = mime }
func (c *Client) AddHeader(key, value string) { c.resp.AddHeader(key, value) }
func (c *Client) SetBody(head, main, foot respond.Segment) {
	c.resp.Head, c.resp.Main, c.resp.Foot = head, main, foot
}
