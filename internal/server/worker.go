package server

import (
	"context"
	"sync"

	"github.com/aehttpd/aehttpd/contrib/log"
	"github.com/aehttpd/aehttpd/internal/client"
	"github.com/aehttpd/aehttpd/internal/reactor"
	"github.com/aehttpd/aehttpd/internal/reqctx"
	"github.com/aehttpd/aehttpd/internal/respond"
	"github.com/aehttpd/aehttpd/internal/router"
)

// Worker owns one reactor and every Client pinned to it. A connection
// never moves between workers once accepted.
type Worker struct {
	id      int
	reactor *reactor.Reactor
	router  *router.Router
	env     client.Env

	// clientsMu guards clients: Adopt runs on the main reactor's accept
	// goroutine (server.go's acceptPass), while destroy/Close run on
	// this worker's own Run goroutine. Both sides mutate the map.
	clientsMu sync.Mutex
	clients   map[int]*client.Client
}

func newWorker(id int, rtr *router.Router, env client.Env) (*Worker, error) {
	rx, err := reactor.New()
	if err != nil {
		return nil, err
	}
	return &Worker{
		id:      id,
		reactor: rx,
		router:  rtr,
		env:     env,
		clients: make(map[int]*client.Client),
	}, nil
}

// Adopt registers fd (already non-blocking, TCP_NODELAY) as a new
// Client owned by this worker and arms it for read-readiness.
func (w *Worker) Adopt(fd int) {
	c := client.New(fd, w.reactor, w.env)

	w.clientsMu.Lock()
	w.clients[fd] = c
	w.clientsMu.Unlock()

	if err := w.reactor.AddRead(fd, func(fd int, readable, writable bool) {
		w.onReadable(c)
	}); err != nil {
		log.Context(w.connCtx(c)).Warnf("register fd=%d: %s", fd, err)
		w.destroy(c)
		return
	}

	// Adopt runs on the accept goroutine, not this worker's Run
	// goroutine, so the epoll_wait it may currently be blocked in
	// needs an explicit nudge to pick up the new fd right away.
	w.reactor.Wake()
}

func (w *Worker) onReadable(c *client.Client) {
	n, ok, err := c.ReadOnce()
	if err != nil {
		log.Context(w.connCtx(c)).Debugf("read: %s", err)
		w.destroy(c)
		return
	}
	if !ok {
		return // EAGAIN: stay armed for read
	}

	if err := c.Parse(n); err != nil {
		log.Context(w.connCtx(c)).Debugf("parse: %s", err)
		w.destroy(c)
		return
	}

	entry := w.router.LongestPrefixMatch(c.Path())
	if entry == nil {
		// A route miss closes the connection without a response in the
		// system this was modeled on; here it is surfaced as a 404.
		c.WriteRaw(notFoundPage())
		w.armWrite(c)
		return
	}

	c.SetParseFlags(entry.Flags)
	status := entry.Handler(reqctx.Context(c))
	c.Response().Status = status

	if page, ok := respond.CannedFor(status); ok {
		c.WriteRaw(page)
		w.armWrite(c)
		return
	}

	if err := c.PrepareWrite(); err != nil {
		c.WriteRaw(mustCanned500())
		w.armWrite(c)
		return
	}
	w.armWrite(c)
}

func (w *Worker) armWrite(c *client.Client) {
	w.reactor.SetCallback(c.FD(), func(fd int, readable, writable bool) {
		w.onWritable(c)
	})
	if err := w.reactor.ModWrite(c.FD()); err != nil {
		w.destroy(c)
	}
}

func (w *Worker) onWritable(c *client.Client) {
	done, err := c.WriteOnce()
	if err != nil {
		w.destroy(c)
		return
	}
	if done {
		w.destroy(c)
	}
}

func (w *Worker) destroy(c *client.Client) {
	w.clientsMu.Lock()
	delete(w.clients, c.FD())
	w.clientsMu.Unlock()
	c.Destroy()
}

// Close tears down every client and the reactor itself. Used only at
// process shutdown.
func (w *Worker) Close() {
	w.clientsMu.Lock()
	clients := make([]*client.Client, 0, len(w.clients))
	for _, c := range w.clients {
		clients = append(clients, c)
	}
	w.clients = make(map[int]*client.Client)
	w.clientsMu.Unlock()

	for _, c := range clients {
		c.Destroy()
	}
	_ = w.reactor.Close()
}

// connCtx builds a context carrying a Helper tagged with this
// connection's id and worker, so every log line it produces can be
// tied back to one socket without threading those fields through
// every call site by hand.
func (w *Worker) connCtx(c *client.Client) context.Context {
	h := log.NewHelper(log.With(log.GetLogger(), "worker", w.id, "conn", c.ConnID()))
	return log.NewContext(context.Background(), h)
}

func notFoundPage() []byte {
	b, _ := respond.CannedFor(404)
	return b
}

func mustCanned500() []byte {
	b, _ := respond.CannedFor(500)
	return b
}
