// Package server wires together the reactor pool, router, cache,
// blog list, and indexer into one running instance: listener setup,
// fd-mod-N worker pinning, and the periodic housekeeping/indexer
// ticks that drive the main reactor.
package server

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/cloudflare/tableflip"
	"github.com/paulbellamy/ratecounter"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/aehttpd/aehttpd/conf"
	"github.com/aehttpd/aehttpd/contrib/log"
	"github.com/aehttpd/aehttpd/internal/bloglist"
	"github.com/aehttpd/aehttpd/internal/cachestore"
	"github.com/aehttpd/aehttpd/internal/client"
	"github.com/aehttpd/aehttpd/internal/indexer"
	"github.com/aehttpd/aehttpd/internal/reactor"
	"github.com/aehttpd/aehttpd/internal/router"
)

// Server owns the listening socket and every worker reactor.
type Server struct {
	cfg         *conf.Server
	idxInterval time.Duration

	listenFD int
	// listenFile/listenConn keep the tableflip-issued socket's Go-level
	// wrappers referenced; letting either be garbage collected runs
	// its finalizer and closes listenFD out from under the reactor.
	listenFile *os.File
	listenConn net.Listener
	workers    []*Worker

	cache   *cachestore.Cache
	blogs   *bloglist.Holder
	router  *router.Router
	indexer *indexer.Indexer

	requests *ratecounter.RateCounter

	stop chan struct{}
}

// New builds a Server from cfg and an already-populated router. The
// listening socket is created but not yet bound to any worker.
//
// flip may be nil, in which case the listening socket is opened
// directly (used by tests); in production it should be the process's
// tableflip.Upgrader so the socket survives a binary upgrade.
func New(cfg *conf.Server, idxCfg *conf.Indexer, rtr *router.Router, flip *tableflip.Upgrader) (*Server, error) {
	cache := cachestore.New()
	blogs := &bloglist.Holder{}

	idxInterval := idxCfg.Interval
	if idxInterval <= 0 {
		idxInterval = 10 * time.Second
	}

	s := &Server{
		cfg:         cfg,
		idxInterval: idxInterval,
		cache:       cache,
		blogs:       blogs,
		router:      rtr,
		indexer:     indexer.New(cache, blogs, cfg.BlogDataDir, cfg.TemplateDir, cfg.DocumentRoot),
		requests:    ratecounter.NewRateCounter(time.Second),
		stop:        make(chan struct{}),
	}

	env := client.Env{
		Cache:             cache,
		DocumentRoot:      cfg.DocumentRoot,
		BlogDataDir:       cfg.BlogDataDir,
		TemplateDir:       cfg.TemplateDir,
		RequestBufferSize: cfg.RequestBufferSize,
	}

	s.workers = make([]*Worker, cfg.Workers)
	for i := range s.workers {
		w, err := newWorker(i, rtr, env)
		if err != nil {
			return nil, fmt.Errorf("server: worker %d: %w", i, err)
		}
		s.workers[i] = w
	}

	fd, file, ln, err := listen(flip, cfg.Address, cfg.Port)
	if err != nil {
		return nil, err
	}
	s.listenFD = fd
	s.listenFile = file
	s.listenConn = ln

	return s, nil
}

// RequestsPerSecond reports the trailing one-second request rate, fed
// by the accept path once per accepted connection.
func (s *Server) RequestsPerSecond() int64 { return s.requests.Rate() }

// BlogCount reports the size of the currently published blog list.
func (s *Server) BlogCount() int { return s.blogs.Current().Len() }

// Addr reports the bound listening address, resolving an ephemeral
// port (configured as 0) to the one the kernel actually assigned.
func (s *Server) Addr() (string, error) {
	sa, err := unix.Getsockname(s.listenFD)
	if err != nil {
		return "", err
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return "", fmt.Errorf("server: unexpected sockaddr type %T", sa)
	}
	ip := net.IP(in4.Addr[:])
	return net.JoinHostPort(ip.String(), fmt.Sprint(in4.Port)), nil
}

// listen obtains the listening socket's raw, non-blocking fd for the
// epoll accept loop. With a tableflip.Upgrader it is the fd tableflip
// either opens fresh or inherits from the parent process across a
// SIGHUP upgrade; without one (tests) it is opened directly.
func listen(flip *tableflip.Upgrader, addr string, port int) (int, *os.File, net.Listener, error) {
	if flip == nil {
		fd, err := listenRaw(addr, port)
		return fd, nil, nil, err
	}

	ln, err := flip.Listen("tcp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return -1, nil, nil, fmt.Errorf("server: tableflip listen %s:%d: %w", addr, port, err)
	}

	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return -1, nil, nil, fmt.Errorf("server: unexpected listener type %T", ln)
	}

	// File dup's the listening socket onto a new fd in blocking mode;
	// the reactor's accept loop needs its own non-blocking copy, while
	// tableflip keeps the original for the next upgrade's handoff.
	file, err := tcpLn.File()
	if err != nil {
		_ = ln.Close()
		return -1, nil, nil, fmt.Errorf("server: listener fd: %w", err)
	}
	fd := int(file.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = file.Close()
		_ = ln.Close()
		return -1, nil, nil, fmt.Errorf("server: set nonblocking: %w", err)
	}

	return fd, file, ln, nil
}

func listenRaw(addr string, port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("server: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("server: setsockopt SO_REUSEADDR: %w", err)
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		ip = net.IPv4zero
	}
	var sa unix.SockaddrInet4
	copy(sa.Addr[:], ip.To4())
	sa.Port = port

	if err := unix.Bind(fd, &sa); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("server: bind %s:%d: %w", addr, port, err)
	}
	if err := unix.Listen(fd, 1024); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("server: listen: %w", err)
	}
	return fd, nil
}

// Start runs every worker reactor and the main reactor's accept loop
// and periodic timers. It blocks until every reactor has returned from
// Run (normally after Stop) and reports the first error any of them
// returned; one failing reactor does not stop the others.
func (s *Server) Start() error {
	main, err := reactor.New()
	if err != nil {
		return err
	}

	housekeeping, err := reactor.NewTimer(s.cfg.HousekeepingInterval)
	if err != nil {
		return err
	}
	indexTick, err := reactor.NewTimer(s.idxInterval)
	if err != nil {
		return err
	}

	if err := main.AddRead(s.listenFD, func(fd int, readable, writable bool) {
		s.acceptPass()
	}); err != nil {
		return err
	}
	if err := main.AddRead(housekeeping, func(fd int, readable, writable bool) {
		_, _ = reactor.DrainTimer(fd)
		s.housekeep()
	}); err != nil {
		return err
	}
	if err := main.AddRead(indexTick, func(fd int, readable, writable bool) {
		_, _ = reactor.DrainTimer(fd)
		if err := s.indexer.Tick(); err != nil {
			log.Warnf("indexer tick: %s", err)
		}
	}); err != nil {
		return err
	}

	var g errgroup.Group
	for _, w := range s.workers {
		w := w
		g.Go(func() error { return w.reactor.Run(s.stop) })
	}
	g.Go(func() error { return main.Run(s.stop) })

	return g.Wait()
}

// Stop signals every reactor to return from Run and tears down
// per-worker state. Idempotent.
func (s *Server) Stop() {
	select {
	case <-s.stop:
		return // already stopped
	default:
		close(s.stop)
	}
	for _, w := range s.workers {
		w.Close()
	}
	if s.listenFile != nil {
		_ = s.listenFile.Close()
	}
	if s.listenConn != nil {
		_ = s.listenConn.Close()
		return
	}
	_ = unix.Close(s.listenFD)
}

// acceptPass accepts up to MaxAcceptPerWakeup connections in one pass
// to amortise wakeups, stopping early on EAGAIN.
func (s *Server) acceptPass() {
	max := s.cfg.MaxAcceptPerWakeup
	if max <= 0 {
		max = 1000
	}

	for i := 0; i < max; i++ {
		fd, _, err := unix.Accept4(s.listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			log.Warnf("accept: %s", err)
			return
		}

		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

		w := s.workers[fd%len(s.workers)]
		w.Adopt(fd)
		s.requests.Incr(1)
	}
}

// housekeep runs the per-second maintenance tick: currently only the
// request-rate gauge refresh, which ratecounter does lazily on Rate().
func (s *Server) housekeep() {
	log.Debugf("housekeeping: %d req/s, %d published posts", s.requests.Rate(), s.blogs.Current().Len())
}
