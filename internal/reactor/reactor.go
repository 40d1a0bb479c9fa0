// Package reactor implements one single-threaded epoll event loop: a
// "register readable/writable callback on fd" capability available to
// each worker.
package reactor

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Callback is invoked when a registered fd becomes ready. readable and
// writable tell the callback which directions fired; it is called once
// per wakeup, with both set if both fired.
type Callback func(fd int, readable, writable bool)

// Reactor is one epoll instance plus the callbacks registered on it.
// Callbacks run only on the single goroutine that calls Run; Add,
// Mod, Remove and SetCallback may also be called from other
// goroutines, since epoll_ctl is thread-safe and the callback map is
// guarded by mu.
type Reactor struct {
	epfd int

	mu   sync.Mutex // guards cbs only; Add/Remove may be called from other goroutines (e.g. the accept path handing a fd to another worker)
	cbs  map[int]Callback
	wake [2]int // self-pipe to interrupt EpollWait when another goroutine registers a new fd
}

// New creates an epoll instance.
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("reactor: pipe2: %w", err)
	}

	r := &Reactor{
		epfd: epfd,
		cbs:  make(map[int]Callback),
		wake: fds,
	}
	if err := r.addFd(r.wake[0], unix.EPOLLIN, nil); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the epoll fd and the wake pipe. It does not close any
// fd registered by a caller.
func (r *Reactor) Close() error {
	_ = unix.Close(r.wake[0])
	_ = unix.Close(r.wake[1])
	return unix.Close(r.epfd)
}

func (r *Reactor) addFd(fd int, events uint32, cb Callback) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: events,
		Fd:     int32(fd),
	}); err != nil {
		return fmt.Errorf("reactor: epoll_ctl add fd=%d: %w", fd, err)
	}
	if cb != nil {
		r.mu.Lock()
		r.cbs[fd] = cb
		r.mu.Unlock()
	}
	return nil
}

// AddRead registers fd for read-readiness (level-triggered, as the
// reactor never uses EPOLLET — callbacks re-arm explicitly on EAGAIN
// rather than relying on edge-triggered delivery).
func (r *Reactor) AddRead(fd int, cb Callback) error {
	return r.addFd(fd, unix.EPOLLIN, cb)
}

// AddWrite registers fd for write-readiness.
func (r *Reactor) AddWrite(fd int, cb Callback) error {
	return r.addFd(fd, unix.EPOLLOUT, cb)
}

// ModWrite re-arms fd for write-readiness only, used by the write path
// after assembling a response.
func (r *Reactor) ModWrite(fd int) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: unix.EPOLLOUT,
		Fd:     int32(fd),
	})
}

// ModRead re-arms fd for read-readiness only.
func (r *Reactor) ModRead(fd int) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	})
}

// Remove unregisters fd. Callers must call this before closing the fd
// — epoll drops stale registrations silently otherwise.
func (r *Reactor) Remove(fd int) {
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	r.mu.Lock()
	delete(r.cbs, fd)
	r.mu.Unlock()
}

// SetCallback replaces or installs the callback for an already
// registered fd, used by the write path to swap a connection's read
// callback for its write callback.
func (r *Reactor) SetCallback(fd int, cb Callback) {
	r.mu.Lock()
	r.cbs[fd] = cb
	r.mu.Unlock()
}

// Wake interrupts a blocked EpollWait, used after another goroutine
// registers a new fd on this reactor (cross-worker handoff of an
// accepted connection) so the owning loop picks it up immediately
// instead of waiting out the rest of its current wait.
func (r *Reactor) Wake() {
	var b [1]byte
	_, _ = unix.Write(r.wake[1], b[:])
}

// Run blocks, dispatching ready fds to their callbacks, until stop is
// closed.
func (r *Reactor) Run(stop <-chan struct{}) error {
	events := make([]unix.EpollEvent, 128)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		n, err := unix.EpollWait(r.epfd, events, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("reactor: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)

			if fd == r.wake[0] {
				var buf [64]byte
				for {
					if _, err := unix.Read(r.wake[0], buf[:]); err != nil {
						break
					}
				}
				continue
			}

			r.mu.Lock()
			cb := r.cbs[fd]
			r.mu.Unlock()
			if cb == nil {
				continue
			}

			readable := ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0
			writable := ev.Events&unix.EPOLLOUT != 0
			cb(fd, readable, writable)
		}
	}
}
