package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// NewTimer creates a Linux timerfd that fires every interval. It is an
// ordinary fd and can be registered on a Reactor with AddRead like any
// other — this is how the main reactor's housekeeping tick and the indexer's
// rescan tick are driven, instead of a time.Ticker goroutine that
// would cross reactor boundaries.
func NewTimer(interval time.Duration) (int, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return -1, fmt.Errorf("reactor: timerfd_create: %w", err)
	}

	spec := &unix.ItimerSpec{
		Value:    unix.NsecToTimespec(interval.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, spec, nil); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("reactor: timerfd_settime: %w", err)
	}
	return fd, nil
}

// DrainTimer consumes the 8-byte expiration counter a timerfd delivers
// on read, returning the number of missed/elapsed ticks. Must be
// called once per readable wakeup or the fd stays readable forever.
func DrainTimer(fd int) (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	if n != 8 {
		return 0, nil
	}
	return hostEndianUint64(buf), nil
}

func hostEndianUint64(b [8]byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
