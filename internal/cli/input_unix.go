//go:build unix

package cli

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// pollTimeout bounds how long a read waits before rechecking its deadline.
const pollTimeout = 50 // milliseconds

// pollInput reads f only after poll reports it readable, so setting a read
// deadline stops a pending Read without consuming the next keystroke. This
// works for terminals, which os.File cannot put a deadline on.
type pollInput struct {
	f *os.File

	mu       sync.Mutex
	deadline time.Time
}

func newInput(f *os.File) io.Reader {
	return &pollInput{f: f}
}

// SetReadDeadline makes pending and future reads fail with
// os.ErrDeadlineExceeded once t has passed. A zero t clears it.
func (p *pollInput) SetReadDeadline(t time.Time) error {
	p.mu.Lock()
	p.deadline = t
	p.mu.Unlock()
	return nil
}

func (p *pollInput) expired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.deadline.IsZero() && !time.Now().Before(p.deadline)
}

func (p *pollInput) Read(b []byte) (int, error) {
	fd := int32(p.f.Fd())
	for {
		if p.expired() {
			return 0, os.ErrDeadlineExceeded
		}
		fds := []unix.PollFd{{Fd: fd, Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollTimeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n > 0 {
			if p.expired() {
				return 0, os.ErrDeadlineExceeded
			}
			return p.f.Read(b)
		}
	}
}
