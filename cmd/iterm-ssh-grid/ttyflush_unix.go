//go:build darwin || linux

package main

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// flushTTYInput discards input still queued on the controlling terminal after
// the picker exits, such as keys typed while the alt screen was closing or
// late terminal query replies. Without a /dev/tty it does nothing.
func flushTTYInput() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		return
	}
	defer func() { _ = tty.Close() }()

	fd := int(tty.Fd())
	if fd < 0 {
		return
	}
	_ = discardPendingInput(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		return
	}
	defer func() { _ = unix.SetNonblock(fd, false) }()

	deadline := time.Now().Add(150 * time.Millisecond)
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, _ := unix.Read(fd, buf)
		if n <= 0 {
			return
		}
		// more of a reply burst may follow
		deadline = time.Now().Add(50 * time.Millisecond)
	}
}
