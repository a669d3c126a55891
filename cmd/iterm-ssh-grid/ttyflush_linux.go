package main

import "golang.org/x/sys/unix"

// discardPendingInput is tcflush(fd, TCIFLUSH).
func discardPendingInput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
}
