package main

import "golang.org/x/sys/unix"

// FREAD from <sys/fcntl.h>: flush the input queue only.
const fread = 0x1

// discardPendingInput is tcflush(fd, TCIFLUSH); Darwin implements it as
// TIOCFLUSH with a pointer to the queue mask.
func discardPendingInput(fd int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, fread)
}
