package transport

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// maxSocketPathBytes mirrors the BSD sun_path size the reference client
// targets for portability, smaller than Linux's 108-byte field.
const maxSocketPathBytes = 104

// truncateSocketPath enforces the same boundary behavior as the
// reference client's strncpy+null-terminate pair: a path longer than
// maxSocketPathBytes is rejected outright, while a path of exactly
// maxSocketPathBytes loses its last byte to the forced null terminator
// at index maxSocketPathBytes-1.
func truncateSocketPath(path string) (string, error) {
	if len(path) > maxSocketPathBytes {
		return "", fmt.Errorf("transport: socket path exceeds %d bytes", maxSocketPathBytes)
	}
	if len(path) == maxSocketPathBytes {
		return path[:maxSocketPathBytes-1], nil
	}
	return path, nil
}

// dialOnce creates a non-blocking AF_UNIX stream socket and attempts a
// single connect to path, waiting out an EINPROGRESS result (the
// expected outcome of a non-blocking connect) with a short poll for
// writability before checking SO_ERROR.
func dialOnce(path string) (int, error) {
	truncated, err := truncateSocketPath(path)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, fmt.Errorf("transport: socket: %w", err)
	}

	addr := &unix.SockaddrUnix{Name: truncated}
	err = unix.Connect(fd, addr)
	if err == nil {
		return fd, nil
	}
	if err != unix.EINPROGRESS {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: connect: %w", err)
	}

	writable, perr := pollFD(fd, unix.POLLOUT, 2*time.Second)
	if perr != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: poll for connect: %w", perr)
	}
	if !writable {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: connect timed out")
	}

	sockErr, gerr := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if gerr != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: getsockopt SO_ERROR: %w", gerr)
	}
	if sockErr != 0 {
		unix.Close(fd)
		return -1, fmt.Errorf("transport: connect: %w", unix.Errno(sockErr))
	}
	return fd, nil
}

// pollFD waits up to timeout for any of events to become ready on fd.
// It reports an error for POLLERR/POLLHUP/POLLNVAL and false/nil on a
// plain timeout.
func pollFD(fd int, events int16, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	revents := fds[0].Revents
	if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, fmt.Errorf("transport: poll error flags 0x%x", revents)
	}
	return revents&events != 0, nil
}
