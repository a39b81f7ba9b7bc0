package scan

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// WSAEADDRINUSE
const errAddrInUse = syscall.Errno(10048)

func setBroadcastReuse(c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		h := windows.Handle(fd)
		if err := windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
			sockErr = err
			return
		}
		sockErr = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

func isAddrInUse(err error) bool {
	return errors.Is(err, errAddrInUse)
}
