//go:build !linux

package arpcache

import (
	"errors"
	"net"
	"net/netip"
	"time"
)

var errProbeUnsupported = errors.New("arp probe is only supported on linux")

func Probe(ifi *net.Interface, target netip.Addr, timeout time.Duration) (string, error) {
	return "", errProbeUnsupported
}
