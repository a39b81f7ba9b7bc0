package scan

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/sirupsen/logrus"
)

// Interfaces lists the adapters that are up, not loopback, and have an IPv4
// address with a broadcast address. It is re-read on every call.
func Interfaces(log logrus.FieldLogger) ([]Interface, error) {
	ifis, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	return usable(ifis, (*net.Interface).Addrs, log), nil
}

func usable(ifis []net.Interface, addrsOf func(*net.Interface) ([]net.Addr, error), log logrus.FieldLogger) []Interface {
	var out []Interface
	for i := range ifis {
		ifi := ifis[i]
		addrs, err := addrsOf(&ifi)
		if err != nil {
			log.WithField("iface", ifi.Name).WithError(err).Debug("skipping interface, cannot read addresses")
			continue
		}
		if d, ok := describe(ifi, addrs); ok {
			out = append(out, d)
		}
	}
	return out
}

func describe(ifi net.Interface, addrs []net.Addr) (Interface, bool) {
	if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 {
		return Interface{}, false
	}
	// point-to-point links have no broadcast address
	if ifi.Flags&net.FlagBroadcast == 0 {
		return Interface{}, false
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.To4() == nil {
			continue
		}
		bcast, ok := broadcastAddr(ipnet)
		if !ok {
			continue
		}
		ip, _ := netip.AddrFromSlice(ipnet.IP.To4())
		return Interface{
			Name:         ifi.Name,
			Index:        ifi.Index,
			IP:           ip,
			Broadcast:    bcast,
			HardwareAddr: ifi.HardwareAddr,
		}, true
	}
	return Interface{}, false
}

func broadcastAddr(ipnet *net.IPNet) (netip.Addr, bool) {
	ip := ipnet.IP.To4()
	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if ip == nil || len(mask) != net.IPv4len {
		return netip.Addr{}, false
	}
	// /31 and /32 have no room for a broadcast address
	if ones, _ := mask.Size(); ones > 30 {
		return netip.Addr{}, false
	}

	var b [4]byte
	for i := range b {
		b[i] = ip[i] | ^mask[i]
	}
	return netip.AddrFrom4(b), true
}

func filterInterfaces(ifis []Interface, names []string) []Interface {
	if len(names) == 0 {
		return ifis
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []Interface
	for _, ifi := range ifis {
		if want[ifi.Name] {
			out = append(out, ifi)
		}
	}
	return out
}
