package arpcache

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/mdlayher/arp"
)

// Probe asks target for its hardware address with an ARP request sent on ifi.
// It needs CAP_NET_RAW.
func Probe(ifi *net.Interface, target netip.Addr, timeout time.Duration) (string, error) {
	c, err := arp.Dial(ifi)
	if err != nil {
		return "", fmt.Errorf("arp dial %s: %w", ifi.Name, err)
	}
	defer c.Close()

	if err := c.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}

	hw, err := c.Resolve(target)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", target, err)
	}
	mac, ok := normalizeMAC(hw.String())
	if !ok {
		return "", fmt.Errorf("resolve %s: placeholder address %s", target, hw)
	}
	return mac, nil
}
