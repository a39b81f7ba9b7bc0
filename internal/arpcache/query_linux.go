package arpcache

import (
	"context"
	"fmt"
	"os"

	"github.com/vishvananda/netlink"
)

const procNetArpFile = "/proc/net/arp"

func query(ctx context.Context) (Table, error) {
	type result struct {
		t   Table
		err error
	}

	// netlink calls do not take a context
	done := make(chan result, 1)
	go func() {
		t, err := queryNetlink()
		if err != nil {
			t, err = queryProc()
		}
		done <- result{t, err}
	}()

	select {
	case r := <-done:
		return r.t, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func queryNetlink() (Table, error) {
	neighs, err := netlink.NeighList(0, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("netlink neighbor list: %w", err)
	}

	t := Table{}
	for _, n := range neighs {
		if n.IP == nil || n.IP.To4() == nil {
			continue
		}
		if n.State&(netlink.NUD_INCOMPLETE|netlink.NUD_FAILED|netlink.NUD_NOARP) != 0 {
			continue
		}
		if mac, ok := normalizeMAC(n.HardwareAddr.String()); ok {
			t[n.IP.String()] = mac
		}
	}
	return t, nil
}

func queryProc() (Table, error) {
	f, err := os.Open(procNetArpFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseProcNetARP(f), nil
}
