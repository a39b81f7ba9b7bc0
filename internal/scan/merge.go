package scan

import (
	"github.com/david2004kang/DHCP-finder/internal/arpcache"
	"github.com/david2004kang/DHCP-finder/internal/oui"
)

func appendUnique(servers []Server, srv Server) []Server {
	for _, s := range servers {
		if s.IP == srv.IP {
			return servers
		}
	}
	return append(servers, srv)
}

// Dedupe keeps the first Server seen for each IP, preserving order.
func Dedupe(servers []Server) []Server {
	seen := make(map[string]bool, len(servers))
	out := make([]Server, 0, len(servers))
	for _, s := range servers {
		if seen[s.IP] {
			continue
		}
		seen[s.IP] = true
		out = append(out, s)
	}
	return out
}

// fillFromARP sets the MAC and vendor of servers whose MAC is still Unknown
// and whose IP appears in table. Known MACs are left alone. It returns the
// number of servers it changed.
func fillFromARP(servers []Server, table arpcache.Table) int {
	n := 0
	for i := range servers {
		if servers[i].MAC != Unknown {
			continue
		}
		mac, ok := table[servers[i].IP]
		if !ok {
			continue
		}
		servers[i].MAC = mac
		servers[i].Vendor = oui.Lookup(mac)
		n++
	}
	return n
}
