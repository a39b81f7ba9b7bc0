// Package scan finds DHCP servers on the local networks by broadcasting a
// Discover on every usable interface and collecting who answers.
//
// Two strategies run per interface: a plain UDP socket and a link-layer
// capture. Their candidates are merged, completed from the system neighbor
// table and deduplicated by IP. A scan never fails as a whole; problems on one
// interface or with one strategy are logged and the rest of the scan goes on.
package scan

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/david2004kang/DHCP-finder/internal/arpcache"
	"github.com/david2004kang/DHCP-finder/internal/mdns"
	"github.com/david2004kang/DHCP-finder/internal/oui"
)

// Options configures a Scanner.
type Options struct {
	// Timeout is the listen window of each strategy on each interface.
	Timeout time.Duration
	// ARPTimeout bounds the neighbor table query.
	ARPTimeout time.Duration
	// Interfaces restricts the scan to these names when non-empty.
	Interfaces []string
	// Methods selects the strategies to run, in order.
	Methods []Method
	// Parallel runs interfaces and strategies concurrently.
	Parallel bool
	// ARPProbe resolves MACs still unknown after the neighbor table with an ARP request.
	ARPProbe bool
	// MDNS looks up hostnames of the servers found.
	MDNS bool
}

func DefaultOptions() Options {
	return Options{
		Timeout:    3 * time.Second,
		ARPTimeout: arpcache.DefaultTimeout,
		Methods:    []Method{MethodSocket, MethodLink},
	}
}

// maxParallel caps concurrent listen windows in Parallel mode.
const maxParallel = 16

// Scanner runs the dual strategy scan.
type Scanner struct {
	opts       Options
	log        logrus.FieldLogger
	strategies []Strategy

	// replaced in tests
	interfaces func() ([]Interface, error)
	neighbors  func(ctx context.Context) arpcache.Table
	probe      func(ifi Interface, ip netip.Addr, timeout time.Duration) (string, error)
	hostnames  func(ifi Interface, ips []string, timeout time.Duration) map[string]string
}

func New(opts Options, log logrus.FieldLogger) *Scanner {
	d := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = d.Timeout
	}
	if opts.ARPTimeout <= 0 {
		opts.ARPTimeout = d.ARPTimeout
	}
	if len(opts.Methods) == 0 {
		opts.Methods = d.Methods
	}

	s := &Scanner{
		opts:       opts,
		log:        log,
		interfaces: func() ([]Interface, error) {
			return Interfaces(log)
		},
		neighbors: func(ctx context.Context) arpcache.Table {
			return arpcache.Read(ctx, log)
		},
		probe: func(ifi Interface, ip netip.Addr, timeout time.Duration) (string, error) {
			return arpcache.Probe(ifi.netInterface(), ip, timeout)
		},
		hostnames: func(ifi Interface, ips []string, timeout time.Duration) map[string]string {
			return mdns.Hostnames(ifi.netInterface(), ips, timeout, log)
		},
	}
	for _, m := range opts.Methods {
		switch m {
		case MethodSocket:
			s.strategies = append(s.strategies, &SocketStrategy{Log: log})
		case MethodLink:
			s.strategies = append(s.strategies, &LinkStrategy{Log: log})
		default:
			log.Warnf("unknown scan method %q ignored", m)
		}
	}
	return s
}

// Scan enumerates interfaces, runs each strategy across all of them in turn,
// completes MACs from the neighbor table, resolves vendors and drops duplicate
// IPs, keeping the first one seen. It always returns, with an empty list if nothing answered.
func (s *Scanner) Scan(ctx context.Context) Result {
	start := time.Now()

	ifis, err := s.interfaces()
	if err != nil {
		s.log.WithError(err).Warn("interface enumeration failed")
	}
	ifis = filterInterfaces(ifis, s.opts.Interfaces)
	s.log.WithField("interfaces", len(ifis)).Debug("scanning")

	servers := s.dualScan(ifis)
	servers = s.enrich(ctx, ifis, servers)
	servers = Dedupe(servers)

	if s.opts.MDNS {
		s.resolveHostnames(ifis, servers)
	}

	r := Result{Servers: servers, Count: len(servers), Elapsed: time.Since(start)}
	s.log.WithField("elapsed", r.Elapsed.Round(time.Millisecond)).Infof("scan finished, %d DHCP server(s) found", r.Count)
	return r
}

// dualScan runs each strategy across every interface before the next strategy
// starts. Slots are concatenated in strategy, then interface, order so the
// result does not depend on scheduling.
func (s *Scanner) dualScan(ifis []Interface) []Server {
	slots := make([][]Server, len(s.strategies)*len(ifis))

	run := func(j, i int) {
		st, ifi := s.strategies[j], ifis[i]
		found, err := st.Scan(ifi, s.opts.Timeout)
		if err != nil {
			s.logFailure(ifi, st.Method(), err)
			return
		}
		slots[j*len(ifis)+i] = found
	}

	if s.opts.Parallel {
		var g errgroup.Group
		g.SetLimit(maxParallel)
		for j := range s.strategies {
			for i := range ifis {
				j, i := j, i
				g.Go(func() error {
					run(j, i)
					return nil
				})
			}
		}
		_ = g.Wait()
	} else {
		for j := range s.strategies {
			for i := range ifis {
				run(j, i)
			}
		}
	}

	var out []Server
	for _, found := range slots {
		out = append(out, found...)
	}
	return out
}

func (s *Scanner) logFailure(ifi Interface, m Method, err error) {
	log := s.log.WithFields(logrus.Fields{"iface": ifi.Name, "method": m}).WithError(err)
	switch {
	case errors.Is(err, errPortInUse):
		log.Warn("DHCP client port is held by another process, skipping interface")
	case errors.Is(err, errNoEthernet):
		log.Warn("interface has no ethernet address, skipping link-layer scan")
	case m == MethodLink:
		log.Warn("link-layer scan unavailable, needs root or packet capture support")
	default:
		log.Warn("skipping interface")
	}
}

// enrich fills unknown MACs from the neighbor table, then optionally by ARP probing.
// It must only run after every listen window has closed.
func (s *Scanner) enrich(ctx context.Context, ifis []Interface, servers []Server) []Server {
	actx, cancel := context.WithTimeout(ctx, s.opts.ARPTimeout)
	defer cancel()

	table := s.neighbors(actx)
	if n := fillFromARP(servers, table); n > 0 {
		s.log.Debugf("filled %d MAC address(es) from the neighbor table", n)
	}

	if s.opts.ARPProbe {
		s.probeUnknown(ifis, servers)
	}
	return servers
}

func (s *Scanner) probeUnknown(ifis []Interface, servers []Server) {
	byName := make(map[string]Interface, len(ifis))
	for _, ifi := range ifis {
		byName[ifi.Name] = ifi
	}

	// one probe per IP; duplicates are dropped later but share the answer
	probed := map[string]string{}
	for i := range servers {
		if servers[i].MAC != Unknown {
			continue
		}
		if mac, ok := probed[servers[i].IP]; ok {
			if mac != "" {
				servers[i].MAC, servers[i].Vendor = mac, oui.Lookup(mac)
			}
			continue
		}
		ifi, ok := byName[servers[i].Interface]
		if !ok {
			continue
		}
		ip, err := netip.ParseAddr(servers[i].IP)
		if err != nil {
			continue
		}
		mac, err := s.probe(ifi, ip, s.opts.Timeout)
		if err != nil {
			probed[servers[i].IP] = ""
			s.log.WithField("iface", ifi.Name).WithError(err).Debug("arp probe failed")
			continue
		}
		probed[servers[i].IP] = mac
		servers[i].MAC = mac
		servers[i].Vendor = oui.Lookup(mac)
	}
}

func (s *Scanner) resolveHostnames(ifis []Interface, servers []Server) {
	for _, ifi := range ifis {
		var ips []string
		for _, srv := range servers {
			if srv.Interface == ifi.Name && srv.Hostname == "" {
				ips = append(ips, srv.IP)
			}
		}
		if len(ips) == 0 {
			continue
		}

		names := s.hostnames(ifi, ips, s.opts.Timeout)
		for i := range servers {
			if n, ok := names[servers[i].IP]; ok && servers[i].Hostname == "" {
				servers[i].Hostname = n
			}
		}
	}
}
