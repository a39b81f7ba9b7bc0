package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/david2004kang/DHCP-finder/internal/scan"
)

type sighting struct {
	scan.Server
	FirstSeen time.Time
	LastSeen  time.Time
}

// watcher remembers every server seen since the process started.
type watcher struct {
	seen     map[string]*sighting
	expected map[string]bool
	rounds   int
	log      logrus.FieldLogger
}

func newWatcher(expected []string, log logrus.FieldLogger) *watcher {
	w := &watcher{seen: map[string]*sighting{}, log: log}
	if len(expected) > 0 {
		w.expected = make(map[string]bool, len(expected))
		for _, ip := range expected {
			w.expected[ip] = true
		}
	}
	return w
}

// observe merges one round into the history and returns the servers that were
// not seen in any earlier round.
func (w *watcher) observe(servers []scan.Server, at time.Time) []scan.Server {
	first := w.rounds == 0
	w.rounds++
	var fresh []scan.Server

	for _, s := range servers {
		old, ok := w.seen[s.IP]
		if !ok {
			w.seen[s.IP] = &sighting{Server: s, FirstSeen: at, LastSeen: at}
			fresh = append(fresh, s)
			if !first {
				w.log.WithFields(logrus.Fields{"ip": s.IP, "mac": s.MAC, "iface": s.Interface}).Warn("new DHCP server appeared")
			}
		} else {
			if s.MAC == scan.Unknown {
				s.MAC, s.Vendor = old.MAC, old.Vendor
			}
			if s.Hostname == "" {
				s.Hostname = old.Hostname
			}
			old.Server = s
			old.LastSeen = at
		}

		if w.expected != nil && !w.expected[s.IP] {
			w.log.WithFields(logrus.Fields{"ip": s.IP, "mac": s.MAC, "vendor": s.Vendor}).Warn("unexpected DHCP server")
		}
	}
	return fresh
}

func (w *watcher) sorted() []*sighting {
	out := make([]*sighting, 0, len(w.seen))
	for _, s := range w.seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FirstSeen.Before(out[j].FirstSeen) ||
			(out[i].FirstSeen.Equal(out[j].FirstSeen) && out[i].IP < out[j].IP)
	})
	return out
}

func (w *watcher) print(out io.Writer) {
	fmt.Fprintf(out, "%-15s %-18s %-20s %-10s %-9s %s\n", "IP", "MAC", "VENDOR", "IFACE", "FIRST", "LAST")
	for _, s := range w.sorted() {
		fmt.Fprintf(out, "%-15s %-18s %-20s %-10s %-9s %s\n",
			s.IP, s.MAC, s.Vendor, s.Interface,
			s.FirstSeen.Format("15:04:05"), s.LastSeen.Format("15:04:05"))
	}
}

func newWatchCmd(log *logrus.Logger) *cobra.Command {
	var (
		f        scanFlags
		interval time.Duration
		expected []string
	)
	cmd := &cobra.Command{
		Use:          "watch",
		Short:        "Scan repeatedly and report DHCP servers as they appear",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.noSocket && f.noLink {
				return errNoMethod
			}
			checkPrivileges(log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchLoop(ctx, cmd.OutOrStdout(), scan.New(f.options(), log), newWatcher(expected, log), interval)
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "pause between scans")
	cmd.Flags().StringSliceVar(&expected, "expect", nil, "authorized DHCP server IPs; others are reported")
	return cmd
}

func watchLoop(ctx context.Context, out io.Writer, s *scan.Scanner, w *watcher, interval time.Duration) error {
	for {
		r := s.Scan(ctx)
		w.observe(r.Servers, time.Now())

		clearScreen(out)
		fmt.Fprintf(out, "dhcpfinder watch: %d server(s), refresh=%s\n\n", len(w.seen), interval)
		w.print(out)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func clearScreen(out io.Writer) {
	fmt.Fprint(out, "\033[2J\033[H")
}
