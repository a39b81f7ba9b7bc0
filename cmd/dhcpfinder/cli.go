package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/david2004kang/DHCP-finder/internal/arpcache"
	"github.com/david2004kang/DHCP-finder/internal/scan"
)

type scanFlags struct {
	jsonOut    bool
	ifaces     []string
	timeout    time.Duration
	arpTimeout time.Duration
	parallel   bool
	arpProbe   bool
	mdns       bool
	noSocket   bool
	noLink     bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.ifaces, "iface", "i", nil, "interface(s) to scan (default: all usable)")
	fs.DurationVar(&f.timeout, "timeout", 3*time.Second, "listen window per strategy and interface")
	fs.DurationVar(&f.arpTimeout, "arp-timeout", arpcache.DefaultTimeout, "neighbor table query timeout")
	fs.BoolVar(&f.parallel, "parallel", false, "scan interfaces and strategies concurrently")
	fs.BoolVar(&f.arpProbe, "arp-probe", false, "ARP-probe servers whose MAC is still unknown (linux, root)")
	fs.BoolVar(&f.mdns, "mdns", false, "look up server hostnames over mDNS")
	fs.BoolVar(&f.noSocket, "no-socket", false, "skip the UDP socket strategy")
	fs.BoolVar(&f.noLink, "no-link", false, "skip the link-layer strategy")
}

func (f *scanFlags) options() scan.Options {
	opts := scan.Options{
		Timeout:    f.timeout,
		ARPTimeout: f.arpTimeout,
		Interfaces: f.ifaces,
		Parallel:   f.parallel,
		ARPProbe:   f.arpProbe,
		MDNS:       f.mdns,
	}
	if !f.noSocket {
		opts.Methods = append(opts.Methods, scan.MethodSocket)
	}
	if !f.noLink {
		opts.Methods = append(opts.Methods, scan.MethodLink)
	}
	return opts
}

func newRootCmd() *cobra.Command {
	var debug bool
	log := logrus.New()
	log.SetOutput(os.Stderr)

	root := &cobra.Command{
		Use:   "dhcpfinder",
		Short: "Find DHCP servers on the local networks",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "verbose diagnostics on stderr")

	root.AddCommand(newScanCmd(log), newWatchCmd(log))
	return root
}

func newScanCmd(log *logrus.Logger) *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:          "scan",
		Short:        "Broadcast one DHCP Discover per interface and list the servers that answer",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.noSocket && f.noLink {
				return errNoMethod
			}
			checkPrivileges(log)

			r := scan.New(f.options(), log).Scan(context.Background())
			if f.jsonOut {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			printServers(cmd.OutOrStdout(), r.Servers)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "output JSON")
	return cmd
}

func writeJSON(w io.Writer, r scan.Result) error {
	if r.Servers == nil {
		r.Servers = []scan.Server{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
