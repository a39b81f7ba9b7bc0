package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/david2004kang/DHCP-finder/internal/scan"
)

var errNoMethod = errors.New("--no-socket and --no-link leave nothing to scan with")

func checkPrivileges(log logrus.FieldLogger) {
	// binding port 68 and opening raw captures usually need root; Windows reports -1
	if runtime.GOOS != "windows" && os.Geteuid() != 0 {
		log.Warn("not running as root, results may be incomplete")
	}
}

func printServers(w io.Writer, servers []scan.Server) {
	if len(servers) == 0 {
		fmt.Fprintln(w, "no DHCP servers found")
		return
	}

	fmt.Fprintf(w, "%-15s %-18s %-20s %-10s %-7s %s\n", "IP", "MAC", "VENDOR", "IFACE", "METHOD", "HOSTNAME")
	fmt.Fprintln(w, strings.Repeat("-", 84))
	for _, s := range servers {
		fmt.Fprintf(w, "%-15s %-18s %-20s %-10s %-7s %s\n", s.IP, s.MAC, s.Vendor, s.Interface, s.Method, s.Hostname)
	}
	fmt.Fprintf(w, "\n%d DHCP server(s) found\n", len(servers))
}
