// Package arpcache reads the operating system's IPv4 neighbor table.
//
// The table is advisory: callers use it to fill in link-layer addresses for
// hosts they already know about, and every failure reads as an empty table.
package arpcache

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single neighbor table query.
const DefaultTimeout = 10 * time.Second

// Table maps an IPv4 address in dotted form to a lower-case, colon separated MAC.
type Table map[string]string

// Read snapshots the neighbor table. It never fails; errors are logged at debug
// level and yield an empty Table.
func Read(ctx context.Context, log logrus.FieldLogger) Table {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	t, err := query(ctx)
	if err != nil {
		log.WithError(err).Debug("neighbor table unavailable")
		return Table{}
	}
	log.WithField("entries", len(t)).Debug("neighbor table read")
	return t
}

// normalizeMAC rewrites mac to the form net.HardwareAddr.String produces.
// Placeholders such as "(incomplete)", "---" or an all-zero address report false.
func normalizeMAC(mac string) (string, bool) {
	mac = strings.TrimSpace(mac)
	parts := strings.FieldsFunc(mac, func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) != 6 {
		return "", false
	}
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}

	hw, err := net.ParseMAC(strings.Join(parts, ":"))
	if err != nil {
		return "", false
	}
	if isZero(hw) {
		return "", false
	}
	return hw.String(), true
}

func isZero(hw net.HardwareAddr) bool {
	for _, b := range hw {
		if b != 0 {
			return false
		}
	}
	return true
}

func validIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// parseProcNetARP reads the /proc/net/arp format:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
func parseProcNetARP(r io.Reader) Table {
	t := Table{}
	s := bufio.NewScanner(r)
	s.Scan() // header
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 4 || !validIPv4(fields[0]) {
			continue
		}
		// flags 0x0 marks an incomplete entry
		if fields[2] == "0x0" {
			continue
		}
		if mac, ok := normalizeMAC(fields[3]); ok {
			t[fields[0]] = mac
		}
	}
	return t
}

// parseArpAN reads BSD/macOS "arp -an" output:
//
//	? (192.168.1.1) at 0:11:22:33:44:55 on en0 ifscope [ethernet]
//	? (192.168.1.7) at (incomplete) on en0 ifscope [ethernet]
func parseArpAN(r io.Reader) Table {
	t := Table{}
	s := bufio.NewScanner(r)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 4 || fields[2] != "at" {
			continue
		}
		ip := strings.Trim(fields[1], "()")
		if !validIPv4(ip) {
			continue
		}
		if mac, ok := normalizeMAC(fields[3]); ok {
			t[ip] = mac
		}
	}
	return t
}

// parseArpA reads Windows "arp -a" output, keeping only dynamic and static rows:
//
//	Interface: 192.168.1.20 --- 0xb
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
func parseArpA(r io.Reader) Table {
	t := Table{}
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.ToLower(s.Text())
		if !strings.Contains(line, "dynamic") && !strings.Contains(line, "static") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !validIPv4(fields[0]) {
			continue
		}
		if mac, ok := normalizeMAC(fields[1]); ok {
			t[fields[0]] = mac
		}
	}
	return t
}
