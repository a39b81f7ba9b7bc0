// Package mdns resolves hostnames of local hosts with multicast DNS.
package mdns

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

var group = &net.UDPAddr{IP: net.IPv4(224, 0, 0, 251), Port: 5353}

// Hostnames sends one reverse (PTR) query per address in ips on iface and
// collects answers until timeout. Addresses nobody answered for are absent
// from the result. Failures return an empty map.
func Hostnames(iface *net.Interface, ips []string, timeout time.Duration, log logrus.FieldLogger) map[string]string {
	out := map[string]string{}

	q, err := reverseQuery(ips)
	if err != nil {
		log.WithError(err).Debug("mdns query not built")
		return out
	}
	b, err := q.Pack()
	if err != nil {
		log.WithError(err).Debug("mdns query not packed")
		return out
	}

	conn, err := net.ListenMulticastUDP("udp4", iface, group)
	if err != nil {
		log.WithError(err).Debug("mdns listen failed")
		return out
	}
	defer conn.Close()

	_ = conn.SetReadBuffer(1 << 20)

	_, _ = conn.WriteToUDP(b, group)
	time.Sleep(50 * time.Millisecond)
	_, _ = conn.WriteToUDP(b, group)

	wanted := make(map[string]bool, len(ips))
	for _, ip := range ips {
		wanted[ip] = true
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65536)

	for time.Now().Before(deadline) && len(out) < len(wanted) {
		_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		m := new(dns.Msg)
		if err := m.Unpack(buf[:n]); err != nil || !m.Response {
			continue
		}
		for ip, name := range namesFromMsg(m) {
			if wanted[ip] {
				out[ip] = name
			}
		}
	}

	return out
}

func reverseQuery(ips []string) (*dns.Msg, error) {
	q := new(dns.Msg)
	for _, ip := range ips {
		arpa, err := dns.ReverseAddr(ip)
		if err != nil {
			return nil, err
		}
		q.Question = append(q.Question, dns.Question{
			Name:   arpa,
			Qtype:  dns.TypePTR,
			Qclass: dns.ClassINET,
		})
	}
	return q, nil
}

// namesFromMsg maps addresses to names using PTR answers and any A records
// carried alongside them.
func namesFromMsg(m *dns.Msg) map[string]string {
	out := map[string]string{}
	for _, rr := range append(m.Answer, m.Extra...) {
		switch t := rr.(type) {
		case *dns.PTR:
			if ip := ipFromArpa(t.Hdr.Name); ip != "" {
				out[ip] = strings.TrimSuffix(t.Ptr, ".")
			}
		case *dns.A:
			ip := t.A.String()
			if _, ok := out[ip]; !ok {
				out[ip] = strings.TrimSuffix(t.Hdr.Name, ".")
			}
		}
	}
	return out
}

// ipFromArpa turns "1.1.168.192.in-addr.arpa." into "192.168.1.1".
func ipFromArpa(name string) string {
	name = strings.TrimSuffix(strings.ToLower(name), ".")
	rest, ok := strings.CutSuffix(name, ".in-addr.arpa")
	if !ok {
		return ""
	}
	parts := strings.Split(rest, ".")
	if len(parts) != 4 {
		return ""
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	ip := net.ParseIP(strings.Join(parts, "."))
	if ip == nil {
		return ""
	}
	return ip.String()
}
