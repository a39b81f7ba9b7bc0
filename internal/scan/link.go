package scan

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sirupsen/logrus"

	"github.com/david2004kang/DHCP-finder/internal/dhcp"
	"github.com/david2004kang/DHCP-finder/internal/oui"
)

// LinkStrategy crafts a complete Ethernet/IPv4/UDP Discover frame and captures
// replies at the link layer. It sees offers that are unicast to the client
// hardware address and therefore never reach a UDP socket, and it learns the
// responder's MAC from the frame. Opening the capture needs elevated privileges.
type LinkStrategy struct {
	Log logrus.FieldLogger
	Now func() time.Time
}

var errNoEthernet = errors.New("interface has no ethernet address")

func (l *LinkStrategy) Method() Method { return MethodLink }

func (l *LinkStrategy) Scan(ifi Interface, timeout time.Duration) ([]Server, error) {
	log := l.logger().WithFields(logrus.Fields{"iface": ifi.Name, "method": MethodLink})

	if loopbackLike(ifi.Name) {
		log.Debug("skipping loopback-like interface")
		return nil, nil
	}
	if len(ifi.HardwareAddr) != 6 {
		return nil, errNoEthernet
	}

	chaddr, err := randomClientMAC()
	if err != nil {
		return nil, err
	}
	frame, err := discoverFrame(ifi.HardwareAddr, chaddr, dhcp.NewTransactionID(l.now()))
	if err != nil {
		return nil, fmt.Errorf("build discover frame: %w", err)
	}

	var servers []Server
	err = exchange(ifi, frame, timeout, log, func(data []byte) {
		if srv, ok := serverFromFrame(data, ifi); ok {
			servers = appendUnique(servers, srv)
		}
	})
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func loopbackLike(name string) bool {
	n := strings.ToLower(name)
	return n == "lo" || strings.HasPrefix(n, "loopback") || strings.HasPrefix(n, "lo0")
}

// randomClientMAC returns a random unicast, locally administered address.
func randomClientMAC() (net.HardwareAddr, error) {
	mac := make(net.HardwareAddr, 6)
	if _, err := rand.Read(mac); err != nil {
		return nil, fmt.Errorf("random client mac: %w", err)
	}
	mac[0] = (mac[0] | 0x02) &^ 0x01
	return mac, nil
}

func discoverFrame(src, chaddr net.HardwareAddr, xid dhcp.TransactionID) ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       src,
		DstMAC:       layers.EthernetBroadcast,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4zero.To4(),
		DstIP:    net.IPv4bcast.To4(),
	}
	udp := &layers.UDP{
		SrcPort: dhcp.ClientPort,
		DstPort: dhcp.ServerPort,
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(dhcp.BuildDiscover(chaddr, xid)))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// serverFromFrame turns a captured frame carrying a BOOTREPLY into a Server.
// Frames sent by ifi itself are ignored.
func serverFromFrame(data []byte, ifi Interface) (Server, bool) {
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	bootp, ok := pkt.Layer(layers.LayerTypeDHCPv4).(*layers.DHCPv4)
	if !ok || bootp.Operation != layers.DHCPOpReply {
		return Server{}, false
	}
	eth, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok || bytes.Equal(eth.SrcMAC, ifi.HardwareAddr) {
		return Server{}, false
	}
	ip4, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok || ip4.SrcIP.IsUnspecified() {
		return Server{}, false
	}

	mac := eth.SrcMAC.String()
	srv := Server{
		IP:        ip4.SrcIP.String(),
		MAC:       mac,
		Vendor:    oui.Lookup(mac),
		Interface: ifi.Name,
		Method:    MethodLink,
	}
	if udp, ok := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP); ok {
		annotate(&srv, udp.Payload)
	}
	return srv, true
}

func (l *LinkStrategy) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *LinkStrategy) logger() logrus.FieldLogger {
	if l.Log != nil {
		return l.Log
	}
	return logrus.StandardLogger()
}
