package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/david2004kang/DHCP-finder/internal/dhcp"
)

// SocketStrategy broadcasts a Discover from a UDP socket bound to the
// interface address and collects every plausible reply. It cannot see the
// responder's MAC.
type SocketStrategy struct {
	// ClientPort and ServerPort default to 68 and 67.
	ClientPort int
	ServerPort int

	Log logrus.FieldLogger
	Now func() time.Time
}

// errPortInUse is returned when another process, usually the host's own DHCP
// client, already holds the client port.
var errPortInUse = errors.New("client port in use")

func (s *SocketStrategy) Method() Method { return MethodSocket }

func (s *SocketStrategy) Scan(ifi Interface, timeout time.Duration) ([]Server, error) {
	log := s.logger().WithFields(logrus.Fields{"iface": ifi.Name, "method": MethodSocket})

	conn, err := s.listen(ifi.IP)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	xid := dhcp.NewTransactionID(s.now())
	dst := net.UDPAddrFromAddrPort(netip.AddrPortFrom(ifi.Broadcast, uint16(s.serverPort())))
	if _, err := conn.WriteToUDP(dhcp.BuildDiscover(ifi.HardwareAddr, xid), dst); err != nil {
		return nil, fmt.Errorf("send discover to %s: %w", dst, err)
	}
	log.WithField("xid", fmt.Sprintf("0x%08x", xid.Uint32())).Debugf("discover sent to %s", dst)

	var servers []Server
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 1500)

	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		n, src, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) {
				log.WithError(err).Debug("read aborted")
			}
			break
		}
		if !plausibleReply(n) {
			log.Debugf("ignoring %d byte datagram from %s", n, src)
			continue
		}

		srv := Server{
			IP:        src.Addr().Unmap().String(),
			MAC:       Unknown,
			Vendor:    Unknown,
			Interface: ifi.Name,
			Method:    MethodSocket,
		}
		annotate(&srv, buf[:n])
		servers = appendUnique(servers, srv)
	}

	return servers, nil
}

func (s *SocketStrategy) listen(ip netip.Addr) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return setBroadcastReuse(c)
		},
	}

	laddr := netip.AddrPortFrom(ip, uint16(s.clientPort())).String()
	pc, err := lc.ListenPacket(context.Background(), "udp4", laddr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, fmt.Errorf("bind %s: %w: %w", laddr, errPortInUse, err)
		}
		return nil, fmt.Errorf("bind %s: %w", laddr, err)
	}
	return pc.(*net.UDPConn), nil
}

// plausibleReply reports whether a datagram of n bytes can hold a BOOTP header and magic cookie.
func plausibleReply(n int) bool {
	return n >= dhcp.MinPacketLen
}

// annotate copies what can be decoded from a reply onto srv. Undecodable
// replies are still candidates.
func annotate(srv *Server, b []byte) {
	r, err := dhcp.ParseReply(b)
	if err != nil {
		return
	}
	srv.MessageType = r.MessageType
	if r.OfferedIP != nil && !r.OfferedIP.IsUnspecified() {
		srv.OfferedIP = r.OfferedIP.String()
	}
}

func (s *SocketStrategy) clientPort() int {
	if s.ClientPort == 0 {
		return dhcp.ClientPort
	}
	return s.ClientPort
}

func (s *SocketStrategy) serverPort() int {
	if s.ServerPort == 0 {
		return dhcp.ServerPort
	}
	return s.ServerPort
}

func (s *SocketStrategy) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SocketStrategy) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}
