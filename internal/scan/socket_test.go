package scan

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david2004kang/DHCP-finder/internal/dhcp"
)

var loopback = Interface{
	Name:         "lo-test",
	IP:           netip.MustParseAddr("127.0.0.1"),
	Broadcast:    netip.MustParseAddr("127.0.0.1"),
	HardwareAddr: net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
}

func TestPlausibleReply(t *testing.T) {
	assert.True(t, plausibleReply(240))
	assert.True(t, plausibleReply(576))
	assert.False(t, plausibleReply(239))
	assert.False(t, plausibleReply(0))
}

func freeUDPPort(t *testing.T) int {
	t.Helper()
	c, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer c.Close()
	return c.LocalAddr().(*net.UDPAddr).Port
}

// fakeServer answers the first Discover it receives with a reply of size bytes.
func fakeServer(t *testing.T, size int) int {
	t.Helper()
	pc, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	go func() {
		buf := make([]byte, 1500)
		n, src, err := pc.ReadFromUDP(buf)
		if err != nil || n < dhcp.MinPacketLen {
			return
		}
		reply := make([]byte, size)
		copy(reply, buf[:n])
		reply[0] = 2 // BOOTREPLY
		_, _ = pc.WriteToUDP(reply, src)
	}()

	return pc.LocalAddr().(*net.UDPAddr).Port
}

func TestSocketStrategyCollectsReply(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := &SocketStrategy{
		ClientPort: freeUDPPort(t),
		ServerPort: fakeServer(t, dhcp.MinPacketLen),
		Log:        log,
	}

	start := time.Now()
	servers, err := s.Scan(loopback, 500*time.Millisecond)
	require.NoError(t, err)

	require.Len(t, servers, 1)
	srv := servers[0]
	assert.Equal(t, "127.0.0.1", srv.IP)
	assert.Equal(t, Unknown, srv.MAC)
	assert.Equal(t, Unknown, srv.Vendor)
	assert.Equal(t, "lo-test", srv.Interface)
	assert.Equal(t, MethodSocket, srv.Method)
	assert.Less(t, time.Since(start), 2*time.Second, "listen window must bound the scan")
}

func TestSocketStrategyDropsShortDatagram(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := &SocketStrategy{
		ClientPort: freeUDPPort(t),
		ServerPort: fakeServer(t, dhcp.MinPacketLen-1),
		Log:        log,
	}

	servers, err := s.Scan(loopback, 300*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestSocketStrategyBindFailure(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := &SocketStrategy{ClientPort: freeUDPPort(t), Log: log}

	// TEST-NET-1 is never assigned to a local interface
	ifi := loopback
	ifi.IP = netip.MustParseAddr("192.0.2.1")

	servers, err := s.Scan(ifi, 100*time.Millisecond)
	assert.Error(t, err)
	assert.Empty(t, servers)
}
