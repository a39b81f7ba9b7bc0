package dhcp

import (
	"net"
	"testing"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMAC = net.HardwareAddr{0x00, 0x0c, 0x29, 0xaa, 0xbb, 0xcc}

func TestBuildDiscoverLayout(t *testing.T) {
	xid := TransactionID{0xde, 0xad, 0xbe, 0xef}
	pkt := BuildDiscover(testMAC, xid)

	require.Len(t, pkt, HeaderLen+4+9)

	assert.Equal(t, byte(1), pkt[opOffset])
	assert.Equal(t, byte(1), pkt[htypeOffset])
	assert.Equal(t, byte(6), pkt[hlenOffset])
	assert.Equal(t, byte(0), pkt[hopsOffset])
	assert.Equal(t, xid[:], pkt[xidOffset:xidOffset+4])
	assert.Equal(t, []byte{0, 0, 0, 0}, pkt[secsOffset:ciaddrOffset])
	assert.Equal(t, make([]byte, 16), pkt[ciaddrOffset:chaddrOffset])

	chaddr := pkt[chaddrOffset : chaddrOffset+chaddrLen]
	assert.Equal(t, []byte(testMAC), chaddr[:6])
	assert.Equal(t, make([]byte, 10), chaddr[6:])

	assert.Equal(t, make([]byte, snameLen+fileLen), pkt[snameOffset:HeaderLen])
	assert.Equal(t, MagicCookie[:], pkt[HeaderLen:HeaderLen+4])
	assert.Equal(t, []byte{53, 1, 1, 55, 3, 1, 3, 6, 0xff}, pkt[HeaderLen+4:])
	assert.Equal(t, byte(0xff), pkt[len(pkt)-1])
}

func TestBuildDiscoverOffsets(t *testing.T) {
	// the layout constants must add up to the fixed header size
	assert.Equal(t, HeaderLen, chaddrOffset+chaddrLen+snameLen+fileLen)
	assert.Equal(t, 240, MinPacketLen)
}

func TestBuildDiscoverDecodes(t *testing.T) {
	xid := NewTransactionID(time.Unix(1700000000, 0))
	pkt, err := dhcpv4.FromBytes(BuildDiscover(testMAC, xid))
	require.NoError(t, err)

	assert.Equal(t, dhcpv4.OpcodeBootRequest, pkt.OpCode)
	assert.Equal(t, dhcpv4.MessageTypeDiscover, pkt.MessageType())
	assert.Equal(t, testMAC, pkt.ClientHWAddr)
	assert.Equal(t, dhcpv4.TransactionID(xid), pkt.TransactionID)
	assert.True(t, pkt.IsOptionRequested(dhcpv4.OptionSubnetMask))
	assert.True(t, pkt.IsOptionRequested(dhcpv4.OptionRouter))
	assert.True(t, pkt.IsOptionRequested(dhcpv4.OptionDomainNameServer))
}

func TestBuildDiscoverShortMAC(t *testing.T) {
	pkt := BuildDiscover(net.HardwareAddr{0x01, 0x02}, TransactionID{})
	assert.Equal(t, []byte{0x01, 0x02, 0, 0, 0, 0}, pkt[chaddrOffset:chaddrOffset+6])
	assert.Len(t, pkt, MinPacketLen+len(discoverOptions))
}

func TestNewTransactionID(t *testing.T) {
	ts := time.Unix(0x1_2345_6789, 0)
	xid := NewTransactionID(ts)
	assert.Equal(t, TransactionID{0x23, 0x45, 0x67, 0x89}, xid)
	assert.Equal(t, uint32(0x23456789), xid.Uint32())
	assert.Equal(t, xid, NewTransactionID(ts.Add(500*time.Millisecond)))
}

func TestParseReply(t *testing.T) {
	offer, err := dhcpv4.New(
		dhcpv4.WithReply(mustDiscover(t)),
		dhcpv4.WithMessageType(dhcpv4.MessageTypeOffer),
		dhcpv4.WithServerIP(net.IPv4(192, 168, 1, 1)),
		dhcpv4.WithYourIP(net.IPv4(192, 168, 1, 50)),
		dhcpv4.WithOption(dhcpv4.OptServerIdentifier(net.IPv4(192, 168, 1, 1))),
	)
	require.NoError(t, err)

	r, err := ParseReply(offer.ToBytes())
	require.NoError(t, err)
	assert.Equal(t, "OFFER", r.MessageType)
	assert.True(t, r.ServerID.Equal(net.IPv4(192, 168, 1, 1)))
	assert.True(t, r.OfferedIP.Equal(net.IPv4(192, 168, 1, 50)))
	assert.Equal(t, TransactionID{1, 2, 3, 4}, r.XID)
}

func TestParseReplyRejects(t *testing.T) {
	_, err := ParseReply(BuildDiscover(testMAC, TransactionID{}))
	assert.Error(t, err, "a BootRequest is not a reply")

	_, err = ParseReply(make([]byte, 10))
	assert.Error(t, err)
}

func mustDiscover(t *testing.T) *dhcpv4.DHCPv4 {
	t.Helper()
	d, err := dhcpv4.FromBytes(BuildDiscover(testMAC, TransactionID{1, 2, 3, 4}))
	require.NoError(t, err)
	return d
}
