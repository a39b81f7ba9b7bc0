package dhcp

import (
	"encoding/binary"
	"net"
	"time"
)

// BOOTP fixed header layout.
const (
	opOffset     = 0
	htypeOffset  = 1
	hlenOffset   = 2
	hopsOffset   = 3
	xidOffset    = 4
	secsOffset   = 8
	flagsOffset  = 10
	ciaddrOffset = 12
	yiaddrOffset = 16
	siaddrOffset = 20
	giaddrOffset = 24
	chaddrOffset = 28
	chaddrLen    = 16
	snameOffset  = 44
	snameLen     = 64
	fileOffset   = 108
	fileLen      = 128

	// HeaderLen is the size of the fixed BOOTP header; the magic cookie starts here.
	HeaderLen = 236

	cookieOffset  = HeaderLen
	optionsOffset = cookieOffset + 4

	// MinPacketLen is the smallest datagram accepted as a plausible DHCP reply.
	MinPacketLen = optionsOffset
)

const (
	opBootRequest = 1
	htypeEthernet = 1
	hlenEthernet  = 6
)

// Option tags.
const (
	optSubnetMask   = 1
	optRouter       = 3
	optDNS          = 6
	optMessageType  = 53
	optParamRequest = 55
	optEnd          = 0xff

	msgTypeDiscover = 1
)

// Well-known BOOTP ports.
const (
	ServerPort = 67
	ClientPort = 68
)

// MagicCookie separates the BOOTP header from the DHCP options.
var MagicCookie = [4]byte{0x63, 0x82, 0x53, 0x63}

var discoverOptions = []byte{
	optMessageType, 1, msgTypeDiscover,
	optParamRequest, 3, optSubnetMask, optRouter, optDNS,
	optEnd,
}

// TransactionID identifies one Discover exchange.
type TransactionID [4]byte

// NewTransactionID derives a transaction ID from t's Unix seconds truncated to 32 bits.
// Two scans started within the same second share an ID.
func NewTransactionID(t time.Time) TransactionID {
	var xid TransactionID
	binary.BigEndian.PutUint32(xid[:], uint32(t.Unix()))
	return xid
}

func (x TransactionID) Uint32() uint32 {
	return binary.BigEndian.Uint32(x[:])
}

// BuildDiscover serializes a DHCPDISCOVER for the client hardware address mac.
// At most 16 bytes of mac are used; shorter addresses are zero padded.
func BuildDiscover(mac net.HardwareAddr, xid TransactionID) []byte {
	pkt := make([]byte, optionsOffset+len(discoverOptions))

	pkt[opOffset] = opBootRequest
	pkt[htypeOffset] = htypeEthernet
	pkt[hlenOffset] = hlenEthernet
	pkt[hopsOffset] = 0
	copy(pkt[xidOffset:xidOffset+4], xid[:])
	binary.BigEndian.PutUint16(pkt[secsOffset:secsOffset+2], 0)
	binary.BigEndian.PutUint16(pkt[flagsOffset:flagsOffset+2], 0)

	// ciaddr, yiaddr, siaddr and giaddr stay 0.0.0.0.
	for _, off := range []int{ciaddrOffset, yiaddrOffset, siaddrOffset, giaddrOffset} {
		copy(pkt[off:off+4], net.IPv4zero.To4())
	}

	copy(pkt[chaddrOffset:chaddrOffset+chaddrLen], mac)
	clear(pkt[snameOffset : snameOffset+snameLen])
	clear(pkt[fileOffset : fileOffset+fileLen])

	copy(pkt[cookieOffset:optionsOffset], MagicCookie[:])
	copy(pkt[optionsOffset:], discoverOptions)

	return pkt
}
