package dhcp

import (
	"fmt"
	"net"

	"github.com/insomniacslk/dhcp/dhcpv4"
)

// Reply is what could be decoded from a server's answer to a Discover.
type Reply struct {
	MessageType string
	ServerID    net.IP
	OfferedIP   net.IP
	XID         TransactionID
}

// ParseReply decodes a received BOOTP/DHCP datagram.
func ParseReply(b []byte) (*Reply, error) {
	pkt, err := dhcpv4.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode dhcpv4: %w", err)
	}
	if pkt.OpCode != dhcpv4.OpcodeBootReply {
		return nil, fmt.Errorf("unexpected opcode %s", pkt.OpCode)
	}

	r := &Reply{
		ServerID:  pkt.ServerIdentifier(),
		OfferedIP: pkt.YourIPAddr,
		XID:       TransactionID(pkt.TransactionID),
	}
	if mt := pkt.MessageType(); mt != dhcpv4.MessageTypeNone {
		r.MessageType = mt.String()
	}
	return r, nil
}
