package scan

import (
	"net"
	"net/netip"
	"time"
)

// Unknown marks a MAC or vendor that has not been resolved.
const Unknown = "Unknown"

// Method names the strategy that observed a server.
type Method string

const (
	MethodSocket Method = "socket"
	MethodLink   Method = "link"
)

// Interface is a local adapter eligible for scanning.
type Interface struct {
	Name         string
	Index        int
	IP           netip.Addr
	Broadcast    netip.Addr
	HardwareAddr net.HardwareAddr
}

func (i Interface) netInterface() *net.Interface {
	return &net.Interface{Index: i.Index, Name: i.Name, HardwareAddr: i.HardwareAddr}
}

// Server is one DHCP server that answered a Discover.
type Server struct {
	IP          string `json:"ip"`
	MAC         string `json:"mac"`
	Vendor      string `json:"vendor"`
	Interface   string `json:"interface"`
	Method      Method `json:"method"`
	Hostname    string `json:"hostname,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	OfferedIP   string `json:"offered_ip,omitempty"`
}

// Strategy sends a Discover on one interface and reports who answered within timeout.
type Strategy interface {
	Method() Method
	Scan(ifi Interface, timeout time.Duration) ([]Server, error)
}

// Result is the outcome of one Scanner.Scan.
type Result struct {
	Servers []Server      `json:"servers"`
	Count   int           `json:"count"`
	Elapsed time.Duration `json:"elapsed"`
}
