package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/david2004kang/DHCP-finder/internal/arpcache"
	"github.com/david2004kang/DHCP-finder/internal/oui"
)

func TestDedupeKeepsFirstSeen(t *testing.T) {
	in := []Server{
		{IP: "10.0.0.1", MAC: "M1"},
		{IP: "10.0.0.2", MAC: "M2"},
		{IP: "10.0.0.1", MAC: "M3"},
	}
	want := []Server{
		{IP: "10.0.0.1", MAC: "M1"},
		{IP: "10.0.0.2", MAC: "M2"},
	}

	got := Dedupe(in)
	assert.Equal(t, want, got)
	assert.Equal(t, got, Dedupe(got))
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}

func TestAppendUnique(t *testing.T) {
	var s []Server
	s = appendUnique(s, Server{IP: "10.0.0.1", Method: MethodSocket})
	s = appendUnique(s, Server{IP: "10.0.0.1", Method: MethodLink})
	s = appendUnique(s, Server{IP: "10.0.0.3"})
	assert.Len(t, s, 2)
	assert.Equal(t, MethodSocket, s[0].Method)
}

func TestFillFromARPOnlyFillsGaps(t *testing.T) {
	servers := []Server{
		{IP: "192.168.1.1", MAC: Unknown, Vendor: Unknown},
		{IP: "192.168.1.2", MAC: "00:0c:29:00:00:01", Vendor: "VMware"},
		{IP: "192.168.1.3", MAC: Unknown, Vendor: Unknown},
	}
	table := arpcache.Table{
		"192.168.1.1": "00:50:56:c0:00:08",
		"192.168.1.2": "aa:bb:cc:11:22:33",
	}

	n := fillFromARP(servers, table)

	assert.Equal(t, 1, n)
	assert.Equal(t, "00:50:56:c0:00:08", servers[0].MAC)
	assert.Equal(t, "VMware", servers[0].Vendor)
	assert.Equal(t, "00:0c:29:00:00:01", servers[1].MAC, "known MAC must not be overwritten")
	assert.Equal(t, Unknown, servers[2].MAC)
	assert.Equal(t, Unknown, servers[2].Vendor)
}

func TestFillFromARPUnregisteredVendor(t *testing.T) {
	servers := []Server{{IP: "192.168.1.1", MAC: Unknown, Vendor: Unknown}}
	fillFromARP(servers, arpcache.Table{"192.168.1.1": "AA:BB:CC:11:22:33"})
	assert.Equal(t, "AA:BB:CC:11:22:33", servers[0].MAC)
	assert.Equal(t, oui.Unknown, servers[0].Vendor)
}
