package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david2004kang/DHCP-finder/internal/scan"
)

func TestScanFlagsOptions(t *testing.T) {
	f := scanFlags{timeout: time.Second, ifaces: []string{"eth0"}, noLink: true, parallel: true}
	opts := f.options()

	assert.Equal(t, []scan.Method{scan.MethodSocket}, opts.Methods)
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Equal(t, []string{"eth0"}, opts.Interfaces)
	assert.True(t, opts.Parallel)

	f = scanFlags{}
	assert.Equal(t, []scan.Method{scan.MethodSocket, scan.MethodLink}, f.options().Methods)
}

func TestScanCmdRejectsNoMethod(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"scan", "--no-socket", "--no-link"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.ErrorIs(t, root.Execute(), errNoMethod)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, scan.Result{}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []any{}, got["servers"])
	assert.Equal(t, float64(0), got["count"])
}

func TestPrintServers(t *testing.T) {
	var buf bytes.Buffer
	printServers(&buf, nil)
	assert.Equal(t, "no DHCP servers found\n", buf.String())

	buf.Reset()
	printServers(&buf, []scan.Server{{IP: "192.168.1.1", MAC: scan.Unknown, Vendor: scan.Unknown, Interface: "eth0", Method: scan.MethodSocket}})
	assert.Contains(t, buf.String(), "192.168.1.1")
	assert.Contains(t, buf.String(), "1 DHCP server(s) found")
}

func TestWatcherObserve(t *testing.T) {
	log, hook := test.NewNullLogger()
	w := newWatcher([]string{"192.168.1.1"}, log)
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	fresh := w.observe([]scan.Server{
		{IP: "192.168.1.1", MAC: "00:50:56:c0:00:08", Vendor: "VMware", Interface: "eth0"},
	}, t0)
	assert.Len(t, fresh, 1)
	assert.Empty(t, hook.AllEntries(), "first round establishes the baseline")

	fresh = w.observe([]scan.Server{
		{IP: "192.168.1.1", MAC: scan.Unknown, Vendor: scan.Unknown, Interface: "eth0"},
		{IP: "192.168.1.66", MAC: scan.Unknown, Vendor: scan.Unknown, Interface: "eth0"},
	}, t0.Add(time.Minute))

	require.Len(t, fresh, 1)
	assert.Equal(t, "192.168.1.66", fresh[0].IP)

	known := w.seen["192.168.1.1"]
	assert.Equal(t, "00:50:56:c0:00:08", known.MAC, "a resolved MAC survives a round that could not resolve it")
	assert.Equal(t, t0, known.FirstSeen)
	assert.Equal(t, t0.Add(time.Minute), known.LastSeen)

	var msgs []string
	for _, e := range hook.AllEntries() {
		require.Equal(t, logrus.WarnLevel, e.Level)
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"new DHCP server appeared", "unexpected DHCP server"}, msgs)

	sorted := w.sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "192.168.1.1", sorted[0].IP)
}
