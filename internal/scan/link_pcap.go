//go:build !linux

package scan

import (
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"
	"github.com/sirupsen/logrus"
)

const replyBPF = "udp and src port 67"

// exchange injects frame through libpcap and hands every captured reply
// received before timeout to handle.
func exchange(ifi Interface, frame []byte, timeout time.Duration, log logrus.FieldLogger, handle func([]byte)) error {
	dev := pcapDevice(ifi)
	h, err := pcap.OpenLive(dev, 65536, true, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("open pcap on %s: %w", dev, err)
	}
	defer h.Close()

	if err := h.SetBPFFilter(replyBPF); err != nil {
		return fmt.Errorf("set filter: %w", err)
	}
	if err := h.WritePacketData(frame); err != nil {
		return fmt.Errorf("send discover frame: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		data, _, err := h.ReadPacketData()
		if err == pcap.NextErrorTimeoutExpired {
			continue
		}
		if err != nil {
			log.WithError(err).Debug("capture aborted")
			break
		}
		handle(data)
	}
	return nil
}

// pcapDevice finds the libpcap device carrying ifi's address. On Windows
// device names are NPF paths rather than adapter names.
func pcapDevice(ifi Interface) string {
	devs, err := pcap.FindAllDevs()
	if err != nil {
		return ifi.Name
	}
	for _, d := range devs {
		if d.Name == ifi.Name {
			return d.Name
		}
		for _, a := range d.Addresses {
			if a.IP.Equal(ifi.IP.AsSlice()) {
				return d.Name
			}
		}
	}
	return ifi.Name
}
