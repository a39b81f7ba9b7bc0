package scan

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
	"github.com/sirupsen/logrus"
)

// exchange sends frame on an AF_PACKET socket and hands every filtered frame
// received before timeout to handle.
func exchange(ifi Interface, frame []byte, timeout time.Duration, log logrus.FieldLogger, handle func([]byte)) error {
	filter, err := assembleReplyFilter()
	if err != nil {
		return fmt.Errorf("assemble filter: %w", err)
	}

	c, err := packet.Listen(ifi.netInterface(), packet.Raw, int(ethernet.EtherTypeIPv4), &packet.Config{Filter: filter})
	if err != nil {
		return fmt.Errorf("open packet socket on %s: %w", ifi.Name, err)
	}
	defer c.Close()

	// offers addressed to the random client MAC are only visible in promiscuous mode
	if err := c.SetPromiscuous(true); err != nil {
		log.WithError(err).Debug("promiscuous mode unavailable")
	}

	if _, err := c.WriteTo(frame, &packet.Addr{HardwareAddr: ethernet.Broadcast}); err != nil {
		return fmt.Errorf("send discover frame: %w", err)
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65536)
	for time.Now().Before(deadline) {
		_ = c.SetReadDeadline(deadline)
		n, _, err := c.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, os.ErrDeadlineExceeded) {
				log.WithError(err).Debug("capture aborted")
			}
			break
		}
		handle(buf[:n])
	}
	return nil
}
