//go:build !linux && !windows

package arpcache

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

func query(ctx context.Context) (Table, error) {
	out, err := exec.CommandContext(ctx, "arp", "-an").Output()
	if err != nil {
		return nil, fmt.Errorf("arp -an: %w", err)
	}
	return parseArpAN(bytes.NewReader(out)), nil
}
