package arpcache

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

func query(ctx context.Context) (Table, error) {
	out, err := exec.CommandContext(ctx, "arp", "-a").Output()
	if err != nil {
		return nil, fmt.Errorf("arp -a: %w", err)
	}
	return parseArpA(bytes.NewReader(out)), nil
}
