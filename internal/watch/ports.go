package watch

import (
	"context"
	"fmt"

	gopsnet "github.com/shirou/gopsutil/v4/net"
)

// portBusy reports whether port is currently bound in LISTEN or TIME_WAIT
// state on the local host over TCP. A process can bind a port that still
// has TIME_WAIT sockets from a prior owner if it sets SO_REUSEADDR, but the
// controller treats "available" conservatively as neither state, per the
// project's port-release policy.
func portBusy(ctx context.Context, port int) (bool, error) {
	conns, err := gopsnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return false, fmt.Errorf("failed to enumerate tcp connections: %w", err)
	}

	for _, c := range conns {
		if int(c.Laddr.Port) != port {
			continue
		}
		switch c.Status {
		case "LISTEN", "TIME_WAIT":
			return true, nil
		}
	}
	return false, nil
}
