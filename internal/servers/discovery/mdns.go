package discovery

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// Advertise announces a relay on the local network.
func Advertise(serviceType string, port int, info ...string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"collabcanvas relay"}
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse collects relay addresses (host:port) answering within timeout.
func Browse(ctx context.Context, serviceType string, timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	done := make(chan error, 1)
	go func() {
		done <- mdns.Query(params)
		close(entries)
	}()

	var found []string
	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				return found, <-done
			}
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port)
			if !seen[addr] {
				seen[addr] = true
				found = append(found, addr)
			}
		}
	}
}
