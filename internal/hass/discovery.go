package hass

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

const (
	// mDNS service Home Assistant advertises itself under.
	serviceType   = "_home-assistant._tcp"
	serviceDomain = "local."

	// DiscoverTimeout bounds one discovery scan.
	DiscoverTimeout = 10 * time.Second
)

// Discover browses the local network for a Home Assistant instance and
// returns its "host:port". Used when no host is configured.
func Discover(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DiscoverTimeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan string, 1)
	go func() {
		for entry := range entries {
			if len(entry.AddrIPv4) == 0 {
				continue
			}
			host := fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port)
			logging.Info("discovered home assistant",
				zap.String("instance", entry.Instance),
				zap.String("host", host),
			)
			select {
			case found <- host:
			default:
			}
		}
	}()

	if err := resolver.Browse(ctx, serviceType, serviceDomain, entries); err != nil {
		return "", fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case host := <-found:
		return host, nil
	case <-ctx.Done():
		return "", fmt.Errorf("no home assistant instance found within %s", DiscoverTimeout)
	}
}
