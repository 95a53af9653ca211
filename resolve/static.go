package resolve

import (
	"context"
	"fmt"
	"net/netip"

	"go.uber.org/zap"

	"duckdnsd/config"
	"duckdnsd/log"
)

// static always returns a fixed address. Useful when the public address is
// known ahead of time (port-forwarded setups) or as a last-resort fallback.
type static struct {
	addr netip.Addr
}

func (s *static) Typename() string {
	return "static"
}

func (s *static) Lookup(ctx context.Context) (netip.Addr, error) {
	return s.addr, nil
}

func newStatic(ctx context.Context, config config.LookupSource) (Interface, error) {
	ctx = log.SWith(ctx, "type", "static")

	addr, err := netip.ParseAddr(config.Source)
	if err != nil {
		log.S(ctx).Errorw("bad address", "source", config.Source, zap.Error(err))
		return nil, fmt.Errorf("bad address: %w", err)
	}

	return &static{addr: addr}, nil
}
