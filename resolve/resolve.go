package resolve

import (
	"context"
	"net/netip"

	"duckdnsd/config"
)

type Interface interface {
	Lookup(ctx context.Context) (netip.Addr, error)
	Typename() string
}

var Sources = map[string]func(ctx context.Context, source config.LookupSource) (Interface, error){
	"http":   newHTTP,
	"static": newStatic,
}
