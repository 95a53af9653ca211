package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"duckdnsd/config"
	"duckdnsd/log"
)

// Error reports that every configured lookup source failed for one resolve
// call. The per-source failures are available through Unwrap.
type Error struct {
	errs []error
}

func (e *Error) Error() string {
	return fmt.Sprintf("all lookup sources failed: %v", errors.Join(e.errs...))
}

func (e *Error) Unwrap() []error {
	return e.errs
}

// Resolver tries sources in configured order and returns the first address
// accepted. It performs no retries of its own; the caller owns retry policy.
type Resolver struct {
	sources []Interface
}

func (r *Resolver) Resolve(ctx context.Context) (netip.Addr, error) {
	ctx = log.SWith(ctx, log.Stage("resolve"))

	var errs []error
	for _, source := range r.sources {
		ip, err := source.Lookup(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source.Typename(), err))
			continue
		}

		log.S(ctx).Infow("resolved ip", log.IP(ip), "source_type", source.Typename())
		return ip, nil
	}

	log.S(ctx).Errorw("all sources failed, unable to get ip", "count", len(errs))
	return netip.Addr{}, &Error{errs: errs}
}

func New(ctx context.Context, c []config.LookupSource) (*Resolver, error) {
	r := &Resolver{}

	for _, s := range c {
		ctx := log.SWith(ctx, log.Stage("init:source"), "type", s.Type)
		create, ok := Sources[s.Type]
		if !ok {
			log.S(ctx).Errorw("unknown source type")
			return nil, fmt.Errorf("unknown source type %q", s.Type)
		}

		source, err := create(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed creating source: %w", err)
		}
		r.sources = append(r.sources, source)
	}

	if len(r.sources) == 0 {
		return nil, errors.New("no lookup sources configured")
	}

	return r, nil
}
