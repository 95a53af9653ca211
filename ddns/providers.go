package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"duckdnsd/config"
)

type Interface interface {
	Publish(ctx context.Context, domains []string, ip netip.Addr) (Status, error)
}

// Status describes what the provider reports it did with the update.
type Status struct {
	Changed bool
	IPv4    string
	IPv6    string
}

type ErrorKind int

const (
	// Transient failures are worth retrying: network blips, provider
	// hiccups, unrecognized responses.
	Transient ErrorKind = iota
	// Unauthorized means the provider rejected the token. Retrying cannot
	// help until configuration changes.
	Unauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Unauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("unknown<%d>", int(k))
	}
}

type UpdateError struct {
	Kind  ErrorKind
	Cause error
}

func (e *UpdateError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("update failed (%s)", e.Kind)
	}
	return fmt.Sprintf("update failed (%s): %v", e.Kind, e.Cause)
}

func (e *UpdateError) Unwrap() error {
	return e.Cause
}

func IsUnauthorized(err error) bool {
	var ue *UpdateError
	return errors.As(err, &ue) && ue.Kind == Unauthorized
}

var Providers = map[string]func(ctx context.Context, provider config.ProviderConfig) (Interface, error){
	"duckdns": newDuckDNS,
}
