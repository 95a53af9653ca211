package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"duckdnsd/common"
)

const (
	DefaultEndpoint   = "https://www.duckdns.org/update"
	DefaultInterval   = 5 * time.Minute
	DefaultMaxBackoff = time.Hour
	DefaultTimeout    = 10 * time.Second
	DefaultStateDir   = "state"
)

// DefaultLookup is used when no lookup sources are configured.
var DefaultLookup = []LookupSource{
	{Type: "http", Source: "https://api.ipify.org"},
	{Type: "http", Source: "https://ipv4.icanhazip.com"},
	{Type: "http", Source: "https://v4.ident.me"},
}

// Normalize fills defaults in place. Call before Validate.
func (c *Config) Normalize() {
	if c.Service.Interval == 0 {
		c.Service.Interval = fromDuration(DefaultInterval)
	}
	if c.Service.MaxBackoff == 0 {
		c.Service.MaxBackoff = fromDuration(DefaultMaxBackoff)
	}
	if c.Service.StateDir == "" {
		c.Service.StateDir = DefaultStateDir
	}
	if c.Provider.Type == "" {
		c.Provider.Type = "duckdns"
	}
	if c.Provider.Endpoint == "" {
		c.Provider.Endpoint = DefaultEndpoint
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = fromDuration(DefaultTimeout)
	}
	if c.Provider.Verbose == nil {
		verbose := true
		c.Provider.Verbose = &verbose
	}
	if len(c.Lookup) == 0 {
		c.Lookup = DefaultLookup
	}
}

// Validate reports every configuration problem it can find at once,
// so the operator doesn't fix them one restart at a time.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.MaxBackoff < c.Service.Interval {
		errs = append(errs, fmt.Errorf("service: max_backoff %s below interval %s",
			c.Service.MaxBackoff, c.Service.Interval))
	}

	if c.Provider.Token == "" {
		errs = append(errs, errors.New("provider: token is required"))
	} else if strings.ContainsAny(c.Provider.Token, " \t\r\n") {
		errs = append(errs, errors.New("provider: token contains whitespace"))
	}

	if u, err := url.Parse(c.Provider.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("provider: bad endpoint: %w", err))
	} else if u.Scheme != "https" && u.Scheme != "http" {
		errs = append(errs, fmt.Errorf("provider: bad endpoint scheme %q", u.Scheme))
	}

	if len(c.Domain) == 0 {
		errs = append(errs, errors.New("domain: at least one domain is required"))
	}
	seen := map[string]struct{}{}
	for _, d := range c.Domain {
		if !validLabel(d) {
			errs = append(errs, fmt.Errorf("domain: %q is not a valid subdomain label", d))
		}
		if _, dup := seen[d]; dup {
			errs = append(errs, fmt.Errorf("domain: %q configured twice", d))
		}
		seen[d] = struct{}{}
	}

	for i, l := range c.Lookup {
		if l.Type == "" {
			errs = append(errs, fmt.Errorf("lookup[%d]: type is required", i))
		}
		if l.Source == "" {
			errs = append(errs, fmt.Errorf("lookup[%d]: source is required", i))
		}
	}

	return errors.Join(errs...)
}

// validLabel checks a single DNS label: letters, digits and hyphens,
// not starting or ending with a hyphen, at most 63 octets.
func validLabel(s string) bool {
	if len(s) == 0 || len(s) > 63 {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

func fromDuration(d time.Duration) common.Duration { return common.Duration(d) }
