package ddns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"duckdnsd/common"
	"duckdnsd/config"
	"duckdnsd/log"
)

// Duck DNS answers a GET on /update with a tiny text body. First line is
// "OK" or "KO"; with verbose=true an OK answer also echoes the addresses
// and whether anything actually changed ("UPDATED" / "NOCHANGE").
const maxReadUpdate = 1024

type duckDNS struct {
	endpoint string
	token    string
	timeout  time.Duration
	verbose  bool
}

func (d *duckDNS) Publish(ctx context.Context, domains []string, ip netip.Addr) (Status, error) {
	// Never put the token in the log context.
	ctx = log.SWith(ctx, "provider", "duckdns", "domains", strings.Join(domains, ","), log.IP(ip))

	client := http.DefaultClient
	if ctxClient := ctx.Value(common.HTTPClientKey); ctxClient != nil {
		client = ctxClient.(*http.Client)
	}

	tCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	ctx = tCtx

	params := url.Values{}
	params.Set("domains", strings.Join(domains, ","))
	params.Set("token", d.token)
	if ip.Is4() || ip.Is4In6() {
		params.Set("ip", ip.Unmap().String())
	} else {
		params.Set("ipv6", ip.String())
	}
	if d.verbose {
		params.Set("verbose", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		log.S(ctx).Errorw("new request failed", zap.Error(err))
		return Status{}, &UpdateError{Kind: Transient, Cause: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		log.S(ctx).Warnw("connection failed", zap.Error(err))
		return Status{}, &UpdateError{Kind: Transient, Cause: err}
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.S(ctx).Warnw("close body failed", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.S(ctx).Warnw("unexpected status", "status", resp.Status)
		return Status{}, &UpdateError{Kind: Transient, Cause: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReadUpdate))
	if err != nil {
		log.S(ctx).Warnw("receiving response failed", zap.Error(err))
		return Status{}, &UpdateError{Kind: Transient, Cause: err}
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	switch lines[0] {
	case "OK":
		status := parseVerbose(lines)
		log.S(ctx).Debugw("provider accepted update", "changed", status.Changed)
		return status, nil

	case "KO":
		log.S(ctx).Errorw("provider rejected token")
		return Status{}, &UpdateError{Kind: Unauthorized, Cause: errors.New("provider answered KO")}

	default:
		log.S(ctx).Warnw("unrecognized response", "body", lines[0])
		return Status{}, &UpdateError{Kind: Transient, Cause: fmt.Errorf("unrecognized response: %q", lines[0])}
	}
}

// parseVerbose reads the extra lines of a verbose OK response:
// line 2 echoed IPv4, line 3 echoed IPv6, line 4 UPDATED or NOCHANGE.
func parseVerbose(lines []string) Status {
	status := Status{Changed: true}

	if len(lines) > 1 {
		status.IPv4 = lines[1]
	}
	if len(lines) > 2 {
		status.IPv6 = lines[2]
	}
	if len(lines) > 3 && lines[3] == "NOCHANGE" {
		status.Changed = false
	}

	return status
}

func newDuckDNS(ctx context.Context, provider config.ProviderConfig) (Interface, error) {
	ctx = log.SWith(ctx, "type", "duckdns")

	if provider.Token == "" {
		log.S(ctx).Errorw("missing token")
		return nil, errors.New("missing token")
	}

	verbose := true
	if provider.Verbose != nil {
		verbose = *provider.Verbose
	}

	return &duckDNS{
		endpoint: provider.Endpoint,
		token:    provider.Token,
		timeout:  time.Duration(provider.Timeout),
		verbose:  verbose,
	}, nil
}
