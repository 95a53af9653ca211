package resolve

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"go.uber.org/zap"

	"duckdnsd/common"
	"duckdnsd/config"
	"duckdnsd/log"
)

const maxReadLookup = 4 * 1024

const defaultLookupTimeout = 5 * time.Second

type httpSource struct {
	config.LookupHTTPConfig `mapstructure:",squash"`

	url string
}

func (s *httpSource) Typename() string {
	return "http"
}

func (s *httpSource) wrapDialer(upstream transportDialer) transportDialer {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		switch s.Family {
		case common.IPv4:
			network += "4"
		case common.IPv6:
			network += "6"
		}

		return upstream(ctx, network, addr)
	}
}

func (s *httpSource) Lookup(ctx context.Context) (result netip.Addr, err error) {
	client := http.DefaultClient
	timeout := time.Duration(s.Timeout)
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	if ctxClient := ctx.Value(common.HTTPClientKey); ctxClient != nil {
		client = ctxClient.(*http.Client)
	}

	client = wrapClientDialer(ctx, client, s.wrapDialer)

	ctx = log.SWith(ctx, "url", s.url, "family", s.Family, "timeout", timeout)

	tCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = tCtx

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		log.S(ctx).Errorw("new request failed", zap.Error(err))
		return netip.Addr{}, fmt.Errorf("new request failed: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.S(ctx).Warnw("connection failed", zap.Error(err))
		return netip.Addr{}, fmt.Errorf("connection failed: %w", err)
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.S(ctx).Warnw("close body failed", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.S(ctx).Warnw("unexpected status", "status", resp.Status)
		return netip.Addr{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReadLookup))
	if err != nil {
		log.S(ctx).Warnw("receiving response failed", zap.Error(err))
		return netip.Addr{}, fmt.Errorf("failed receiving response: %w", err)
	}

	ipString := strings.TrimSpace(string(data))
	nip, err := netip.ParseAddr(ipString)
	if err != nil {
		log.S(ctx).Warnw("no IP found in response", "body", ipString, zap.Error(err))
		return netip.Addr{}, fmt.Errorf("no IP found in response: %w", err)
	}

	switch {
	case nip.Zone() != "":
		log.S(ctx).Warnw("found zone in IP", "ip", ipString, "zone", nip.Zone())
		return netip.Addr{}, fmt.Errorf("unsupported: found zone in IP")

	case (nip.Is4() || nip.Is4In6()) && s.Family == common.IPv4:
		result = nip.Unmap()

	case nip.Is6() && !nip.Is4In6() && s.Family == common.IPv6:
		result = nip

	default:
		log.S(ctx).Warnw("mismatched IP family", "ip", ipString)
		return netip.Addr{}, fmt.Errorf("mismatched IP family: got %s", ipString)
	}

	log.S(ctx).Debugw("got ip", log.IP(result))
	return result, nil
}

func newHTTP(ctx context.Context, config config.LookupSource) (Interface, error) {
	ctx = log.SWith(ctx, "type", "http")

	s := &httpSource{url: config.Source}
	if err := common.WeakDecodeMap(config.Config, s); err != nil {
		log.S(ctx).Errorw("bad config", zap.Error(err), "config", config.Config)
		return nil, fmt.Errorf("bad config: %w", err)
	}

	return s, nil
}
