package resolve

import (
	"context"
	"net"
	"net/http"
	"reflect"

	"duckdnsd/log"
)

type transportDialer func(ctx context.Context, network, addr string) (net.Conn, error)

// wrapClientDialer clones client's transport with its dialer wrapped, so a
// source can pin the network family without mutating the shared client.
// A transport we cannot introspect is replaced by a fresh default one; the
// caller's other client settings still apply.
func wrapClientDialer(ctx context.Context, client *http.Client, wrapperBuilder func(upstream transportDialer) transportDialer) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		if client.Transport != nil {
			log.S(ctx).Debugw("custom transport cannot be family-pinned, using default",
				"transport_type", reflect.TypeOf(client.Transport).String())
		}
		transport = http.DefaultTransport.(*http.Transport)
	}

	transport = transport.Clone()
	transport.DialContext = wrapperBuilder(transport.DialContext)

	if transport.DialTLSContext != nil {
		transport.DialTLSContext = wrapperBuilder(transport.DialTLSContext)
	}

	clientCopy := *client
	clientCopy.Transport = transport
	return &clientCopy
}
