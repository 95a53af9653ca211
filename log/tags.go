package log

import (
	"net/netip"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Stage(stage string) zap.Field {
	return zap.String("stage", stage)
}

func Domain(domain string) zap.Field {
	return zap.String("domain", domain)
}

func IP(ip netip.Addr) zap.Field {
	return zap.Stringer("ip", ip)
}

type elapsed struct {
	t   time.Time
	key string
}

func (v *elapsed) MarshalLogObject(e zapcore.ObjectEncoder) error {
	e.AddDuration(v.key, time.Since(v.t))
	return nil
}

func Elapsed(key string) zap.Field {
	return zap.Inline(&elapsed{
		t:   time.Now(),
		key: key,
	})
}
