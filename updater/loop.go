package updater

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"duckdnsd/common"
	"duckdnsd/ddns"
	"duckdnsd/log"
	"duckdnsd/state"
)

type Resolver interface {
	Resolve(ctx context.Context) (netip.Addr, error)
}

type Publisher interface {
	Publish(ctx context.Context, domains []string, ip netip.Addr) (ddns.Status, error)
}

type Store interface {
	Load(ctx context.Context, domain string) state.Record
	Save(ctx context.Context, domain string, rec state.Record) error
	AppendHistory(domain string, entry state.HistoryEntry) error
}

// Attempt is the outcome of one tick.
type Attempt struct {
	Outcome common.Outcome
	IP      netip.Addr
	Err     error
}

// Loop drives resolve-compare-publish for a single domain. It is the sole
// writer of that domain's record.
type Loop struct {
	domain     string
	resolver   Resolver
	publisher  Publisher
	store      Store
	interval   time.Duration
	maxBackoff time.Duration

	rec   state.Record
	phase phase
}

func New(domain string, r Resolver, p Publisher, s Store, interval, maxBackoff time.Duration) *Loop {
	return &Loop{
		domain:     domain,
		resolver:   r,
		publisher:  p,
		store:      s,
		interval:   interval,
		maxBackoff: maxBackoff,
		phase:      phaseIdle,
	}
}

// Run ticks until ctx is cancelled or the provider rejects the token.
// A restart re-checks the IP immediately; the persisted record only spares
// us a redundant publish, never a lookup.
func (l *Loop) Run(ctx context.Context) error {
	ctx = log.With(ctx, log.Domain(l.domain))
	l.rec = l.store.Load(ctx, l.domain)

	if l.rec.LastIP != "" {
		log.S(ctx).Infow("recovered state", "last_ip", l.rec.LastIP, "failures", l.rec.Failures)
	}

	for {
		attempt := l.tick(ctx)
		if ctx.Err() != nil {
			// The tick was cut short; leave the record as it was.
			l.setPhase(ctx, phaseStopped)
			return ctx.Err()
		}
		l.persist(ctx, attempt)

		if ddns.IsUnauthorized(attempt.Err) {
			l.setPhase(ctx, phaseStopped)
			return fmt.Errorf("giving up on %s: %w", l.domain, attempt.Err)
		}

		sleep := l.nextSleep(attempt)
		l.setPhase(ctx, phaseSleeping)
		log.S(ctx).Debugw("sleeping", "duration", sleep, "failures", l.rec.Failures)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.setPhase(ctx, phaseStopped)
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunOnce performs a single tick and returns its error, if any.
func (l *Loop) RunOnce(ctx context.Context) error {
	ctx = log.With(ctx, log.Domain(l.domain))
	l.rec = l.store.Load(ctx, l.domain)

	attempt := l.tick(ctx)
	l.persist(ctx, attempt)
	l.setPhase(ctx, phaseStopped)

	return attempt.Err
}

func (l *Loop) tick(ctx context.Context) Attempt {
	ctx = log.With(ctx, log.Elapsed("tick_elapsed"))
	l.rec.LastAttempt = time.Now()

	l.setPhase(ctx, phaseResolving)
	ip, err := l.resolver.Resolve(ctx)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			// Shutdown mid-resolve is not an outage.
			log.S(ctx).Debugw("tick aborted by shutdown", zap.Error(cerr))
			return Attempt{Outcome: common.OutcomeFailed, Err: cerr}
		}
		l.rec.Failures++
		log.S(ctx).Errorw("resolve failed", zap.Error(err), "failures", l.rec.Failures)
		return Attempt{Outcome: common.OutcomeFailed, Err: err}
	}

	l.setPhase(ctx, phaseComparing)
	if l.rec.LastIP == ip.String() {
		l.rec.Failures = 0
		log.S(ctx).Infow("ip unchanged, skip update", log.IP(ip))
		return Attempt{Outcome: common.OutcomeUnchanged, IP: ip}
	}

	l.setPhase(ctx, phasePublishing)
	status, err := l.publisher.Publish(ctx, []string{l.domain}, ip)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			log.S(ctx).Debugw("tick aborted by shutdown", zap.Error(cerr))
			return Attempt{Outcome: common.OutcomeFailed, IP: ip, Err: cerr}
		}
		if !ddns.IsUnauthorized(err) {
			l.rec.Failures++
		}
		log.S(ctx).Errorw("publish failed", zap.Error(err), log.IP(ip), "failures", l.rec.Failures)
		return Attempt{Outcome: common.OutcomeFailed, IP: ip, Err: err}
	}

	oldIP := l.rec.LastIP
	now := time.Now()
	l.rec.LastIP = ip.String()
	l.rec.LastUpdate = &now
	l.rec.Failures = 0

	log.S(ctx).Infow("record updated", log.IP(ip), "old_ip", oldIP, "provider_changed", status.Changed)
	return Attempt{Outcome: common.OutcomeUpdated, IP: ip}
}

// persist writes the record and the attempt history. Neither failure stops
// the loop: the in-memory record still drives correct behavior until the
// disk comes back.
func (l *Loop) persist(ctx context.Context, attempt Attempt) {
	if err := l.store.Save(ctx, l.domain, l.rec); err != nil {
		log.S(ctx).Warnw("state not persisted, continuing on memory", zap.Error(err))
	}

	entry := state.HistoryEntry{
		Time:    l.rec.LastAttempt,
		Outcome: attempt.Outcome,
	}
	if attempt.IP.IsValid() {
		entry.IP = attempt.IP.String()
	}
	if attempt.Err != nil {
		entry.Message = attempt.Err.Error()
	}

	if err := l.store.AppendHistory(l.domain, entry); err != nil {
		log.S(ctx).Warnw("history not persisted", zap.Error(err))
	}
}

func (l *Loop) nextSleep(attempt Attempt) time.Duration {
	if attempt.Outcome != common.OutcomeFailed {
		return l.interval
	}

	return backoff(l.interval, l.maxBackoff, l.rec.Failures)
}

func (l *Loop) setPhase(ctx context.Context, p phase) {
	l.phase = p
	log.S(ctx).Debugw("phase change", log.Stage(p.String()))
}
