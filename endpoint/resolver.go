// Package endpoint discovers which of a fixed list of candidate base URLs is
// reachable and caches the answer for a bounded time.
//
// Resolve never fails. When no candidate answers it returns the first
// candidate unverified, and the failure surfaces later as a network error
// from the request that uses it.
package endpoint

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/plantify/plantify-go/logger"
	"github.com/plantify/plantify-go/store"
)

// Strategy selects how a probe round visits the candidates.
type Strategy string

const (
	// StrategyRace probes every candidate at once. The first reachable
	// answer wins and the remaining probes are cancelled.
	StrategyRace Strategy = "race"
	// StrategySequential probes candidates in list order.
	StrategySequential Strategy = "sequential"
)

// Defaults applied by New to zero-valued options.
const (
	DefaultProbePath           = "/register/"
	DefaultProbeTimeout        = 5 * time.Second
	DefaultTTL                 = 5 * time.Minute
	DefaultFailedRoundInterval = 10 * time.Second
)

// ErrNoCandidates is returned by New when the candidate list is empty.
var ErrNoCandidates = errors.New("endpoint: at least one candidate url is required")

// Clock abstracts time for TTL checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures a Resolver.
type Options struct {
	Candidates   []string
	ProbePath    string
	ProbeTimeout time.Duration
	TTL          time.Duration
	Strategy     Strategy
	// FailedRoundInterval is the minimum spacing between probe rounds once a
	// round found nothing reachable. Negative disables the limit.
	FailedRoundInterval time.Duration

	Clock      Clock
	HTTPClient *http.Client
	// Store, when set, persists the resolved URL across processes.
	Store  store.Store
	Logger logger.Logger
}

// Resolver resolves and caches the reachable base URL.
// It is safe for concurrent use.
type Resolver struct {
	opts   Options
	client *http.Client
	clock  Clock
	log    logger.Logger

	sfg singleflight.Group

	mu          sync.Mutex
	cached      string
	resolvedAt  time.Time
	roundFailed bool
	limiter     *rate.Limiter
}

// New creates a Resolver, filling unset options with defaults.
func New(opts Options) (*Resolver, error) {
	if len(opts.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	opts.Candidates = append([]string(nil), opts.Candidates...)

	if opts.ProbePath == "" {
		opts.ProbePath = DefaultProbePath
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyRace
	}
	if opts.FailedRoundInterval == 0 {
		opts.FailedRoundInterval = DefaultFailedRoundInterval
	}

	r := &Resolver{
		opts:   opts,
		client: opts.HTTPClient,
		clock:  opts.Clock,
		log:    opts.Logger,
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.clock == nil {
		r.clock = systemClock{}
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	r.limiter = r.newLimiter()

	return r, nil
}

func (r *Resolver) newLimiter() *rate.Limiter {
	if r.opts.FailedRoundInterval < 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(r.opts.FailedRoundInterval), 1)
}

// Candidates returns a copy of the candidate list.
func (r *Resolver) Candidates() []string {
	return append([]string(nil), r.opts.Candidates...)
}

// Fallback is the URL returned when nothing is reachable.
func (r *Resolver) Fallback() string {
	return r.opts.Candidates[0]
}

// Current returns the cached URL without probing. ok is false when nothing
// is cached or the entry has expired.
func (r *Resolver) Current() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentLocked()
}

func (r *Resolver) currentLocked() (string, bool) {
	if r.cached == "" || r.clock.Now().Sub(r.resolvedAt) >= r.opts.TTL {
		return "", false
	}
	return r.cached, true
}

// Resolve returns a reachable base URL. Concurrent callers share a single
// probe round. The round is bounded by the probe timeout, not by any one
// caller's ctx; a caller whose ctx ends first gets the fallback while the
// round goes on for the others.
func (r *Resolver) Resolve(ctx context.Context) string {
	if url, ok := r.Current(); ok {
		return url
	}

	if url, ok := r.loadPersisted(ctx); ok {
		return url
	}

	round := context.WithoutCancel(ctx)
	ch := r.sfg.DoChan("resolve", func() (any, error) {
		return r.resolveRound(round), nil
	})

	select {
	case res := <-ch:
		return res.Val.(string)
	case <-ctx.Done():
		r.log.Debug().
			Err(ctx.Err()).
			Str("fallback", r.Fallback()).
			Msg("Stopped waiting for probe round")
		return r.Fallback()
	}
}

func (r *Resolver) resolveRound(ctx context.Context) string {
	// another caller may have finished a round while we waited
	if url, ok := r.Current(); ok {
		return url
	}

	if !r.allowRound() {
		r.log.Debug().
			Str("fallback", r.Fallback()).
			Msg("Skipping probe round after recent failure")
		return r.Fallback()
	}

	start := r.clock.Now()
	url, ok := r.probeRound(ctx)
	if !ok {
		r.markFailed()
		r.log.Warn().
			Int("candidates", len(r.opts.Candidates)).
			Str("fallback", r.Fallback()).
			Msg("No candidate base URL is reachable, using fallback")
		return r.Fallback()
	}

	r.remember(ctx, url)
	r.log.Info().
		Str("url", url).
		Str("strategy", string(r.opts.Strategy)).
		Dur("elapsed", r.clock.Now().Sub(start)).
		Msg("Resolved API base URL")
	return url
}

func (r *Resolver) allowRound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.roundFailed || r.limiter == nil {
		return true
	}
	return r.limiter.AllowN(r.clock.Now(), 1)
}

func (r *Resolver) markFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.roundFailed && r.limiter != nil {
		// start the interval at the failure
		r.limiter.AllowN(r.clock.Now(), 1)
	}
	r.roundFailed = true
}

func (r *Resolver) remember(ctx context.Context, url string) {
	now := r.clock.Now()

	r.mu.Lock()
	r.cached = url
	r.resolvedAt = now
	r.roundFailed = false
	r.mu.Unlock()

	r.persist(ctx, url, now)
}

// Invalidate clears the cached URL, including the persisted copy, so the next
// Resolve probes again.
func (r *Resolver) Invalidate(ctx context.Context) {
	r.mu.Lock()
	r.cached = ""
	r.resolvedAt = time.Time{}
	r.roundFailed = false
	r.limiter = r.newLimiter()
	r.mu.Unlock()

	if r.opts.Store == nil {
		return
	}
	if err := r.opts.Store.Delete(ctx, store.KeyDetectedAPIURL); err != nil {
		r.log.Warn().Err(err).Msg("Failed to clear persisted base URL")
	}
}
