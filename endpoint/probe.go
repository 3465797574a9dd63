package endpoint

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/plantify/plantify-go/internal/tracking"
)

// Probe reports whether url answers GET <url><probe path> with 200, or with
// 405 (reachable, wrong verb) within the probe timeout.
func (r *Resolver) Probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	defer cancel()

	reachable := r.probe(ctx, url)
	tracking.RecordProbe(ctx, reachable)
	return reachable
}

func (r *Resolver) probe(ctx context.Context, url string) bool {
	target := strings.TrimRight(url, "/") + r.opts.ProbePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		r.log.Debug().Err(err).Str("url", url).Msg("Invalid candidate URL")
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Debug().Err(err).Str("url", url).Msg("Candidate unreachable")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	ok := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusMethodNotAllowed
	r.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Bool("reachable", ok).
		Msg("Probed candidate")
	return ok
}

func (r *Resolver) probeRound(ctx context.Context) (string, bool) {
	if r.opts.Strategy == StrategySequential {
		return r.probeSequential(ctx)
	}
	return r.probeRace(ctx)
}

func (r *Resolver) probeSequential(ctx context.Context) (string, bool) {
	for _, url := range r.opts.Candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if r.Probe(ctx, url) {
			return url, true
		}
	}
	return "", false
}

type probeResult struct {
	url string
	ok  bool
}

func (r *Resolver) probeRace(ctx context.Context) (string, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered so losing probes never block after we return
	results := make(chan probeResult, len(r.opts.Candidates))
	for _, url := range r.opts.Candidates {
		go func(url string) {
			results <- probeResult{url: url, ok: r.Probe(ctx, url)}
		}(url)
	}

	for range r.opts.Candidates {
		res := <-results
		if res.ok {
			return res.url, true
		}
	}
	return "", false
}
