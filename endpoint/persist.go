package endpoint

import (
	"context"
	"time"

	"github.com/plantify/plantify-go/store"
)

// persisted is the stored form of a resolved URL. Timestamp is unix
// milliseconds.
type persisted struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

func (r *Resolver) persist(ctx context.Context, url string, at time.Time) {
	if r.opts.Store == nil {
		return
	}
	entry := persisted{URL: url, Timestamp: at.UnixMilli()}
	if err := store.SetJSON(ctx, r.opts.Store, store.KeyDetectedAPIURL, entry); err != nil {
		r.log.Warn().Err(err).Str("url", url).Msg("Failed to persist resolved base URL")
	}
}

// loadPersisted adopts a stored URL that is still within its TTL.
func (r *Resolver) loadPersisted(ctx context.Context) (string, bool) {
	if r.opts.Store == nil {
		return "", false
	}

	var entry persisted
	found, err := store.GetJSON(ctx, r.opts.Store, store.KeyDetectedAPIURL, &entry)
	if err != nil {
		r.log.Warn().Err(err).Msg("Ignoring unreadable persisted base URL")
		return "", false
	}
	if !found || entry.URL == "" {
		return "", false
	}

	at := time.UnixMilli(entry.Timestamp)
	if r.clock.Now().Sub(at) >= r.opts.TTL {
		return "", false
	}

	r.mu.Lock()
	r.cached = entry.URL
	r.resolvedAt = at
	r.mu.Unlock()

	r.log.Debug().Str("url", entry.URL).Msg("Using persisted base URL")
	return entry.URL, true
}
