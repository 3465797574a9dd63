package prediction

import (
	"context"

	"github.com/plantify/plantify-go/store"
)

// History returns up to limit entries, newest first. A limit below 1
// returns all of them.
func (s *Service) History(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ClearHistory removes every entry.
func (s *Service) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, store.KeyPredictionHistory)
}

func (s *Service) record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > s.maxHistory {
		entries = entries[:s.maxHistory]
	}
	return store.SetJSON(ctx, s.store, store.KeyPredictionHistory, entries)
}

func (s *Service) load(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := store.GetJSON(ctx, s.store, store.KeyPredictionHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
