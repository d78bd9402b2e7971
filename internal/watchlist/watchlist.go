// Package watchlist keeps the user's starred symbols in a key-value store.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"stock-dashboard-backend/internal/cache"
	"stock-dashboard-backend/internal/stockdata"
)

const DefaultKey = "watchlist"

// KV is the byte store holding the serialized list. Get returns
// cache.ErrMiss for an absent key.
type KV interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, val []byte) error
}

// Service reads and updates one watchlist.
type Service struct {
	kv  KV
	key string
	mu  sync.Mutex
}

// NewService stores the list under key, DefaultKey when empty.
func NewService(kv KV, key string) *Service {
	if key == "" {
		key = DefaultKey
	}
	return &Service{kv: kv, key: key}
}

// List returns the symbols in insertion order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Toggle adds symbol if absent and removes it otherwise. It reports whether
// the symbol is watched afterwards.
func (s *Service) Toggle(ctx context.Context, symbol string) (bool, []string, error) {
	symbol, err := stockdata.NormalizeSymbol(symbol)
	if err != nil {
		return false, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, nil, err
	}
	watched := !slices.Contains(list, symbol)
	if watched {
		list = append(list, symbol)
	} else {
		list = slices.DeleteFunc(list, func(v string) bool { return v == symbol })
	}
	if err := s.save(ctx, list); err != nil {
		return false, nil, err
	}
	return watched, list, nil
}

// Remove drops symbol; removing an absent symbol is not an error.
func (s *Service) Remove(ctx context.Context, symbol string) ([]string, error) {
	symbol, err := stockdata.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next := slices.DeleteFunc(slices.Clone(list), func(v string) bool { return v == symbol })
	if len(next) == len(list) {
		return list, nil
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) load(ctx context.Context) ([]string, error) {
	data, err := s.kv.GetBytes(ctx, s.key)
	if errors.Is(err, cache.ErrMiss) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (s *Service) save(ctx context.Context, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := s.kv.SetBytes(ctx, s.key, data); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}
