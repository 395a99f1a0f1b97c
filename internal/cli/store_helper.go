package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/existflow/deadlines/internal/config"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/present"
	"github.com/existflow/deadlines/internal/storage"
	"github.com/existflow/deadlines/internal/store"
)

// openStore opens the configured backend and loads the collection
func openStore(ctx context.Context) (*store.Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("Failed to open storage", logger.F("driver", cfg.Storage.Driver), logger.F("error", err))
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	opts := []store.Option{
		store.WithKey(cfg.Storage.Key),
		store.WithClock(appClock),
		store.WithPersistEmpty(cfg.PersistEmpty),
		store.WithLogger(logger.L()),
	}
	if !cfg.Seed {
		opts = append(opts, store.NoSeed())
	}

	s := store.New(kv, opts...)
	if _, err := s.Load(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func closeStore(s *store.Store) {
	if err := s.Close(); err != nil {
		logger.Warn("Failed to close storage", logger.F("error", err))
	}
}

// location resolves the configured display timezone
func location() (*time.Location, error) {
	name := present.DefaultTimezone
	if cfg != nil && cfg.Timezone != "" {
		name = cfg.Timezone
	}
	return present.LoadLocation(name)
}

func truncateLength() int {
	if cfg != nil && cfg.TruncateLength > 0 {
		return cfg.TruncateLength
	}
	return present.DefaultTruncate
}

// resolveID accepts a full id or an unambiguous prefix of one
func resolveID(s *store.Store, arg string) (model.Deadline, error) {
	if d, ok := s.Get(arg); ok {
		return d, nil
	}

	var matches []model.Deadline
	for _, d := range s.List() {
		if strings.HasPrefix(d.ID, arg) {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 0:
		return model.Deadline{}, fmt.Errorf("deadline not found: %s", arg)
	case 1:
		return matches[0], nil
	default:
		return model.Deadline{}, fmt.Errorf("id %q matches %d deadlines, be more specific", arg, len(matches))
	}
}
