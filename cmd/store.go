package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-cli/internal/analytics"
	"github.com/sells-group/proposal-cli/internal/resilience"
	"github.com/sells-group/proposal-cli/internal/store"
)

// initStore validates the config for mode and opens the configured store.
func initStore(ctx context.Context, mode string) (store.Store, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// newEngine builds the analytics engine over src from the loaded config.
func newEngine(src analytics.Source) (*analytics.Engine, error) {
	if err := analytics.ValidateConfig(cfg.Analytics); err != nil {
		return nil, err
	}
	return analytics.NewEngine(src, cfg.Analytics, resilience.FromConfig(cfg.Retry)), nil
}
