package coupon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Importer loads coupon files and writes their definitions to a Store.
type Importer struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewImporter creates a new coupon importer.
func NewImporter(loader Loader, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import loads every file, merges the definitions so the last file wins for
// a repeated code, and upserts the result. Nothing is written if any file
// fails to load.
func (i *Importer) Import(ctx context.Context, files []string) (int, error) {
	if len(files) == 0 {
		return 0, fmt.Errorf("no coupon files given")
	}

	merged := NewSet(64)
	redefined := 0
	for _, f := range files {
		set, err := i.loader.Load(ctx, f)
		if err != nil {
			return 0, fmt.Errorf("failed to load coupon file %s: %w", f, err)
		}
		for _, code := range merged.Merge(set) {
			c, _ := merged.Get(code)
			i.logger.Info().
				Str("code", code).
				Str("file", f).
				Int("discount_percent", c.DiscountPercent).
				Bool("active", c.IsActive).
				Msg("coupon redefined by later file")
			redefined++
		}
	}

	n, err := i.store.Upsert(ctx, merged.Coupons())
	if err != nil {
		i.logger.Error().Err(err).Int("coupons", merged.Size()).Msg("failed to store coupons")
		return 0, fmt.Errorf("failed to store coupons: %w", err)
	}

	i.logger.Info().
		Int("files", len(files)).
		Int("coupons", n).
		Int("redefined", redefined).
		Msg("coupons imported")

	return n, nil
}
