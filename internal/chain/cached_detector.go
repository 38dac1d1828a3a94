package chain

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/iho/chainvault/internal/domain"
	"github.com/iho/chainvault/internal/usecase"
)

// CachedDetector decorates a TransferDetector with a cache. Detection
// only ever runs against mined transactions, whose transfers never
// change, so cached results cannot go stale.
type CachedDetector struct {
	inner  usecase.TransferDetector
	cache  usecase.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDetector creates a new CachedDetector.
func NewCachedDetector(inner usecase.TransferDetector, cache usecase.Cache, ttl time.Duration, logger *slog.Logger) *CachedDetector {
	if logger == nil {
		logger = slog.Default()
	}

	return &CachedDetector{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Detect implements usecase.TransferDetector. Cache failures fall back
// to direct detection.
func (d *CachedDetector) Detect(ctx context.Context, hash string) (*domain.DetectionResult, error) {
	key := "detect:" + hash

	cached, err := d.cache.Get(ctx, key)
	if err == nil {
		var result domain.DetectionResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		d.logger.Warn("detection cache read failed",
			slog.String("tx_hash", hash),
			slog.String("error", err.Error()))
	}

	result, err := d.inner.Detect(ctx, hash)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := d.cache.Set(ctx, key, encoded, d.ttl); err != nil {
			d.logger.Warn("detection cache write failed",
				slog.String("tx_hash", hash),
				slog.String("error", err.Error()))
		}
	}

	return result, nil
}
