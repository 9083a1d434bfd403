package merchant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"payment-gateway/internal/logging"
)

const redisKeyPrefix = "merchant:"

// Directory is the gateway's MerchantDirectory: a process-local go-cache
// snapshot backed by a shared Redis tier, refreshed periodically so reads
// stay cache-friendly while absence is only authoritative after a
// source-of-truth miss (spec §4.2).
type Directory struct {
	redis   *redis.Client
	local   *cache.Cache
	source  Source
	ttl     time.Duration
}

// NewDirectory wires local (go-cache) in front of redis, with source as the
// ultimate fallback (e.g. Postgres merchants table) on a shared-cache miss.
func NewDirectory(redisClient *redis.Client, source Source, refreshInterval time.Duration) *Directory {
	return &Directory{
		redis:  redisClient,
		local:  cache.New(refreshInterval, 2*refreshInterval),
		source: source,
		ttl:    refreshInterval,
	}
}

// Lookup resolves merchant_key, preferring the local snapshot, then Redis,
// then the authoritative Source. A source hit repopulates both cache tiers.
func (d *Directory) Lookup(ctx context.Context, merchantKey string) (Merchant, bool, error) {
	if v, ok := d.local.Get(merchantKey); ok {
		return v.(Merchant), true, nil
	}

	if d.redis != nil {
		raw, err := d.redis.Get(ctx, redisKeyPrefix+merchantKey).Result()
		if err == nil {
			var m Merchant
			if jsonErr := json.Unmarshal([]byte(raw), &m); jsonErr == nil {
				d.local.SetDefault(merchantKey, m)
				return m, true, nil
			}
		} else if err != redis.Nil {
			logging.FromContext(ctx).Warn("merchant redis lookup failed", zap.Error(err), zap.String("merchant_key", merchantKey))
		}
	}

	m, ok, err := d.source.GetByKey(ctx, merchantKey)
	if err != nil {
		return Merchant{}, false, err
	}
	if !ok {
		return Merchant{}, false, nil
	}

	d.store(ctx, m)
	return m, true, nil
}

// IsActive resolves merchantKey and reports its active flag, treating an
// unknown merchant as inactive.
func (d *Directory) IsActive(ctx context.Context, merchantKey string) bool {
	m, ok, err := d.Lookup(ctx, merchantKey)
	return err == nil && ok && m.Active
}

// ValidateCredentials is provided for administrative flows; request-path
// authentication always goes through Signer.Verify instead.
func (d *Directory) ValidateCredentials(ctx context.Context, merchantKey, secretCandidate string) (bool, error) {
	m, ok, err := d.Lookup(ctx, merchantKey)
	if err != nil || !ok {
		return false, err
	}
	return m.Secret == secretCandidate, nil
}

// Refresh repopulates the local snapshot for merchantKey from Redis/Source.
// No periodic loop calls it; RunSnapshotRefresh flushes the whole local
// snapshot instead.
func (d *Directory) Refresh(ctx context.Context, merchantKey string) error {
	d.local.Delete(merchantKey)
	_, _, err := d.Lookup(ctx, merchantKey)
	return err
}

func (d *Directory) store(ctx context.Context, m Merchant) {
	d.local.SetDefault(m.MerchantKey, m)
	if d.redis == nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, redisKeyPrefix+m.MerchantKey, raw, d.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("merchant redis store failed", zap.Error(err), zap.String("merchant_key", m.MerchantKey))
	}
}

// RunSnapshotRefresh periodically clears the local cache so the next Lookup
// re-consults Redis, so no local entry outlives one interval after a flush.
func (d *Directory) RunSnapshotRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.local.Flush()
			logging.FromContext(ctx).Debug("merchant directory snapshot flushed", zap.Duration("interval", interval))
		}
	}
}
