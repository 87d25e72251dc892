package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Lookup cache ─────────────────────────────────────────────────────────────
// The public SKU lookup endpoint caches price/stock per (branch, sku).
// Writers drop the key after every movement; the TTL covers the rest.

func LookupCacheKey(branchID uuid.UUID, sku string) string {
	return fmt.Sprintf("lookup:%s:%s", branchID, sku)
}

// invalidateLookup is best effort — a stale cache entry expires on its own.
func invalidateLookup(ctx context.Context, rdb *redis.Client, branchID uuid.UUID, skus ...string) {
	if rdb == nil {
		return
	}
	keys := make([]string, 0, len(skus))
	for _, sku := range skus {
		keys = append(keys, LookupCacheKey(branchID, sku))
	}
	_ = rdb.Del(ctx, keys...).Err()
}
