package cache

import (
	"context"
	"time"
)

// Cache holds short-lived computed values (performance snapshots). Entries
// are namespaced by a scope, the owning user id, so invalidation never
// crosses users. Implementations are best effort: a failed backend turns
// into a miss on read and a no-op on write.
type Cache interface {
	Get(ctx context.Context, scope, key string) ([]byte, bool)
	Set(ctx context.Context, scope, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, scope, key string)
}

// PerformanceKey builds the cache key for a performance snapshot variant
// ("complete", "simulados", "questoes").
func PerformanceKey(userID, variant string) string {
	return "performance:" + userID + ":" + variant
}

// DisciplineKey builds the cache key for a single discipline's stats.
func DisciplineKey(userID, disciplina string) string {
	return "discipline_stats:" + userID + ":" + disciplina
}
