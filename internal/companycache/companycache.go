package companycache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docvault/internal/model"
)

// Lookup resolves company summaries by id. Unknown ids are absent from the
// returned map.
type Lookup interface {
	ListSummaries(ctx context.Context, ids []int64) (map[int64]model.CompanySummary, error)
}

// Wrap returns next unchanged when size or ttl disable caching.
func Wrap(next Lookup, size int, ttl time.Duration) Lookup {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &lruLookup{
		next:  next,
		cache: expirable.NewLRU[int64, model.CompanySummary](size, nil, ttl),
	}
}

type lruLookup struct {
	next  Lookup
	cache *expirable.LRU[int64, model.CompanySummary]
}

func (l *lruLookup) ListSummaries(ctx context.Context, ids []int64) (map[int64]model.CompanySummary, error) {
	result := make(map[int64]model.CompanySummary, len(ids))
	missing := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if cached, ok := l.cache.Get(id); ok {
			result[id] = cached
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		logutil.GetLogger(ctx).Debug("company cache hit", zap.Int("count", len(result)))
		return result, nil
	}
	fetched, err := l.next.ListSummaries(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, item := range fetched {
		l.cache.Add(id, item)
		result[id] = item
	}
	return result, nil
}
