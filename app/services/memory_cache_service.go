package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// DefaultL1Size số payload tối đa giữ trong bộ nhớ
const DefaultL1Size = 256

// MemoryCacheService cache in-process dùng LRU có TTL (L1)
type MemoryCacheService struct {
	l1Cache *expirable.LRU[string, []byte]
	logger  *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCacheService tạo mới MemoryCacheService.
// ttl <= 0 thì entry không hết hạn, chỉ bị đẩy ra theo LRU.
func NewMemoryCacheService(size int, ttl time.Duration, logger *zap.Logger) *MemoryCacheService {
	if size <= 0 {
		size = DefaultL1Size
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCacheService{
		l1Cache: expirable.NewLRU[string, []byte](size, nil, ttl),
		logger:  logger,
	}
}

// Get lấy payload từ LRU
func (mcs *MemoryCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, ok := mcs.l1Cache.Get(key)
	if !ok {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	mcs.hits.Add(1)
	mcs.logger.Debug("L1 cache hit", zap.String("key", key))
	return payload, true, nil
}

// Set lưu payload vào LRU
func (mcs *MemoryCacheService) Set(ctx context.Context, key string, payload []byte) error {
	if evicted := mcs.l1Cache.Add(key, payload); evicted {
		mcs.logger.Debug("L1 cache đầy, đã loại entry cũ nhất")
	}
	return nil
}

// Delete xóa key khỏi LRU
func (mcs *MemoryCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)
	return nil
}

// Clear xóa toàn bộ LRU
func (mcs *MemoryCacheService) Clear(ctx context.Context) error {
	n := mcs.l1Cache.Len()
	mcs.l1Cache.Purge()
	mcs.logger.Info("Đã clear L1 cache", zap.Int("keys_deleted", n))
	return nil
}

// GetStats lấy thống kê L1
func (mcs *MemoryCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	return newCacheStats(mcs.hits.Load(), mcs.misses.Load(), int64(mcs.l1Cache.Len())), nil
}

// Close không cần làm gì
func (mcs *MemoryCacheService) Close() error {
	return nil
}
