package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// HybridCacheService cache kết hợp bộ nhớ (L1) + Redis (L2).
// l2 có thể nil khi không cấu hình redis.url.
// Hit/miss đếm ở mức hybrid: miss L1 rồi hit L2 chỉ tính một hit.
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		l1:     l1,
		l2:     l2,
		logger: logger,
	}
}

func (hcs *HybridCacheService) tiers() []ICacheService {
	if hcs.l2 == nil {
		return []ICacheService{hcs.l1}
	}
	return []ICacheService{hcs.l1, hcs.l2}
}

// Get lấy payload (L1 trước, L2 sau)
func (hcs *HybridCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	// 1. Thử L1
	payload, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi L1 cache, fallback L2", zap.Error(err))
	} else if found {
		hcs.hits.Add(1)
		return payload, true, nil
	}

	if hcs.l2 == nil {
		hcs.misses.Add(1)
		return nil, false, nil
	}

	// 2. Thử L2
	payload, found, err = hcs.l2.Get(ctx, key)
	if err != nil {
		hcs.misses.Add(1)
		return nil, false, err
	}
	if !found {
		hcs.misses.Add(1)
		hcs.logger.Debug("Cache miss (L1 & L2)", zap.String("key", key))
		return nil, false, nil
	}
	hcs.hits.Add(1)

	// 3. Có trong L2 thì đồng bộ lên L1
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := hcs.l1.Set(bgCtx, key, payload); err != nil {
			hcs.logger.Warn("Lỗi sync L2->L1", zap.Error(err), zap.String("key", key))
		}
	}()

	hcs.logger.Debug("L2 cache hit", zap.String("key", key))
	return payload, true, nil
}

// Set lưu payload vào mọi tầng song song
func (hcs *HybridCacheService) Set(ctx context.Context, key string, payload []byte) error {
	return hcs.each(func(c ICacheService) error { return c.Set(ctx, key, payload) }, "cache errors")
}

// Delete xóa key khỏi mọi tầng
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.each(func(c ICacheService) error { return c.Delete(ctx, key) }, "delete errors")
}

// Clear xóa toàn bộ cache
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.each(func(c ICacheService) error { return c.Clear(ctx) }, "clear errors"); err != nil {
		return err
	}
	hcs.logger.Info("Cleared hybrid cache", zap.Int("tiers", len(hcs.tiers())))
	return nil
}

func (hcs *HybridCacheService) each(fn func(ICacheService) error, label string) error {
	tiers := hcs.tiers()
	errCh := make(chan error, len(tiers))
	for _, c := range tiers {
		go func(c ICacheService) {
			errCh <- fn(c)
		}(c)
	}

	var errs []error
	for range tiers {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", label, errors.Join(errs...))
	}
	return nil
}

// GetStats hit/miss của hybrid; số item lấy tầng lớn nhất vì L2 chứa cả L1.
// Tầng lỗi bị bỏ qua.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	var items int64
	ok := 0
	var lastErr error
	for _, c := range hcs.tiers() {
		stats, err := c.GetStats(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		ok++
		if stats.TotalItems > items {
			items = stats.TotalItems
		}
	}
	if ok == 0 {
		return nil, fmt.Errorf("không lấy được thống kê cache: %w", lastErr)
	}
	return newCacheStats(hcs.hits.Load(), hcs.misses.Load(), items), nil
}

// Close đóng mọi tầng
func (hcs *HybridCacheService) Close() error {
	var errs []error
	for _, c := range hcs.tiers() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
