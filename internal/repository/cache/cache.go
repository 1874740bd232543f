package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
)

const (
	KeySnapshot = "release-snapshot"
	KeyTotal    = "download-total"
)

// cacheRepository stores the two cached facts as JSON records under fixed
// keys. Entries never expire on the Redis side; staleness is decided by the
// caller from the record's captured_at field.
type cacheRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewCacheRepository(cl *redis.Client, log *slog.Logger) *cacheRepository {
	return &cacheRepository{
		cl:  cl,
		log: log.With(slog.String("item", "CacheRepository")),
	}
}

// Snapshot returns the cached release snapshot, or (nil, nil) when no entry
// exists. A store error is reported as common.ErrCacheUnavailable.
func (r *cacheRepository) Snapshot(ctx context.Context) (*entity.ReleaseSnapshot, error) {
	var snapshot entity.ReleaseSnapshot
	if err := r.get(ctx, KeySnapshot, &snapshot); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: cannot get snapshot: %v", common.ErrCacheUnavailable, err)
	}

	return &snapshot, nil
}

func (r *cacheRepository) SaveSnapshot(ctx context.Context, snapshot *entity.ReleaseSnapshot) error {
	if err := r.put(ctx, KeySnapshot, snapshot); err != nil {
		return fmt.Errorf("%w: cannot save snapshot: %v", common.ErrCacheUnavailable, err)
	}

	return nil
}

// Total returns the cached download total, or (nil, nil) when no entry
// exists.
func (r *cacheRepository) Total(ctx context.Context) (*entity.DownloadTotal, error) {
	var total entity.DownloadTotal
	if err := r.get(ctx, KeyTotal, &total); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: cannot get total: %v", common.ErrCacheUnavailable, err)
	}

	return &total, nil
}

func (r *cacheRepository) SaveTotal(ctx context.Context, total *entity.DownloadTotal) error {
	if err := r.put(ctx, KeyTotal, total); err != nil {
		return fmt.Errorf("%w: cannot save total: %v", common.ErrCacheUnavailable, err)
	}

	return nil
}

func (r *cacheRepository) get(ctx context.Context, key string, v any) error {
	data, err := r.cl.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		r.log.Error("Cannot decode cache entry", slog.String("key", key), slog.Any("error", err))

		return err
	}

	return nil
}

func (r *cacheRepository) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// Entries are overwritten wholesale, never patched.
	if _, err := r.cl.Set(ctx, key, string(data), 0).Result(); err != nil {
		r.log.Error("Cannot save cache entry", slog.String("key", key), slog.Any("error", err))

		return err
	}

	return nil
}
