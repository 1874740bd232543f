package release

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valink-solutions/chunkvault-updater/internal/entity"
	"github.com/valink-solutions/chunkvault-updater/internal/service/download"
)

const serviceName = "release"

type ReleaseSource interface {
	Releases(ctx context.Context) ([]entity.Release, error)
}

type CacheRepository interface {
	Snapshot(ctx context.Context) (*entity.ReleaseSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *entity.ReleaseSnapshot) error
	Total(ctx context.Context) (*entity.DownloadTotal, error)
	SaveTotal(ctx context.Context, total *entity.DownloadTotal) error
}

// releaseService serves the release list and the aggregate download total
// from the cache while fresh, refreshing both from a single upstream fetch
// when stale. Concurrent refreshes are allowed to race; every refresh writes
// the same projection of upstream truth, so last write wins.
type releaseService struct {
	source ReleaseSource
	repo   CacheRepository
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func NewReleaseService(source ReleaseSource, repo CacheRepository, window time.Duration, log *slog.Logger) *releaseService {
	return &releaseService{
		source: source,
		repo:   repo,
		window: window,
		now:    time.Now,
		log:    log.With(slog.String("service", serviceName)),
	}
}

// Releases returns the current release list, from cache when fresh.
func (s *releaseService) Releases(ctx context.Context) ([]entity.Release, error) {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		// The cache is an optimization, not a source of truth.
		s.log.Warn("Cache unavailable, falling back to upstream", slog.Any("error", err))
		snapshot = nil
	}

	if snapshot != nil && isFresh(snapshot.CapturedAt, s.now(), s.window) {
		return snapshot.Releases, nil
	}

	refreshed, _, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}

	return refreshed.Releases, nil
}

// Total returns the aggregate download counter, from cache when fresh.
func (s *releaseService) Total(ctx context.Context) (*entity.DownloadTotal, error) {
	total, err := s.repo.Total(ctx)
	if err != nil {
		s.log.Warn("Cache unavailable, falling back to upstream", slog.Any("error", err))
		total = nil
	}

	if total != nil && isFresh(total.CapturedAt, s.now(), s.window) {
		return total, nil
	}

	_, refreshed, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}

	return refreshed, nil
}

// refresh fetches the release list once and recomputes both cached facts
// from it, so the two stay consistent with each other. Cache write failures
// are logged and swallowed; the fetched data still serves this request.
func (s *releaseService) refresh(ctx context.Context) (*entity.ReleaseSnapshot, *entity.DownloadTotal, error) {
	releases, err := s.source.Releases(ctx)
	if err != nil {
		s.log.Error("Cannot fetch releases", slog.Any("error", err))

		return nil, nil, fmt.Errorf("cannot fetch releases: %w", err)
	}

	capturedAt := s.now().UTC().Format(time.RFC3339)
	snapshot := &entity.ReleaseSnapshot{
		Releases:   releases,
		CapturedAt: capturedAt,
	}
	total := &entity.DownloadTotal{
		Total:      download.TotalDownloads(releases),
		CapturedAt: capturedAt,
	}

	if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
		s.log.Error("Cannot save snapshot", slog.Any("error", err))
	}
	if err := s.repo.SaveTotal(ctx, total); err != nil {
		s.log.Error("Cannot save total", slog.Any("error", err))
	}

	s.log.Info("Refreshed release cache",
		slog.Int("release_count", len(releases)),
		slog.Int64("total_downloads", total.Total))

	return snapshot, total, nil
}

// isFresh reports whether a cached record captured at capturedAt may still be
// served at now. An absent or unparsable timestamp is never fresh; unknown-age
// data forces a refresh.
func isFresh(capturedAt string, now time.Time, window time.Duration) bool {
	t, err := time.Parse(time.RFC3339, capturedAt)
	if err != nil {
		return false
	}

	return t.Add(window).After(now)
}
