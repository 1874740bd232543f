package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
	"github.com/valink-solutions/chunkvault-updater/internal/service/update"
)

const serviceName = "download"

type ReleaseProvider interface {
	Releases(ctx context.Context) ([]entity.Release, error)
	Total(ctx context.Context) (*entity.DownloadTotal, error)
}

type CacheRepository interface {
	Total(ctx context.Context) (*entity.DownloadTotal, error)
	SaveTotal(ctx context.Context, total *entity.DownloadTotal) error
}

// TotalDownloads sums every asset's download counter across the whole release
// list. There is no per-asset deduplication: a file attached to two releases
// counts twice, matching upstream's own counters.
func TotalDownloads(releases []entity.Release) int64 {
	var total int64
	for _, release := range releases {
		for _, asset := range release.Assets {
			total += asset.DownloadCount
		}
	}

	return total
}

type downloadService struct {
	releases ReleaseProvider
	repo     CacheRepository
	log      *slog.Logger
}

func NewDownloadService(releases ReleaseProvider, repo CacheRepository, log *slog.Logger) *downloadService {
	return &downloadService{
		releases: releases,
		repo:     repo,
		log:      log.With(slog.String("service", serviceName)),
	}
}

// Download returns the installer URL for the latest release by semantic
// version and bumps the cached download total. The counter is bookkeeping
// only; a failed increment never fails the redirect.
func (s *downloadService) Download(ctx context.Context, target, arch string) (string, error) {
	suffix := update.InstallSuffix(target, arch)
	if suffix == "" {
		return "", fmt.Errorf("%w: %s", common.ErrInvalidTarget, target)
	}

	releases, err := s.releases.Releases(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot get releases: %w", err)
	}

	release, err := update.LatestRelease(releases)
	if err != nil {
		return "", err
	}

	var asset *entity.ReleaseAsset
	for i := range release.Assets {
		if strings.HasSuffix(release.Assets[i].Name, suffix) {
			asset = &release.Assets[i]
			break
		}
	}
	if asset == nil {
		return "", fmt.Errorf("%w: suffix %s", common.ErrNoInstallAsset, suffix)
	}

	if _, err := url.ParseRequestURI(asset.DownloadURL); err != nil {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidURL, asset.DownloadURL)
	}

	s.incrementTotal(ctx, releases, release)

	s.log.Info("Resolved download",
		slog.String("target", target),
		slog.String("arch", arch),
		slog.String("tag", release.Tag),
		slog.String("url", asset.DownloadURL))

	return asset.DownloadURL, nil
}

// TotalDownloads returns the cached aggregate counter, refreshed when stale.
func (s *downloadService) TotalDownloads(ctx context.Context) (*entity.DownloadTotal, error) {
	total, err := s.releases.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot get download total: %w", err)
	}

	return total, nil
}

// incrementTotal bumps the cached total by one, dated from the selected
// release's publish time. An absent cache entry is rebuilt from the release
// list already in hand.
func (s *downloadService) incrementTotal(ctx context.Context, releases []entity.Release, release *entity.Release) {
	total, err := s.repo.Total(ctx)
	if err != nil {
		s.log.Warn("Cannot read download total", slog.Any("error", err))
		total = nil
	}

	base := TotalDownloads(releases)
	if total != nil {
		base = total.Total
	}

	if err := s.repo.SaveTotal(ctx, &entity.DownloadTotal{
		Total:      base + 1,
		CapturedAt: release.PublishedAt,
	}); err != nil {
		s.log.Warn("Cannot save download total", slog.Any("error", err))
	}
}
