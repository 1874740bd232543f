package update

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
)

const serviceName = "update"

type ReleaseProvider interface {
	Releases(ctx context.Context) ([]entity.Release, error)
}

type SignatureFetcher interface {
	Signature(ctx context.Context, url string) (string, error)
}

type updateService struct {
	releases   ReleaseProvider
	signatures SignatureFetcher
	log        *slog.Logger
}

func NewUpdateService(releases ReleaseProvider, signatures SignatureFetcher, log *slog.Logger) *updateService {
	return &updateService{
		releases:   releases,
		signatures: signatures,
		log:        log.With(slog.String("service", serviceName)),
	}
}

// Resolve builds the update description for a client on currentVersion:
// picks the next release, matches the platform's update and signature assets,
// fetches the signature body and sanitizes the release notes.
func (s *updateService) Resolve(ctx context.Context, target, arch, currentVersion string) (*entity.ResolvedUpdate, error) {
	releases, err := s.releases.Releases(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot get releases: %w", err)
	}

	release, err := NextRelease(releases, currentVersion)
	if err != nil {
		return nil, err
	}

	suffix, sigSuffix := UpdateSuffixes(target, arch)
	if suffix == "" || sigSuffix == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidTarget, target)
	}

	asset := findAsset(release.Assets, suffix)
	if asset == nil {
		return nil, fmt.Errorf("%w: suffix %s", common.ErrNoUpdateAsset, suffix)
	}

	sigAsset := findAsset(release.Assets, sigSuffix)
	if sigAsset == nil {
		return nil, fmt.Errorf("%w: suffix %s", common.ErrNoSignatureAsset, sigSuffix)
	}

	pubDate, err := time.Parse(time.RFC3339, release.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: published_at %q", common.ErrDateUnparsable, release.PublishedAt)
	}

	signature, err := s.signatures.Signature(ctx, sigAsset.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch signature: %w", err)
	}

	resolved := &entity.ResolvedUpdate{
		Version:   VersionFromTag(release.Tag),
		PubDate:   pubDate.Format(time.RFC3339),
		URL:       asset.DownloadURL,
		Signature: signature,
		Notes:     SanitizeNotes(release.Notes),
	}

	s.log.Info("Resolved update",
		slog.String("target", target),
		slog.String("arch", arch),
		slog.String("current_version", currentVersion),
		slog.String("version", resolved.Version),
		slog.String("url", resolved.URL))

	return resolved, nil
}

func findAsset(assets []entity.ReleaseAsset, suffix string) *entity.ReleaseAsset {
	for i := range assets {
		if strings.HasSuffix(assets[i].Name, suffix) {
			return &assets[i]
		}
	}

	return nil
}
