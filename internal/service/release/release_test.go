package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
)

const window = 300 * time.Second

type fakeSource struct {
	releases []entity.Release
	err      error
	calls    int
}

func (f *fakeSource) Releases(_ context.Context) ([]entity.Release, error) {
	f.calls++

	return f.releases, f.err
}

type fakeRepo struct {
	snapshot    *entity.ReleaseSnapshot
	total       *entity.DownloadTotal
	getErr      error
	saveErr     error
	savedSnaps  []*entity.ReleaseSnapshot
	savedTotals []*entity.DownloadTotal
}

func (f *fakeRepo) Snapshot(_ context.Context) (*entity.ReleaseSnapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.snapshot, nil
}

func (f *fakeRepo) SaveSnapshot(_ context.Context, snapshot *entity.ReleaseSnapshot) error {
	f.savedSnaps = append(f.savedSnaps, snapshot)

	return f.saveErr
}

func (f *fakeRepo) Total(_ context.Context) (*entity.DownloadTotal, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.total, nil
}

func (f *fakeRepo) SaveTotal(_ context.Context, total *entity.DownloadTotal) error {
	f.savedTotals = append(f.savedTotals, total)

	return f.saveErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func upstream() []entity.Release {
	return []entity.Release{
		{
			Tag: "v2.0.0",
			Assets: []entity.ReleaseAsset{
				{Name: "a", DownloadCount: 3},
				{Name: "b", DownloadCount: 4},
			},
		},
		{
			Tag:    "v1.0.0",
			Assets: []entity.ReleaseAsset{{Name: "c", DownloadCount: 5}},
		},
	}
}

func newTestService(source *fakeSource, repo *fakeRepo, now time.Time) *releaseService {
	srv := NewReleaseService(source, repo, window, testLogger())
	srv.now = func() time.Time { return now }

	return srv
}

func TestIsFresh(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		capturedAt string
		now        time.Time
		want       bool
	}{
		{name: "within window", capturedAt: at.Format(time.RFC3339), now: at.Add(299 * time.Second), want: true},
		{name: "past window", capturedAt: at.Format(time.RFC3339), now: at.Add(301 * time.Second), want: false},
		{name: "exactly at window", capturedAt: at.Format(time.RFC3339), now: at.Add(300 * time.Second), want: false},
		{name: "unparsable", capturedAt: "not-a-time", now: at, want: false},
		{name: "empty", capturedAt: "", now: at, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFresh(tt.capturedAt, tt.now, window))
		})
	}
}

func TestReleasesFreshCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{releases: upstream()}
	repo := &fakeRepo{
		snapshot: &entity.ReleaseSnapshot{
			Releases:   []entity.Release{{Tag: "v1.5.0"}},
			CapturedAt: now.Add(-time.Minute).Format(time.RFC3339),
		},
	}

	srv := newTestService(source, repo, now)

	releases, err := srv.Releases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "v1.5.0", releases[0].Tag)
	assert.Zero(t, source.calls, "fresh cache must not hit upstream")
}

func TestReleasesStaleRefreshesBothFacts(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{releases: upstream()}
	repo := &fakeRepo{
		snapshot: &entity.ReleaseSnapshot{
			Releases:   []entity.Release{{Tag: "v1.5.0"}},
			CapturedAt: now.Add(-10 * time.Minute).Format(time.RFC3339),
		},
	}

	srv := newTestService(source, repo, now)

	releases, err := srv.Releases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 2)
	assert.Equal(t, 1, source.calls)

	// One fetch rewrites both cached facts with the same capture time.
	require.Len(t, repo.savedSnaps, 1)
	require.Len(t, repo.savedTotals, 1)
	assert.Equal(t, int64(12), repo.savedTotals[0].Total)
	assert.Equal(t, repo.savedSnaps[0].CapturedAt, repo.savedTotals[0].CapturedAt)
	assert.Equal(t, now.Format(time.RFC3339), repo.savedSnaps[0].CapturedAt)
}

func TestReleasesAbsentCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{releases: upstream()}
	repo := &fakeRepo{}

	srv := newTestService(source, repo, now)

	releases, err := srv.Releases(context.Background())
	require.NoError(t, err)
	assert.Len(t, releases, 2)
	assert.Equal(t, 1, source.calls)
}

func TestReleasesCacheUnavailableFallsBack(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{releases: upstream()}
	repo := &fakeRepo{getErr: fmt.Errorf("%w: connection refused", common.ErrCacheUnavailable)}

	srv := newTestService(source, repo, now)

	releases, err := srv.Releases(context.Background())
	require.NoError(t, err)
	assert.Len(t, releases, 2)
	assert.Equal(t, 1, source.calls)
}

func TestReleasesUpstreamFailure(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{err: fmt.Errorf("%w: boom", common.ErrUpstreamFetch)}
	repo := &fakeRepo{}

	srv := newTestService(source, repo, now)

	_, err := srv.Releases(context.Background())
	assert.ErrorIs(t, err, common.ErrUpstreamFetch)
}

func TestTotal(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh cache", func(t *testing.T) {
		source := &fakeSource{releases: upstream()}
		repo := &fakeRepo{
			total: &entity.DownloadTotal{Total: 7, CapturedAt: now.Add(-time.Minute).Format(time.RFC3339)},
		}

		srv := newTestService(source, repo, now)

		total, err := srv.Total(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), total.Total)
		assert.Zero(t, source.calls)
	})

	t.Run("stale cache recomputes from fetch", func(t *testing.T) {
		source := &fakeSource{releases: upstream()}
		repo := &fakeRepo{
			total: &entity.DownloadTotal{Total: 7, CapturedAt: now.Add(-time.Hour).Format(time.RFC3339)},
		}

		srv := newTestService(source, repo, now)

		total, err := srv.Total(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(12), total.Total)
		assert.Equal(t, 1, source.calls)
		require.Len(t, repo.savedSnaps, 1)
	})

	t.Run("save failure still serves fetched data", func(t *testing.T) {
		source := &fakeSource{releases: upstream()}
		repo := &fakeRepo{saveErr: fmt.Errorf("%w: boom", common.ErrCacheUnavailable)}

		srv := newTestService(source, repo, now)

		total, err := srv.Total(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(12), total.Total)
	})
}
