package update

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
)

// NextRelease returns the first release in list order whose tag differs from
// the client's current version. Any differing tag counts, even an older one;
// there is no draft or pre-release filtering.
func NextRelease(releases []entity.Release, currentVersion string) (*entity.Release, error) {
	for i := range releases {
		if releases[i].Tag != currentVersion {
			return &releases[i], nil
		}
	}

	return nil, common.ErrNoNewRelease
}

// LatestRelease returns the release with the numerically greatest semantic
// version. A tag that does not parse as semver ranks as 0.0.0 rather than
// being discarded, so one malformed tag cannot make selection fail. Ties go
// to the earlier list position.
func LatestRelease(releases []entity.Release) (*entity.Release, error) {
	if len(releases) == 0 {
		return nil, common.ErrNoReleases
	}

	latest := &releases[0]
	latestVer := tagVersion(latest.Tag)

	for i := 1; i < len(releases); i++ {
		if v := tagVersion(releases[i].Tag); v.GreaterThan(latestVer) {
			latest = &releases[i]
			latestVer = v
		}
	}

	return latest, nil
}

func tagVersion(tag string) *semver.Version {
	v, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return semver.New(0, 0, 0, "", "")
	}

	return v
}

// VersionFromTag reduces a release tag to the digits-and-dots version string
// reported to clients. All other characters, including pre-release and build
// markers, are dropped in place.
func VersionFromTag(tag string) string {
	var b strings.Builder
	for _, c := range tag {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}

	return b.String()
}
