package entity

// ReleaseAsset is one downloadable file attached to a release. The JSON tags
// follow the GitHub releases API.
type ReleaseAsset struct {
	Name          string `json:"name"`
	DownloadURL   string `json:"browser_download_url"`
	DownloadCount int64  `json:"download_count"`
}

// Release is an immutable snapshot of one published version as fetched from
// upstream. A release is never mutated after decode; stale data is handled by
// replacing the whole list.
type Release struct {
	Tag         string         `json:"tag_name"`
	PublishedAt string         `json:"published_at"`
	Notes       string         `json:"body"`
	Assets      []ReleaseAsset `json:"assets"`
}

// ReleaseSnapshot is the cached release list together with its fetch time.
// CapturedAt is kept as a string so that a malformed value read back from the
// cache fails the freshness check instead of failing decode.
type ReleaseSnapshot struct {
	Releases   []Release `json:"releases"`
	CapturedAt string    `json:"captured_at"`
}

// DownloadTotal is the cached aggregate download counter. It is derived from
// a ReleaseSnapshot but cached under its own key because its read frequency
// differs.
type DownloadTotal struct {
	Total      int64  `json:"total"`
	CapturedAt string `json:"captured_at"`
}
