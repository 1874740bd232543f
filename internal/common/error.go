package common

import "fmt"

var (
	ErrMissingParameter = fmt.Errorf("missing parameter")
	ErrInvalidTarget    = fmt.Errorf("invalid target")
	ErrUpstreamFetch    = fmt.Errorf("upstream fetch failed")
	ErrNoNewRelease     = fmt.Errorf("no new release found")
	ErrNoReleases       = fmt.Errorf("no releases found")
	ErrNoUpdateAsset    = fmt.Errorf("no update asset found")
	ErrNoSignatureAsset = fmt.Errorf("no signature asset found")
	ErrNoInstallAsset   = fmt.Errorf("no asset found for target")
	ErrInvalidURL       = fmt.Errorf("invalid url")
	ErrDateUnparsable   = fmt.Errorf("cannot parse date")
	ErrCacheUnavailable = fmt.Errorf("cache unavailable")
)
