package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/config"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
)

const headerUserAgent = "User-Agent"

// Client fetches release metadata and signature bodies from the GitHub
// releases API. Every call is a single attempt; retries are left to the
// caller's next request.
type Client struct {
	cl        *http.Client
	url       string
	userAgent string
	log       *slog.Logger
}

func NewClient(cfg *config.GithubConfig, log *slog.Logger) *Client {
	return &Client{
		cl: &http.Client{
			Timeout: time.Duration(cfg.Timeout),
		},
		url:       fmt.Sprintf("%s/repos/%s/%s/releases", cfg.APIURL, cfg.Owner, cfg.Repo),
		userAgent: cfg.UserAgent,
		log:       log.With(slog.String("item", "GithubClient")),
	}
}

// Releases returns the upstream release list, newest first per GitHub
// convention. Any transport error, non-success status or undecodable body is
// reported as common.ErrUpstreamFetch.
func (c *Client) Releases(ctx context.Context) ([]entity.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build releases request: %w", err)
	}
	req.Header.Set(headerUserAgent, c.userAgent)

	resp, err := c.cl.Do(req)
	if err != nil {
		c.log.Error("Cannot fetch releases", slog.String("url", c.url), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Error("Unexpected releases status", slog.String("url", c.url), slog.Int("status", resp.StatusCode))

		return nil, fmt.Errorf("%w: status %d", common.ErrUpstreamFetch, resp.StatusCode)
	}

	var releases []entity.Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		c.log.Error("Cannot decode releases", slog.String("url", c.url), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamFetch, err)
	}

	return releases, nil
}

// Signature returns the raw text body of a detached signature file.
func (c *Client) Signature(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("cannot build signature request: %w", err)
	}
	req.Header.Set(headerUserAgent, c.userAgent)

	resp, err := c.cl.Do(req)
	if err != nil {
		c.log.Error("Cannot fetch signature", slog.String("url", url), slog.Any("error", err))

		return "", fmt.Errorf("%w: %v", common.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Error("Unexpected signature status", slog.String("url", url), slog.Int("status", resp.StatusCode))

		return "", fmt.Errorf("%w: status %d", common.ErrUpstreamFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpstreamFetch, err)
	}

	return string(body), nil
}
