package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/valink-solutions/chunkvault-updater/internal/common"
	"github.com/valink-solutions/chunkvault-updater/internal/entity"
)

type UpdateService interface {
	Resolve(ctx context.Context, target, arch, currentVersion string) (*entity.ResolvedUpdate, error)
}

type DownloadService interface {
	Download(ctx context.Context, target, arch string) (string, error)
}

type TotalService interface {
	TotalDownloads(ctx context.Context) (*entity.DownloadTotal, error)
}

type totalResponse struct {
	TotalDownloads int64  `json:"total_downloads"`
	UpdatedAt      string `json:"updated_at"`
}

func NewReleaseHandler(srv UpdateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ReleaseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(slog.String("request_id", uuid.NewString()))

		target := r.PathValue("target")
		arch := r.PathValue("arch")
		currentVersion := r.PathValue("current_version")
		if target == "" || arch == "" || currentVersion == "" {
			http.Error(w, "Missing parameter", http.StatusBadRequest)

			return
		}

		resolved, err := srv.Resolve(r.Context(), target, arch, currentVersion)
		if err != nil {
			writeError(w, log, err)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resolved); err != nil {
			log.Error("Cannot encode response", slog.Any("error", err))
		}
	}
}

func NewDownloadHandler(srv DownloadService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DownloadHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(slog.String("request_id", uuid.NewString()))

		target := r.PathValue("target")
		arch := r.PathValue("arch")
		if target == "" || arch == "" {
			http.Error(w, "Missing parameter", http.StatusBadRequest)

			return
		}

		url, err := srv.Download(r.Context(), target, arch)
		if err != nil {
			writeError(w, log, err)

			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

func NewTotalDownloadsHandler(srv TotalService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "TotalDownloadsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(slog.String("request_id", uuid.NewString()))

		total, err := srv.TotalDownloads(r.Context())
		if err != nil {
			writeError(w, log, err)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(&totalResponse{
			TotalDownloads: total.Total,
			UpdatedAt:      total.CapturedAt,
		}); err != nil {
			log.Error("Cannot encode response", slog.Any("error", err))
		}
	}
}

// writeError translates the error taxonomy into a status code, once, at the
// boundary.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrMissingParameter), errors.Is(err, common.ErrInvalidTarget), errors.Is(err, common.ErrInvalidURL):
		http.Error(w, "Bad request", http.StatusBadRequest)
	case errors.Is(err, common.ErrNoNewRelease), errors.Is(err, common.ErrNoReleases),
		errors.Is(err, common.ErrNoUpdateAsset), errors.Is(err, common.ErrNoSignatureAsset),
		errors.Is(err, common.ErrNoInstallAsset):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		log.Error("Request failed", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
