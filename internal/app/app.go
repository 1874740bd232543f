package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valink-solutions/chunkvault-updater/internal/adapter/github"
	"github.com/valink-solutions/chunkvault-updater/internal/config"
	httphandler "github.com/valink-solutions/chunkvault-updater/internal/handler/http"
	"github.com/valink-solutions/chunkvault-updater/internal/repository/cache"
	srvdownload "github.com/valink-solutions/chunkvault-updater/internal/service/download"
	srvrelease "github.com/valink-solutions/chunkvault-updater/internal/service/release"
	srvupdate "github.com/valink-solutions/chunkvault-updater/internal/service/update"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		panic(err)
	}

	rdb := redis.NewClient(opt)
	ctx := context.Background()
	if _, err = rdb.Ping(ctx).Result(); err != nil {
		panic(err)
	}

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	gh := github.NewClient(&a.cfg.Github, log)
	repo := cache.NewCacheRepository(rdb, log)

	rSrv := srvrelease.NewReleaseService(gh, repo, time.Duration(a.cfg.CacheConfig.Window), log)
	uSrv := srvupdate.NewUpdateService(rSrv, gh, log)
	dSrv := srvdownload.NewDownloadService(rSrv, repo, log)

	http.Handle("GET /download/{target}/{arch}", httphandler.NewDownloadHandler(dSrv, log))
	http.Handle("GET /total_downloads", httphandler.NewTotalDownloadsHandler(dSrv, log))
	http.Handle("GET /{target}/{arch}/{current_version}", httphandler.NewReleaseHandler(uSrv, log))

	a.srv = &http.Server{
		Addr: a.cfg.Listen,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.srv.Shutdown(ctx)
}
