package app

import (
	"fmt"
	"net/http"

	"github.com/wadjakorntonsri/gift-bundle/pkg/adapters/handler"
	"github.com/wadjakorntonsri/gift-bundle/pkg/adapters/kakao"
	"github.com/wadjakorntonsri/gift-bundle/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/gift-bundle/pkg/adapters/storage"
	"github.com/wadjakorntonsri/gift-bundle/pkg/auth"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/services"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
)

// App is the wired service graph shared by the server and the serverless entrypoint.
type App struct {
	Handler http.Handler
	Repo    *sqlite.SQLiteRepository
}

func New(cfg *config.Config, logger logging.Logger) (*App, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store, err := storage.NewS3Storage(cfg)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	users, err := services.NewUserService(repo, cfg.UserCacheSize, logger)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("init user service: %w", err)
	}

	bundles := services.NewBundleService(repo, logger, services.BundleOptions{
		DailyLimit: cfg.DailyBundleLimit,
		Location:   cfg.QuotaLocation(),
	})

	router := handler.NewRouter(cfg, handler.Services{
		Bundles:   bundles,
		Responses: services.NewResponseService(repo, repo, bundles, logger),
		Users:     users,
		Uploads:   services.NewUploadService(store),
		OAuth:     kakao.NewClient(cfg),
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
	}, logger)

	return &App{Handler: router, Repo: repo}, nil
}

func (a *App) Close() error {
	return a.Repo.Close()
}
