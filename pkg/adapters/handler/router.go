package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wadjakorntonsri/gift-bundle/pkg/auth"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/metrics"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

// Services bundles what the router needs from the core.
type Services struct {
	Bundles   ports.BundleService
	Responses ports.ResponseService
	Users     ports.UserService
	Uploads   ports.UploadService
	OAuth     ports.OAuthProvider
	Tokens    *auth.TokenManager
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger logging.Logger) http.Handler {
	logger = logger.Named("http")

	// Initialize Handlers
	bh := NewBundleHandler(svc.Bundles, logger)
	rh := NewRecipientHandler(svc.Responses, logger)
	uh := NewUserHandler(svc.Users, svc.Uploads, logger)
	authHandler := NewAuthHandler(cfg, svc.OAuth, svc.Users, svc.Tokens, logger)

	// Initialize Middleware
	mw := NewMiddleware(svc.Tokens, svc.Users, logger)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		res := map[string]string{
			"message": "ok",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&res)
	})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /auth/kakao/login", authHandler.Login)
	mux.HandleFunc("GET /auth/kakao/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /b/{link}", rh.View)
	mux.HandleFunc("POST /b/{link}/gifts/{giftID}/responses", rh.Respond)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/users/me", uh.Me)
	protectedMux.HandleFunc("DELETE /api/v1/users/me", uh.Withdraw)
	protectedMux.HandleFunc("POST /api/v1/uploads", uh.IssueUpload)

	protectedMux.HandleFunc("POST /api/v1/bundles", bh.Create)
	protectedMux.HandleFunc("GET /api/v1/bundles", bh.List)
	protectedMux.HandleFunc("GET /api/v1/bundles/{id}", bh.Get)
	protectedMux.HandleFunc("PATCH /api/v1/bundles/{id}", bh.Update)
	protectedMux.HandleFunc("PUT /api/v1/bundles/{id}/gifts", bh.UpdateGifts)
	protectedMux.HandleFunc("POST /api/v1/bundles/{id}/publish", bh.Publish)

	// protectedMux holds full paths, so the prefix mount dispatches unchanged.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mw.Recoverer(mux)
}
