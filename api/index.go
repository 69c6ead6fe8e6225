package handler

import (
	"net/http"
	_ "time/tzdata"

	"github.com/wadjakorntonsri/gift-bundle/pkg/app"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger := logging.New(cfg.AppEnv, cfg.LogLevel)

	// Note: On Vercel, db.sqlite is ephemeral unless DATABASE_URL points at Turso
	application, err := app.New(cfg, logger)
	if err != nil {
		panic(err)
	}
	mux = application.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
