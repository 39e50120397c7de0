// Package handler is the serverless entry point. It builds the same Fiber app
// as cmd/server once per process and serves requests through net/http.
package handler

import (
	"log/slog"
	"net/http"
	"sync"
	_ "time/tzdata"

	"github.com/amirasaad/payminute/infra/initializer"
	"github.com/amirasaad/payminute/pkg/app"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/webapi"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once    sync.Once
	handle  http.HandlerFunc
	initErr error
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() { handle, initErr = build() })
	if initErr != nil {
		slog.Error("Failed to initialize application", "error", initErr)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	handle.ServeHTTP(w, r)
}

// build keeps its dependencies open for the lifetime of the function instance.
func build() (http.HandlerFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, _, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return adaptor.FiberApp(webapi.SetupApp(app.New(deps))), nil
}
