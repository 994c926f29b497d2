package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/etchedheadplate/spimex-scraper/config"
	"github.com/etchedheadplate/spimex-scraper/internal/api"
	"github.com/etchedheadplate/spimex-scraper/internal/service"
	"github.com/etchedheadplate/spimex-scraper/internal/storage"
)

// InitializeApp sets up all application dependencies and returns a fully
// configured Gin router, a cleanup function for graceful shutdown, and any
// error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Ensures the trading-results schema exists.
//   - Initializes the repository, service, and HTTP handler layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	repo := storage.NewResultsRepository(db)

	svc := service.NewTradesService(repo)

	handler := api.NewHandler(svc)

	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
