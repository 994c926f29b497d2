//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/etchedheadplate/spimex-scraper/config"
	"github.com/etchedheadplate/spimex-scraper/internal/app"
	"github.com/etchedheadplate/spimex-scraper/internal/domain/dto"
	"github.com/etchedheadplate/spimex-scraper/internal/storage"
)

func startPG(t *testing.T) (dsn string, host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "spimex",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=spimex sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", h, mp.Port(), "spimex")
	terminate = func() { _ = c.Terminate(context.Background()) }
	return dsn, h, mp, terminate
}

func seedResults(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()

	repo := storage.NewResultsRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	seed := func(date string, count int64) {
		_, err := db.Exec(`
			INSERT INTO spimex_trading_results
				(exchange_product_id, oil_id, delivery_basis_id, delivery_basis_name,
				 delivery_type_id, volume, total, "count", date)
			VALUES ('A100ANK060F', 'A100', 'ANK', 'ст. Аникеевка', 'F', 60, 100000, $2, $1)
		`, date, count)
		if err != nil {
			t.Fatalf("seed %s: %v", date, err)
		}
	}
	seed("2023-01-09", 1)
	seed("2023-01-10", 2)
}

func TestAPI_E2E_Trades(t *testing.T) {
	dsn, host, port, term := startPG(t)
	defer term()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	seedResults(t, db)

	// Point application config to containerized DB.
	config.AppConfig.Postgres.Host = host
	p, _ := nat.ParsePort(port.Port())
	config.AppConfig.Postgres.Port = int(p)
	config.AppConfig.Postgres.User = "postgres"
	config.AppConfig.Postgres.Password = "postgres"
	config.AppConfig.Postgres.DBName = "spimex"
	config.AppConfig.Postgres.SSLMode = "disable"

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	// Last trading dates, newest first.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trades/dates?days=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("dates status: %d body=%s", w.Code, w.Body.String())
	}
	var dates dto.TradingDatesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &dates); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(dates.Dates) != 2 || dates.Dates[0] != "2023-01-10" || dates.Dates[1] != "2023-01-09" {
		t.Fatalf("unexpected dates: %+v", dates)
	}

	// Dynamics over the seeded window, oldest first.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/trades/dynamics?oil_id=A100&delivery_type_id=F&delivery_basis_id=ANK&start_date=2023-01-09&end_date=2023-01-10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("dynamics status: %d body=%s", w.Code, w.Body.String())
	}
	var dyn []dto.TradingResultResponse
	if err := json.Unmarshal(w.Body.Bytes(), &dyn); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(dyn) != 2 || dyn[0].Date != "2023-01-09" || dyn[1].Date != "2023-01-10" {
		t.Fatalf("unexpected dynamics: %+v", dyn)
	}

	// Latest results cover only the most recent trading day.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/trades/results?oil_id=A100&delivery_type_id=F&delivery_basis_id=ANK", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("results status: %d body=%s", w.Code, w.Body.String())
	}
	var latest []dto.TradingResultResponse
	if err := json.Unmarshal(w.Body.Bytes(), &latest); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(latest) != 1 || latest[0].Date != "2023-01-10" || latest[0].Count != 2 {
		t.Fatalf("unexpected latest results: %+v", latest)
	}
}
