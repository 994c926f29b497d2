package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/dto"
)

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockTradesService{dates: []time.Time{time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)}}
	h := NewHandler(svc)
	r := NewRouter(h)

	// Hit a trades route through the router created by NewRouter.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades/dates?days=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// RequestID middleware must inject the header.
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	var out dto.TradingDatesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if len(out.Dates) != 1 || out.Dates[0] != "2023-01-10" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestNewRouter_UnknownRouteIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockTradesService{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/aggregate", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
