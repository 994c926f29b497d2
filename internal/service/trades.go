package service

import (
	"context"
	"time"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/models"
	"github.com/etchedheadplate/spimex-scraper/internal/storage"
)

// TradesService defines business logic for querying loaded trading results.
type TradesService interface {
	LastTradingDates(ctx context.Context, days int) ([]time.Time, error)
	Dynamics(ctx context.Context, f storage.DynamicsFilter) ([]models.TradingResult, error)
	LatestResults(ctx context.Context, f storage.ResultsFilter) ([]models.TradingResult, error)
}

type tradesService struct {
	repo storage.ResultsRepository
}

func NewTradesService(repo storage.ResultsRepository) TradesService {
	return &tradesService{repo: repo}
}

func (s *tradesService) LastTradingDates(ctx context.Context, days int) ([]time.Time, error) {
	return s.repo.LastTradingDates(ctx, days)
}

func (s *tradesService) Dynamics(ctx context.Context, f storage.DynamicsFilter) ([]models.TradingResult, error) {
	return s.repo.Dynamics(ctx, f)
}

func (s *tradesService) LatestResults(ctx context.Context, f storage.ResultsFilter) ([]models.TradingResult, error) {
	return s.repo.LatestResults(ctx, f)
}
