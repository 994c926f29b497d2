package dto

import (
	"github.com/etchedheadplate/spimex-scraper/internal/domain/models"
)

// TradingDatesResponse is returned by GET /api/v1/trades/dates.
//
// Dates are rendered as YYYY-MM-DD strings, newest first.
type TradingDatesResponse struct {
	Dates []string `json:"dates" example:"2023-01-10,2023-01-09"`
}

// TradingResultResponse is the JSON form of one persisted trading result.
//
// Fields mirror the stored entity but stay decoupled from it: nullable
// integers flatten to plain int64 pointers so clients see `null`, not a
// driver-specific wrapper.
type TradingResultResponse struct {
	ID                int64  `json:"id" example:"42"`
	ExchangeProductID string `json:"exchange_product_id" example:"A100ANK060F"`
	OilID             string `json:"oil_id" example:"A100"`
	DeliveryBasisID   string `json:"delivery_basis_id" example:"ANK"`
	DeliveryBasisName string `json:"delivery_basis_name" example:"ст. Аникеевка"`
	DeliveryTypeID    string `json:"delivery_type_id" example:"F"`
	Volume            *int64 `json:"volume" example:"60"`
	Total             *int64 `json:"total" example:"3934650"`
	Count             int64  `json:"count" example:"1"`
	Date              string `json:"date" example:"2023-01-09"`
	CreatedOn         string `json:"created_on" example:"2023-01-10T12:00:00Z"`
	UpdatedOn         string `json:"updated_on" example:"2023-01-10T12:00:00Z"`
}

const dateOnly = "2006-01-02"

// NewTradingResultResponse maps a stored trading result to its API shape.
func NewTradingResultResponse(r models.TradingResult) TradingResultResponse {
	resp := TradingResultResponse{
		ID:                r.ID,
		ExchangeProductID: r.ExchangeProductID,
		OilID:             r.OilID,
		DeliveryBasisID:   r.DeliveryBasisID,
		DeliveryBasisName: r.DeliveryBasisName,
		DeliveryTypeID:    r.DeliveryTypeID,
		Count:             r.Count,
		Date:              r.Date.Format(dateOnly),
		CreatedOn:         r.CreatedOn.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedOn:         r.UpdatedOn.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.Volume.Valid {
		v := r.Volume.Int64
		resp.Volume = &v
	}
	if r.Total.Valid {
		v := r.Total.Int64
		resp.Total = &v
	}
	return resp
}

// NewTradingResultResponses maps a slice of stored results preserving order.
func NewTradingResultResponses(rs []models.TradingResult) []TradingResultResponse {
	out := make([]TradingResultResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewTradingResultResponse(r))
	}
	return out
}
