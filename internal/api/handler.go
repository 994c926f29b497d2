package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/dto"
	"github.com/etchedheadplate/spimex-scraper/internal/middleware"
	"github.com/etchedheadplate/spimex-scraper/internal/service"
	"github.com/etchedheadplate/spimex-scraper/internal/storage"
)

const (
	dateLayout  = "2006-01-02"
	defaultDays = 10
	maxDays     = 100
)

// Handler provides HTTP handlers for the trading-results endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Delegate to the service layer for data access
//   - Translate stored entities into response DTOs
type Handler struct {
	svc service.TradesService
}

// NewHandler constructs a Handler ready to be registered with the router.
func NewHandler(svc service.TradesService) *Handler {
	return &Handler{svc: svc}
}

// GetTradingDates handles GET /api/v1/trades/dates requests.
//
// GetTradingDates godoc
// @Summary      Last trading dates
// @Description  Returns the most recent distinct trading dates, newest first
// @Tags         trades
// @Produce      json
// @Param        days  query     int  false  "How many dates to return (1-100)"  default(10)
// @Success      200   {object}  dto.TradingDatesResponse  "Success"
// @Failure      400   {object}  dto.ErrorResponse         "Bad Request"
// @Failure      500   {object}  dto.ErrorResponse         "Internal Error"
// @Router       /api/v1/trades/dates [get]
func (h *Handler) GetTradingDates(c *gin.Context) {
	days := defaultDays
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxDays {
			middleware.AbortWithError(c, http.StatusBadRequest, "days must be an integer between 1 and 100", err)
			return
		}
		days = n
	}

	dates, err := h.svc.LastTradingDates(c.Request.Context(), days)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch trading dates", err)
		return
	}

	resp := dto.TradingDatesResponse{Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.Format(dateLayout))
	}
	c.JSON(http.StatusOK, resp)
}

// GetDynamics handles GET /api/v1/trades/dynamics requests.
//
// GetDynamics godoc
// @Summary      Trading dynamics over a period
// @Description  Returns trading results for one instrument code triple within an inclusive date window, oldest first
// @Tags         trades
// @Produce      json
// @Param        oil_id             query     string  true  "Oil product code"     example(A100)
// @Param        delivery_type_id   query     string  true  "Delivery type code"   example(F)
// @Param        delivery_basis_id  query     string  true  "Delivery basis code"  example(ANK)
// @Param        start_date         query     string  true  "Window start in YYYY-MM-DD"  example(2023-01-01)
// @Param        end_date           query     string  true  "Window end in YYYY-MM-DD"    example(2023-01-31)
// @Success      200  {array}   dto.TradingResultResponse  "Success"
// @Failure      400  {object}  dto.ErrorResponse          "Bad Request"
// @Failure      500  {object}  dto.ErrorResponse          "Internal Error"
// @Router       /api/v1/trades/dynamics [get]
func (h *Handler) GetDynamics(c *gin.Context) {
	oilID, typeID, basisID, ok := codeParams(c)
	if !ok {
		return
	}

	startDate, ok := dateParam(c, "start_date")
	if !ok {
		return
	}
	endDate, ok := dateParam(c, "end_date")
	if !ok {
		return
	}
	if endDate.Before(startDate) {
		middleware.AbortWithError(c, http.StatusBadRequest, "end_date is before start_date", nil)
		return
	}

	results, err := h.svc.Dynamics(c.Request.Context(), storage.DynamicsFilter{
		OilID:           oilID,
		DeliveryTypeID:  typeID,
		DeliveryBasisID: basisID,
		StartDate:       startDate,
		EndDate:         endDate,
	})
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch trading dynamics", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTradingResultResponses(results))
}

// GetTradingResults handles GET /api/v1/trades/results requests.
//
// GetTradingResults godoc
// @Summary      Latest trading results
// @Description  Returns trading results of the most recent trading day for one instrument code triple
// @Tags         trades
// @Produce      json
// @Param        oil_id             query     string  true  "Oil product code"     example(A100)
// @Param        delivery_type_id   query     string  true  "Delivery type code"   example(F)
// @Param        delivery_basis_id  query     string  true  "Delivery basis code"  example(ANK)
// @Success      200  {array}   dto.TradingResultResponse  "Success"
// @Failure      400  {object}  dto.ErrorResponse          "Bad Request"
// @Failure      500  {object}  dto.ErrorResponse          "Internal Error"
// @Router       /api/v1/trades/results [get]
func (h *Handler) GetTradingResults(c *gin.Context) {
	oilID, typeID, basisID, ok := codeParams(c)
	if !ok {
		return
	}

	results, err := h.svc.LatestResults(c.Request.Context(), storage.ResultsFilter{
		OilID:           oilID,
		DeliveryTypeID:  typeID,
		DeliveryBasisID: basisID,
	})
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch trading results", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTradingResultResponses(results))
}

// codeParams validates the three required instrument code parameters. On a
// missing parameter it writes the 400 response and reports !ok.
func codeParams(c *gin.Context) (oilID, typeID, basisID string, ok bool) {
	oilID = strings.ToUpper(strings.TrimSpace(c.Query("oil_id")))
	typeID = strings.ToUpper(strings.TrimSpace(c.Query("delivery_type_id")))
	basisID = strings.ToUpper(strings.TrimSpace(c.Query("delivery_basis_id")))

	for name, v := range map[string]string{
		"oil_id":            oilID,
		"delivery_type_id":  typeID,
		"delivery_basis_id": basisID,
	} {
		if v == "" {
			middleware.AbortWithError(c, http.StatusBadRequest, name+" is required", nil)
			return "", "", "", false
		}
	}
	return oilID, typeID, basisID, true
}

// dateParam parses one required YYYY-MM-DD query parameter.
func dateParam(c *gin.Context, name string) (time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, name+" is required", nil)
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid "+name+" format, expected YYYY-MM-DD", err)
		return time.Time{}, false
	}
	return d, true
}
