package http

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cartloop/insights/internal/domain/digest"
	"github.com/cartloop/insights/internal/domain/insights"
	apperrors "github.com/cartloop/insights/pkg/errors"
)

// InsightsHandler wires the HTTP transport to the analytics services.
type InsightsHandler struct {
	insightsSvc insights.Service
	digestSvc   digest.Service
	logger      *slog.Logger
}

// NewInsightsHandler constructs the analytics HTTP handler.
func NewInsightsHandler(insightsSvc insights.Service, digestSvc digest.Service, logger *slog.Logger) *InsightsHandler {
	return &InsightsHandler{
		insightsSvc: insightsSvc,
		digestSvc:   digestSvc,
		logger:      logger.With("component", "http.insights_handler"),
	}
}

// Forecast returns the demand projection for the requested horizon.
func (h *InsightsHandler) Forecast(c *gin.Context) {
	horizon := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "days must be an integer", err))
			return
		}
		horizon = parsed
	}

	resp, err := h.insightsSvc.DemandForecast(c.Request.Context(), horizon)
	if err != nil {
		abortWithError(c, insightsError(err, "forecast_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Seasonality returns weekday and monthly sales patterns.
func (h *InsightsHandler) Seasonality(c *gin.Context) {
	resp, err := h.insightsSvc.SeasonalTrends(c.Request.Context())
	if err != nil {
		abortWithError(c, insightsError(err, "seasonality_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Segments returns the RFM segmentation of the customer base.
func (h *InsightsHandler) Segments(c *gin.Context) {
	resp, err := h.insightsSvc.CustomerSegments(c.Request.Context())
	if err != nil {
		abortWithError(c, insightsError(err, "segments_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CustomerSegment returns the cached segment for a single customer.
func (h *InsightsHandler) CustomerSegment(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid customer id", err))
		return
	}

	result, found, err := h.insightsSvc.CustomerSegment(c.Request.Context(), customerID)
	if err != nil {
		abortWithError(c, insightsError(err, "segments_failed"))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "segment_not_found", "no segment computed for this customer yet", nil))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Inventory returns restock recommendations for every product.
func (h *InsightsHandler) Inventory(c *gin.Context) {
	resp, err := h.insightsSvc.InventoryRecommendations(c.Request.Context())
	if err != nil {
		abortWithError(c, insightsError(err, "inventory_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Portfolio returns the growth-share classification of the catalog.
func (h *InsightsHandler) Portfolio(c *gin.Context) {
	resp, err := h.insightsSvc.PortfolioMatrix(c.Request.Context())
	if err != nil {
		abortWithError(c, insightsError(err, "portfolio_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductAdvice returns the cached combined advice for one product.
func (h *InsightsHandler) ProductAdvice(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid product id", err))
		return
	}

	advice, found, err := h.insightsSvc.ProductAdvice(c.Request.Context(), productID)
	if err != nil {
		abortWithError(c, insightsError(err, "advice_failed"))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "advice_not_found", "no advice computed for this product yet", nil))
		return
	}
	c.JSON(http.StatusOK, advice)
}

// RelatedProducts returns catalog items with similar sales behavior.
func (h *InsightsHandler) RelatedProducts(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid product id", err))
		return
	}

	items, err := h.insightsSvc.RelatedProducts(c.Request.Context(), productID)
	if err != nil {
		abortWithError(c, insightsError(err, "related_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"related": items})
}

// Overview runs every engine and returns the combined snapshot.
func (h *InsightsHandler) Overview(c *gin.Context) {
	resp, err := h.insightsSvc.Overview(c.Request.Context())
	if err != nil {
		abortWithError(c, insightsError(err, "overview_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Digest generates an LLM narrated summary of the current metrics.
func (h *InsightsHandler) Digest(c *gin.Context) {
	resp, err := h.digestSvc.Generate(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		code := "digest_failed"
		switch {
		case apperrors.IsCode(err, "llm_not_configured"):
			status = http.StatusServiceUnavailable
			code = "llm_not_configured"
		case apperrors.IsCode(err, "llm_error"):
			status = http.StatusBadGateway
			code = "llm_error"
		case apperrors.IsCode(err, "store_error"):
			status = http.StatusInternalServerError
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func insightsError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	if apperrors.IsCode(err, "invalid_input") {
		status = http.StatusBadRequest
		code = "invalid_request"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
