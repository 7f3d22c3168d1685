package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/woodlandforecast/backend-go/internal/domain"
	"github.com/woodlandforecast/backend-go/internal/service"
)

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func parseHorizon(c *gin.Context) (string, bool) {
	horizon := strings.TrimSpace(c.Query("horizon"))
	if horizon == "" {
		return "", true
	}
	for _, h := range domain.Horizons {
		if string(h) == horizon {
			return horizon, true
		}
	}
	return "", false
}

// GetSummary serves the full KPI payload for the dashboard landing page.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	horizon, ok := parseHorizon(c)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "horizon must be one of 7day, 30day")
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), &domain.DashboardFilter{Horizon: horizon})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetRisks serves a filtered, paged list of classified risk rows.
func (h *DashboardHandler) GetRisks(c *gin.Context) {
	horizon, ok := parseHorizon(c)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "horizon must be one of 7day, 30day")
		return
	}

	query := service.RiskQuery{
		Horizon:     horizon,
		Flag:        strings.TrimSpace(c.Query("flag")),
		RawMaterial: strings.TrimSpace(c.Query("raw_material")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		query.PageSize = size
	}

	records, total, err := h.service.ListRisks(c.Request.Context(), query)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"total": total,
	})
}

// GetReconciliation serves reconciliation rows for one material or the whole
// table.
func (h *DashboardHandler) GetReconciliation(c *gin.Context) {
	horizon, ok := parseHorizon(c)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "horizon must be one of 7day, 30day")
		return
	}

	rows, err := h.service.ListReconciliation(c.Request.Context(), horizon, strings.TrimSpace(c.Query("raw_material")))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  rows,
		"total": len(rows),
	})
}

// InvalidateCache drops the cached dashboard payloads. Called by operators
// after replacing snapshot files out of band.
func (h *DashboardHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
