package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emanchez/analytics-app/store"
	"github.com/emanchez/analytics-app/utils"
)

// AnalyticsHandlers serves the read-only aggregation endpoints. Every
// call rescans the persisted records; nothing is cached between
// requests.
type AnalyticsHandlers struct {
	Store *store.AnalyticsStore
	log   *zap.Logger
}

func NewAnalyticsHandlers(s *store.AnalyticsStore, log *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Store: s,
		log:   log,
	}
}

func (h *AnalyticsHandlers) GetConversions(c *gin.Context) {
	conversions, err := h.Store.ListConversions(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list conversions", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SuccessData(c, conversions)
}

func (h *AnalyticsHandlers) GetSessions(c *gin.Context) {
	sessions, err := h.Store.ListSessions(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list sessions", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SuccessData(c, sessions)
}

func (h *AnalyticsHandlers) GetProducts(c *gin.Context) {
	products, err := h.Store.ListProducts(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list product analytics", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SuccessData(c, products)
}

func (h *AnalyticsHandlers) GetDashboard(c *gin.Context) {
	summary, err := h.Store.DashboardSummary(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to build dashboard summary", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	utils.SuccessData(c, summary)
}
