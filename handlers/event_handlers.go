package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emanchez/analytics-app/metrics"
	"github.com/emanchez/analytics-app/models"
	"github.com/emanchez/analytics-app/store"
	"github.com/emanchez/analytics-app/utils"
)

type EventHandlers struct {
	Store   *store.AnalyticsStore
	Metrics *metrics.Metrics
	log     *zap.Logger
}

func NewEventHandlers(s *store.AnalyticsStore, m *metrics.Metrics, log *zap.Logger) *EventHandlers {
	return &EventHandlers{
		Store:   s,
		Metrics: m,
		log:     log,
	}
}

// PostEvent ingests one tracking event. The payload is accepted as an
// arbitrary JSON object; normalization decides which fields survive.
// Validation problems are 400s naming the offending field, storage
// problems are 500s.
func (h *EventHandlers) PostEvent(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log.Warn("Invalid event request body", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	event, err := models.NormalizeEvent(payload)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			h.log.Warn("Event failed validation", zap.String("field", vErr.Field))
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	base := event.Base()
	started := time.Now()
	if err := h.Store.StoreEvent(c.Request.Context(), event); err != nil {
		h.log.Error("Failed to store event",
			zap.Error(err),
			zap.String("event_id", base.EventID),
			zap.String("session_id", base.SessionID))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.Metrics.StoreDuration.Observe(time.Since(started).Seconds())
	h.Metrics.EventsStored.WithLabelValues(base.EventType).Inc()
	if base.EventType == "conversion" {
		h.Metrics.ConversionsStored.Inc()
	}

	h.log.Info("Event stored",
		zap.String("event_id", base.EventID),
		zap.String("event_type", base.EventType),
		zap.String("session_id", base.SessionID))

	utils.SuccessMessage(c, "Event stored successfully")
}
