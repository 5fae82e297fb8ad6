package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medlabel/medlabel-backend/internal/services"
)

type StatsHandler struct {
	svc services.StatsService
}

func NewStatsHandler(svc services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GET /api/stats
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "store_unavailable", err)
		return
	}
	RespondOK(c, stats)
}
