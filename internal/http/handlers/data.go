package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/http/response"
	"github.com/yungbote/cementplant-backend/internal/monitor"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
)

type DataHandler struct {
	readings repos.ReadingRepo
	monitor  *monitor.Service
}

func NewDataHandler(readings repos.ReadingRepo, mon *monitor.Service) *DataHandler {
	return &DataHandler{readings: readings, monitor: mon}
}

func listRows[T any](c *gin.Context, def int, fetch func(dbctx.Context, int) ([]*T, error)) {
	limit, err := queryLimit(c, def)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	rows, err := fetch(dbctx.Context{Ctx: c.Request.Context()}, limit)
	if err != nil {
		response.RespondErr(c, "read_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"data": rows, "count": len(rows)})
}

// GET /api/data/raw-material
func (h *DataHandler) RawMaterial(c *gin.Context) { listRows(c, 100, h.readings.RecentRawMaterial) }

// GET /api/data/grinding
func (h *DataHandler) Grinding(c *gin.Context) { listRows(c, 100, h.readings.RecentGrinding) }

// GET /api/data/kiln
func (h *DataHandler) Kiln(c *gin.Context) { listRows(c, 100, h.readings.RecentKiln) }

// GET /api/data/quality
func (h *DataHandler) Quality(c *gin.Context) { listRows(c, 50, h.readings.RecentQuality) }

// GET /api/data/alternative-fuels
func (h *DataHandler) AlternativeFuels(c *gin.Context) {
	listRows(c, 50, h.readings.RecentAlternativeFuels)
}

// GET /api/data/utilities
func (h *DataHandler) Utilities(c *gin.Context) { listRows(c, 50, h.readings.RecentUtilities) }

// GET /api/data/plant-overview
func (h *DataHandler) PlantOverview(c *gin.Context) {
	k, ov, _, err := h.monitor.KPIs(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "overview_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"kpis": k, "overview": ov})
}

// GET /api/data/combined returns the same payload dashboards receive over
// the WebSocket.
func (h *DataHandler) Combined(c *gin.Context) {
	snap, err := h.monitor.Snapshot(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "snapshot_failed", err)
		return
	}
	response.RespondOK(c, snap)
}
