package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cementplant-backend/internal/calc"
	"github.com/yungbote/cementplant-backend/internal/http/response"
	"github.com/yungbote/cementplant-backend/internal/monitor"
)

type AnalyticsHandler struct {
	monitor *monitor.Service
}

func NewAnalyticsHandler(mon *monitor.Service) *AnalyticsHandler {
	return &AnalyticsHandler{monitor: mon}
}

// GET /api/analytics/chemistry
func (h *AnalyticsHandler) Chemistry(c *gin.Context) {
	k, _, _, err := h.monitor.KPIs(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "analytics_failed", err)
		return
	}
	response.RespondOK(c, monitor.AnalyzeChemistry(k))
}

// GET /api/analytics/grinding
func (h *AnalyticsHandler) Grinding(c *gin.Context) {
	k, _, src, err := h.monitor.KPIs(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "analytics_failed", err)
		return
	}
	response.RespondOK(c, monitor.AnalyzeGrinding(src.Grinding, k, h.monitor.Economics()))
}

// GET /api/analytics/fuel?target_tsr=30
func (h *AnalyticsHandler) Fuel(c *gin.Context) {
	target, err := queryFloat(c, "target_tsr", monitor.DefaultTargetTSR, 0, 60)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_target_tsr", err)
		return
	}
	_, _, src, err := h.monitor.KPIs(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "analytics_failed", err)
		return
	}
	mix, err := monitor.OptimizeFuel(src, target)
	if err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "fuel_mix_unavailable", err)
		return
	}
	response.RespondOK(c, mix)
}

// GET /api/analytics/plant-report
func (h *AnalyticsHandler) PlantReport(c *gin.Context) {
	rep, err := h.monitor.PlantReport(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "analytics_failed", err)
		return
	}
	response.RespondOK(c, rep)
}

// GET /api/analytics/equipment-health
func (h *AnalyticsHandler) EquipmentHealth(c *gin.Context) {
	rows, err := h.monitor.EquipmentHealth(c.Request.Context())
	if err != nil {
		response.RespondErr(c, "analytics_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"equipment": rows, "count": len(rows)})
}

// GET /api/analytics/math/oee?availability=90&performance=95&quality=99
func (h *AnalyticsHandler) OEE(c *gin.Context) {
	var in [3]float64
	for i, key := range []string{"availability", "performance", "quality"} {
		if c.Query(key) == "" {
			response.RespondError(c, http.StatusBadRequest, "missing_"+key, errors.New(key+" is required"))
			return
		}
		v, err := queryFloat(c, key, 0, 0, 100)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_"+key, err)
			return
		}
		in[i] = v
	}
	oee, err := calc.OEE(in[0], in[1], in[2])
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_oee_input", err)
		return
	}
	response.RespondOK(c, gin.H{
		"availability": in[0],
		"performance":  in[1],
		"quality":      in[2],
		"oee":          oee,
	})
}
