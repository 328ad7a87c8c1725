package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/http/response"
	"github.com/yungbote/cementplant-backend/internal/monitor"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	"github.com/yungbote/cementplant-backend/internal/recommend"
)

type AIHandler struct {
	monitor *monitor.Service
	recs    repos.RecommendationRepo
	opts    repos.OptimizationRepo
}

func NewAIHandler(mon *monitor.Service, recs repos.RecommendationRepo, opts repos.OptimizationRepo) *AIHandler {
	return &AIHandler{monitor: mon, recs: recs, opts: opts}
}

// GET /api/ai/recommendations?open_only=true&band=critical&min_priority=6&process_area=grinding
func (h *AIHandler) Recommendations(c *gin.Context) {
	limit, err := queryLimit(c, 20)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	f := repos.RecommendationFilter{
		OpenOnly:    c.DefaultQuery("open_only", "true") != "false",
		ProcessArea: strings.TrimSpace(c.Query("process_area")),
		Limit:       limit,
	}
	if band := strings.TrimSpace(c.Query("band")); band != "" {
		min, max, ok := recommend.BandRange(band)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_band", errors.New("band must be critical, warning or info"))
			return
		}
		f.MinPriority, f.MaxPriority = min, max
	}
	if v := strings.TrimSpace(c.Query("min_priority")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10 {
			response.RespondError(c, http.StatusBadRequest, "invalid_priority", errInvalidPriority)
			return
		}
		if n > f.MinPriority {
			f.MinPriority = n
		}
	}
	rows, err := h.recs.List(dbctx.Context{Ctx: c.Request.Context()}, f)
	if err != nil {
		response.RespondErr(c, "list_recommendations_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"recommendations": rows, "count": len(rows)})
}

// POST /api/ai/recommendations/:id/action
func (h *AIHandler) MarkAction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_recommendation_id", errors.New("id must be a positive integer"))
		return
	}
	rec, err := h.recs.MarkActionTaken(dbctx.Context{Ctx: c.Request.Context()}, id, time.Now().UTC())
	if err != nil {
		response.RespondErr(c, "mark_action_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"recommendation": rec})
}

// GET /api/ai/optimization-history
func (h *AIHandler) OptimizationHistory(c *gin.Context) {
	limit, err := queryLimit(c, 20)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	rows, err := h.opts.Recent(dbctx.Context{Ctx: c.Request.Context()}, limit)
	if err != nil {
		response.RespondErr(c, "history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows, "count": len(rows)})
}

// GET /api/ai/kpi-summary
func (h *AIHandler) KPISummary(c *gin.Context) {
	ctx := c.Request.Context()
	k, ov, _, err := h.monitor.KPIs(ctx)
	if err != nil {
		response.RespondErr(c, "kpi_failed", err)
		return
	}
	open, err := h.recs.CountOpen(dbctx.Context{Ctx: ctx})
	if err != nil {
		response.RespondErr(c, "kpi_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"kpis":                 k,
		"overview":             ov,
		"open_recommendations": open,
		"timestamp":            time.Now().UTC(),
	})
}

// POST /api/ai/optimize/:area
func (h *AIHandler) Optimize(c *gin.Context) {
	res, err := h.monitor.RunOptimizationForArea(c.Request.Context(), strings.ToLower(strings.TrimSpace(c.Param("area"))))
	if err != nil {
		response.RespondErr(c, "optimize_failed", err)
		return
	}
	response.RespondOK(c, res)
}
