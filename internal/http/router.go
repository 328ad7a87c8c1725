package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cementplant-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cementplant-backend/internal/http/middleware"
	"github.com/yungbote/cementplant-backend/internal/observability"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string

	HealthHandler    *httpH.HealthHandler
	RealtimeHandler  *httpH.RealtimeHandler
	DataHandler      *httpH.DataHandler
	AIHandler        *httpH.AIHandler
	AnalyticsHandler *httpH.AnalyticsHandler
	SchedulerHandler *httpH.SchedulerHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "cementplant-backend", "status": "running"})
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Realtime (WebSocket)
	if cfg.RealtimeHandler != nil {
		ws := r.Group("/ws")
		ws.GET("/plant-data", cfg.RealtimeHandler.PlantData)
		ws.GET("/alerts", cfg.RealtimeHandler.Alerts)
		ws.GET("/status", cfg.RealtimeHandler.Status)
	}

	api := r.Group("/api")

	// Sensor and lab data
	if cfg.DataHandler != nil {
		data := api.Group("/data")
		data.GET("/raw-material", cfg.DataHandler.RawMaterial)
		data.GET("/grinding", cfg.DataHandler.Grinding)
		data.GET("/kiln", cfg.DataHandler.Kiln)
		data.GET("/quality", cfg.DataHandler.Quality)
		data.GET("/alternative-fuels", cfg.DataHandler.AlternativeFuels)
		data.GET("/utilities", cfg.DataHandler.Utilities)
		data.GET("/plant-overview", cfg.DataHandler.PlantOverview)
		data.GET("/combined", cfg.DataHandler.Combined)
	}

	// Recommendations and optimization
	if cfg.AIHandler != nil {
		ai := api.Group("/ai")
		ai.GET("/recommendations", cfg.AIHandler.Recommendations)
		ai.POST("/recommendations/:id/action", cfg.AIHandler.MarkAction)
		ai.GET("/optimization-history", cfg.AIHandler.OptimizationHistory)
		ai.GET("/kpi-summary", cfg.AIHandler.KPISummary)
		ai.POST("/optimize/:area", cfg.AIHandler.Optimize)
	}

	// Analytics
	if cfg.AnalyticsHandler != nil {
		an := api.Group("/analytics")
		an.GET("/chemistry", cfg.AnalyticsHandler.Chemistry)
		an.GET("/grinding", cfg.AnalyticsHandler.Grinding)
		an.GET("/fuel", cfg.AnalyticsHandler.Fuel)
		an.GET("/plant-report", cfg.AnalyticsHandler.PlantReport)
		an.GET("/equipment-health", cfg.AnalyticsHandler.EquipmentHealth)
		an.GET("/math/oee", cfg.AnalyticsHandler.OEE)
	}

	// Scheduler
	if cfg.SchedulerHandler != nil {
		api.GET("/scheduler/jobs", cfg.SchedulerHandler.ListJobs)
		api.POST("/scheduler/jobs/:name/run", cfg.SchedulerHandler.RunJob)
	}

	return r
}
