package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

type routerDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *service.MetricsService
	Tokens      middleware.TokenValidator
	Timing      *handler.SchoolTimingHandler
	Settings    *handler.ScheduleSettingsHandler
	Feasibility *handler.FeasibilityHandler
	Archive     *handler.ReportArchiveHandler
	System      *handler.MetricsHandler
}

func newRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.System.Health)
	r.GET("/ready", deps.System.Ready)
	r.GET("/metrics", deps.System.Prometheus)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)
	api.Use(middleware.OptionalJWT(deps.Tokens))

	api.GET("/system/metrics", deps.System.Summary)

	admin := []gin.HandlerFunc{middleware.JWT(deps.Tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)}
	mutation := func(action, resource string, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := append([]gin.HandlerFunc{}, admin...)
		return append(chain, middleware.Audit(deps.Logger, action, resource), h)
	}

	api.GET("/school-timing", deps.Timing.Get)
	api.PUT("/school-timing", mutation("update", "school_timing", deps.Timing.Update)...)

	settings := api.Group("/schedule-settings")
	settings.GET("", deps.Settings.Get)
	settings.PUT("/subjects/:subjectId", mutation("upsert", "subject_constraint", deps.Settings.UpsertSubject)...)
	settings.PUT("/teachers/:teacherId", mutation("upsert", "teacher_constraint", deps.Settings.UpsertTeacher)...)
	settings.PUT("/substitution", mutation("update", "substitution", deps.Settings.UpdateSubstitution)...)
	settings.PUT("/meetings", mutation("replace", "specialized_meetings", deps.Settings.ReplaceMeetings)...)

	feasibility := api.Group("/feasibility")
	feasibility.GET("/report", deps.Feasibility.Report)
	feasibility.GET("/report/export", deps.Feasibility.Export)
	feasibility.GET("/preflight", deps.Feasibility.Preflight)
	feasibility.POST("/check", deps.Feasibility.Check)
	feasibility.GET("/substitution-balance", deps.Feasibility.SubstitutionBalance)
	feasibility.GET("/distribution", deps.Feasibility.Distribution)
	feasibility.POST("/report/links", middleware.JWT(deps.Tokens), deps.Archive.Publish)
	feasibility.GET("/downloads/:token", deps.Archive.Download)

	return r
}
