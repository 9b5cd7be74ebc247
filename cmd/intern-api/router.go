package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/handler"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/middleware"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/config"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/logger"
	corsmiddleware "github.com/ItsOuaail/aptiv-interns-platform/pkg/middleware/cors"
	reqidmiddleware "github.com/ItsOuaail/aptiv-interns-platform/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, app *application) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(app.auth)
	internHandler := handler.NewInternHandler(app.interns, app.batch, cfg.Batch.MaxUploadBytes)
	searchHandler := handler.NewSearchHandler(app.search)
	messageHandler := handler.NewMessageHandler(app.messages)
	notificationHandler := handler.NewNotificationHandler(app.notifications)
	activityHandler := handler.NewActivityHandler(app.activities)
	attendanceHandler := handler.NewAttendanceHandler(app.attendance)
	documentHandler := handler.NewDocumentHandler(app.documents, cfg.Storage.MaxDocumentBytes, cfg.APIPrefix+"/files/")

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/files/:token", documentHandler.Signed)

	authed := api.Group("")
	authed.Use(middleware.JWT(app.auth), middleware.Identity(app.identity))
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/notifications", notificationHandler.List)
	authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	authed.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
	authed.GET("/messages/my", messageHandler.My)
	authed.GET("/messages/unread-count", messageHandler.UnreadCount)
	authed.PATCH("/messages/:id/read", messageHandler.MarkRead)
	authed.GET("/documents/:id/download", documentHandler.Download)
	authed.POST("/documents/:id/link", documentHandler.Link)

	intern := authed.Group("")
	intern.Use(middleware.RequireRoles(models.RoleIntern))
	intern.GET("/interns/my", internHandler.My)
	intern.POST("/messages/hr", messageHandler.SendToHR)
	intern.POST("/activities", activityHandler.Create)
	intern.GET("/activities/my", activityHandler.My)
	intern.POST("/attendance/checkin", attendanceHandler.CheckIn)
	intern.POST("/attendance/checkout", attendanceHandler.CheckOut)
	intern.GET("/attendance/my", attendanceHandler.My)
	intern.POST("/documents", documentHandler.Upload)
	intern.GET("/documents/my", documentHandler.My)

	hr := authed.Group("")
	hr.Use(middleware.RequireRoles(models.RoleHR))
	hr.GET("/interns", internHandler.List)
	hr.POST("/interns", internHandler.Create)
	hr.GET("/interns/count", internHandler.Count)
	hr.GET("/interns/active/count", internHandler.ActiveCount)
	hr.GET("/interns/upcoming-end-dates/count", internHandler.UpcomingEndCount)
	hr.POST("/interns/batch", internHandler.CreateBatch)
	hr.POST("/interns/batch/upload", internHandler.UploadBatch)

	hr.GET("/interns/search", searchHandler.Search)
	hr.GET("/interns/search/options", searchHandler.Options)
	hr.GET("/interns/search/statistics", searchHandler.Statistics)
	hr.GET("/interns/search/suggestions", searchHandler.Suggestions)
	hr.GET("/interns/search/export", searchHandler.Export)

	hr.POST("/interns/message/batch", messageHandler.SendToMany)
	hr.POST("/interns/message/all", messageHandler.SendToAll)

	hr.GET("/interns/:id", internHandler.Get)
	hr.PATCH("/interns/:id", internHandler.Update)
	hr.DELETE("/interns/:id", internHandler.Delete)
	hr.PATCH("/interns/:id/status", internHandler.UpdateStatus)
	hr.POST("/interns/:id/welcome", internHandler.ResendWelcome)
	hr.POST("/interns/:id/message", messageHandler.SendToIntern)
	hr.GET("/interns/:id/attendance", attendanceHandler.ForIntern)

	hr.GET("/activities", activityHandler.List)
	hr.GET("/documents", documentHandler.List)

	return r
}
