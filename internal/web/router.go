package web

import (
	"github.com/gin-gonic/gin"

	behaviorin "github.com/JHR999/behavior-tracker/internal/modules/behavior/port/in"
	checkinin "github.com/JHR999/behavior-tracker/internal/modules/checkin/port/in"
	"github.com/JHR999/behavior-tracker/internal/platform/logger"
	"github.com/JHR999/behavior-tracker/internal/web/handlers"
	"github.com/JHR999/behavior-tracker/internal/web/middleware"
)

type RouterConfig struct {
	Behaviors behaviorin.Usecase
	Checkin   checkinin.Usecase
	Log       *logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	// Match on the escaped path so a name like "Read%2FWrite" stays one segment.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.SetHTMLTemplate(handlers.Templates())

	behaviorHandler := handlers.NewBehaviorHandler(cfg.Behaviors)
	checkinHandler := handlers.NewCheckinHandler(cfg.Checkin)
	dashboardHandler := handlers.NewDashboardHandler(cfg.Behaviors, cfg.Checkin, cfg.Log)

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/", dashboardHandler.Index)
	router.GET("/table", dashboardHandler.Table)
	router.POST("/table/add", dashboardHandler.AddBehavior)
	router.POST("/table/edit", dashboardHandler.EditBehavior)
	router.POST("/table/probability", dashboardHandler.SetProbability)
	router.POST("/table/remove", dashboardHandler.RemoveBehavior)

	api := router.Group("/api")
	{
		api.GET("/behaviors", behaviorHandler.List)
		api.POST("/behaviors", behaviorHandler.Add)
		api.GET("/behaviors/:name", behaviorHandler.Get)
		api.PATCH("/behaviors/:name", behaviorHandler.Edit)
		api.DELETE("/behaviors/:name", behaviorHandler.Remove)
		api.PUT("/behaviors/:name/probability", behaviorHandler.SetProbability)
		api.POST("/reload", behaviorHandler.Reload)

		api.GET("/pending", checkinHandler.Pending)
		api.GET("/queue", checkinHandler.Queue)
		api.GET("/situational", checkinHandler.Situational)
		api.GET("/today", checkinHandler.Today)
		api.POST("/outcomes", checkinHandler.RecordOutcome)
		api.GET("/session", checkinHandler.Session)
		api.POST("/session/reset", checkinHandler.ResetSession)
	}

	return router
}
