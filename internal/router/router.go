package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"countdown/internal/handler"
	"countdown/internal/middleware"
)

func New(timerHandler *handler.TimerHandler, apiToken string, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.Use(middleware.BearerToken(apiToken))

	timers := api.Group("/timers")
	timers.GET("", timerHandler.List)
	timers.POST("", timerHandler.Create)
	timers.GET("/:id", timerHandler.Get)
	timers.POST("/:id/start", timerHandler.Start)
	timers.POST("/:id/pause", timerHandler.Pause)
	timers.POST("/:id/reset", timerHandler.Reset)

	api.GET("/categories", timerHandler.Categories)
	api.POST("/categories/:name/:op", timerHandler.ApplyToCategory)

	api.GET("/history", timerHandler.History)
	api.GET("/history/export", timerHandler.Export)

	api.DELETE("/state", timerHandler.ClearAll)

	return engine
}
