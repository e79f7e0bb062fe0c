package routes

import (
	"github.com/gin-gonic/gin"

	"task-tracker/internal/controller"
	"task-tracker/internal/middleware"
)

// Options carries the optional pieces of the router.
type Options struct {
	// Limiter throttles the JSON API; nil disables rate limiting.
	Limiter    middleware.RateLimiter
	JWTSecret  string
	CORSOrigin string
}

func Router(ctl *controller.Controller, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(opts.CORSOrigin))
	router.SetHTMLTemplate(controller.Templates())

	// Health for load balancers and K8s probes
	router.GET("/health", ctl.Health)
	router.GET("/ready", ctl.Ready)

	// Form and list page
	router.GET("/", ctl.Index)
	router.POST("/tasks", ctl.SubmitTaskForm)
	router.POST("/tasks/:id/complete", ctl.CompleteTaskForm)

	api := router.Group("/api")
	if opts.Limiter != nil {
		api.Use(middleware.RateLimit(opts.Limiter))
	}
	{
		api.GET("/tasks", ctl.GetTasks)
		api.GET("/tasks/:id", ctl.GetTask)
		api.POST("/tasks", middleware.ValidateTask(), ctl.CreateTask)
		api.PUT("/tasks/:id/complete", ctl.CompleteTask)
		api.GET("/stats", ctl.GetStats)
	}

	// Administrative: JWT required, not linked from the page or the task API
	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(opts.JWTSecret))
	{
		admin.GET("/tasks", ctl.ListAllTasks)
		admin.DELETE("/tasks/:id", ctl.DeleteTask)
	}

	router.NoRoute(controller.NotFound)
	return router
}
