package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/config"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/handler/v1/middleware"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
)

type RouterDeps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Collector    *metrics.Collector
	JWTManager   *auth.JWTManager
	Scheduling   *SchedulingHandler
	Availability *AvailabilityHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics(deps.Collector))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(deps.JWTManager))
	{
		doctors := api.Group("/doctors/:id")
		{
			doctors.GET("/slots", deps.Scheduling.ListSlots)

			availability := doctors.Group("/availability")
			{
				availability.GET("", deps.Availability.Get)
				availability.POST("", deps.Availability.EnsureDefaults)
				availability.PUT("/template", deps.Availability.SetWeeklyTemplate)
				availability.PUT("/days", deps.Availability.SetDaySchedule)
				availability.PUT("/slot-duration", deps.Availability.SetSlotDuration)
				availability.PUT("/daily-cap", deps.Availability.SetMaxPatientsPerDay)
				availability.POST("/blocks", deps.Availability.AddBlockedInterval)
				availability.DELETE("/blocks", deps.Availability.RemoveBlockedInterval)
			}
		}

		appointments := api.Group("/appointments")
		{
			appointments.POST("", deps.Scheduling.Book)
			appointments.GET("", deps.Scheduling.List)
			appointments.GET("/upcoming", middleware.RequireRole(auth.RoleAdmin), deps.Scheduling.Upcoming)
			appointments.GET("/:id", deps.Scheduling.Get)
			appointments.POST("/:id/cancel", deps.Scheduling.Cancel)
			appointments.POST("/:id/complete", deps.Scheduling.Complete)
			appointments.POST("/:id/reschedule", deps.Scheduling.Reschedule)
		}
	}

	return r
}
