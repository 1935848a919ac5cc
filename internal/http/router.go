package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/deliveries", handler.listDeliveries)
		protected.GET("/deliveries/:id", handler.getDelivery)
		protected.POST("/deliveries", handler.createDelivery)
		protected.PATCH("/deliveries/:id", handler.updateDelivery)
		protected.POST("/deliveries/:id/dispatch", handler.dispatchDelivery)
		protected.POST("/deliveries/:id/complete", handler.completeDelivery)
		protected.POST("/deliveries/:id/cancel", handler.cancelDelivery)

		protected.GET("/approvals", handler.listApprovals)
		protected.GET("/approval-stats", handler.approvalStats)
		protected.GET("/approvals/:id", handler.getApproval)
		protected.POST("/approvals/:id/approve", handler.approveApproval)
		protected.POST("/approvals/:id/reject", handler.rejectApproval)
		protected.POST("/approvals/:id/cancel", handler.cancelApproval)

		protected.GET("/vehicles", handler.listVehicles)
		protected.GET("/vehicles/:id", handler.getVehicle)
		protected.POST("/vehicles", handler.createVehicle)
		protected.PATCH("/vehicles/:id", handler.updateVehicle)
		protected.GET("/vehicle-suggestions", handler.suggestVehicles)

		protected.GET("/closures", handler.listClosures)
		protected.POST("/closures", handler.createClosure)
		protected.POST("/closures/:id/reopen", handler.reopenClosure)
		protected.POST("/closures/:id/reactivate", handler.reactivateClosure)

		protected.GET("/districts", handler.listDistricts)
		protected.POST("/districts", handler.createDistrict)
		protected.PATCH("/districts/:id", handler.updateDistrict)
		protected.POST("/districts/seed", handler.seedDistricts)

		protected.GET("/schedule/week-days", handler.listWeekDays)
		protected.PATCH("/schedule/week-days/:id", handler.updateWeekDay)
		protected.GET("/schedule/assignments", handler.listAssignments)
		protected.PUT("/schedule/assignments", handler.upsertAssignment)
		protected.DELETE("/schedule/assignments/:id", handler.deleteAssignment)
		protected.GET("/schedule/availability", handler.availability)
	}

	return router
}
