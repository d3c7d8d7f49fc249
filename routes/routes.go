package routes

import (
	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(settings config.Settings, h *controllers.Handlers) *gin.Engine {
	r := gin.Default()

	allowed := make(map[string]bool, len(settings.AllowedOrigins))
	for _, origin := range settings.AllowedOrigins {
		allowed[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
	}))

	r.Use(config.PerformanceLogger(settings.SlowRequestThreshold))

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(settings.JWTSecret))
	{
		// Job routes
		jobs := api.Group("/jobs")
		{
			jobs.GET("", h.GetMyJobs)
			jobs.POST("", h.CreateJob)
			jobs.GET("/:id", h.GetJob)
			jobs.POST("/:id/open", h.OpenJob)
			jobs.GET("/:id/session", h.GetSession)
			jobs.PUT("/:id/parts", h.SetPartUsage)
			jobs.PUT("/:id/status", h.UpdateJobStatus)
			jobs.POST("/:id/timer/start", h.StartTimer)
			jobs.GET("/:id/time-entries", h.GetTimeEntries)
			jobs.POST("/:id/photos", h.AddPhoto)
			jobs.GET("/:id/photos", h.GetPhotos)
			jobs.POST("/:id/invoice", h.ConvertJobToInvoice)
		}

		api.POST("/time-entries/:id/stop", h.StopTimer)

		// Location tracking routes
		tracking := api.Group("/tracking")
		{
			tracking.POST("/start", h.StartTracking)
			tracking.POST("/stop", h.StopTracking)
			tracking.GET("/status", h.GetTrackingStatus)
		}
		api.POST("/locations/report", h.ReportLocation)
		api.GET("/locations", controllers.GetLocations)

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Inventory routes
		inventory := api.Group("/inventory")
		{
			inventory.POST("", controllers.CreateInventoryItem)
			inventory.POST("/import", controllers.ImportInventory)
			inventory.GET("", controllers.GetInventoryItems)
			inventory.GET("/:id", controllers.GetInventoryItem)
			inventory.PUT("/:id", controllers.UpdateInventoryItem)
			inventory.DELETE("/:id", controllers.DeleteInventoryItem)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.GET("/:id/pdf", controllers.GetInvoicePDF)
			invoices.PUT("/:id", controllers.UpdateInvoice)
			invoices.DELETE("/:id", controllers.DeleteInvoice)
		}

		//Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports", reportController.GetReportAnalytics)
		api.GET("/reports/timesheet", reportController.GetTimesheet)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Settings routes
		api.GET("/company", controllers.GetCompany)
		api.PUT("/company", controllers.UpdateCompany)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", controllers.GetNotificationLogs)
			notifications.POST("/digest", h.SendDigestNow)
		}
	}

	return r
}
