package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/routes"
	"fieldpro-backend/services"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func init() {
	config.Load()
	config.ConnectDB(config.App.DatabaseURL)

	if err := config.DB.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func main() {
	settings := config.App

	node, err := snowflake.NewNode(settings.SnowflakeNode)
	if err != nil {
		log.Fatalf("Invalid snowflake node %d: %v", settings.SnowflakeNode, err)
	}

	scheduler := services.NewCronScheduler()
	locator := services.NewDeviceLocator(2 * settings.LocationPingInterval)
	tracking := services.NewTrackingManager(locator, scheduler,
		services.GormLocationStore{DB: config.DB}, settings.LocationPingInterval)

	notifications := services.NewNotificationService(config.DB,
		settings.TwilioAccountSID, settings.TwilioAuthToken, settings.TwilioPhoneNumber)
	digestCron, err := notifications.StartScheduler(settings.DigestSchedule)
	if err != nil {
		log.Fatalf("Failed to start digest scheduler: %v", err)
	}

	h := &controllers.Handlers{
		Jobs:          services.NewJobService(config.DB),
		Timer:         services.NewTimeTracker(config.DB),
		Sessions:      services.NewSessionStore(),
		Invoices:      services.NewInvoiceConverter(config.DB, node, settings.InvoiceDueDays),
		Tracking:      tracking,
		Locator:       locator,
		Notifications: notifications,
	}

	r := routes.SetupRouter(settings, h)
	printRoutes(r)

	srv := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	tracking.StopAll()
	scheduler.Stop()
	<-digestCron.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
