package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emanchez/analytics-app/database"
	"github.com/emanchez/analytics-app/handlers"
	"github.com/emanchez/analytics-app/logger"
	"github.com/emanchez/analytics-app/metrics"
	"github.com/emanchez/analytics-app/middleware"
	"github.com/emanchez/analytics-app/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	zapLog, err := logger.New(os.Getenv("ENVIRONMENT"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize the file-backed document store ---
	db, err := database.NewFileStore(os.Getenv("DATA_DIR"))
	if err != nil {
		zapLog.Fatal("Failed to initialize document store", zap.Error(err))
	}
	zapLog.Info("Document store ready", zap.String("data_dir", db.Root()))

	appMetrics := metrics.New()

	// --- Initialize Stores ---
	analyticsStore := store.NewAnalyticsStore(db, zapLog)

	// --- Initialize Handlers ---
	eventHandlers := handlers.NewEventHandlers(analyticsStore, appMetrics, zapLog)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsStore, zapLog)
	merchHandlers := handlers.NewMerchHandlers(os.Getenv("MERCH_FILE"), zapLog)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.MetricsMiddleware(appMetrics))

	api := r.Group("/api")
	{
		api.GET("/hello", handlers.Hello)
		api.POST("/post-event", eventHandlers.PostEvent)
		api.GET("/get-merch", merchHandlers.GetMerch)

		analyticsGroup := api.Group("/analytics")
		{
			analyticsGroup.GET("/conversions", analyticsHandlers.GetConversions)
			analyticsGroup.GET("/sessions", analyticsHandlers.GetSessions)
			analyticsGroup.GET("/products", analyticsHandlers.GetProducts)
			analyticsGroup.GET("/dashboard", analyticsHandlers.GetDashboard)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(appMetrics.Registry(), promhttp.HandlerOpts{})))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		zapLog.Info("Analytics API server starting", zap.String("addr", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLog.Info("Server exiting.")
}
