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
	"github.com/robfig/cron/v3"

	"qrmenu/internal/config"
	"qrmenu/internal/database"
	httpapi "qrmenu/internal/http"
	"qrmenu/internal/service"
	"qrmenu/internal/upload"

	_ "qrmenu/docs"
)

// uploads younger than this are never swept
const sweepGrace = time.Hour

// @title QR Menu API
// @version 1.0
// @description Bilingual restaurant menu catalog: admin CRUD and public menu views.
// @BasePath /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	store, closeStore, err := database.OpenCatalog(cfg.DBDriver, cfg.DBSource, cfg.DBLogSQL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if cfg.SeedDemo {
		if err := database.SeedDemo(context.Background(), store); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	uploads := upload.NewPipeline(cfg.UploadDir, cfg.UploadMaxBytes)
	if err := os.MkdirAll(uploads.Dir(), 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}
	var sched *cron.Cron
	if cfg.SweepCron != "" {
		sched, err = upload.NewSweeper(cfg.UploadDir, store, sweepGrace).Schedule(cfg.SweepCron)
		if err != nil {
			log.Fatalf("sweeper: %v", err)
		}
	}

	srv := httpapi.NewServer(httpapi.Deps{
		Restaurants: service.NewRestaurantService(store, cfg.PublicOrigin),
		Categories:  service.NewCategoryService(store, cfg.DeletePolicy),
		Items:       service.NewItemService(store),
		Stats:       service.NewStatsService(store, store),
		Menus:       service.NewMenuService(store),
		Uploads:     uploads,
		Store:       store,
	}, httpapi.Options{
		CORSOrigins: cfg.CORSOrigins,
		SlowRequest: cfg.SlowRequest,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s (%s)", httpServer.Addr, cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if sched != nil {
		<-sched.Stop().Done()
	}
	if err := closeStore(); err != nil {
		log.Printf("close store: %v", err)
	}
}
