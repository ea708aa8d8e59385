package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/auth"
	"manhua-tracker/internal/config"
	"manhua-tracker/internal/database"
	"manhua-tracker/internal/database/users"
	http_controllers "manhua-tracker/internal/http"
	"manhua-tracker/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it within
// the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background jobs before draining connections
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the database, auth service, router and optional session
// sweep, then serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Manhua Tracker v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path, database.SeedPasswords{
		Admin:  cfg.Seed.AdminPassword,
		Reader: cfg.Seed.ReaderPassword,
		Cost:   cfg.Auth.BcryptCost,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:    db,
		AuthService: authService,
		AuthConfig:  cfg.Auth,
	})

	sweep := scheduler.NewSessionSweepScheduler(db, cfg.Sessions)
	if err := sweep.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start session sweep scheduler: %v", err)
	}

	Serve(router, cfg, func(ctx context.Context) {
		sweep.Stop()
	})
}
