package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-packaging-service/internal/adapters/primary/http/handlers"
	"dashboard-packaging-service/internal/adapters/primary/http/middleware"
	"dashboard-packaging-service/internal/adapters/secondary/docker"
	"dashboard-packaging-service/internal/adapters/secondary/kube"
	"dashboard-packaging-service/internal/adapters/secondary/postgres"
	"dashboard-packaging-service/internal/adapters/secondary/probe"
	"dashboard-packaging-service/internal/config"
	output "dashboard-packaging-service/internal/core/ports/output"
	"dashboard-packaging-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Repositories)
	buildRepo := postgres.NewImageBuildRepository(pool)
	deployRepo := postgres.NewDeploymentRepository(pool)

	// Docker daemon: required, it is both the image builder and the
	// default launch target
	dockerCli, err := docker.NewClient()
	if err != nil {
		log.Fatalf("create docker client: %v", err)
	}
	builder := docker.NewBuilder(dockerCli)
	runtime := docker.NewRuntime(dockerCli, cfg.Docker.StopTimeout)
	log.Info("docker client initialized")

	// Kubernetes Client (Optional - based on config)
	var kubeClient output.KubeClient
	if cfg.Kubernetes.Enabled {
		client, err := kube.NewKubeClient(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("kubernetes client init failed (continuing without K8s integration): %v", err)
		} else {
			kubeClient = client
			log.Info("kubernetes client initialized")
		}
	} else {
		log.Info("kubernetes integration disabled")
	}

	prober := probe.NewProber(cfg.Probe.Timeout)

	// Core Services (Application Layer)
	buildSvc := services.NewBuildService(
		buildRepo, deployRepo, builder,
		afero.NewOsFs(),
		cfg.Build.ContextRoot, cfg.Build.TagPrefix, cfg.Build.Timeout,
	)
	launchSvc := services.NewLaunchService(deployRepo, buildRepo, runtime, kubeClient, cfg.Probe.Host)
	monitorSvc := services.NewMonitorService(deployRepo, prober, cfg.Probe.Interval)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(buildSvc, launchSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/packager")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Background health sweep over running deployments
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go monitorSvc.Run(monitorCtx)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
