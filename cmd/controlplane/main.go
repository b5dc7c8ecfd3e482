package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/handlers"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/middleware"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/kubernetes"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/memory"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/modelfile"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/postgres"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/config"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/services"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/logging"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/proxy"
)

func main() {
	flags := pflag.NewFlagSet("controlplane", pflag.ExitOnError)
	flags.Int("port", 0, "listen port (overrides CONTROLPLANE_PORT)")
	flags.String("kubeconfig", "", "path to a kubeconfig (overrides KUBERNETES_KUBECONFIG)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(
		config.WithEnvFile(".env"),
		config.WithFlag("CONTROLPLANE_PORT", flags.Lookup("port")),
		config.WithFlag("KUBERNETES_KUBECONFIG", flags.Lookup("kubeconfig")),
	)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	closer := logging.Init(cfg.Logger)
	defer closer.Close()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Deployment records: Postgres when configured, otherwise in memory
	var repo ports.DeploymentRepository
	if cfg.Database.URL != "" {
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			log.Fatalf("parse db config: %v", err)
		}
		poolCfg.MaxConns = int32(cfg.Database.MaxConns)

		pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err != nil {
			log.Fatalf("create db pool: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping db: %v", err)
		}
		if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		log.Info("database connection established")
		repo = postgres.NewDeploymentRepository(pool)
	} else {
		log.Info("DATABASE_URL not set, keeping deployment records in memory")
		repo = memory.NewDeploymentRepository()
	}

	// Kubernetes client (optional, cluster routes answer 503 without it)
	var cluster ports.ClusterClient
	if cfg.Kubernetes.Enabled {
		client, err := kubernetes.NewClusterClient(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("Kubernetes client init failed (continuing without K8s integration): %v", err)
		} else {
			cluster = client
			log.Info("Kubernetes client initialized")
		}
	} else {
		log.Info("Kubernetes integration disabled")
	}

	// Core Services
	cpSvc := services.NewControlPlaneService(
		modelfile.NewStore(afero.NewOsFs()),
		cluster,
		repo,
		services.ControlPlaneSettings{
			Namespace:      cfg.ControlPlane.Namespace,
			SharedDir:      cfg.ControlPlane.SharedDir,
			Image:          cfg.ControlPlane.Image,
			ClaimName:      cfg.ControlPlane.ClaimName,
			MountPath:      cfg.Model.Dir,
			ContainerPort:  int32(cfg.ControlPlane.ContainerPort),
			ServicePort:    int32(cfg.ControlPlane.ServicePort),
			MaxUploadBytes: int64(cfg.ControlPlane.MaxUploadMB) << 20,
		},
	)

	// Prediction forwarding to in-cluster model Services
	var predictProxy *proxy.Client
	if cluster != nil {
		predictProxy = proxy.NewClient(
			proxy.ServiceResolver(cfg.ControlPlane.Namespace, int32(cfg.ControlPlane.ServicePort)),
			cfg.ControlPlane.ProxyTimeout,
		)
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.NewControlPlane(cpSvc, predictProxy, int64(cfg.ControlPlane.MaxUploadMB)<<20)

	// Setup router
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.ControlPlane.MaxUploadMB) << 20
	router.Use(middleware.RequestID(), middleware.Logging("/api/ControlPlane/healthz"), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.ControlPlane.CORSOrigins)))

	api := router.Group("/api/ControlPlane")
	h.RegisterRoutes(api)

	// Start server
	addr := cfg.ControlPlane.Addr()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting control plane on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
