package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/handlers"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/middleware"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/modelfile"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/config"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/services"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/logging"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/platform"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags.String("model-dir", "", "directory containing model.h5 (overrides MODEL_DIR)")
	flags.String("model-name", "", "name reported for the served model (overrides MODEL_NAME)")
	flags.Int("port", 0, "listen port (overrides SERVER_PORT)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(
		config.WithEnvFile(".env"),
		config.WithFlag("MODEL_DIR", flags.Lookup("model-dir")),
		config.WithFlag("MODEL_NAME", flags.Lookup("model-name")),
		config.WithFlag("SERVER_PORT", flags.Lookup("port")),
	)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	closer := logging.Init(cfg.Logger)
	defer closer.Close()

	log.WithFields(platform.HostFields()).Info("host capabilities")

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters
	store := modelfile.NewStore(afero.NewOsFs())

	// Core Services
	inferenceSvc := services.NewInferenceService(store, cfg.Model.Name, cfg.Model.Dir)

	// The model is loaded before the listener opens; a missing or broken
	// artifact stops the process.
	if err := inferenceSvc.Load(context.Background()); err != nil {
		entry := log.WithError(err).WithFields(log.Fields{
			"model": cfg.Model.Name,
			"path":  inferenceSvc.ModelPath(),
			"state": inferenceSvc.State(),
		})
		if errors.Is(err, domain.ErrModelNotFound) {
			entry.Fatal("model file not found")
		}
		entry.Fatal("load model")
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.NewInference(inferenceSvc, cfg.Model.ExposeErrors)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging("/healthz", "/readyz"), gin.Recovery())
	h.RegisterRoutes(router)

	// Start server
	addr := cfg.Server.Addr()
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}
