// Command modelbuilder writes the reference network artifact served by the
// inference server.
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/modelfile"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/config"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/services"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/logging"
)

func main() {
	flags := pflag.NewFlagSet("modelbuilder", pflag.ExitOnError)
	flags.StringP("output", "o", "", "artifact path (overrides BUILDER_OUTPUT)")
	flags.Int64("seed", 0, "weight initialisation seed, 0 for time based (overrides BUILDER_SEED)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(
		config.WithEnvFile(".env"),
		config.WithFlag("BUILDER_OUTPUT", flags.Lookup("output")),
		config.WithFlag("BUILDER_SEED", flags.Lookup("seed")),
	)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	closer := logging.Init(cfg.Logger)
	defer closer.Close()

	builder := services.NewModelBuilder(modelfile.NewStore(afero.NewOsFs()), cfg.Builder.Seed)
	model, err := builder.BuildAndSave(context.Background(), cfg.Builder.Output)
	if err != nil {
		log.WithError(err).WithField("path", cfg.Builder.Output).Error("build model failed")
		closer.Close()
		os.Exit(1)
	}

	for i, l := range model.Layers() {
		log.WithFields(log.Fields{
			"layer":      i,
			"type":       l.Type,
			"units":      l.Units,
			"activation": l.Activation,
			"params":     l.Params,
		}).Info("layer")
	}
	log.Infof("total params: %d", model.ParamCount())
}
