package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
)

// ModelBuilder produces the reference network artifact consumed by the inference server.
type ModelBuilder struct {
	store ports.ModelStore
	seed  int64
}

// NewModelBuilder creates a builder. A zero seed picks a time-based one.
func NewModelBuilder(store ports.ModelStore, seed int64) *ModelBuilder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ModelBuilder{store: store, seed: seed}
}

// BuildAndSave constructs 10 -> Dense(32, relu) -> Dense(1, sigmoid), compiles it
// with adam and binary cross-entropy, and writes it to path, replacing any
// existing file. Weights stay at their random initial values.
func (b *ModelBuilder) BuildAndSave(ctx context.Context, path string) (*nn.Sequential, error) {
	model := nn.DefaultArchitecture(rand.New(rand.NewSource(b.seed)))
	if err := model.Compile(nn.OptimizerAdam, nn.LossBinaryCrossEntropy); err != nil {
		return nil, fmt.Errorf("compile model: %w", err)
	}

	if err := b.store.Save(ctx, path, model); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	log.WithFields(log.Fields{
		"path":      path,
		"params":    model.ParamCount(),
		"optimizer": model.Optimizer(),
		"loss":      model.Loss(),
		"seed":      b.seed,
	}).Info("model saved")
	return model, nil
}
