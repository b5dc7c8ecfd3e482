package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
)

// InferenceService owns the model served by one inference server process.
//
// Load must return before the HTTP listener starts. After that the service is
// only read, so request handlers share it without locking.
type InferenceService struct {
	store ports.ModelStore
	name  string
	dir   string

	state domain.ModelState
	model *nn.Sequential
}

func NewInferenceService(store ports.ModelStore, name, dir string) *InferenceService {
	return &InferenceService{
		store: store,
		name:  name,
		dir:   dir,
		state: domain.ModelStateUninitialized,
	}
}

func (s *InferenceService) State() domain.ModelState { return s.state }

func (s *InferenceService) ModelPath() string { return domain.ArtifactPath(s.dir) }

// Load reads <dir>/model.h5 once. It never retries; a failed load leaves the
// service in FAILED for the rest of the process lifetime.
func (s *InferenceService) Load(ctx context.Context) error {
	if s.state != domain.ModelStateUninitialized {
		return domain.ErrModelAlreadyLoaded
	}
	s.state = domain.ModelStateLoading

	path := s.ModelPath()
	logger := log.WithFields(log.Fields{"model": s.name, "dir": s.dir, "path": path})

	ok, err := s.store.Exists(ctx, path)
	if err != nil {
		s.state = domain.ModelStateFailed
		return fmt.Errorf("check model file: %w", err)
	}
	if !ok {
		s.state = domain.ModelStateFailed
		logger.Errorf("model %s not found in %s", s.name, s.dir)
		return domain.ErrModelNotFound
	}

	model, err := s.store.Load(ctx, path)
	if err != nil {
		s.state = domain.ModelStateFailed
		if errors.Is(err, domain.ErrModelNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrModelLoadFailed, err)
	}

	s.model = model
	s.state = domain.ModelStateReady
	logger.WithFields(log.Fields{
		"input_size": model.InputSize(),
		"params":     model.ParamCount(),
	}).Infof("model %s loaded successfully from %s", s.name, s.dir)
	return nil
}

// Predict runs one forward pass on a single feature vector.
// PredictValues runs Predict on a decoded JSON list. Nested lists fail
// with SHAPE_MISMATCH, nulls and other non-numbers with INTERNAL_FRAMEWORK_ERROR.
func (s *InferenceService) PredictValues(ctx context.Context, values []any) (*domain.Prediction, error) {
	if s.state != domain.ModelStateReady || s.model == nil {
		return nil, domain.ErrModelNotLoaded
	}
	features, err := toFeatureRow(values)
	if err != nil {
		return nil, err
	}
	return s.Predict(ctx, features)
}

func toFeatureRow(values []any) ([]float64, error) {
	row := make([]float64, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case float64:
			row[i] = n
		case int:
			row[i] = float64(n)
		case []any:
			return nil, domain.NewInferenceError(domain.InferenceErrShapeMismatch,
				fmt.Errorf("%w: feature %d is a nested list", nn.ErrShapeMismatch, i))
		case nil:
			return nil, domain.NewInferenceError(domain.InferenceErrInternalFramework,
				fmt.Errorf("feature %d is null", i))
		default:
			return nil, domain.NewInferenceError(domain.InferenceErrInternalFramework,
				fmt.Errorf("feature %d is not a number: %T", i, v))
		}
	}
	return row, nil
}

func (s *InferenceService) Predict(ctx context.Context, features []float64) (*domain.Prediction, error) {
	if s.state != domain.ModelStateReady || s.model == nil {
		return nil, domain.ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.model.Predict([][]float64{features})
	if err != nil {
		kind := domain.InferenceErrInternalFramework
		if errors.Is(err, nn.ErrShapeMismatch) {
			kind = domain.InferenceErrShapeMismatch
		}
		return nil, domain.NewInferenceError(kind, err)
	}
	return &domain.Prediction{Values: out}, nil
}

// Info describes the served model; layer details are only present once READY.
func (s *InferenceService) Info() domain.ModelInfo {
	info := domain.ModelInfo{
		Name:  s.name,
		Dir:   s.dir,
		Path:  s.ModelPath(),
		State: s.state,
	}
	if s.state != domain.ModelStateReady || s.model == nil {
		return info
	}

	info.InputSize = s.model.InputSize()
	info.OutputSize = s.model.OutputSize()
	info.Params = s.model.ParamCount()
	info.Optimizer = string(s.model.Optimizer())
	info.Loss = string(s.model.Loss())
	for _, l := range s.model.Layers() {
		info.Layers = append(info.Layers, domain.LayerSummary{
			Type:       l.Type,
			Units:      l.Units,
			Activation: l.Activation,
			Params:     l.Params,
		})
	}
	return info
}
