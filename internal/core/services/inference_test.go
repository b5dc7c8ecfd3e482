package services

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/modelfile"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/testutil"
)

const testModelPath = "/app/models/model.h5"

func readyService(t *testing.T, model *nn.Sequential) *InferenceService {
	t.Helper()
	store := new(testutil.MockModelStore)
	store.On("Exists", mock.Anything, testModelPath).Return(true, nil)
	store.On("Load", mock.Anything, testModelPath).Return(model, nil)

	svc := NewInferenceService(store, "churn", "/app/models")
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestInferenceService_Load(t *testing.T) {
	model := nn.DefaultArchitecture(rand.New(rand.NewSource(1)))
	store := new(testutil.MockModelStore)
	store.On("Exists", mock.Anything, testModelPath).Return(true, nil)
	store.On("Load", mock.Anything, testModelPath).Return(model, nil)

	svc := NewInferenceService(store, "churn", "/app/models")
	assert.Equal(t, domain.ModelStateUninitialized, svc.State())

	err := svc.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, domain.ModelStateReady, svc.State())
	store.AssertExpectations(t)
}

func TestInferenceService_Load_Missing(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Exists", mock.Anything, testModelPath).Return(false, nil)

	svc := NewInferenceService(store, "churn", "/app/models")
	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Equal(t, domain.ModelStateFailed, svc.State())
	store.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestInferenceService_Load_Corrupt(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Exists", mock.Anything, testModelPath).Return(true, nil)
	store.On("Load", mock.Anything, testModelPath).Return(nil, domain.ErrInvalidArtifact)

	svc := NewInferenceService(store, "churn", "/app/models")
	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelLoadFailed)
	assert.Equal(t, domain.ModelStateFailed, svc.State())
}

func TestInferenceService_Load_StoreError(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Exists", mock.Anything, testModelPath).Return(false, errors.New("permission denied"))

	svc := NewInferenceService(store, "churn", "/app/models")
	err := svc.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, domain.ModelStateFailed, svc.State())
}

func TestInferenceService_Load_Twice(t *testing.T) {
	svc := readyService(t, nn.DefaultArchitecture(rand.New(rand.NewSource(1))))

	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelAlreadyLoaded)
	assert.Equal(t, domain.ModelStateReady, svc.State())
}

func TestInferenceService_Predict(t *testing.T) {
	svc := readyService(t, nn.DefaultArchitecture(rand.New(rand.NewSource(1))))

	pred, err := svc.Predict(context.Background(), make([]float64, 10))
	require.NoError(t, err)
	require.Len(t, pred.Values, 1)
	require.Len(t, pred.Values[0], 1)
	assert.Greater(t, pred.Values[0][0], 0.0)
	assert.Less(t, pred.Values[0][0], 1.0)
}

func TestInferenceService_Predict_NotLoaded(t *testing.T) {
	svc := NewInferenceService(new(testutil.MockModelStore), "churn", "/app/models")

	_, err := svc.Predict(context.Background(), make([]float64, 10))
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestInferenceService_Predict_AfterFailedLoad(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Exists", mock.Anything, testModelPath).Return(false, nil)
	svc := NewInferenceService(store, "churn", "/app/models")
	_ = svc.Load(context.Background())

	_, err := svc.Predict(context.Background(), make([]float64, 10))
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestInferenceService_Predict_ShapeMismatch(t *testing.T) {
	svc := readyService(t, nn.DefaultArchitecture(rand.New(rand.NewSource(1))))

	for _, features := range [][]float64{{}, {1, 2, 3}, make([]float64, 11)} {
		_, err := svc.Predict(context.Background(), features)
		var inferErr *domain.InferenceError
		require.ErrorAs(t, err, &inferErr)
		assert.Equal(t, domain.InferenceErrShapeMismatch, inferErr.Kind)
		assert.ErrorIs(t, err, nn.ErrShapeMismatch)
	}
}

func TestInferenceService_PredictValues(t *testing.T) {
	svc := readyService(t, nn.DefaultArchitecture(rand.New(rand.NewSource(1))))
	ctx := context.Background()

	row := []any{0.0, 1.0, 0.5, 2.0, 0.0, 0.0, 3, 0.0, 0.0, -1.0}
	pred, err := svc.PredictValues(ctx, row)
	require.NoError(t, err)
	want, err := svc.Predict(ctx, []float64{0, 1, 0.5, 2, 0, 0, 3, 0, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, want.Values, pred.Values)

	tests := []struct {
		name   string
		values []any
		kind   domain.InferenceErrorKind
	}{
		{"empty", []any{}, domain.InferenceErrShapeMismatch},
		{"nested", []any{[]any{1.0, 2.0}, []any{3.0, 4.0}}, domain.InferenceErrShapeMismatch},
		{"null", make([]any, 10), domain.InferenceErrInternalFramework},
		{"string", []any{"1", 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}, domain.InferenceErrInternalFramework},
		{"object", []any{map[string]any{}}, domain.InferenceErrInternalFramework},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PredictValues(ctx, tt.values)
			var inferErr *domain.InferenceError
			require.ErrorAs(t, err, &inferErr)
			assert.Equal(t, tt.kind, inferErr.Kind)
		})
	}
}

func TestInferenceService_PredictValues_NotLoaded(t *testing.T) {
	svc := NewInferenceService(new(testutil.MockModelStore), "churn", "/app/models")

	_, err := svc.PredictValues(context.Background(), []any{nil})
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestInferenceService_Predict_NonFinite(t *testing.T) {
	kernel := make([]float64, 10)
	for i := range kernel {
		kernel[i] = math.MaxFloat64
	}
	layer, err := nn.NewDenseFromWeights(10, 1, nn.Linear{}, kernel, []float64{0})
	require.NoError(t, err)
	model, err := nn.NewSequential(10, layer)
	require.NoError(t, err)

	svc := readyService(t, model)

	features := make([]float64, 10)
	for i := range features {
		features[i] = 1
	}
	_, err = svc.Predict(context.Background(), features)
	var inferErr *domain.InferenceError
	require.ErrorAs(t, err, &inferErr)
	assert.Equal(t, domain.InferenceErrInternalFramework, inferErr.Kind)
}

func TestInferenceService_Predict_Cancelled(t *testing.T) {
	svc := readyService(t, nn.DefaultArchitecture(rand.New(rand.NewSource(1))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Predict(ctx, make([]float64, 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInferenceService_Info(t *testing.T) {
	svc := NewInferenceService(new(testutil.MockModelStore), "churn", "/app/models")
	info := svc.Info()
	assert.Equal(t, domain.ModelStateUninitialized, info.State)
	assert.Equal(t, testModelPath, info.Path)
	assert.Empty(t, info.Layers)

	model := nn.DefaultArchitecture(rand.New(rand.NewSource(1)))
	require.NoError(t, model.Compile(nn.OptimizerAdam, nn.LossBinaryCrossEntropy))
	svc = readyService(t, model)
	info = svc.Info()
	assert.Equal(t, domain.ModelStateReady, info.State)
	assert.Equal(t, 10, info.InputSize)
	assert.Equal(t, 1, info.OutputSize)
	assert.Equal(t, 385, info.Params)
	assert.Equal(t, "adam", info.Optimizer)
	assert.Equal(t, "binary_crossentropy", info.Loss)
	require.Len(t, info.Layers, 2)
	assert.Equal(t, "relu", info.Layers[0].Activation)
	assert.Equal(t, "sigmoid", info.Layers[1].Activation)
}

// Builder output must be loadable by the inference service without changes.
func TestInferenceService_LoadsBuilderArtifact(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := modelfile.NewStore(fs)
	ctx := context.Background()

	built, err := NewModelBuilder(store, 42).BuildAndSave(ctx, testModelPath)
	require.NoError(t, err)

	svc := NewInferenceService(store, "churn", "/app/models")
	require.NoError(t, svc.Load(ctx))

	features := []float64{0.1, -0.2, 0.3, 0.4, -0.5, 0.6, 0.7, -0.8, 0.9, 1.0}
	want, err := built.Predict([][]float64{features})
	require.NoError(t, err)

	got, err := svc.Predict(ctx, features)
	require.NoError(t, err)
	assert.InDelta(t, want[0][0], got.Values[0][0], 1e-12)
}
