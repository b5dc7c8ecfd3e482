package services

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/secondary/modelfile"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/testutil"
)

func TestModelBuilder_BuildAndSave(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Save", mock.Anything, "model.h5", mock.AnythingOfType("*nn.Sequential")).Return(nil)

	model, err := NewModelBuilder(store, 7).BuildAndSave(context.Background(), "model.h5")
	require.NoError(t, err)
	assert.Equal(t, 10, model.InputSize())
	assert.Equal(t, 1, model.OutputSize())
	assert.Equal(t, 385, model.ParamCount())
	assert.Equal(t, nn.OptimizerAdam, model.Optimizer())
	assert.Equal(t, nn.LossBinaryCrossEntropy, model.Loss())
	store.AssertExpectations(t)
}

func TestModelBuilder_SaveError(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Save", mock.Anything, "model.h5", mock.Anything).Return(errors.New("disk full"))

	_, err := NewModelBuilder(store, 7).BuildAndSave(context.Background(), "model.h5")
	assert.ErrorContains(t, err, "disk full")
}

func TestModelBuilder_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := modelfile.NewStore(fs)
	ctx := context.Background()

	_, err := NewModelBuilder(store, 1).BuildAndSave(ctx, "model.h5")
	require.NoError(t, err)
	second, err := NewModelBuilder(store, 2).BuildAndSave(ctx, "model.h5")
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "model.h5")
	require.NoError(t, err)
	assert.Equal(t, second.Layers()[0], loaded.Layers()[0])
	assert.Equal(t, second.Layers()[1], loaded.Layers()[1])

	in := make([]float64, 10)
	in[0] = 1
	want, err := second.Predict([][]float64{in})
	require.NoError(t, err)
	got, err := loaded.Predict([][]float64{in})
	require.NoError(t, err)
	assert.InDelta(t, want[0][0], got[0][0], 1e-12)
}

func TestModelBuilder_SeedIsDeterministic(t *testing.T) {
	store := new(testutil.MockModelStore)
	store.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	a, err := NewModelBuilder(store, 99).BuildAndSave(context.Background(), "a.h5")
	require.NoError(t, err)
	b, err := NewModelBuilder(store, 99).BuildAndSave(context.Background(), "b.h5")
	require.NoError(t, err)

	in := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	pa, err := a.Predict([][]float64{in})
	require.NoError(t, err)
	pb, err := b.Predict([][]float64{in})
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}
