package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"model.h5", "model"},
		{"Churn_Model_V2.h5", "churn-model-v2"},
		{"/tmp/uploads/fraud.h5", "fraud"},
		{`C:\models\Fraud.h5`, "fraud"},
		{"my model (1).h5", "mymodel1"},
		{"__x__.h5", "x"},
		{"___.h5", ""},
		{"", ""},
		{"abcdefghijabcdefghijabcdefghijabcdefghijabcdef.h5", "abcdefghijabcdefghijabcdefghijabcdefghij"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeModelName(tt.in))
		})
	}
}

func TestIsValidModelName(t *testing.T) {
	for _, name := range []string{"churn", "churn-model-v2", "a1", "abcdefghijabcdefghijabcdefghijabcdefghij"} {
		assert.True(t, IsValidModelName(name), name)
	}
	for _, name := range []string{
		"", "-churn", "churn-", "Churn", "churn.v2", "churn_v2",
		"x@127.0.0.1:8080#", "evil.com/", "a b",
		"abcdefghijabcdefghijabcdefghijabcdefghijk",
	} {
		assert.False(t, IsValidModelName(name), name)
	}
}

func TestResourceNames(t *testing.T) {
	assert.Equal(t, "churn-deployment", DeploymentName("churn"))
	assert.Equal(t, "python-service-churn", ServiceName("churn"))
	assert.Equal(t, "churn", ModelNameOf("churn-deployment"))
	assert.Equal(t, "churn", ModelNameOf(" churn "))
}

func TestModelDeployment_Lifecycle(t *testing.T) {
	_, err := NewModelDeployment("", "ns", "f.h5", "/p", "img")
	assert.ErrorIs(t, err, ErrInvalidModelName)

	d, err := NewModelDeployment("churn", "ns", "churn.h5", "/p", "img")
	require.NoError(t, err)
	assert.Equal(t, DeploymentStatusPending, d.Status)
	assert.Equal(t, int32(1), d.Replicas)

	d.MarkFailed("boom")
	assert.Equal(t, DeploymentStatusFailed, d.Status)
	assert.Equal(t, "boom", d.StatusMessage)

	d.MarkDeployed()
	assert.Equal(t, DeploymentStatusDeployed, d.Status)
	assert.Empty(t, d.StatusMessage)

	require.NoError(t, d.SetReplicas(0))
	assert.Equal(t, DeploymentStatusStopped, d.Status)
	require.NoError(t, d.SetReplicas(4))
	assert.Equal(t, DeploymentStatusDeployed, d.Status)
	assert.ErrorIs(t, d.SetReplicas(MaxReplicas+1), ErrInvalidReplicas)
	assert.Equal(t, int32(4), d.Replicas)
}

func TestInferenceError(t *testing.T) {
	cause := errors.New("row 0 has 3 features, model expects 10")
	err := NewInferenceError(InferenceErrShapeMismatch, cause)

	assert.Equal(t, "SHAPE_MISMATCH: row 0 has 3 features, model expects 10", err.Error())
	assert.Equal(t, cause.Error(), err.Detail())
	assert.ErrorIs(t, err, cause)

	var target *InferenceError
	require.True(t, errors.As(error(err), &target))
	assert.Equal(t, InferenceErrShapeMismatch, target.Kind)
}

func TestModelState(t *testing.T) {
	for _, s := range []ModelState{ModelStateUninitialized, ModelStateLoading, ModelStateReady, ModelStateFailed} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, ModelState("BROKEN").IsValid())
	assert.Equal(t, "/app/models/model.h5", ArtifactPath("/app/models"))
}
