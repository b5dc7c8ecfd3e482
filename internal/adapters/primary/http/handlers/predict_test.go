package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/dto"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/services"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/testutil"
)

const modelPath = "/app/models/model.h5"

func setupInferenceRouter(t *testing.T, loaded, exposeErrors bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := new(testutil.MockModelStore)
	svc := services.NewInferenceService(store, "churn", "/app/models")
	if loaded {
		model := nn.DefaultArchitecture(rand.New(rand.NewSource(1)))
		require.NoError(t, model.Compile(nn.OptimizerAdam, nn.LossBinaryCrossEntropy))
		store.On("Exists", mock.Anything, modelPath).Return(true, nil)
		store.On("Load", mock.Anything, modelPath).Return(model, nil)
		require.NoError(t, svc.Load(context.Background()))
	}

	r := gin.New()
	NewInference(svc, exposeErrors).RegisterRoutes(r)
	return r
}

func postPredict(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/predict/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPredict(t *testing.T) {
	r := setupInferenceRouter(t, true, true)

	w := postPredict(r, `{"features":[0,0,0,0,0,0,0,0,0,0]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Prediction, 1)
	require.Len(t, resp.Prediction[0], 1)
	p := resp.Prediction[0][0]
	assert.True(t, p > 0 && p < 1, "prediction %v outside (0,1)", p)
}

func TestPredict_ShapeMismatch(t *testing.T) {
	r := setupInferenceRouter(t, true, true)

	w := postPredict(r, `{"features":[1,2,3]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.InferenceErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SHAPE_MISMATCH", resp.Kind)
	assert.Contains(t, resp.Error, "3")
	assert.Contains(t, resp.Error, "10")
}

func TestPredict_EmptyFeatures(t *testing.T) {
	r := setupInferenceRouter(t, true, true)

	w := postPredict(r, `{"features":[]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SHAPE_MISMATCH")
}

func TestPredict_HiddenErrorText(t *testing.T) {
	r := setupInferenceRouter(t, true, false)

	w := postPredict(r, `{"features":[1,2,3]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.InferenceErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SHAPE_MISMATCH", resp.Kind)
	assert.Equal(t, genericInferenceMessage, resp.Error)
}

func TestPredict_NotLoaded(t *testing.T) {
	r := setupInferenceRouter(t, false, true)

	w := postPredict(r, `{"features":[0,0,0,0,0,0,0,0,0,0]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"model not loaded"}`, w.Body.String())
}

func TestPredict_MalformedBody(t *testing.T) {
	r := setupInferenceRouter(t, true, true)

	for _, body := range []string{
		`{}`,
		`{"features":null}`,
		`{"features":"abc"}`,
		`{"features":{"a":1}}`,
		`not json`,
	} {
		w := postPredict(r, body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
}

func TestPredict_BadFeatureValues(t *testing.T) {
	r := setupInferenceRouter(t, true, true)

	tests := []struct {
		name string
		body string
		kind string
	}{
		{"nested", `{"features":[[1,2],[3,4]]}`, "SHAPE_MISMATCH"},
		{"nested full row", `{"features":[[0,0,0,0,0,0,0,0,0,0]]}`, "SHAPE_MISMATCH"},
		{"nulls", `{"features":[null,null,null,null,null,null,null,null,null,null]}`, "INTERNAL_FRAMEWORK_ERROR"},
		{"strings", `{"features":["a","b","c","d","e","f","g","h","i","j"]}`, "INTERNAL_FRAMEWORK_ERROR"},
		{"bool", `{"features":[0,0,0,0,0,0,0,0,0,true]}`, "INTERNAL_FRAMEWORK_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postPredict(r, tt.body)
			require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())

			var resp dto.InferenceErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotContains(t, w.Body.String(), "prediction")
		})
	}
}

func TestPredict_BadFeatureValues_NotLoaded(t *testing.T) {
	r := setupInferenceRouter(t, false, true)

	w := postPredict(r, `{"features":[null]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadyz(t *testing.T) {
	r := setupInferenceRouter(t, false, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "UNINITIALIZED")

	r = setupInferenceRouter(t, true, true)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "READY")
}

func TestHealthz(t *testing.T) {
	r := setupInferenceRouter(t, false, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetModelInfo(t *testing.T) {
	r := setupInferenceRouter(t, true, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/model", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ModelInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "churn", resp.Name)
	assert.Equal(t, "READY", resp.State)
	assert.Equal(t, 10, resp.InputSize)
	assert.Equal(t, 385, resp.Params)
	assert.Len(t, resp.Layers, 2)
}
