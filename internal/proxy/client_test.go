package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

func TestServiceResolver(t *testing.T) {
	resolve := ServiceResolver("model-deployments", 80)
	assert.Equal(t, "http://python-service-churn.model-deployments.svc.cluster.local:80", resolve("churn"))
}

func TestForward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"features":[1]}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction":[[0.5]]}`))
	}))
	defer upstream.Close()

	var asked string
	client := NewClient(func(model string) string {
		asked = model
		return upstream.URL
	}, time.Second)

	headers := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := client.Forward(context.Background(), "churn", http.MethodPost, "/predict/", strings.NewReader(`{"features":[1]}`), headers)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "churn", asked)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"prediction":[[0.5]]}`, string(body))
}

func TestForward_Unreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	client := NewClient(func(string) string { return url }, time.Second)
	_, err := client.Forward(context.Background(), "churn", http.MethodPost, "/predict/", strings.NewReader("{}"), nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestForward_RejectsHostInjection(t *testing.T) {
	hit := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer upstream.Close()

	client := NewClient(ServiceResolver("model-deployments", 80), time.Second)
	for _, model := range []string{"x@" + strings.TrimPrefix(upstream.URL, "http://") + "#", "a/b", ""} {
		_, err := client.Forward(context.Background(), model, http.MethodPost, "/predict/", strings.NewReader("{}"), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidModelName, model)
	}
	assert.False(t, hit)
}
