package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

// Resolver returns the base URL of the inference server of a model.
type Resolver func(model string) string

type Client struct {
	httpClient *http.Client
	resolve    Resolver
}

// ServiceResolver addresses a model through its in-cluster Service DNS name.
func ServiceResolver(namespace string, port int32) Resolver {
	return func(model string) string {
		return fmt.Sprintf("http://%s.%s.svc.cluster.local:%d", domain.ServiceName(model), namespace, port)
	}
}

func NewClient(resolve Resolver, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		resolve: resolve,
	}
}

// Forward proxies a request to the inference server of model and returns its response.
// The caller closes the response body.
func (c *Client) Forward(ctx context.Context, model, method, path string, body io.Reader, headers http.Header) (*http.Response, error) {
	// model becomes part of the upstream host name
	if !domain.IsValidModelName(model) {
		return nil, domain.ErrInvalidModelName
	}
	url := c.resolve(model) + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}

	// Copy headers
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	log.WithFields(log.Fields{
		"method": method,
		"url":    url,
		"model":  model,
	}).Debug("forwarding request to inference server")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return resp, nil
}
