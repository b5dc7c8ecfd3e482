package domain

import "path/filepath"

// ModelFileName is the artifact name the inference server looks for inside its model directory.
const ModelFileName = "model.h5"

// ModelState is the lifecycle state of the model held by an inference server.
type ModelState string

const (
	ModelStateUninitialized ModelState = "UNINITIALIZED"
	ModelStateLoading       ModelState = "LOADING"
	ModelStateReady         ModelState = "READY"
	ModelStateFailed        ModelState = "FAILED"
)

// IsValid checks if the state is valid
func (s ModelState) IsValid() bool {
	switch s {
	case ModelStateUninitialized, ModelStateLoading, ModelStateReady, ModelStateFailed:
		return true
	}
	return false
}

// ArtifactPath returns <dir>/model.h5.
func ArtifactPath(dir string) string {
	return filepath.Join(dir, ModelFileName)
}

// LayerSummary describes one layer of a loaded network.
type LayerSummary struct {
	Type       string `json:"type"`
	Units      int    `json:"units"`
	Activation string `json:"activation"`
	Params     int    `json:"params"`
}

// ModelInfo is a read-only view of the served model.
type ModelInfo struct {
	Name       string         `json:"name"`
	Dir        string         `json:"dir"`
	Path       string         `json:"path"`
	State      ModelState     `json:"state"`
	InputSize  int            `json:"input_size,omitempty"`
	OutputSize int            `json:"output_size,omitempty"`
	Params     int            `json:"params,omitempty"`
	Layers     []LayerSummary `json:"layers,omitempty"`
	Optimizer  string         `json:"optimizer,omitempty"`
	Loss       string         `json:"loss,omitempty"`
}

// Prediction holds one output row per input row of a forward pass.
type Prediction struct {
	Values [][]float64
}
