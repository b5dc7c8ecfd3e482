package dto

import "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"

// PredictRequest is the body of POST /predict/. Features only has to be a
// list here; its elements are checked by the inference service.
type PredictRequest struct {
	Features []any `json:"features" binding:"required"`
}

// PredictResponse carries the model output, one row per input row
type PredictResponse struct {
	Prediction [][]float64 `json:"prediction"`
}

// InferenceErrorResponse is returned when the forward pass fails
type InferenceErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type ReadinessResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

type LayerResponse struct {
	Type       string `json:"type"`
	Units      int    `json:"units"`
	Activation string `json:"activation"`
	Params     int    `json:"params"`
}

// ModelInfoResponse describes the model served by this process
type ModelInfoResponse struct {
	Name       string          `json:"name"`
	Dir        string          `json:"dir"`
	Path       string          `json:"path"`
	State      string          `json:"state"`
	InputSize  int             `json:"input_size,omitempty"`
	OutputSize int             `json:"output_size,omitempty"`
	Params     int             `json:"params,omitempty"`
	Optimizer  string          `json:"optimizer,omitempty"`
	Loss       string          `json:"loss,omitempty"`
	Layers     []LayerResponse `json:"layers,omitempty"`
}

func ToModelInfoResponse(info domain.ModelInfo) ModelInfoResponse {
	resp := ModelInfoResponse{
		Name:       info.Name,
		Dir:        info.Dir,
		Path:       info.Path,
		State:      string(info.State),
		InputSize:  info.InputSize,
		OutputSize: info.OutputSize,
		Params:     info.Params,
		Optimizer:  info.Optimizer,
		Loss:       info.Loss,
	}
	for _, l := range info.Layers {
		resp.Layers = append(resp.Layers, LayerResponse{
			Type:       l.Type,
			Units:      l.Units,
			Activation: l.Activation,
			Params:     l.Params,
		})
	}
	return resp
}
