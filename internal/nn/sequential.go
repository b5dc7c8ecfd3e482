// Package nn implements the small feedforward networks served by the platform:
// dense layers on top of gonum, a Sequential container and the on-disk
// artifact codec shared by the model builder and the inference server.
package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrNonFinite       = errors.New("non-finite value in network output")
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// Optimizer names the training optimizer recorded by Compile.
type Optimizer string

// Loss names the training loss recorded by Compile.
type Loss string

const (
	OptimizerAdam Optimizer = "adam"
	OptimizerSGD  Optimizer = "sgd"

	LossBinaryCrossEntropy Loss = "binary_crossentropy"
	LossMSE                Loss = "mse"
)

const (
	DefaultInputSize   = 10
	DefaultHiddenUnits = 32
	DefaultOutputUnits = 1
)

// Sequential is a stack of dense layers applied in order.
// After construction it is read-only, so Predict may be called concurrently.
type Sequential struct {
	inputSize int
	layers    []*Dense
	optimizer Optimizer
	loss      Loss
}

// NewSequential checks that every layer consumes the previous layer's output.
func NewSequential(inputSize int, layers ...*Dense) (*Sequential, error) {
	if inputSize <= 0 {
		return nil, fmt.Errorf("input size must be positive, got %d", inputSize)
	}
	if len(layers) == 0 {
		return nil, errors.New("sequential model needs at least one layer")
	}
	width := inputSize
	for i, l := range layers {
		if l.InSize() != width {
			return nil, fmt.Errorf("layer %d expects %d inputs, previous width is %d", i, l.InSize(), width)
		}
		width = l.OutSize()
	}
	return &Sequential{inputSize: inputSize, layers: layers}, nil
}

// DefaultArchitecture returns the platform's reference network:
// 10 inputs -> Dense(32, relu) -> Dense(1, sigmoid), randomly initialised.
func DefaultArchitecture(rng *rand.Rand) *Sequential {
	return &Sequential{
		inputSize: DefaultInputSize,
		layers: []*Dense{
			NewDense(DefaultInputSize, DefaultHiddenUnits, ReLU{}, rng),
			NewDense(DefaultHiddenUnits, DefaultOutputUnits, Sigmoid{}, rng),
		},
	}
}

// Compile records the training configuration. It has no effect on Predict.
func (s *Sequential) Compile(optimizer Optimizer, loss Loss) error {
	switch optimizer {
	case OptimizerAdam, OptimizerSGD:
	default:
		return fmt.Errorf("unsupported optimizer %q", optimizer)
	}
	switch loss {
	case LossBinaryCrossEntropy, LossMSE:
	default:
		return fmt.Errorf("unsupported loss %q", loss)
	}
	s.optimizer = optimizer
	s.loss = loss
	return nil
}

func (s *Sequential) InputSize() int { return s.inputSize }

func (s *Sequential) OutputSize() int { return s.layers[len(s.layers)-1].OutSize() }

func (s *Sequential) Optimizer() Optimizer { return s.optimizer }

func (s *Sequential) Loss() Loss { return s.loss }

// LayerInfo describes one layer for summaries and the /model endpoint.
type LayerInfo struct {
	Type       string `json:"type"`
	Units      int    `json:"units"`
	Activation string `json:"activation"`
	Params     int    `json:"params"`
}

func (s *Sequential) Layers() []LayerInfo {
	infos := make([]LayerInfo, 0, len(s.layers))
	for _, l := range s.layers {
		infos = append(infos, LayerInfo{
			Type:       layerTypeDense,
			Units:      l.OutSize(),
			Activation: l.Activation().Name(),
			Params:     l.ParamCount(),
		})
	}
	return infos
}

func (s *Sequential) ParamCount() int {
	total := 0
	for _, l := range s.layers {
		total += l.ParamCount()
	}
	return total
}

// Predict runs a forward pass and returns one output row per input row.
func (s *Sequential) Predict(batch [][]float64) (out [][]float64, err error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch, model expects rows of %d features", ErrShapeMismatch, s.inputSize)
	}
	for i, row := range batch {
		if len(row) != s.inputSize {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShapeMismatch, i, len(row), s.inputSize)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("forward pass: %v", r)
		}
	}()

	data := make([]float64, 0, len(batch)*s.inputSize)
	for _, row := range batch {
		data = append(data, row...)
	}

	var x mat.Matrix = mat.NewDense(len(batch), s.inputSize, data)
	for _, l := range s.layers {
		x = l.forward(x)
	}

	rows, cols := x.Dims()
	out = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			v := x.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: output[%d][%d] is %v", ErrNonFinite, i, j, v)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}
