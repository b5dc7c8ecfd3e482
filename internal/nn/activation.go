package nn

import (
	"fmt"
	"math"
)

// Activation is an element-wise function applied to a layer's pre-activation.
type Activation interface {
	Name() string
	Activate(x float64) float64
}

type ReLU struct{}

func (ReLU) Name() string { return "relu" }

func (ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

type Sigmoid struct{}

func (Sigmoid) Name() string { return "sigmoid" }

// Activate branches on the sign of x so exp never overflows.
func (Sigmoid) Activate(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) Activate(x float64) float64 { return x }

// ActivationByName resolves the name stored in a model artifact.
func ActivationByName(name string) (Activation, error) {
	switch name {
	case "relu":
		return ReLU{}, nil
	case "sigmoid":
		return Sigmoid{}, nil
	case "linear", "":
		return Linear{}, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}
