package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer computing act(x·K + b).
// The kernel has shape (in, out), the same layout Keras uses.
type Dense struct {
	kernel *mat.Dense
	bias   []float64
	act    Activation
	in     int
	out    int
}

// NewDense creates a layer with a Glorot-uniform kernel and zero bias.
func NewDense(in, out int, act Activation, rng *rand.Rand) *Dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return &Dense{
		kernel: mat.NewDense(in, out, data),
		bias:   make([]float64, out),
		act:    act,
		in:     in,
		out:    out,
	}
}

// NewDenseFromWeights builds a layer from a row-major kernel and a bias vector.
func NewDenseFromWeights(in, out int, act Activation, kernel, bias []float64) (*Dense, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("dense layer dimensions must be positive, got %dx%d", in, out)
	}
	if len(kernel) != in*out {
		return nil, fmt.Errorf("kernel has %d values, want %d", len(kernel), in*out)
	}
	if len(bias) != out {
		return nil, fmt.Errorf("bias has %d values, want %d", len(bias), out)
	}
	if act == nil {
		act = Linear{}
	}
	k := make([]float64, len(kernel))
	copy(k, kernel)
	b := make([]float64, len(bias))
	copy(b, bias)
	return &Dense{
		kernel: mat.NewDense(in, out, k),
		bias:   b,
		act:    act,
		in:     in,
		out:    out,
	}, nil
}

func (d *Dense) InSize() int { return d.in }

func (d *Dense) OutSize() int { return d.out }

func (d *Dense) Activation() Activation { return d.act }

// ParamCount returns the number of trainable values (kernel + bias).
func (d *Dense) ParamCount() int { return d.in*d.out + d.out }

// Kernel returns a row-major copy of the kernel.
func (d *Dense) Kernel() []float64 {
	raw := d.kernel.RawMatrix()
	k := make([]float64, 0, d.in*d.out)
	for i := 0; i < d.in; i++ {
		k = append(k, raw.Data[i*raw.Stride:i*raw.Stride+d.out]...)
	}
	return k
}

// Bias returns a copy of the bias vector.
func (d *Dense) Bias() []float64 {
	b := make([]float64, len(d.bias))
	copy(b, d.bias)
	return b
}

// forward maps a (batch, in) matrix to a freshly allocated (batch, out) matrix.
// The layer itself is never written to.
func (d *Dense) forward(x mat.Matrix) *mat.Dense {
	var z mat.Dense
	z.Mul(x, d.kernel)
	z.Apply(func(_, j int, v float64) float64 {
		return d.act.Activate(v + d.bias[j])
	}, &z)
	return &z
}
