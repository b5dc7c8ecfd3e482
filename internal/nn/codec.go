package nn

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// Artifacts start with a fixed magic string followed by a gob-encoded payload.
var artifactMagic = []byte("MLMDPNN\x00")

const (
	artifactVersion = 1
	layerTypeDense  = "Dense"
)

type artifact struct {
	Version   int
	InputSize int
	Optimizer string
	Loss      string
	Layers    []layerRecord
}

type layerRecord struct {
	Type       string
	InSize     int
	OutSize    int
	Activation string
	Kernel     []float64
	Bias       []float64
}

// Encode writes the full model (architecture, weights and training config) to w.
func Encode(w io.Writer, m *Sequential) error {
	a := artifact{
		Version:   artifactVersion,
		InputSize: m.inputSize,
		Optimizer: string(m.optimizer),
		Loss:      string(m.loss),
		Layers:    make([]layerRecord, 0, len(m.layers)),
	}
	for _, l := range m.layers {
		a.Layers = append(a.Layers, layerRecord{
			Type:       layerTypeDense,
			InSize:     l.InSize(),
			OutSize:    l.OutSize(),
			Activation: l.Activation().Name(),
			Kernel:     l.Kernel(),
			Bias:       l.Bias(),
		})
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(artifactMagic); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := gob.NewEncoder(bw).Encode(&a); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return bw.Flush()
}

// Decode reads a model written by Encode.
func Decode(r io.Reader) (*Sequential, error) {
	header := make([]byte, len(artifactMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidArtifact, err)
	}
	if !bytes.Equal(header, artifactMagic) {
		return nil, fmt.Errorf("%w: unrecognised header", ErrInvalidArtifact)
	}

	var a artifact
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrInvalidArtifact, err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidArtifact, a.Version)
	}

	layers := make([]*Dense, 0, len(a.Layers))
	for i, rec := range a.Layers {
		if rec.Type != layerTypeDense {
			return nil, fmt.Errorf("%w: layer %d has unsupported type %q", ErrInvalidArtifact, i, rec.Type)
		}
		act, err := ActivationByName(rec.Activation)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrInvalidArtifact, i, err)
		}
		l, err := NewDenseFromWeights(rec.InSize, rec.OutSize, act, rec.Kernel, rec.Bias)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrInvalidArtifact, i, err)
		}
		layers = append(layers, l)
	}

	m, err := NewSequential(a.InputSize, layers...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if a.Optimizer != "" || a.Loss != "" {
		if err := m.Compile(Optimizer(a.Optimizer), Loss(a.Loss)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
		}
	}
	return m, nil
}
