package nn

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_PreservesPredictions(t *testing.T) {
	m := newTestModel(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))

	loaded, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.Layers(), loaded.Layers())
	assert.Equal(t, OptimizerAdam, loaded.Optimizer())
	assert.Equal(t, LossBinaryCrossEntropy, loaded.Loss())

	rng := rand.New(rand.NewSource(7))
	batch := make([][]float64, 4)
	for i := range batch {
		batch[i] = make([]float64, 10)
		for j := range batch[i] {
			batch[i][j] = rng.NormFloat64()
		}
	}
	want, err := m.Predict(batch)
	require.NoError(t, err)
	got, err := loaded.Predict(batch)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecode_RejectsForeignFile(t *testing.T) {
	// HDF5 signature
	_, err := Decode(bytes.NewReader([]byte("\x89HDF\r\n\x1a\n and the rest")))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestDecode_RejectsCorruptPayload(t *testing.T) {
	data := append([]byte{}, artifactMagic...)
	data = append(data, 0xff, 0x00, 0x13)

	_, err := Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func encodeRaw(t *testing.T, a artifact) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(artifactMagic)
	require.NoError(t, gob.NewEncoder(&buf).Encode(&a))
	return buf.Bytes()
}

func TestDecode_ValidatesContents(t *testing.T) {
	valid := layerRecord{Type: "Dense", InSize: 2, OutSize: 1, Activation: "sigmoid", Kernel: []float64{1, 2}, Bias: []float64{0}}

	cases := map[string]artifact{
		"version":       {Version: 99, InputSize: 2, Layers: []layerRecord{valid}},
		"layer type":    {Version: artifactVersion, InputSize: 2, Layers: []layerRecord{{Type: "Conv2D", InSize: 2, OutSize: 1, Kernel: []float64{1, 2}, Bias: []float64{0}}}},
		"activation":    {Version: artifactVersion, InputSize: 2, Layers: []layerRecord{{Type: "Dense", InSize: 2, OutSize: 1, Activation: "swish", Kernel: []float64{1, 2}, Bias: []float64{0}}}},
		"kernel length": {Version: artifactVersion, InputSize: 2, Layers: []layerRecord{{Type: "Dense", InSize: 2, OutSize: 1, Activation: "relu", Kernel: []float64{1}, Bias: []float64{0}}}},
		"input width":   {Version: artifactVersion, InputSize: 3, Layers: []layerRecord{valid}},
		"no layers":     {Version: artifactVersion, InputSize: 2},
		"optimizer":     {Version: artifactVersion, InputSize: 2, Optimizer: "lion", Loss: "mse", Layers: []layerRecord{valid}},
	}

	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(encodeRaw(t, a)))
			assert.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}
