package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/protonn-ml/protonn/internal/backend/cpu"
	"github.com/protonn-ml/protonn/internal/tensor"
)

func TestParameter_GradLifecycle(t *testing.T) {
	backend := cpu.New()

	w := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
	p := NewParameter("W", w)

	assert.Equal(t, "W", p.Name())
	assert.Same(t, w, p.Tensor())
	assert.Nil(t, p.Grad(), "no gradient before the harness records one")

	grad := tensor.Full[float32](tensor.Shape{2, 2}, 0.25, backend)
	p.SetGrad(grad)
	assert.Same(t, grad, p.Grad())

	p.ZeroGrad()
	assert.Nil(t, p.Grad(), "ZeroGrad must clear the recorded gradient")
}

// TestParameter_OptimizerStep walks the external-harness contract end to
// end: record a gradient, apply it in place through the shared tensor,
// and clear it for the next iteration.
func TestParameter_OptimizerStep(t *testing.T) {
	backend := cpu.New()

	w, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	assert.NoError(t, err)
	p := NewParameter("W", w)

	grad, err := tensor.FromSlice([]float32{10, 10, 10, 10}, tensor.Shape{2, 2}, backend)
	assert.NoError(t, err)
	p.SetGrad(grad)

	// SGD step with lr = 0.1, written through the shared buffer.
	lr := float32(0.1)
	data := p.Tensor().Data()
	for i, g := range p.Grad().Data() {
		data[i] -= lr * g
	}
	p.ZeroGrad()

	assert.Equal(t, []float32{0, 1, 2, 3}, w.Data())
	assert.Nil(t, p.Grad())
}
