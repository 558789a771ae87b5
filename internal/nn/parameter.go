package nn

import (
	"github.com/protonn-ml/protonn/internal/tensor"
)

// Parameter represents a trainable parameter of a model.
//
// Parameters are tensors that an external optimizer reads and updates in
// place between forward passes. They typically represent projection
// weights, prototypes, and label weights.
//
// Example:
//
//	// Create a projection parameter
//	w := nn.NewParameter("W", weightTensor)
//
//	// Access the tensor
//	t := w.Tensor()
//
//	// Record a gradient computed by the training harness
//	w.SetGrad(grad)
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "W", "B", "Z")
	tensor *tensor.Tensor[float32, B] // The parameter tensor
	grad   *tensor.Tensor[float32, B] // Gradient tensor (set by the training harness)
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
// The gradient is supplied later by the training harness, if any.
//
// Parameters:
//   - name: Descriptive name for this parameter (e.g., "W")
//   - t: The initialized parameter tensor
//
// Returns a new Parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
		grad:   nil,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
//
// The returned reference is shared with the model: updating its data in
// place is the supported way for an optimizer to train the model.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been recorded.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
//
// This is typically called by the external training harness.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
