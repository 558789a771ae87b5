// Package nn implements the ProtoNN model layer.
//
// This package provides the prototype-based classifier and its support types:
//   - Module interface: Base interface for model components
//   - Parameter: Trainable parameters exposed to an external optimizer
//   - ProtoNN: Projection + prototype + Gaussian-kernel classifier
//   - Initializers: Randn, Uniform, Zeros
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/protonn-ml/protonn/internal/tensor"
)

// Module is the base interface for model components.
//
// Every module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, ProtoNN expects [batch_size, d].
	//
	// Returns the output tensor with shape determined by the module type.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// This includes weights and any nested module parameters.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}
