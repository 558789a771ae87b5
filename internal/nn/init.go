package nn

import (
	"github.com/protonn-ml/protonn/internal/tensor"
)

// Randn creates a tensor with random values from the standard normal
// distribution N(0, 1).
//
// This is the declared initializer for the projection and label-weight
// matrices when the caller does not supply them.
//
// Parameters:
//   - shape: Shape of the tensor
//   - backend: Backend to use for tensor creation
//
// Returns a tensor with random normal values.
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](shape, backend)
}

// Uniform creates a tensor with random values drawn uniformly from [0, 1).
//
// This is the declared initializer for the prototype matrix when the
// caller does not supply it.
//
// Parameters:
//   - shape: Shape of the tensor
//   - backend: Backend to use for tensor creation
//
// Returns a tensor with uniform random values.
func Uniform[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Rand[float32](shape, backend)
}

// Zeros creates a tensor filled with zeros.
//
// Parameters:
//   - shape: Shape of the tensor
//   - backend: Backend to use for tensor creation
//
// Returns a zero-filled tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
