// Copyright 2026 ProtoNN ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/protonn-ml/protonn/internal/nn"
	"github.com/protonn-ml/protonn/internal/tensor"
)

// Module interface defines the common interface for model components.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter of a model.
//
// Note: Parameter is implemented as a type alias because it is used as a
// return type in the Module interface. Go's type system requires exact
// type matches for interface implementations, so we cannot use an
// interface here.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Sentinel errors.
var (
	// ErrDimensionMismatch is returned when a supplied parameter matrix
	// does not match the shape implied by the hyperparameters.
	ErrDimensionMismatch = nn.ErrDimensionMismatch

	// ErrUninitializedModel reports a forward pass on a model whose shape
	// validation never completed.
	ErrUninitializedModel = nn.ErrUninitializedModel

	// ErrAccuracyNotAvailable is returned by Accuracy when no label batch
	// was ever supplied to the forward pass.
	ErrAccuracyNotAvailable = nn.ErrAccuracyNotAvailable
)

// Model

// ProtoNN is the prototype-based classifier.
type ProtoNN[B tensor.Backend] = nn.ProtoNN[B]

// NewProtoNN creates a ProtoNN model with the given hyperparameters.
//
// Any of w, b, z may be nil, in which case the matrix is freshly
// initialized (W, Z from N(0, 1); B uniformly from [0, 1)). Supplied
// matrices are used as-is and validated against the hyperparameters;
// a mismatch yields ErrDimensionMismatch.
//
// Example:
//
//	backend := cpu.New()
//	model, err := nn.NewProtoNN(784, 15, 20, 10, 0.0015, nil, nil, nil, backend)
func NewProtoNN[B tensor.Backend](
	d, dCap, m, l int,
	gamma float32,
	w, b, z *tensor.Tensor[float32, B],
	backend B,
) (*ProtoNN[B], error) {
	return nn.NewProtoNN(d, dCap, m, l, gamma, w, b, z, backend)
}

// Initializers

// Randn creates a tensor with random values from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Randn(shape, backend)
}

// Uniform creates a tensor with random values drawn uniformly from [0, 1).
func Uniform[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Uniform(shape, backend)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}
