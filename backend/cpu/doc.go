// Copyright 2026 ProtoNN ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32, Float64 and Int32 support
//   - In-place fast paths for uniquely-held buffers
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/protonn-ml/protonn/backend/cpu"
//	    "github.com/protonn-ml/protonn/tensor"
//	    "github.com/protonn-ml/protonn/nn"
//	)
//
//	func main() {
//	    // Create CPU backend
//	    backend := cpu.New()
//
//	    // Use with tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    // Use with the model
//	    model, err := nn.NewProtoNN(784, 15, 20, 10, 0.0015, nil, nil, nil, backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
