// Copyright 2026 ProtoNN ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for the ProtoNN library.
//
// # Overview
//
// Tensors are the data structure everything else is built on. This package
// provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - Zero-copy operations where possible
//   - Device abstraction (CPU, WebGPU)
//
// # Basic Usage
//
//	import (
//	    "github.com/protonn-ml/protonn/tensor"
//	    "github.com/protonn-ml/protonn/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Create tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    // Tensor operations
//	    z := x.Add(y)
//	    result := x.MatMul(y.Transpose())
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//   - int32 (prediction indices)
//   - bool (comparison masks)
//
// # Broadcasting
//
// Tensor operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
//
// Rank-3 broadcasts pair every batch row with every prototype column, which
// is how the classifier computes all pairwise distances in one operation:
//
//	wx := x.MatMul(w).Reshape(tensor.Shape{n, dCap, 1})  // (n, d_cap, 1)
//	diff := b.Reshape(tensor.Shape{1, dCap, m}).Sub(wx)  // (n, d_cap, m)
//
// # Memory Management
//
// Tensors use zero-copy operations where possible. The underlying data is
// reference-counted, and operations reuse a uniquely-held buffer in place
// when the shapes allow it.
package tensor
