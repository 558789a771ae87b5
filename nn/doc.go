// Copyright 2026 ProtoNN ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the ProtoNN model and its building blocks.
//
// # Overview
//
// This package contains:
//   - ProtoNN: prototype-based classifier (projection, Gaussian kernel,
//     label-weight aggregation)
//   - Utilities: Module interface, Parameter
//   - Initialization: Randn, Uniform, Zeros
//
// # Basic Usage
//
//	import (
//	    "github.com/protonn-ml/protonn/nn"
//	    "github.com/protonn-ml/protonn/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // d=784 input features, projected to d_cap=15 dimensions,
//	    // m=20 prototypes, L=10 labels
//	    model, err := nn.NewProtoNN(784, 15, 20, 10, 0.0015, nil, nil, nil, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    scores := model.ForwardWithLabels(x, y) // [batch, 10]
//	    preds := model.Predictions()            // [batch]
//	    acc, _ := model.Accuracy()
//	}
//
// # The Model
//
// ProtoNN scores an input by projecting it with W, measuring its distance
// to each of m prototypes (columns of B), converting distances to
// similarities with a Gaussian RBF kernel of bandwidth gamma², and mixing
// the per-prototype label weights (columns of Z):
//
//	scores = sum over prototypes of Z · exp(-gamma² · ||B - x·W||²)
//
// The forward pass is memoized: the first call fixes the output for the
// instance, reflecting that the graph shape is determined at construction.
//
// # Training
//
// Training is owned by an external harness. The model exposes its
// parameter matrices through ModelMatrices and Parameters; an optimizer
// updates them in place between forward passes on fresh model instances.
package nn
