package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Reshape returns a tensor with the same data but a different shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result := cpu.newRaw("reshape", newShape, t.DType())
	copy(result.Data(), t.Data())
	return result
}

// Transpose permutes the tensor's dimensions. Without axes all
// dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := cpu.newRaw("transpose", newShape, t.DType())

	switch t.DType() {
	case tensor.Float32:
		transposeData(result.AsFloat32(), t.AsFloat32(), shape, newShape, axes)
	case tensor.Float64:
		transposeData(result.AsFloat64(), t.AsFloat64(), shape, newShape, axes)
	case tensor.Int32:
		transposeData(result.AsInt32(), t.AsInt32(), shape, newShape, axes)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

// transposeData scatters src into dst according to the axis permutation.
func transposeData[T number](dst, src []T, srcShape, dstShape tensor.Shape, axes []int) {
	srcStrides := srcShape.ComputeStrides()
	dstStrides := dstShape.ComputeStrides()

	indices := make([]int, len(srcShape))
	for i := range src {
		temp := i
		for j := range srcShape {
			indices[j] = temp / srcStrides[j]
			temp %= srcStrides[j]
		}

		dstIdx := 0
		for j, ax := range axes {
			dstIdx += indices[ax] * dstStrides[j]
		}
		dst[dstIdx] = src[i]
	}
}

// Expand broadcasts a tensor to a larger shape, materializing the
// repeated data.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}
	if !outShape.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot expand %v to %v", x.Shape(), shape))
	}

	result := cpu.newRaw("expand", shape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		expandData(result.AsFloat32(), x.AsFloat32(), x.Shape(), shape)
	case tensor.Float64:
		expandData(result.AsFloat64(), x.AsFloat64(), x.Shape(), shape)
	case tensor.Int32:
		expandData(result.AsInt32(), x.AsInt32(), x.Shape(), shape)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", x.DType()))
	}

	return result
}

func expandData[T number](dst, src []T, srcShape, outShape tensor.Shape) {
	outStrides := outShape.ComputeStrides()
	srcStrides := computeBroadcastStridesForShape(srcShape, outShape)

	for i := range dst {
		dst[i] = src[computeFlatIndex(i, outStrides, srcStrides)]
	}
}
