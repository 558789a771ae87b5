package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Equal compares element-wise with broadcasting, returning a Bool
// tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compareOp("equal", a, b, func(x, y float64) bool { return x == y })
}

// NotEqual compares element-wise with broadcasting, returning a Bool
// tensor.
func (cpu *CPUBackend) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compareOp("not_equal", a, b, func(x, y float64) bool { return x != y })
}

func (cpu *CPUBackend) compareOp(op string, a, b *tensor.RawTensor, fn func(x, y float64) bool) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result := cpu.newRaw(op, outShape, tensor.Bool)

	switch a.DType() {
	case tensor.Float32:
		compareData(result.AsBool(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, fn)
	case tensor.Float64:
		compareData(result.AsBool(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, fn)
	case tensor.Int32:
		compareData(result.AsBool(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, fn)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}

func compareData[T number](dst []bool, a, b []T, aShape, bShape, outShape tensor.Shape, fn func(x, y float64) bool) {
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	for i := range dst {
		aIdx := computeFlatIndex(i, outStrides, aStrides)
		bIdx := computeFlatIndex(i, outStrides, bStrides)
		dst[i] = fn(float64(a[aIdx]), float64(b[bIdx]))
	}
}
