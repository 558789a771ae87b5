package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Sum reduces all elements to a scalar tensor (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newRaw("sum", tensor.Shape{}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumAll(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumAll(x.AsFloat64())
	case tensor.Int32:
		result.AsInt32()[0] = sumAll(x.AsInt32())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

func sumAll[T number](data []T) T {
	var sum T
	for _, v := range data {
		sum += v
	}
	return sum
}

// SumDim sums along a single dimension. With keepDim the reduced
// dimension remains in the output shape with size 1.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sum_dim", x, dim, keepDim, false)
}

// MeanDim averages along a single dimension. Float dtypes only.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	if x.DType() != tensor.Float32 && x.DType() != tensor.Float64 {
		panic(fmt.Sprintf("mean_dim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
	return cpu.reduceDim("mean_dim", x, dim, keepDim, true)
}

// reduceDim implements SumDim and MeanDim. The input is viewed as
// [outer, n, inner] with n the reduced dimension.
func (cpu *CPUBackend) reduceDim(op string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("%s: dimension %d out of range for shape %v", op, dim, shape))
	}

	outShape := reducedShape(shape, dim, keepDim)
	result := cpu.newRaw(op, outShape, x.DType())

	outer, n, inner := splitAt(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		reduceDimData(result.AsFloat32(), x.AsFloat32(), outer, n, inner, mean)
	case tensor.Float64:
		reduceDimData(result.AsFloat64(), x.AsFloat64(), outer, n, inner, mean)
	case tensor.Int32:
		reduceDimData(result.AsInt32(), x.AsInt32(), outer, n, inner, mean)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}

	return result
}

func reduceDimData[T number](dst, src []T, outer, n, inner int, mean bool) {
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum T
			for k := 0; k < n; k++ {
				sum += src[o*n*inner+k*inner+in]
			}
			if mean {
				sum /= T(n)
			}
			dst[o*inner+in] = sum
		}
	}
}

// Argmax returns the index of the maximum value along a dimension as an
// Int32 tensor. Ties resolve to the first maximum.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("argmax: dimension %d out of range for shape %v", dim, shape))
	}

	result := cpu.newRaw("argmax", reducedShape(shape, dim, false), tensor.Int32)

	outer, n, inner := splitAt(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		argmaxData(result.AsInt32(), x.AsFloat32(), outer, n, inner)
	case tensor.Float64:
		argmaxData(result.AsInt32(), x.AsFloat64(), outer, n, inner)
	case tensor.Int32:
		argmaxData(result.AsInt32(), x.AsInt32(), outer, n, inner)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func argmaxData[T number](dst []int32, src []T, outer, n, inner int) {
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			best := src[o*n*inner+in]
			bestIdx := int32(0)
			for k := 1; k < n; k++ {
				if v := src[o*n*inner+k*inner+in]; v > best {
					best = v
					bestIdx = int32(k)
				}
			}
			dst[o*inner+in] = bestIdx
		}
	}
}

// reducedShape drops (or keeps as 1) the reduced dimension.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i == dim {
			if keepDim {
				out = append(out, 1)
			}
			continue
		}
		out = append(out, d)
	}
	return out
}

// splitAt factors a shape into [outer, n, inner] around dimension dim.
func splitAt(shape tensor.Shape, dim int) (outer, n, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}
