package cpu

import (
	"fmt"
	"math"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Exp computes the element-wise exponential.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mathOp("exp", x, math.Exp)
}

// Log computes the element-wise natural logarithm.
// Panics on non-positive inputs.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mathOp("log", x, func(v float64) float64 {
		if v <= 0 {
			panic(fmt.Sprintf("log: non-positive value: %f", v))
		}
		return math.Log(v)
	})
}

// Sqrt computes the element-wise square root.
// Panics on negative inputs.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mathOp("sqrt", x, func(v float64) float64 {
		if v < 0 {
			panic(fmt.Sprintf("sqrt: negative value: %f", v))
		}
		return math.Sqrt(v)
	})
}

// mathOp applies a float function element-wise. Float dtypes only.
func (cpu *CPUBackend) mathOp(op string, x *tensor.RawTensor, fn func(float64) float64) *tensor.RawTensor {
	result := cpu.newRaw(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(fn(float64(v)))
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = fn(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}

	return result
}
