package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Cast converts a tensor to another dtype. Same-dtype casts return a
// buffer-sharing clone. Bool maps to 0/1 as a number; numbers map to
// Bool by comparing against zero. Float to int truncates toward zero.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result := cpu.newRaw("cast", x.Shape(), dtype)

	// Go through float64 as the common carrier. The extra conversion
	// costs little next to the allocation.
	vals := make([]float64, x.NumElements())
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			vals[i] = float64(v)
		}
	case tensor.Float64:
		copy(vals, x.AsFloat64())
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			vals[i] = float64(v)
		}
	case tensor.Bool:
		for i, v := range x.AsBool() {
			if v {
				vals[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}

	switch dtype {
	case tensor.Float32:
		dst := result.AsFloat32()
		for i, v := range vals {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(result.AsFloat64(), vals)
	case tensor.Int32:
		dst := result.AsInt32()
		for i, v := range vals {
			dst[i] = int32(v)
		}
	case tensor.Bool:
		dst := result.AsBool()
		for i, v := range vals {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dtype))
	}

	return result
}
