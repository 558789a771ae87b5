package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := scalarToFloat64("mul_scalar", scalar)
	return scalarOpDispatch(cpu, "mul_scalar", x, s, func(v, s float64) float64 { return v * s })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := scalarToFloat64("add_scalar", scalar)
	return scalarOpDispatch(cpu, "add_scalar", x, s, func(v, s float64) float64 { return v + s })
}

// SubScalar subtracts a scalar from every element.
func (cpu *CPUBackend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := scalarToFloat64("sub_scalar", scalar)
	return scalarOpDispatch(cpu, "sub_scalar", x, s, func(v, s float64) float64 { return v - s })
}

// DivScalar divides every element by a scalar.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := scalarToFloat64("div_scalar", scalar)
	return scalarOpDispatch(cpu, "div_scalar", x, s, func(v, s float64) float64 { return v / s })
}

func scalarOpDispatch(cpu *CPUBackend, op string, x *tensor.RawTensor, s float64, fn func(v, s float64) float64) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Float32:
		return scalarOp(cpu, op, x, func(v float32) float32 { return float32(fn(float64(v), s)) })
	case tensor.Float64:
		return scalarOp(cpu, op, x, func(v float64) float64 { return fn(v, s) })
	case tensor.Int32:
		return scalarOp(cpu, op, x, func(v int32) int32 { return int32(fn(float64(v), s)) })
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}
}

func scalarOp[T number](cpu *CPUBackend, op string, x *tensor.RawTensor, fn func(T) T) *tensor.RawTensor {
	if x.IsUnique() {
		data := asSlice[T](x)
		for i := range data {
			data[i] = fn(data[i])
		}
		return x
	}

	result := cpu.newRaw(op, x.Shape(), x.DType())
	dst := asSlice[T](result)
	src := asSlice[T](x)
	for i := range dst {
		dst[i] = fn(src[i])
	}
	return result
}

// scalarToFloat64 normalizes a scalar operand. Panics on non-numeric
// types; that is a programming error at the call site.
func scalarToFloat64(op string, scalar any) float64 {
	switch v := scalar.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int32:
		return float64(v)
	case int:
		return float64(v)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", op, scalar))
	}
}
