package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// number covers the dtypes arithmetic operations accept.
type number interface {
	~float32 | ~float64 | ~int32
}

// asSlice returns the typed view of a RawTensor matching T.
// Panics when T and the tensor's dtype disagree.
func asSlice[T number](t *tensor.RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(t.AsFloat32()).([]T)
	case float64:
		return any(t.AsFloat64()).([]T)
	case int32:
		return any(t.AsInt32()).([]T)
	default:
		panic("unsupported element type")
	}
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	switch a.DType() {
	case tensor.Float32:
		return binaryOp(cpu, "add", a, b, func(x, y float32) float32 { return x + y })
	case tensor.Float64:
		return binaryOp(cpu, "add", a, b, func(x, y float64) float64 { return x + y })
	case tensor.Int32:
		return binaryOp(cpu, "add", a, b, func(x, y int32) int32 { return x + y })
	default:
		panic(fmt.Sprintf("add: unsupported dtype %s", a.DType()))
	}
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	switch a.DType() {
	case tensor.Float32:
		return binaryOp(cpu, "sub", a, b, func(x, y float32) float32 { return x - y })
	case tensor.Float64:
		return binaryOp(cpu, "sub", a, b, func(x, y float64) float64 { return x - y })
	case tensor.Int32:
		return binaryOp(cpu, "sub", a, b, func(x, y int32) int32 { return x - y })
	default:
		panic(fmt.Sprintf("sub: unsupported dtype %s", a.DType()))
	}
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	switch a.DType() {
	case tensor.Float32:
		return binaryOp(cpu, "mul", a, b, func(x, y float32) float32 { return x * y })
	case tensor.Float64:
		return binaryOp(cpu, "mul", a, b, func(x, y float64) float64 { return x * y })
	case tensor.Int32:
		return binaryOp(cpu, "mul", a, b, func(x, y int32) int32 { return x * y })
	default:
		panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
	}
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	switch a.DType() {
	case tensor.Float32:
		return binaryOp(cpu, "div", a, b, func(x, y float32) float32 { return x / y })
	case tensor.Float64:
		return binaryOp(cpu, "div", a, b, func(x, y float64) float64 { return x / y })
	case tensor.Int32:
		return binaryOp(cpu, "div", a, b, func(x, y int32) int32 { return x / y })
	default:
		panic(fmt.Sprintf("div: unsupported dtype %s", a.DType()))
	}
}

// binaryOp runs an element-wise binary operation. Same-shape operands
// take a vectorized path, with an in-place update when a holds the only
// buffer reference. Mismatched shapes fall back to the broadcast loop.
func binaryOp[T number](cpu *CPUBackend, op string, a, b *tensor.RawTensor, fn func(T, T) T) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		bData := asSlice[T](b)

		if a.IsUnique() {
			aData := asSlice[T](a)
			for i := range aData {
				aData[i] = fn(aData[i], bData[i])
			}
			return a
		}

		result := cpu.newRaw(op, outShape, a.DType())
		dst := asSlice[T](result)
		aData := asSlice[T](a)
		for i := range dst {
			dst[i] = fn(aData[i], bData[i])
		}
		return result
	}

	result := cpu.newRaw(op, outShape, a.DType())
	binaryBroadcast(asSlice[T](result), asSlice[T](a), asSlice[T](b), a.Shape(), b.Shape(), outShape, fn)
	return result
}

// binaryBroadcast computes dst = fn(a, b) with both operands broadcast
// to outShape via stride-0 dimensions.
func binaryBroadcast[T number](dst, a, b []T, aShape, bShape, outShape tensor.Shape, fn func(T, T) T) {
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	for i := range dst {
		aIdx := computeFlatIndex(i, outStrides, aStrides)
		bIdx := computeFlatIndex(i, outStrides, bStrides)
		dst[i] = fn(a[aIdx], b[bIdx])
	}
}
