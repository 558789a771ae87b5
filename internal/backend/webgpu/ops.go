//go:build windows

package webgpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Add performs element-wise addition on GPU.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "add", addShader)
}

// Sub performs element-wise subtraction on GPU.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "sub", subShader)
}

// Mul performs element-wise multiplication on GPU.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "mul", mulShader)
}

// Div performs element-wise division on GPU.
func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(a, other, "div", divShader)
}

// binaryOp dispatches a binary shader. The shaders index both operands
// with the same flat index, so broadcast operands are expanded
// host-side first.
func (b *Backend) binaryOp(a, other *tensor.RawTensor, name, code string) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), other.Shape())
	if err != nil {
		panic("webgpu: " + name + ": " + err.Error())
	}

	if needsBroadcast {
		if !a.Shape().Equal(outShape) {
			a = b.Expand(a, outShape)
		}
		if !other.Shape().Equal(outShape) {
			other = b.Expand(other, outShape)
		}
	}

	result, err := b.runBinaryOp(a, other, name, code)
	if err != nil {
		panic("webgpu: " + name + ": " + err.Error())
	}
	return result
}

// MatMul performs matrix multiplication on GPU.
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runMatMul(a, other)
	if err != nil {
		panic("webgpu: MatMul: " + err.Error())
	}
	return result
}

// Reshape returns a tensor with a new shape.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic("webgpu: reshape: invalid shape: " + err.Error())
	}
	if t.NumElements() != newShape.NumElements() {
		panic("webgpu: reshape: incompatible number of elements")
	}

	result, err := tensor.NewRaw(newShape, t.DType(), tensor.WebGPU)
	if err != nil {
		panic("webgpu: reshape: " + err.Error())
	}
	copy(result.Data(), t.Data())
	return result
}

// Transpose permutes tensor dimensions. The common 2D case runs as a
// compute shader; general permutations run host-side.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	if len(t.Shape()) == 2 && len(axes) == 0 && t.DType() == tensor.Float32 {
		result, err := b.runTranspose(t)
		if err != nil {
			panic("webgpu: Transpose: " + err.Error())
		}
		return result
	}

	return b.transposeHost(t, axes)
}

func (b *Backend) transposeHost(t *tensor.RawTensor, axes []int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("webgpu: transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("webgpu: transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), tensor.WebGPU)
	if err != nil {
		panic("webgpu: transpose: " + err.Error())
	}

	switch t.DType() {
	case tensor.Float32:
		transposeGeneric(result.AsFloat32(), t.AsFloat32(), shape, newShape, axes)
	case tensor.Int32:
		transposeGeneric(result.AsInt32(), t.AsInt32(), shape, newShape, axes)
	default:
		panic("webgpu: transpose: unsupported dtype " + t.DType().String())
	}

	return result
}

func transposeGeneric[T any](dst, src []T, srcShape, dstShape tensor.Shape, axes []int) {
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

// Expand broadcasts a tensor to a new shape. Implemented host-side for
// simplicity; it feeds the binary shaders, which expect same-shape
// operands.
func (b *Backend) Expand(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	shape := x.Shape()
	if len(newShape) < len(shape) {
		panic("webgpu: Expand: new shape must have at least as many dimensions")
	}

	result, err := tensor.NewRaw(newShape, x.DType(), tensor.WebGPU)
	if err != nil {
		panic("webgpu: Expand: " + err.Error())
	}

	switch x.DType() {
	case tensor.Float32:
		expandGeneric(x.AsFloat32(), result.AsFloat32(), shape, newShape)
	case tensor.Int32:
		expandGeneric(x.AsInt32(), result.AsInt32(), shape, newShape)
	default:
		panic("webgpu: Expand: unsupported dtype " + x.DType().String())
	}

	return result
}

// expandGeneric broadcasts data from source shape to target shape.
func expandGeneric[T any](src, dst []T, srcShape, dstShape tensor.Shape) {
	srcStrides := srcShape.ComputeStrides()
	dstStrides := dstShape.ComputeStrides()

	dimDiff := len(dstShape) - len(srcShape)
	paddedSrcShape := make(tensor.Shape, len(dstShape))
	paddedSrcStrides := make([]int, len(dstShape))
	for i := 0; i < dimDiff; i++ {
		paddedSrcShape[i] = 1
		paddedSrcStrides[i] = 0
	}
	for i := 0; i < len(srcShape); i++ {
		paddedSrcShape[dimDiff+i] = srcShape[i]
		paddedSrcStrides[dimDiff+i] = srcStrides[i]
	}

	numElements := dstShape.NumElements()
	for i := 0; i < numElements; i++ {
		temp := i
		srcIdx := 0
		for d := 0; d < len(dstShape); d++ {
			coord := temp / dstStrides[d]
			temp %= dstStrides[d]

			if paddedSrcShape[d] == 1 {
				coord = 0
			}
			srcIdx += coord * paddedSrcStrides[d]
		}
		dst[i] = src[srcIdx]
	}
}

// Scalar operations.

// MulScalar multiplies tensor elements by a scalar on GPU.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat32(scalar)
	result, err := b.runScalarOp(x, s, "scalarMul", scalarMulShader)
	if err != nil {
		panic("webgpu: MulScalar: " + err.Error())
	}
	return result
}

// AddScalar adds a scalar to tensor elements on GPU.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat32(scalar)
	result, err := b.runScalarOp(x, s, "scalarAdd", scalarAddShader)
	if err != nil {
		panic("webgpu: AddScalar: " + err.Error())
	}
	return result
}

// SubScalar subtracts a scalar from tensor elements on GPU.
func (b *Backend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat32(scalar)
	result, err := b.runScalarOp(x, -s, "scalarAdd", scalarAddShader) // x - s = x + (-s)
	if err != nil {
		panic("webgpu: SubScalar: " + err.Error())
	}
	return result
}

// DivScalar divides tensor elements by a scalar on GPU.
func (b *Backend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat32(scalar)
	if s == 0 {
		panic("webgpu: DivScalar: division by zero")
	}
	result, err := b.runScalarOp(x, 1.0/s, "scalarMul", scalarMulShader) // x / s = x * (1/s)
	if err != nil {
		panic("webgpu: DivScalar: " + err.Error())
	}
	return result
}

// toFloat32 converts any numeric type to float32.
func toFloat32(v any) float32 {
	switch val := v.(type) {
	case float32:
		return val
	case float64:
		return float32(val)
	case int:
		return float32(val)
	case int32:
		return float32(val)
	default:
		panic("webgpu: unsupported scalar type")
	}
}

// Math operations.

// Exp computes exponential element-wise on GPU.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runUnaryOp(x, "exp", expShader)
	if err != nil {
		panic("webgpu: Exp: " + err.Error())
	}
	return result
}

// Log computes natural logarithm element-wise on GPU.
func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runUnaryOp(x, "log", logShader)
	if err != nil {
		panic("webgpu: Log: " + err.Error())
	}
	return result
}

// Sqrt computes square root element-wise on GPU.
func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runUnaryOp(x, "sqrt", sqrtShader)
	if err != nil {
		panic("webgpu: Sqrt: " + err.Error())
	}
	return result
}

// Comparison operations. The shaders output f32 0/1; results are cast
// to Bool to match the backend contract.

// Equal performs element-wise equality comparison.
func (b *Backend) Equal(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.compareOp(a, other, "equal", equalShader)
}

// NotEqual performs element-wise inequality comparison.
func (b *Backend) NotEqual(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.compareOp(a, other, "notEqual", notEqualShader)
}

func (b *Backend) compareOp(a, other *tensor.RawTensor, name, code string) *tensor.RawTensor {
	if a.DType() != tensor.Float32 {
		a = b.Cast(a, tensor.Float32)
	}
	if other.DType() != tensor.Float32 {
		other = b.Cast(other, tensor.Float32)
	}
	return b.Cast(b.binaryOp(a, other, name, code), tensor.Bool)
}

// Reductions run host-side: their outputs are small, so a dispatch plus
// readback costs more than the loop.

// Sum computes the sum of all elements.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), tensor.WebGPU)
	if err != nil {
		panic("webgpu: Sum: " + err.Error())
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Int32:
		var sum int32
		for _, v := range x.AsInt32() {
			sum += v
		}
		result.AsInt32()[0] = sum
	default:
		panic("webgpu: Sum: unsupported dtype " + x.DType().String())
	}

	return result
}

// SumDim sums along a single dimension.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.reduceDim("SumDim", x, dim, keepDim, false)
}

// MeanDim averages along a single dimension.
func (b *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic("webgpu: MeanDim: unsupported dtype " + x.DType().String())
	}
	return b.reduceDim("MeanDim", x, dim, keepDim, true)
}

func (b *Backend) reduceDim(op string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("webgpu: %s: dimension %d out of range for shape %v", op, dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}

	result, err := tensor.NewRaw(outShape, x.DType(), tensor.WebGPU)
	if err != nil {
		panic("webgpu: " + op + ": " + err.Error())
	}

	outer, n, inner := 1, shape[dim], 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var sum float32
				for k := 0; k < n; k++ {
					sum += src[o*n*inner+k*inner+in]
				}
				if mean {
					sum /= float32(n)
				}
				dst[o*inner+in] = sum
			}
		}
	case tensor.Int32:
		src := x.AsInt32()
		dst := result.AsInt32()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var sum int32
				for k := 0; k < n; k++ {
					sum += src[o*n*inner+k*inner+in]
				}
				dst[o*inner+in] = sum
			}
		}
	default:
		panic("webgpu: " + op + ": unsupported dtype " + x.DType().String())
	}

	return result
}

// Argmax returns indices of maximum values along a dimension as Int32.
// Ties resolve to the first maximum.
func (b *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic("webgpu: Argmax: unsupported dtype " + x.DType().String())
	}

	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("webgpu: Argmax: dimension %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i != dim {
			outShape = append(outShape, d)
		}
	}

	result, err := tensor.NewRaw(outShape, tensor.Int32, tensor.WebGPU)
	if err != nil {
		panic("webgpu: Argmax: " + err.Error())
	}

	outer, n, inner := 1, shape[dim], 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	src := x.AsFloat32()
	dst := result.AsInt32()
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

	return result
}

// Cast converts a tensor to a different data type. Implemented
// host-side for simplicity.
func (b *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), dtype, tensor.WebGPU)
	if err != nil {
		panic("webgpu: Cast: " + err.Error())
	}

	if x.DType() == dtype {
		copy(result.Data(), x.Data())
		return result
	}

	switch dtype {
	case tensor.Float32:
		b.castToFloat32(x, result)
	case tensor.Int32:
		b.castToInt32(x, result)
	case tensor.Bool:
		b.castToBool(x, result)
	default:
		panic("webgpu: Cast: unsupported target type " + dtype.String())
	}

	return result
}

func (b *Backend) castToFloat32(x, result *tensor.RawTensor) {
	dst := result.AsFloat32()
	switch x.DType() {
	case tensor.Float64:
		for i, v := range x.AsFloat64() {
			dst[i] = float32(v)
		}
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			dst[i] = float32(v)
		}
	case tensor.Bool:
		for i, v := range x.AsBool() {
			if v {
				dst[i] = 1
			}
		}
	default:
		panic("webgpu: Cast: unsupported source type for float32: " + x.DType().String())
	}
}

func (b *Backend) castToInt32(x, result *tensor.RawTensor) {
	dst := result.AsInt32()
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			dst[i] = int32(v)
		}
	case tensor.Float64:
		for i, v := range x.AsFloat64() {
			dst[i] = int32(v)
		}
	case tensor.Bool:
		for i, v := range x.AsBool() {
			if v {
				dst[i] = 1
			}
		}
	default:
		panic("webgpu: Cast: unsupported source type for int32: " + x.DType().String())
	}
}

func (b *Backend) castToBool(x, result *tensor.RawTensor) {
	dst := result.AsBool()
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			dst[i] = v != 0
		}
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			dst[i] = v != 0
		}
	default:
		panic("webgpu: Cast: unsupported source type for bool: " + x.DType().String())
	}
}
