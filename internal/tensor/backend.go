package tensor

// Backend is the compute interface the tensor types dispatch to. It is
// the full set of operations the ProtoNN graph and its evaluation
// helpers need; implementations live in internal/backend.
//
// Binary element-wise operations follow NumPy broadcasting rules (see
// BroadcastShapes). Operations panic on shape or dtype violations:
// those are programming errors, not runtime conditions.
type Backend interface {
	// Element-wise binary operations (broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix multiplication for 2D tensors: [M,K] @ [K,N] -> [M,N].
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor

	// Element-wise operations with a scalar operand.
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor
	SubScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor                            // all elements, scalar result
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // along one dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // along one dimension
	Argmax(x *RawTensor, dim int) *RawTensor                // index of maximum, Int32 result

	// Comparisons (Bool result, broadcasting).
	Equal(a, b *RawTensor) *RawTensor
	NotEqual(a, b *RawTensor) *RawTensor

	// Type conversion.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
