// Package tensor provides the core tensor types for the ProtoNN library.
package tensor

// DType is a constraint for supported tensor element types.
// The library deals in float matrices, integer index vectors (argmax
// results) and boolean masks (comparison results); nothing else.
type DType interface {
	~float32 | ~float64 | ~int32 | ~bool
}

// DataType is the runtime tag matching the DType constraint.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Bool
)

// Size returns the element size in bytes.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// inferDataType maps a generic element type T to its runtime tag.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
