package tensor

import (
	"math"
	"testing"
)

// Test helpers

func assertEqualFloat32(t *testing.T, expected, actual float32, msg string) {
	t.Helper()
	if math.Abs(float64(expected-actual)) > 1e-6 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Bool, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
		{Int32, "int32"},
		{Bool, "bool"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{2, 3}, 6},
		{Shape{4}, 4},
		{Shape{2, 3, 4}, 24},
		{Shape{}, 1}, // scalar
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("strides = %v, want %v", strides, want)
			break
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b Shape
		want Shape
	}{
		{Shape{2, 3}, Shape{2, 3}, Shape{2, 3}},
		{Shape{2, 3}, Shape{3}, Shape{2, 3}},
		{Shape{2, 1}, Shape{1, 3}, Shape{2, 3}},
		{Shape{5, 4, 1}, Shape{1, 4, 7}, Shape{5, 4, 7}},
	}

	for _, tt := range tests {
		got, _, err := BroadcastShapes(tt.a, tt.b)
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v) error: %v", tt.a, tt.b, err)
			continue
		}
		assertEqualShape(t, tt.want, got, "broadcast result")
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	if _, _, err := BroadcastShapes(Shape{2, 3}, Shape{2, 4}); err == nil {
		t.Error("incompatible shapes accepted for broadcasting")
	}
}

func TestBroadcastShapesNeedsBroadcast(t *testing.T) {
	_, needs, err := BroadcastShapes(Shape{2, 3}, Shape{2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if needs {
		t.Error("equal shapes reported as needing broadcast")
	}

	_, needs, err = BroadcastShapes(Shape{2, 1}, Shape{2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !needs {
		t.Error("unequal shapes reported as not needing broadcast")
	}
}

// RawTensor Tests

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	assertEqualShape(t, Shape{2, 3}, raw.Shape(), "shape")
	if raw.DType() != Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 24 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, -1}, Float32, CPU); err == nil {
		t.Error("invalid shape accepted")
	}
}

func TestRawTensorCloneSharesBuffer(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)
	if !raw.IsUnique() {
		t.Error("fresh tensor should be unique")
	}

	clone := raw.Clone()
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("cloned tensors should share the buffer")
	}

	raw.AsFloat32()[0] = 42
	if clone.AsFloat32()[0] != 42 {
		t.Error("write to original not visible through clone")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("release should restore uniqueness")
	}
}

func TestRawTensorTypedAccessPanics(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32, CPU)

	defer func() {
		if recover() == nil {
			t.Error("AsInt32 on a Float32 tensor should panic")
		}
	}()
	raw.AsInt32()
}

// Creation Tests

func TestZeros(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 3}, backend)

	assertEqualShape(t, Shape{2, 3}, tensor.Shape(), "Zeros shape")
	for i, v := range tensor.Data() {
		if v != 0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}

func TestOnes(t *testing.T) {
	backend := NewMockBackend()
	tensor := Ones[float32](Shape{2, 2}, backend)

	for i, v := range tensor.Data() {
		if v != 1 {
			t.Errorf("element %d = %v, want 1", i, v)
		}
	}
}

func TestFull(t *testing.T) {
	backend := NewMockBackend()
	tensor := Full(Shape{3}, float32(2.5), backend)

	for _, v := range tensor.Data() {
		assertEqualFloat32(t, 2.5, v, "Full element")
	}
}

func TestEye(t *testing.T) {
	backend := NewMockBackend()
	tensor := Eye[float32](3, backend)

	assertEqualShape(t, Shape{3, 3}, tensor.Shape(), "Eye shape")
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			assertEqualFloat32(t, want, tensor.At(i, j), "Eye element")
		}
	}
}

func TestRandnStatistics(t *testing.T) {
	backend := NewMockBackend()
	tensor := Randn[float32](Shape{10000}, backend)

	sum := 0.0
	for _, v := range tensor.Data() {
		sum += float64(v)
	}
	mean := sum / 10000

	// Loose bound; Box-Muller samples of N(0,1) should average near 0.
	if math.Abs(mean) > 0.1 {
		t.Errorf("sample mean = %v, want near 0", mean)
	}
}

func TestRandRange(t *testing.T) {
	backend := NewMockBackend()
	tensor := Rand[float32](Shape{1000}, backend)

	for _, v := range tensor.Data() {
		if v < 0 || v >= 1 {
			t.Errorf("sample %v outside [0, 1)", v)
		}
	}
}

func TestFromSlice(t *testing.T) {
	backend := NewMockBackend()
	tensor, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	assertEqualFloat32(t, 1, tensor.At(0, 0), "At(0,0)")
	assertEqualFloat32(t, 6, tensor.At(1, 2), "At(1,2)")
}

func TestFromSliceLengthMismatch(t *testing.T) {
	backend := NewMockBackend()
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 3}, backend); err == nil {
		t.Error("length mismatch accepted")
	}
}

// Tensor method Tests

func TestTensorAtSet(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 3}, backend)

	tensor.Set(7, 1, 2)
	assertEqualFloat32(t, 7, tensor.At(1, 2), "At after Set")
	assertEqualFloat32(t, 0, tensor.At(0, 0), "untouched element")
}

func TestTensorAtOutOfBounds(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 3}, backend)

	defer func() {
		if recover() == nil {
			t.Error("out-of-bounds At should panic")
		}
	}()
	tensor.At(2, 0)
}

func TestTensorItem(t *testing.T) {
	backend := NewMockBackend()
	tensor := Full(Shape{1}, float32(42), backend)
	assertEqualFloat32(t, 42, tensor.Item(), "Item")
}

func TestTensorItemPanicsOnMultiElement(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2}, backend)

	defer func() {
		if recover() == nil {
			t.Error("Item on a multi-element tensor should panic")
		}
	}()
	tensor.Item()
}

func TestTensorDataWriteThrough(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{3}, backend)

	tensor.Data()[1] = 5
	assertEqualFloat32(t, 5, tensor.At(1), "write through Data()")
}

func TestTensorBackend(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2}, backend)
	if tensor.Backend().Name() != "mock" {
		t.Errorf("Backend().Name() = %v, want mock", tensor.Backend().Name())
	}
	if tensor.Device() != CPU {
		t.Errorf("Device() = %v, want CPU", tensor.Device())
	}
}
