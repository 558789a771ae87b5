//go:build windows

package webgpu

import (
	"testing"

	"github.com/protonn-ml/protonn/internal/tensor"
)

func TestIsAvailable(t *testing.T) {
	available := IsAvailable()
	t.Logf("WebGPU available: %v", available)
	// Reports status; does not fail when WebGPU is unavailable.
}

func TestNew(t *testing.T) {
	backend, err := New()
	if err != nil {
		t.Logf("WebGPU not available: %v", err)
		t.Skip("WebGPU not available on this system")
	}
	defer backend.Release()

	if backend.Name() == "" {
		t.Error("Backend name should not be empty")
	}
	t.Logf("Backend name: %s", backend.Name())

	if backend.Device() != tensor.WebGPU {
		t.Errorf("Expected device WebGPU, got %v", backend.Device())
	}
}

func newGPUBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New()
	if err != nil {
		t.Skip("WebGPU not available on this system")
	}
	t.Cleanup(backend.Release)
	return backend
}

func newFloat32Raw(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func TestGPUAdd(t *testing.T) {
	backend := newGPUBackend(t)

	a := newFloat32Raw(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := newFloat32Raw(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	result := backend.Add(a, b)
	want := []float32{11, 22, 33, 44}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("add[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestGPUAddBroadcast(t *testing.T) {
	backend := newGPUBackend(t)

	a := newFloat32Raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := newFloat32Raw(t, []float32{10, 20, 30}, tensor.Shape{3})

	result := backend.Add(a, b)
	want := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("broadcast add[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestGPUMatMul(t *testing.T) {
	backend := newGPUBackend(t)

	a := newFloat32Raw(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := newFloat32Raw(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	result := backend.MatMul(a, b)
	want := []float32{58, 64, 139, 154}
	for i, v := range result.AsFloat32() {
		if v != want[i] {
			t.Errorf("matmul[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestGPUEqualReturnsBool(t *testing.T) {
	backend := newGPUBackend(t)

	a := newFloat32Raw(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := newFloat32Raw(t, []float32{1, 0, 3}, tensor.Shape{3})

	result := backend.Equal(a, b)
	if result.DType() != tensor.Bool {
		t.Fatalf("equal dtype = %v, want Bool", result.DType())
	}
	want := []bool{true, false, true}
	for i, v := range result.AsBool() {
		if v != want[i] {
			t.Errorf("equal[%d] = %v, want %v", i, v, want[i])
		}
	}
}
