// Package cpu implements the CPU compute backend.
package cpu

import (
	"fmt"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Verify that CPUBackend implements the backend contract.
var _ tensor.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor operations on the CPU. Operations are
// single-threaded; parallelism comes from callers batching work.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// newRaw allocates a result tensor, panicking on allocation failure.
// Shape errors at this level are programming errors.
func (cpu *CPUBackend) newRaw(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
