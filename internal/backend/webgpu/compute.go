//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// launch describes one compute-shader run. Storage inputs are bound from
// binding 0 upward, followed by the result buffer and the uniform params,
// matching the layout the shader templates declare.
type launch struct {
	name     string
	code     string
	inputs   []*tensor.RawTensor
	params   []byte
	outShape tensor.Shape
	outDType tensor.DataType
	groups   [2]uint32
}

// dispatch uploads the inputs, runs the shader over the workgroup grid
// and reads the result back into a new RawTensor.
func (b *Backend) dispatch(l launch) (*tensor.RawTensor, error) {
	pipeline := b.pipelineFor(l.name, l.code)

	//nolint:gosec // G115: element counts and dtype sizes are non-negative
	outBytes := uint64(l.outShape.NumElements() * l.outDType.Size())

	entries := make([]wgpu.BindGroupEntry, 0, len(l.inputs)+2)
	for i, in := range l.inputs {
		buf := b.uploadBuffer(in.Data(), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer buf.Release()
		//nolint:gosec // G115: binding index and byte size are non-negative
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, uint64(in.ByteSize())))
	}

	resultBuf := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  outBytes,
	})
	defer resultBuf.Release()
	//nolint:gosec // G115: binding index is non-negative
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(l.inputs)), resultBuf, 0, outBytes))

	paramsBuf := b.uploadBuffer(l.params, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	defer paramsBuf.Release()
	//nolint:gosec // G115: binding index is non-negative
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(l.inputs)+1), paramsBuf, 0, uint64(len(l.params))))

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(l.groups[0], l.groups[1], 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))

	data, err := b.readBuffer(resultBuf, outBytes)
	if err != nil {
		return nil, err
	}

	out, err := tensor.NewRaw(l.outShape, l.outDType, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(out.Data(), data)
	return out, nil
}

// pipelineFor returns the cached compute pipeline for a shader, compiling
// and caching the shader module and pipeline on first use.
func (b *Backend) pipelineFor(name, code string) *wgpu.ComputePipeline {
	b.mu.RLock()
	pipeline, ok := b.pipelines[name]
	b.mu.RUnlock()
	if ok {
		return pipeline
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if pipeline, ok := b.pipelines[name]; ok {
		return pipeline
	}

	shader := b.device.CreateShaderModuleWGSL(code)
	b.shaders[name] = shader

	// Auto layout (nil layout)
	pipeline = b.device.CreateComputePipelineSimple(nil, shader, "main")
	b.pipelines[name] = pipeline
	return pipeline
}

// uploadBuffer creates a GPU buffer and fills it through the
// mapped-at-creation window. The size is rounded up to 16 bytes, which
// also satisfies the uniform alignment rules.
func (b *Backend) uploadBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := (uint64(len(data)) + 15) &^ 15

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mapped, data)
	buffer.Unmap()

	return buffer
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Uses a staging buffer since storage buffers can't be mapped directly.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	stagingBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer stagingBuffer.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mapped)

	stagingBuffer.Unmap()

	return result, nil
}

// wantFloat32 rejects inputs the float32-only shaders cannot handle.
func wantFloat32(x *tensor.RawTensor) error {
	if x.DType() != tensor.Float32 {
		return fmt.Errorf("webgpu: only float32 is supported, got %s", x.DType())
	}
	return nil
}

// packParams encodes uniform words into a 16-byte little-endian block.
func packParams(words ...uint32) []byte {
	buf := make([]byte, 16)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// grid1D covers n elements with 1D workgroups.
func grid1D(n int) [2]uint32 {
	//nolint:gosec // G115: workgroup count is non-negative
	return [2]uint32{uint32((n + workgroupSize - 1) / workgroupSize), 1}
}

// grid2D covers a cols-by-rows output with 16x16 workgroups.
func grid2D(cols, rows int) [2]uint32 {
	return [2]uint32{
		uint32(math.Ceil(float64(cols) / 16.0)),
		uint32(math.Ceil(float64(rows) / 16.0)),
	}
}

// runBinaryOp executes a same-shape binary element-wise operation on
// GPU. Broadcasting is handled by the caller via Expand.
func (b *Backend) runBinaryOp(a, other *tensor.RawTensor, shaderName, shaderCode string) (*tensor.RawTensor, error) {
	if err := wantFloat32(a); err != nil {
		return nil, err
	}
	if !a.Shape().Equal(other.Shape()) {
		return nil, fmt.Errorf("webgpu: shape mismatch: %v vs %v", a.Shape(), other.Shape())
	}

	n := a.NumElements()
	//nolint:gosec // G115: NumElements() returns non-negative int
	return b.dispatch(launch{
		name:     shaderName,
		code:     shaderCode,
		inputs:   []*tensor.RawTensor{a, other},
		params:   packParams(uint32(n)),
		outShape: a.Shape().Clone(),
		outDType: tensor.Float32,
		groups:   grid1D(n),
	})
}

// runUnaryOp executes a unary element-wise operation on GPU.
func (b *Backend) runUnaryOp(input *tensor.RawTensor, shaderName, shaderCode string) (*tensor.RawTensor, error) {
	return b.runScalarOp(input, 0, shaderName, shaderCode)
}

// runScalarOp executes an element-wise operation with an optional scalar
// operand passed through the uniform buffer.
func (b *Backend) runScalarOp(input *tensor.RawTensor, scalar float32, shaderName, shaderCode string) (*tensor.RawTensor, error) {
	if err := wantFloat32(input); err != nil {
		return nil, err
	}

	n := input.NumElements()
	//nolint:gosec // G115: NumElements() returns non-negative int
	return b.dispatch(launch{
		name:     shaderName,
		code:     shaderCode,
		inputs:   []*tensor.RawTensor{input},
		params:   packParams(uint32(n), math.Float32bits(scalar)),
		outShape: input.Shape().Clone(),
		outDType: tensor.Float32,
		groups:   grid1D(n),
	})
}

// runMatMul executes matrix multiplication C = A @ B on GPU.
// A is [M, K], B is [K, N], C is [M, N].
func (b *Backend) runMatMul(a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantFloat32(a); err != nil {
		return nil, err
	}
	if len(a.Shape()) != 2 || len(other.Shape()) != 2 {
		return nil, fmt.Errorf("webgpu: matmul requires 2D tensors, got %v and %v", a.Shape(), other.Shape())
	}

	m, k := a.Shape()[0], a.Shape()[1]
	n := other.Shape()[1]
	if other.Shape()[0] != k {
		return nil, fmt.Errorf("webgpu: matmul shape mismatch: [%d,%d] @ [%d,%d]", m, k, other.Shape()[0], n)
	}

	//nolint:gosec // G115: matrix dimensions are non-negative
	return b.dispatch(launch{
		name:     "matmul",
		code:     matmulShader,
		inputs:   []*tensor.RawTensor{a, other},
		params:   packParams(uint32(m), uint32(k), uint32(n)),
		outShape: tensor.Shape{m, n},
		outDType: tensor.Float32,
		groups:   grid2D(n, m),
	})
}

// runTranspose executes 2D matrix transpose on GPU.
func (b *Backend) runTranspose(input *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantFloat32(input); err != nil {
		return nil, err
	}
	if len(input.Shape()) != 2 {
		return nil, fmt.Errorf("webgpu: transpose requires 2D tensor, got %v", input.Shape())
	}

	rows, cols := input.Shape()[0], input.Shape()[1]

	//nolint:gosec // G115: matrix dimensions are non-negative
	return b.dispatch(launch{
		name:     "transpose",
		code:     transposeShader,
		inputs:   []*tensor.RawTensor{input},
		params:   packParams(uint32(rows), uint32(cols)),
		outShape: tensor.Shape{cols, rows},
		outDType: tensor.Float32,
		groups:   grid2D(cols, rows),
	})
}
