//go:build windows

package webgpu

import "fmt"

// WGSL for the element-wise shader families is generated from shared
// templates; only the per-element expression differs between ops.

// workgroupSize is the number of threads per 1D workgroup. 2D shaders
// (matmul, transpose) tile the output with 16x16 workgroups instead.
const workgroupSize = 256

const binaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = %s;
    }
}
`

// binaryShader builds an element-wise two-operand shader around expr,
// which may reference a[idx] and b[idx].
func binaryShader(expr string) string {
	return fmt.Sprintf(binaryShaderTemplate, expr)
}

var (
	addShader = binaryShader("a[idx] + b[idx]")
	subShader = binaryShader("a[idx] - b[idx]")
	mulShader = binaryShader("a[idx] * b[idx]")
	divShader = binaryShader("a[idx] / b[idx]")

	// Comparisons output 0.0/1.0; the caller casts to Bool since WGSL
	// storage arrays cannot hold booleans.
	equalShader    = binaryShader("select(0.0, 1.0, a[idx] == b[idx])")
	notEqualShader = binaryShader("select(0.0, 1.0, a[idx] != b[idx])")
)

const unaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    scalar: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = %s;
    }
}
`

// unaryShader builds a single-operand shader around expr, which may
// reference input[idx] and params.scalar. Ops without a scalar operand
// leave params.scalar unread.
func unaryShader(expr string) string {
	return fmt.Sprintf(unaryShaderTemplate, expr)
}

var (
	expShader  = unaryShader("exp(input[idx])")
	logShader  = unaryShader("log(input[idx])")
	sqrtShader = unaryShader("sqrt(input[idx])")

	scalarMulShader = unaryShader("input[idx] * params.scalar")
	scalarAddShader = unaryShader("input[idx] + params.scalar")
)

// matmulShader computes C = A @ B with A [M, K], B [K, N], C [M, N].
// Each invocation produces one output element.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,
    K: u32,
    N: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }
    result[row * params.N + col] = sum;
}
`

// transposeShader swaps the two axes of a 2D matrix.
const transposeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.rows || col >= params.cols) {
        return;
    }

    result[col * params.rows + row] = input[row * params.cols + col];
}
`
