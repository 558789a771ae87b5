package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err) // invalid shape is a caller bug
	}
	return New[T, B](raw, b)
}

// one returns the multiplicative identity for T (true for bool).
func one[T DType]() T {
	var dummy T
	var v any
	switch any(dummy).(type) {
	case float32:
		v = float32(1)
	case float64:
		v = float64(1)
	case int32:
		v = int32(1)
	case bool:
		v = true
	}
	return v.(T)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, one[T](), b)
}

// Full creates a tensor filled with the given value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor of samples from the standard normal
// distribution N(0, 1), generated with the Box-Muller transform.
// Float types only. Uses math/rand so runs are reproducible via
// rand.Seed; this is initialization, not cryptography.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)

	var dummy T
	switch any(dummy).(type) {
	case float32:
		data := any(t.Data()).([]float32)
		for i := 0; i < len(data); i += 2 {
			z0, z1 := boxMuller()
			data[i] = float32(z0)
			if i+1 < len(data) {
				data[i+1] = float32(z1)
			}
		}
	case float64:
		data := any(t.Data()).([]float64)
		for i := 0; i < len(data); i += 2 {
			z0, z1 := boxMuller()
			data[i] = z0
			if i+1 < len(data) {
				data[i+1] = z1
			}
		}
	default:
		panic("Randn only supports float32 and float64 types")
	}
	return t
}

// boxMuller returns two independent N(0, 1) samples.
func boxMuller() (float64, float64) {
	u1 := rand.Float64() //nolint:gosec // initialization, not security-critical
	u2 := rand.Float64() //nolint:gosec // initialization, not security-critical
	r := math.Sqrt(-2.0 * math.Log(u1))
	return r * math.Cos(2.0*math.Pi*u2), r * math.Sin(2.0*math.Pi*u2)
}

// Rand creates a tensor of samples uniformly distributed in [0, 1).
// Float types only.
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)

	var dummy T
	switch any(dummy).(type) {
	case float32:
		data := any(t.Data()).([]float32)
		for i := range data {
			data[i] = float32(rand.Float64()) //nolint:gosec // initialization, not security-critical
		}
	case float64:
		data := any(t.Data()).([]float64)
		for i := range data {
			data[i] = rand.Float64() //nolint:gosec // initialization, not security-critical
		}
	default:
		panic("Rand only supports float32 and float64 types")
	}
	return t
}

// Eye creates an n-by-n identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	v := one[T]()
	for i := 0; i < n; i++ {
		t.Set(v, i, i)
	}
	return t
}
