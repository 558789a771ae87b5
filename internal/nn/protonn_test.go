package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protonn-ml/protonn/internal/backend/cpu"
	"github.com/protonn-ml/protonn/internal/tensor"
)

type testBackend = *cpu.CPUBackend

// ProtoNN must be usable wherever a Module is expected.
var _ Module[testBackend] = (*ProtoNN[testBackend])(nil)

// newTensor builds a float32 tensor from literal data for tests.
func newTensor(t *testing.T, backend testBackend, data []float32, shape tensor.Shape) *tensor.Tensor[float32, testBackend] {
	t.Helper()
	out, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)
	return out
}

// twoPrototypeModel builds a deterministic 1D model with two well-separated
// prototypes at 0 and 5, where prototype k votes only for label k. Inputs
// near 0 predict label 0, inputs near 5 predict label 1.
func twoPrototypeModel(t *testing.T, backend testBackend) *ProtoNN[testBackend] {
	t.Helper()
	w := newTensor(t, backend, []float32{1}, tensor.Shape{1, 1})
	b := newTensor(t, backend, []float32{0, 5}, tensor.Shape{1, 2})
	z := newTensor(t, backend, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})

	model, err := NewProtoNN(1, 1, 2, 2, 1.0, w, b, z, backend)
	require.NoError(t, err)
	return model
}

func TestNewProtoNN_SuppliedMatrices(t *testing.T) {
	backend := cpu.New()

	w := newTensor(t, backend, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	b := newTensor(t, backend, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	z := newTensor(t, backend, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})

	model, err := NewProtoNN(3, 2, 2, 2, 0.5, w, b, z, backend)
	require.NoError(t, err)

	d, dCap, m, l, gamma := model.HyperParams()
	assert.Equal(t, 3, d)
	assert.Equal(t, 2, dCap)
	assert.Equal(t, 2, m)
	assert.Equal(t, 2, l)
	assert.Equal(t, float32(0.5), gamma)

	gotW, gotB, gotZ, gotGamma := model.ModelMatrices()
	assert.Same(t, w, gotW, "W must be shared, not copied")
	assert.Same(t, b, gotB, "B must be shared, not copied")
	assert.Same(t, z, gotZ, "Z must be shared, not copied")
	assert.Equal(t, float32(0.5), gotGamma)
}

func TestNewProtoNN_DefaultInitialization(t *testing.T) {
	backend := cpu.New()

	model, err := NewProtoNN[testBackend](10, 4, 5, 3, 1.0, nil, nil, nil, backend)
	require.NoError(t, err)

	w, b, z, _ := model.ModelMatrices()
	assert.Equal(t, tensor.Shape{10, 4}, w.Shape())
	assert.Equal(t, tensor.Shape{4, 5}, b.Shape())
	assert.Equal(t, tensor.Shape{3, 5}, z.Shape())

	// B is drawn from U[0, 1).
	for _, v := range b.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

func TestNewProtoNN_DimensionMismatch(t *testing.T) {
	backend := cpu.New()

	good := func(shape tensor.Shape) *tensor.Tensor[float32, testBackend] {
		return tensor.Zeros[float32](shape, backend)
	}

	tests := []struct {
		name    string
		w, b, z *tensor.Tensor[float32, testBackend]
		wantMsg string
	}{
		{"WrongWRows", good(tensor.Shape{4, 2}), nil, nil, "W[d,d_cap]"},
		{"WrongWCols", good(tensor.Shape{3, 5}), nil, nil, "W[d,d_cap]"},
		{"WrongBRows", nil, good(tensor.Shape{5, 2}), nil, "B[d_cap,m]"},
		{"WrongBCols", nil, good(tensor.Shape{2, 7}), nil, "B[d_cap,m]"},
		{"WrongZRows", nil, nil, good(tensor.Shape{9, 2}), "Z[L,m]"},
		{"WrongZCols", nil, nil, good(tensor.Shape{6, 1}), "Z[L,m]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProtoNN(3, 2, 2, 6, 1.0, tt.w, tt.b, tt.z, backend)
			require.ErrorIs(t, err, ErrDimensionMismatch)
			assert.Contains(t, err.Error(), tt.wantMsg, "message must name the expected shape")
		})
	}
}

func TestNewProtoNN_NonPositiveHyperParams(t *testing.T) {
	backend := cpu.New()

	_, err := NewProtoNN[testBackend](0, 2, 2, 2, 1.0, nil, nil, nil, backend)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = NewProtoNN[testBackend](3, 2, -1, 2, 1.0, nil, nil, nil, backend)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

// TestProtoNN_NumericExample pins down the forward pass on a hand-computed
// case: with W = I, a single prototype at the origin and the input at the
// origin, the distance is 0, the kernel weight is exp(0) = 1, and the
// scores reduce to the prototype's label-weight column.
func TestProtoNN_NumericExample(t *testing.T) {
	backend := cpu.New()

	w := newTensor(t, backend, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})
	b := newTensor(t, backend, []float32{0, 0}, tensor.Shape{2, 1})
	z := newTensor(t, backend, []float32{1, 0}, tensor.Shape{2, 1})

	model, err := NewProtoNN(2, 2, 1, 2, 1.0, w, b, z, backend)
	require.NoError(t, err)

	x := newTensor(t, backend, []float32{0, 0}, tensor.Shape{1, 2})
	scores := model.Forward(x)

	require.Equal(t, tensor.Shape{1, 2}, scores.Shape())
	assert.InDelta(t, 1.0, scores.Data()[0], 1e-6)
	assert.InDelta(t, 0.0, scores.Data()[1], 1e-6)

	preds := model.Predictions()
	require.Equal(t, tensor.Shape{1}, preds.Shape())
	assert.Equal(t, int32(0), preds.Data()[0])
}

func TestProtoNN_ScoreAndPredictionShapes(t *testing.T) {
	backend := cpu.New()

	model, err := NewProtoNN[testBackend](4, 3, 5, 7, 0.1, nil, nil, nil, backend)
	require.NoError(t, err)

	x := tensor.Randn[float32](tensor.Shape{6, 4}, backend)
	scores := model.Forward(x)

	assert.Equal(t, tensor.Shape{6, 7}, scores.Shape())

	preds := model.Predictions()
	require.Equal(t, tensor.Shape{6}, preds.Shape())
	for _, v := range preds.Data() {
		assert.GreaterOrEqual(t, v, int32(0))
		assert.Less(t, v, int32(7))
	}
}

// TestProtoNN_Memoization verifies the one-shot graph semantics: the first
// forward call fixes the output, and a later call with a different batch
// still returns the original cached scores.
func TestProtoNN_Memoization(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	x1 := newTensor(t, backend, []float32{0}, tensor.Shape{1, 1})
	x2 := newTensor(t, backend, []float32{5}, tensor.Shape{1, 1})

	first := model.Forward(x1)
	second := model.Forward(x2)

	assert.Same(t, first, second, "second call must return the cached scores")

	firstPreds := model.Predictions()
	model.Forward(x2)
	assert.Same(t, firstPreds, model.Predictions())
}

// TestProtoNN_GammaSignInvariance checks that the kernel squares the
// bandwidth: gamma and -gamma must produce identical scores.
func TestProtoNN_GammaSignInvariance(t *testing.T) {
	backend := cpu.New()

	for _, gamma := range []float32{0.01, 0.73, 2.5} {
		w := tensor.Randn[float32](tensor.Shape{3, 2}, backend)
		b := tensor.Rand[float32](tensor.Shape{2, 4}, backend)
		z := tensor.Randn[float32](tensor.Shape{5, 4}, backend)
		x := tensor.Randn[float32](tensor.Shape{8, 3}, backend)

		pos, err := NewProtoNN(3, 2, 4, 5, gamma, w, b, z, backend)
		require.NoError(t, err)
		neg, err := NewProtoNN(3, 2, 4, 5, -gamma, w, b, z, backend)
		require.NoError(t, err)

		posScores := pos.Forward(x).Data()
		negScores := neg.Forward(x).Data()

		require.Len(t, negScores, len(posScores))
		for i := range posScores {
			assert.Equal(t, posScores[i], negScores[i], "gamma=%v, index %d", gamma, i)
		}
	}
}

func TestProtoNN_AccuracyAllCorrect(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	x := newTensor(t, backend, []float32{0, 5}, tensor.Shape{2, 1})
	y := newTensor(t, backend, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})

	model.ForwardWithLabels(x, y)

	acc, err := model.Accuracy()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, acc, 1e-6)
}

func TestProtoNN_AccuracyAllWrong(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	x := newTensor(t, backend, []float32{0, 5}, tensor.Shape{2, 1})
	y := newTensor(t, backend, []float32{0, 1, 1, 0}, tensor.Shape{2, 2})

	model.ForwardWithLabels(x, y)

	acc, err := model.Accuracy()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, acc, 1e-6)
}

func TestProtoNN_AccuracyMixed(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	x := newTensor(t, backend, []float32{0, 5}, tensor.Shape{2, 1})
	y := newTensor(t, backend, []float32{1, 0, 1, 0}, tensor.Shape{2, 2})

	model.ForwardWithLabels(x, y)

	acc, err := model.Accuracy()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, acc, 1e-6)
}

func TestProtoNN_AccuracyNotAvailable(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	// Before any forward call.
	_, err := model.Accuracy()
	require.ErrorIs(t, err, ErrAccuracyNotAvailable)

	// After a forward call without labels.
	x := newTensor(t, backend, []float32{0}, tensor.Shape{1, 1})
	model.Forward(x)

	_, err = model.Accuracy()
	require.ErrorIs(t, err, ErrAccuracyNotAvailable)
}

func TestProtoNN_PredictionsNilBeforeForward(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	assert.Nil(t, model.Predictions())
}

func TestProtoNN_ForwardUninitializedPanics(t *testing.T) {
	backend := cpu.New()

	var model ProtoNN[testBackend]
	x := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)

	assert.Panics(t, func() {
		model.Forward(x)
	})
}

func TestProtoNN_ForwardBadInputShapePanics(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	assert.Panics(t, func() {
		model.Forward(tensor.Zeros[float32](tensor.Shape{2, 3}, backend))
	}, "feature count mismatch")

	fresh := twoPrototypeModel(t, backend)
	assert.Panics(t, func() {
		fresh.Forward(tensor.Zeros[float32](tensor.Shape{4}, backend))
	}, "1D input")
}

// TestProtoNN_RejectedCallDoesNotFixOutput verifies that a recovered
// bad-shape panic leaves the memoization untouched: the next well-formed
// call must still build the graph instead of returning nil.
func TestProtoNN_RejectedCallDoesNotFixOutput(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	assert.Panics(t, func() {
		model.Forward(tensor.Zeros[float32](tensor.Shape{1, 3}, backend))
	})

	x := newTensor(t, backend, []float32{0}, tensor.Shape{1, 1})
	scores := model.Forward(x)
	require.NotNil(t, scores, "a rejected call must not consume the one-shot build")
	assert.InDelta(t, 1.0, scores.Data()[0], 1e-6)

	preds := model.Predictions()
	require.NotNil(t, preds)
	assert.Equal(t, int32(0), preds.Data()[0])
}

// TestProtoNN_RejectedLabelShapeDoesNotFixOutput is the label-side
// counterpart: malformed y is rejected before the graph is built.
func TestProtoNN_RejectedLabelShapeDoesNotFixOutput(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	x := newTensor(t, backend, []float32{0, 5}, tensor.Shape{2, 1})

	assert.Panics(t, func() {
		model.ForwardWithLabels(x, tensor.Zeros[float32](tensor.Shape{2, 5}, backend))
	})

	y := newTensor(t, backend, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})
	scores := model.ForwardWithLabels(x, y)
	require.NotNil(t, scores)

	acc, err := model.Accuracy()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, acc, 1e-6)
}

// TestProtoNN_KernelValue checks the kernel math on a separated input: a
// point at distance r from a prototype contributes exp(-gamma²·r²).
func TestProtoNN_KernelValue(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	x := newTensor(t, backend, []float32{1}, tensor.Shape{1, 1})
	scores := model.Forward(x).Data()

	// Distance 1 to prototype 0, distance 4 to prototype 1, gamma = 1.
	wantLabel0 := float32(math.Exp(-1))
	wantLabel1 := float32(math.Exp(-16))
	assert.InDelta(t, wantLabel0, scores[0], 1e-6)
	assert.InDelta(t, wantLabel1, scores[1], 1e-6)
}

func TestProtoNN_ParametersExposesWBZ(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	params := model.Parameters()
	require.Len(t, params, 3)
	assert.Equal(t, "W", params[0].Name())
	assert.Equal(t, "B", params[1].Name())
	assert.Equal(t, "Z", params[2].Name())

	w, b, z, _ := model.ModelMatrices()
	assert.Same(t, w, params[0].Tensor())
	assert.Same(t, b, params[1].Tensor())
	assert.Same(t, z, params[2].Tensor())
}

// TestProtoNN_InPlaceParameterUpdate mirrors how an external optimizer
// trains the model: writing through the shared tensors before the first
// forward call changes the computed scores.
func TestProtoNN_InPlaceParameterUpdate(t *testing.T) {
	backend := cpu.New()
	model := twoPrototypeModel(t, backend)

	// Move prototype 1 from 5 onto the input so both kernels saturate.
	_, b, _, _ := model.ModelMatrices()
	b.Set(0, 0, 1)

	x := newTensor(t, backend, []float32{0}, tensor.Shape{1, 1})
	scores := model.Forward(x).Data()

	assert.InDelta(t, 1.0, scores[0], 1e-6)
	assert.InDelta(t, 1.0, scores[1], 1e-6)
}
