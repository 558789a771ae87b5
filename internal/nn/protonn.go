package nn

import (
	"errors"
	"fmt"
	"sync"

	"github.com/protonn-ml/protonn/internal/tensor"
)

// Sentinel errors for construction and accessor preconditions.
var (
	// ErrDimensionMismatch is returned when a supplied parameter matrix does
	// not match the shape implied by the hyperparameters.
	ErrDimensionMismatch = errors.New("protonn: dimension mismatch")

	// ErrUninitializedModel reports a forward pass on a model whose shape
	// validation never completed.
	ErrUninitializedModel = errors.New("protonn: model not initialized")

	// ErrAccuracyNotAvailable is returned by Accuracy when no label batch
	// was ever supplied to the forward pass.
	ErrAccuracyNotAvailable = errors.New("protonn: accuracy not available")
)

// ProtoNN implements the prototype-based classifier.
//
// The model projects inputs into a lower-dimensional space via W, measures
// the squared Euclidean distance of each projection to m learned prototypes
// (columns of B), converts distances to similarities with a Gaussian RBF
// kernel, and mixes per-prototype label weights (columns of Z) into class
// scores:
//
//	scores = sum_m( Z ⊙ exp(-gamma² · ||B − x·W||²) )
//
// The kernel bandwidth is gamma squared, so gamma and -gamma produce
// identical scores.
//
// Parameters:
//   - W: projection matrix, shape [d, d_cap]
//   - B: prototype matrix, shape [d_cap, m]
//   - Z: label-weight matrix, shape [L, m]
//
// The matrices are shared with the caller through ModelMatrices and
// Parameters; an external optimizer trains the model by updating their data
// in place. gamma is a fixed constant, not trainable.
//
// The output is memoized: the first forward call fixes the scores,
// predictions and (when labels are given) accuracy for the lifetime of the
// instance; later calls return the cached result. Repeated and concurrent
// calls are safe and observe the same output.
//
// Example:
//
//	backend := cpu.New()
//	model, err := nn.NewProtoNN(784, 15, 20, 10, 0.0015, nil, nil, nil, backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scores := model.ForwardWithLabels(x, y) // [batch, 10]
//	preds := model.Predictions()            // [batch]
//	acc, err := model.Accuracy()
type ProtoNN[B tensor.Backend] struct {
	d     int     // input dimension
	dCap  int     // projection dimension
	m     int     // number of prototypes
	l     int     // number of labels
	gamma float32 // kernel bandwidth (used squared)

	w *Parameter[B] // [d, d_cap]
	b *Parameter[B] // [d_cap, m]
	z *Parameter[B] // [L, m]

	backend B
	valid   bool

	once        sync.Once
	scores      *tensor.Tensor[float32, B]
	predictions *tensor.Tensor[int32, B]
	accuracy    float32
	hasAccuracy bool
}

// NewProtoNN creates a ProtoNN model with the given hyperparameters.
//
// Any of w, b, z may be nil, in which case the matrix is freshly
// initialized: W and Z from N(0, 1), B uniformly from [0, 1). Supplied
// matrices are used as-is and validated against the hyperparameters.
//
// Parameters:
//   - d: input dimension
//   - dCap: projection dimension
//   - m: number of prototypes
//   - l: number of output labels
//   - gamma: kernel bandwidth scalar (fixed, not trainable)
//   - w: optional projection matrix, shape [d, dCap]
//   - b: optional prototype matrix, shape [dCap, m]
//   - z: optional label-weight matrix, shape [l, m]
//   - backend: backend used for initialization and the forward pass
//
// Returns ErrDimensionMismatch if any hyperparameter is not positive or any
// supplied matrix has a mismatched shape; the message names the expected
// shapes W[d,d_cap], B[d_cap,m], Z[L,m].
func NewProtoNN[B tensor.Backend](
	d, dCap, m, l int,
	gamma float32,
	w, b, z *tensor.Tensor[float32, B],
	backend B,
) (*ProtoNN[B], error) {
	if d < 1 || dCap < 1 || m < 1 || l < 1 {
		return nil, fmt.Errorf("%w: hyperparameters must be positive, got d=%d, d_cap=%d, m=%d, L=%d",
			ErrDimensionMismatch, d, dCap, m, l)
	}

	if w == nil {
		w = Randn(tensor.Shape{d, dCap}, backend)
	}
	if b == nil {
		b = Uniform(tensor.Shape{dCap, m}, backend)
	}
	if z == nil {
		z = Randn(tensor.Shape{l, m}, backend)
	}

	if err := checkShape("W", w.Shape(), tensor.Shape{d, dCap}, "[d,d_cap]"); err != nil {
		return nil, err
	}
	if err := checkShape("B", b.Shape(), tensor.Shape{dCap, m}, "[d_cap,m]"); err != nil {
		return nil, err
	}
	if err := checkShape("Z", z.Shape(), tensor.Shape{l, m}, "[L,m]"); err != nil {
		return nil, err
	}

	return &ProtoNN[B]{
		d:       d,
		dCap:    dCap,
		m:       m,
		l:       l,
		gamma:   gamma,
		w:       NewParameter("W", w),
		b:       NewParameter("B", b),
		z:       NewParameter("Z", z),
		backend: backend,
		valid:   true,
	}, nil
}

func checkShape(name string, got, want tensor.Shape, dims string) error {
	if !got.Equal(want) {
		return fmt.Errorf("%w: expected %s%s = %v, got %v", ErrDimensionMismatch, name, dims, want, got)
	}
	return nil
}

// Forward computes class scores for an input batch.
//
// Input shape: [batch_size, d]
// Output shape: [batch_size, L]
//
// Equivalent to ForwardWithLabels(input, nil). Satisfies the Module
// interface.
func (p *ProtoNN[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return p.ForwardWithLabels(input, nil)
}

// ForwardWithLabels computes class scores for an input batch and, when a
// label batch is supplied, the batch accuracy.
//
// Input x shape: [batch_size, d]. Optional y is a one-hot label matrix of
// shape [batch_size, L]; pass nil to skip the accuracy computation.
//
// The scores are unnormalized per-class values; higher means more likely.
// Predictions (argmax over labels) are cached alongside the scores and
// exposed through Predictions.
//
// The first successful call fixes the output for this instance: later
// calls return the cached scores regardless of their arguments. Panics if
// the model was not successfully constructed, or if x or y has a
// malformed shape; a rejected call does not fix the output, so the next
// well-formed call still builds the graph.
func (p *ProtoNN[B]) ForwardWithLabels(x, y *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !p.valid {
		panic("ProtoNN.Forward: " + ErrUninitializedModel.Error())
	}
	// Validated outside the once guard: sync.Once treats a panicking
	// function as done, which would pin the output to nil.
	p.checkBatch(x, y)
	p.once.Do(func() {
		p.compute(x, y)
	})
	return p.scores
}

// checkBatch validates the input and label shapes.
func (p *ProtoNN[B]) checkBatch(x, y *tensor.Tensor[float32, B]) {
	xShape := x.Shape()
	if len(xShape) != 2 {
		panic(fmt.Sprintf("ProtoNN.Forward: expected 2D input [batch, d], got shape %v", xShape))
	}
	if xShape[1] != p.d {
		panic(fmt.Sprintf("ProtoNN.Forward: expected input with %d features, got %d", p.d, xShape[1]))
	}
	if y != nil {
		yShape := y.Shape()
		if len(yShape) != 2 || yShape[0] != xShape[0] || yShape[1] != p.l {
			panic(fmt.Sprintf("ProtoNN.Forward: expected labels of shape [%d, %d], got %v", xShape[0], p.l, yShape))
		}
	}
}

// compute builds the classifier graph once. Guarded by p.once; shapes are
// already validated.
func (p *ProtoNN[B]) compute(x, y *tensor.Tensor[float32, B]) {
	n := x.Shape()[0]

	w := p.w.Tensor()
	b := p.b.Tensor()
	z := p.z.Tensor()

	// Project: [n, d] @ [d, d_cap] = [n, d_cap]
	wx := x.MatMul(w)

	// Pair every projected row with every prototype:
	// [1, d_cap, m] - [n, d_cap, 1] broadcasts to [n, d_cap, m]
	diff := b.Reshape(tensor.Shape{1, p.dCap, p.m}).Sub(wx.Reshape(tensor.Shape{n, p.dCap, 1}))

	// Squared Euclidean distance per prototype: [n, 1, m]
	l2sim := diff.Mul(diff).SumDim(1, true)

	// Gaussian RBF kernel. The bandwidth is gamma squared, which keeps it
	// non-negative and makes the sign of gamma unobservable.
	gammaSq := p.gamma * p.gamma
	kernel := l2sim.MulScalar(-gammaSq).Exp()

	// Mix label weights: [1, L, m] * [n, 1, m] -> [n, L, m],
	// then sum over the prototype axis: [n, L]
	scores := z.Reshape(tensor.Shape{1, p.l, p.m}).Mul(kernel).SumDim(2, false)

	p.scores = scores
	p.predictions = scores.Argmax(1)

	if y == nil {
		return
	}
	labels := y.Argmax(1)
	correct := p.predictions.Equal(labels).Float32()
	p.accuracy = correct.Sum().Item() / float32(n)
	p.hasAccuracy = true
}

// Predictions returns the cached predictions tensor of shape [batch_size],
// with values in [0, L-1].
//
// Returns nil before the first forward call.
func (p *ProtoNN[B]) Predictions() *tensor.Tensor[int32, B] {
	return p.predictions
}

// Accuracy returns the cached batch accuracy, a value in [0, 1].
//
// Returns ErrAccuracyNotAvailable if the forward pass was never given a
// label batch.
func (p *ProtoNN[B]) Accuracy() (float32, error) {
	if !p.hasAccuracy {
		return 0, ErrAccuracyNotAvailable
	}
	return p.accuracy, nil
}

// HyperParams returns the model hyperparameters (d, d_cap, m, L, gamma).
func (p *ProtoNN[B]) HyperParams() (d, dCap, m, l int, gamma float32) {
	return p.d, p.dCap, p.m, p.l, p.gamma
}

// ModelMatrices returns the parameter matrices (W, B, Z) and gamma.
//
// The returned tensors are shared with the model: the external optimizer
// updates them in place, it does not replace them.
func (p *ProtoNN[B]) ModelMatrices() (w, b, z *tensor.Tensor[float32, B], gamma float32) {
	return p.w.Tensor(), p.b.Tensor(), p.z.Tensor(), p.gamma
}

// Parameters returns the trainable parameters [W, B, Z].
//
// gamma is excluded: it is a fixed constant for the lifetime of the model.
func (p *ProtoNN[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{p.w, p.b, p.z}
}
