package compute

import (
	"context"

	"github.com/zerfoo/gradcore/numeric"
	"github.com/zerfoo/gradcore/tensor"
)

// Engine defines the interface for a computation engine (e.g., CPU, GPU). It is
// the concrete backend contract: the complete set of tensor primitives the
// autodiff decorator re-exports, instrumented with a recorded graph, and then
// forwards to whichever Engine implementation is wrapped.
//
// All tensor operations are routed through an Engine implementation to keep
// the autodiff core hardware-agnostic; a new backend only has to satisfy this
// interface to be wrapped transparently.
type Engine[T tensor.Numeric] interface {
	// Ops returns the numeric.Arithmetic operations for the engine's numeric type.
	Ops() numeric.Arithmetic[T]

	// --- Constructors ---

	// NewFromData creates a tensor from caller-supplied data.
	NewFromData(ctx context.Context, shape []int, data []T) (*tensor.TensorNumeric[T], error)
	// NewRandom creates a tensor filled with values drawn uniformly from [minVal, maxVal).
	NewRandom(ctx context.Context, shape []int, minVal, maxVal T) (*tensor.TensorNumeric[T], error)
	// NewZeros creates a zero-filled tensor of the given shape.
	NewZeros(ctx context.Context, shape []int) (*tensor.TensorNumeric[T], error)
	// NewOnes creates a one-filled tensor of the given shape.
	NewOnes(ctx context.Context, shape []int) (*tensor.TensorNumeric[T], error)
	// NewEmpty creates an uninitialized tensor of the given shape.
	NewEmpty(ctx context.Context, shape []int) (*tensor.TensorNumeric[T], error)
	// NewArange creates a rank-1 tensor holding the half-open range [start, end).
	NewArange(ctx context.Context, start, end T) (*tensor.TensorNumeric[T], error)

	// ToDevice moves (or, on a single-device backend, copies) a tensor to the named device.
	ToDevice(ctx context.Context, a *tensor.TensorNumeric[T], device string) (*tensor.TensorNumeric[T], error)
	// Detach returns a tensor with the same values as a, severed from any tape bookkeeping above this engine.
	Detach(ctx context.Context, a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// UnaryOp applies a unary function `op` to each element of tensor `a`.
	// It returns a new tensor with the results.
	// Returns an error if the input tensor is nil.
	UnaryOp(ctx context.Context, a *tensor.TensorNumeric[T], op func(T) T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Add performs element-wise addition of two tensors, with support for broadcasting.
	Add(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Sub performs element-wise subtraction of two tensors, with support for broadcasting.
	Sub(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Mul performs element-wise multiplication of two tensors, with support for broadcasting.
	Mul(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Div performs element-wise division of two tensors, with support for broadcasting.
	Div(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Neg negates every element of a tensor.
	Neg(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// MatMul performs matrix multiplication of two tensors.
	MatMul(ctx context.Context, a, b *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Transpose transposes a tensor along the given axes.
	Transpose(ctx context.Context, a *tensor.TensorNumeric[T], axes []int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// SwapDims exchanges two axes of a tensor, leaving the rest untouched.
	SwapDims(ctx context.Context, a *tensor.TensorNumeric[T], dim0, dim1 int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Reshape changes the shape of a tensor without changing its data.
	Reshape(ctx context.Context, a *tensor.TensorNumeric[T], shape []int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Sum calculates the sum of elements along a specified axis.
	Sum(ctx context.Context, a *tensor.TensorNumeric[T], axis int, keepDims bool, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// ReduceSum is an alias of Sum kept for the backend contract's naming.
	ReduceSum(ctx context.Context, a *tensor.TensorNumeric[T], axis int, keepDims bool, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// ReduceMean calculates the mean of elements along a specified axis.
	ReduceMean(ctx context.Context, a *tensor.TensorNumeric[T], axis int, keepDims bool, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// ArgMax returns the index of the maximum element along an axis.
	ArgMax(ctx context.Context, a *tensor.TensorNumeric[T], axis int) (*tensor.TensorNumeric[int], error)
	// ArgMin returns the index of the minimum element along an axis.
	ArgMin(ctx context.Context, a *tensor.TensorNumeric[T], axis int) (*tensor.TensorNumeric[int], error)

	// Exp computes the element-wise exponential of a tensor.
	Exp(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Log computes the element-wise natural logarithm of a tensor.
	Log(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Log1p computes the element-wise log(1+x) of a tensor.
	Log1p(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Pow raises each element of a tensor to the power of the corresponding element in another tensor.
	Pow(ctx context.Context, base, exponent *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Powf raises each element of a tensor to a fixed scalar power.
	Powf(ctx context.Context, a *tensor.TensorNumeric[T], p float64, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Sqrt computes the element-wise square root of a tensor.
	Sqrt(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Rsqrt computes the element-wise reciprocal square root of a tensor.
	Rsqrt(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Sin computes the element-wise sine of a tensor.
	Sin(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Cos computes the element-wise cosine of a tensor.
	Cos(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Tanh computes the element-wise hyperbolic tangent of a tensor.
	Tanh(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Erf computes the element-wise error function of a tensor.
	Erf(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Relu computes the element-wise rectified linear unit of a tensor.
	Relu(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Zero sets all elements of a tensor to zero.
	Zero(ctx context.Context, a *tensor.TensorNumeric[T]) error
	// Zeros fills the tensor with zeros. If a shape is provided, the tensor is reallocated to that shape.
	Zeros(ctx context.Context, a *tensor.TensorNumeric[T], shape []int) error
	// Copy copies the data from one tensor to another.
	Copy(ctx context.Context, dst, src *tensor.TensorNumeric[T]) error

	// Gather performs a row gather over a 2-D [vocab, dim] params table: output[i, :] = params[indices[i], :].
	Gather(ctx context.Context, params *tensor.TensorNumeric[T], indices *tensor.TensorNumeric[int], output *tensor.TensorNumeric[T]) error
	// ScatterAdd performs a row scatter-add into a 2-D [vocab, dim] dst table: dst[indices[i], :] += src[i, :].
	ScatterAdd(ctx context.Context, dst *tensor.TensorNumeric[T], indices *tensor.TensorNumeric[int], src *tensor.TensorNumeric[T]) error

	// Index slices a tensor by a set of per-dimension [start, end) ranges.
	Index(ctx context.Context, a *tensor.TensorNumeric[T], ranges [][2]int) (*tensor.TensorNumeric[T], error)
	// IndexAssign returns a copy of a with the sliced region overwritten by v.
	IndexAssign(ctx context.Context, a *tensor.TensorNumeric[T], ranges [][2]int, v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// IndexSelect gathers along the leading axis of a rank-1 or rank-2 tensor by an integer index tensor.
	IndexSelect(ctx context.Context, a *tensor.TensorNumeric[T], idx *tensor.TensorNumeric[int]) (*tensor.TensorNumeric[T], error)
	// IndexSelectAssign scatter-adds v into a copy of a at the positions named by idx.
	IndexSelectAssign(ctx context.Context, a *tensor.TensorNumeric[T], idx *tensor.TensorNumeric[int], v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// IndexSelectDim gathers along a single named dimension.
	IndexSelectDim(ctx context.Context, a *tensor.TensorNumeric[T], dim int, idx *tensor.TensorNumeric[int]) (*tensor.TensorNumeric[T], error)
	// IndexSelectDimAssign scatter-adds v into a copy of a along a single named dimension.
	IndexSelectDimAssign(ctx context.Context, a *tensor.TensorNumeric[T], dim int, idx *tensor.TensorNumeric[int], v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// MaskFill returns a copy of a with value written wherever mask is true.
	MaskFill(ctx context.Context, a *tensor.TensorNumeric[T], mask *tensor.BoolTensor, value T) (*tensor.TensorNumeric[T], error)
	// MaskScatter returns a tensor taking elements from v wherever mask is true, else from a.
	MaskScatter(ctx context.Context, a *tensor.TensorNumeric[T], mask *tensor.BoolTensor, v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Equal, Greater, GreaterEqual, Lower, LowerEqual compare two tensors element-wise.
	Equal(ctx context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error)
	Greater(ctx context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error)
	GreaterEqual(ctx context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error)
	Lower(ctx context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error)
	LowerEqual(ctx context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error)
	// EqualScalar, GreaterScalar, GreaterEqualScalar, LowerScalar, LowerEqualScalar compare a tensor against a scalar.
	EqualScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error)
	GreaterScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error)
	GreaterEqualScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error)
	LowerScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error)
	LowerEqualScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error)

	// RandomUniform fills the tensor with random values from a uniform distribution.
	RandomUniform(ctx context.Context, t *tensor.TensorNumeric[T], minVal, maxVal T) error
	// Fill fills the tensor with a scalar value.
	Fill(ctx context.Context, t *tensor.TensorNumeric[T], value T) error

	// MulScalar performs element-wise multiplication of a tensor by a scalar.
	MulScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// DivScalar performs element-wise division of a tensor by a scalar.
	DivScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// AddScalar performs element-wise addition of a tensor by a scalar.
	AddScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// SubScalar performs element-wise subtraction of a scalar from a tensor.
	SubScalar(ctx context.Context, a *tensor.TensorNumeric[T], scalar T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Softmax applies the softmax function to a tensor along a given axis.
	Softmax(ctx context.Context, a *tensor.TensorNumeric[T], axis int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Split splits a tensor into multiple tensors along a given axis.
	Split(ctx context.Context, a *tensor.TensorNumeric[T], numSplits int, axis int) ([]*tensor.TensorNumeric[T], error)
	// Concat (the backend contract's "cat") concatenates tensors along a given axis.
	Concat(ctx context.Context, tensors []*tensor.TensorNumeric[T], axis int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// Repeat repeats the input tensor along a given axis a specified number of times.
	Repeat(ctx context.Context, a *tensor.TensorNumeric[T], axis int, repetitions int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// OneHot creates a one-hot encoding of the input tensor.
	OneHot(ctx context.Context, input *tensor.TensorNumeric[int], depth int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)

	// Conv2D performs a valid (no padding), unit-stride 2D convolution over an
	// NCHW input with a (outC, inC, kH, kW) kernel.
	Conv2D(ctx context.Context, input, kernel *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
	// MaxPool2D performs 2D max pooling over an NCHW input.
	MaxPool2D(ctx context.Context, input *tensor.TensorNumeric[T], kH, kW, strideH, strideW int) (*tensor.TensorNumeric[T], error)
	// MaxPool2DWithIndices performs 2D max pooling and additionally returns the
	// flat index, within each pooling window, that the maximum was read from.
	MaxPool2DWithIndices(ctx context.Context, input *tensor.TensorNumeric[T], kH, kW, strideH, strideW int) (*tensor.TensorNumeric[T], *tensor.TensorNumeric[int], error)
}
