package compute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/zerfoo/gradcore/tensor"
)

// --- Constructors ---

// NewFromData creates a tensor from caller-supplied data.
func (e *CPUEngine[T]) NewFromData(_ context.Context, shape []int, data []T) (*tensor.TensorNumeric[T], error) {
	return tensor.New[T](shape, data)
}

// NewZeros creates a zero-filled tensor of the given shape.
func (e *CPUEngine[T]) NewZeros(_ context.Context, shape []int) (*tensor.TensorNumeric[T], error) {
	return tensor.New[T](shape, nil)
}

// NewOnes creates a one-filled tensor of the given shape.
func (e *CPUEngine[T]) NewOnes(_ context.Context, shape []int) (*tensor.TensorNumeric[T], error) {
	t, err := tensor.New[T](shape, nil)
	if err != nil {
		return nil, err
	}
	one := e.ops.FromFloat64(1)
	data := t.Data()
	for i := range data {
		data[i] = one
	}

	return t, nil
}

// NewEmpty creates an uninitialized tensor of the given shape.
func (e *CPUEngine[T]) NewEmpty(_ context.Context, shape []int) (*tensor.TensorNumeric[T], error) {
	return tensor.New[T](shape, nil)
}

// NewArange creates a rank-1 tensor holding the half-open range [start, end).
func (e *CPUEngine[T]) NewArange(_ context.Context, start, end T) (*tensor.TensorNumeric[T], error) {
	startF := numericToFloat64(start)
	endF := numericToFloat64(end)
	if endF < startF {
		return nil, errors.New("arange: end must be >= start")
	}

	n := int(endF - startF)
	data := make([]T, n)
	var zero T
	for i := range n {
		data[i] = float64ToNumeric(startF+float64(i), zero)
	}

	return tensor.New[T]([]int{n}, data)
}

// NewRandom creates a tensor filled with values drawn uniformly from [minVal, maxVal).
func (e *CPUEngine[T]) NewRandom(ctx context.Context, shape []int, minVal, maxVal T) (*tensor.TensorNumeric[T], error) {
	t, err := tensor.New[T](shape, nil)
	if err != nil {
		return nil, err
	}
	if err := e.RandomUniform(ctx, t, minVal, maxVal); err != nil {
		return nil, err
	}

	return t, nil
}

// ToDevice is a CPU-only passthrough: the engine already operates on host
// memory, so moving a tensor "to a device" just returns a copy. Multi-device
// backends would reallocate against the target device's allocator here.
func (e *CPUEngine[T]) ToDevice(_ context.Context, a *tensor.TensorNumeric[T], _ string) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}

	return a.Copy(), nil
}

// Detach returns a tensor holding the same values as a, severed from any
// tape bookkeeping a caller above this engine might be tracking. At the
// backend level this is a plain copy; the autodiff decorator is what gives
// Detach its graph-severing meaning.
func (e *CPUEngine[T]) Detach(_ context.Context, a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}

	return a.Copy(), nil
}

// SubScalar performs element-wise subtraction of a scalar from a tensor.
func (e *CPUEngine[T]) SubScalar(_ context.Context, a *tensor.TensorNumeric[T], scalar T, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	result, err := e.getOrCreateDest(a.Shape(), dst...)
	if err != nil {
		return nil, err
	}
	aData := a.Data()
	rData := result.Data()
	for i := range aData {
		rData[i] = e.ops.Sub(aData[i], scalar)
	}

	return result, nil
}

// --- Shape manipulation ---

// SwapDims exchanges two axes of a tensor, leaving the rest untouched.
func (e *CPUEngine[T]) SwapDims(ctx context.Context, a *tensor.TensorNumeric[T], dim0, dim1 int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	dims := a.Dims()
	if dim0 < 0 || dim0 >= dims || dim1 < 0 || dim1 >= dims {
		return nil, fmt.Errorf("swap_dims: axis out of bounds for tensor with %d dimensions", dims)
	}

	axes := make([]int, dims)
	for i := range axes {
		axes[i] = i
	}
	axes[dim0], axes[dim1] = axes[dim1], axes[dim0]

	return e.Transpose(ctx, a, axes, dst...)
}

// Neg negates every element of a tensor.
func (e *CPUEngine[T]) Neg(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	zero := e.ops.FromFloat64(0)

	return e.UnaryOp(ctx, a, func(v T) T { return e.ops.Sub(zero, v) }, dst...)
}

// --- Transcendentals ---

// Sin computes the element-wise sine of a tensor.
func (e *CPUEngine[T]) Sin(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	var zero T

	return e.UnaryOp(ctx, a, func(v T) T {
		return float64ToNumeric(math.Sin(numericToFloat64(v)), zero)
	}, dst...)
}

// Cos computes the element-wise cosine of a tensor.
func (e *CPUEngine[T]) Cos(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	var zero T

	return e.UnaryOp(ctx, a, func(v T) T {
		return float64ToNumeric(math.Cos(numericToFloat64(v)), zero)
	}, dst...)
}

// Tanh computes the element-wise hyperbolic tangent of a tensor.
func (e *CPUEngine[T]) Tanh(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return e.UnaryOp(ctx, a, e.ops.Tanh, dst...)
}

// Erf computes the element-wise error function of a tensor, the exact
// building block burn's backend contract uses for GELU.
func (e *CPUEngine[T]) Erf(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	var zero T

	return e.UnaryOp(ctx, a, func(v T) T {
		return float64ToNumeric(math.Erf(numericToFloat64(v)), zero)
	}, dst...)
}

// Log1p computes the element-wise log(1+x) of a tensor.
func (e *CPUEngine[T]) Log1p(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	var zero T

	return e.UnaryOp(ctx, a, func(v T) T {
		return float64ToNumeric(math.Log1p(numericToFloat64(v)), zero)
	}, dst...)
}

// Powf raises each element of a tensor to a fixed scalar power.
func (e *CPUEngine[T]) Powf(ctx context.Context, a *tensor.TensorNumeric[T], p float64, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	var zero T

	return e.UnaryOp(ctx, a, func(v T) T {
		return float64ToNumeric(math.Pow(numericToFloat64(v), p), zero)
	}, dst...)
}

// Relu computes the element-wise rectified linear unit of a tensor.
func (e *CPUEngine[T]) Relu(ctx context.Context, a *tensor.TensorNumeric[T], dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return e.UnaryOp(ctx, a, e.ops.ReLU, dst...)
}

// --- Indexing ---

// Index slices a tensor by a set of per-dimension [start, end) ranges,
// returning an independent copy (not a view) so callers can mutate the
// result without aliasing the source.
func (e *CPUEngine[T]) Index(_ context.Context, a *tensor.TensorNumeric[T], ranges [][2]int) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	view, err := a.Slice(ranges...)
	if err != nil {
		return nil, err
	}

	return view.Copy(), nil
}

// IndexAssign returns a copy of a with the sliced region overwritten by v.
func (e *CPUEngine[T]) IndexAssign(_ context.Context, a *tensor.TensorNumeric[T], ranges [][2]int, v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || v == nil {
		return nil, errors.New("inputs cannot be nil")
	}

	result := a.Copy()
	shape := result.Shape()

	full := make([][2]int, len(shape))
	for i, dim := range shape {
		full[i] = [2]int{0, dim}
	}
	copy(full, ranges)

	vData := v.Data()
	writeIdx := 0
	var walk func(dim int, offset int)
	strides := result.Strides()
	data := result.Data()
	walk = func(dim int, offset int) {
		if dim == len(shape) {
			data[offset] = vData[writeIdx]
			writeIdx++

			return
		}
		for i := full[dim][0]; i < full[dim][1]; i++ {
			walk(dim+1, offset+i*strides[dim])
		}
	}
	walk(0, 0)

	return result, nil
}

// IndexSelect gathers along the tensor's leading axis by an integer index
// tensor: rows of a rank-2 table through the engine's embedding-style Gather
// primitive, single elements of a rank-1 tensor through IndexSelectDim.
func (e *CPUEngine[T]) IndexSelect(ctx context.Context, a *tensor.TensorNumeric[T], idx *tensor.TensorNumeric[int]) (*tensor.TensorNumeric[T], error) {
	if a == nil || idx == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	shape := a.Shape()
	if len(shape) == 1 {
		return e.IndexSelectDim(ctx, a, 0, idx)
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("index_select: expected a 1D tensor or a 2D tensor [rows, dim], got %v", shape)
	}
	out, err := tensor.New[T](append(idx.Shape(), shape[1]), nil)
	if err != nil {
		return nil, err
	}
	if err := e.Gather(ctx, a, idx, out); err != nil {
		return nil, err
	}

	return out, nil
}

// IndexSelectAssign scatter-adds v into a copy of a at the positions named
// by idx, reusing the engine's ScatterAdd primitive for a rank-2 table and
// IndexSelectDimAssign for a rank-1 tensor.
func (e *CPUEngine[T]) IndexSelectAssign(ctx context.Context, a *tensor.TensorNumeric[T], idx *tensor.TensorNumeric[int], v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || idx == nil || v == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	if a.Dims() == 1 {
		return e.IndexSelectDimAssign(ctx, a, 0, idx, v)
	}
	result := a.Copy()
	if err := e.ScatterAdd(ctx, result, idx, v); err != nil {
		return nil, err
	}

	return result, nil
}

// IndexSelectDim gathers along a single named dimension of a tensor of any
// rank, unlike IndexSelect which always gathers along the leading axis and
// accepts only rank-1 tensors and rank-2 embedding tables.
func (e *CPUEngine[T]) IndexSelectDim(_ context.Context, a *tensor.TensorNumeric[T], dim int, idx *tensor.TensorNumeric[int]) (*tensor.TensorNumeric[T], error) {
	if a == nil || idx == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	shape := a.Shape()
	if dim < 0 || dim >= len(shape) {
		return nil, fmt.Errorf("index_select_dim: axis %d out of bounds for tensor with %d dimensions", dim, len(shape))
	}

	idxData := idx.Data()
	outShape := make([]int, len(shape))
	copy(outShape, shape)
	outShape[dim] = len(idxData)

	out, err := tensor.New[T](outShape, nil)
	if err != nil {
		return nil, err
	}

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	aData := a.Data()
	oData := out.Data()
	for o := 0; o < outer; o++ {
		for j, srcIdx := range idxData {
			if srcIdx < 0 || srcIdx >= shape[dim] {
				return nil, fmt.Errorf("index_select_dim: index %d out of bounds [0,%d)", srcIdx, shape[dim])
			}
			srcStart := o*shape[dim]*inner + srcIdx*inner
			dstStart := o*len(idxData)*inner + j*inner
			copy(oData[dstStart:dstStart+inner], aData[srcStart:srcStart+inner])
		}
	}

	return out, nil
}

// IndexSelectDimAssign scatter-adds v into a copy of a along a single named
// dimension.
func (e *CPUEngine[T]) IndexSelectDimAssign(_ context.Context, a *tensor.TensorNumeric[T], dim int, idx *tensor.TensorNumeric[int], v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || idx == nil || v == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	shape := a.Shape()
	if dim < 0 || dim >= len(shape) {
		return nil, fmt.Errorf("index_select_dim_assign: axis %d out of bounds for tensor with %d dimensions", dim, len(shape))
	}

	result := a.Copy()
	idxData := idx.Data()

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	rData := result.Data()
	vData := v.Data()
	for o := 0; o < outer; o++ {
		for j, dstIdx := range idxData {
			if dstIdx < 0 || dstIdx >= shape[dim] {
				return nil, fmt.Errorf("index_select_dim_assign: index %d out of bounds [0,%d)", dstIdx, shape[dim])
			}
			dstStart := o*shape[dim]*inner + dstIdx*inner
			srcStart := o*len(idxData)*inner + j*inner
			for k := 0; k < inner; k++ {
				rData[dstStart+k] = e.ops.Add(rData[dstStart+k], vData[srcStart+k])
			}
		}
	}

	return result, nil
}

// MaskFill returns a copy of a with value written wherever mask is true.
func (e *CPUEngine[T]) MaskFill(_ context.Context, a *tensor.TensorNumeric[T], mask *tensor.BoolTensor, value T) (*tensor.TensorNumeric[T], error) {
	if a == nil || mask == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	if mask.Size() != a.Size() {
		return nil, fmt.Errorf("mask_fill: mask size %d does not match tensor size %d", mask.Size(), a.Size())
	}
	result := a.Copy()
	data := result.Data()
	maskData := mask.Data()
	for i, m := range maskData {
		if m {
			data[i] = value
		}
	}

	return result, nil
}

// MaskScatter returns a tensor taking elements from v wherever mask is true,
// else from a.
func (e *CPUEngine[T]) MaskScatter(_ context.Context, a *tensor.TensorNumeric[T], mask *tensor.BoolTensor, v *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if a == nil || mask == nil || v == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	if mask.Size() != a.Size() || v.Size() != a.Size() {
		return nil, errors.New("mask_scatter: mask and source tensor sizes must match the destination")
	}
	result := a.Copy()
	data := result.Data()
	vData := v.Data()
	maskData := mask.Data()
	for i, m := range maskData {
		if m {
			data[i] = vData[i]
		}
	}

	return result, nil
}

// --- Comparisons ---

func (e *CPUEngine[T]) compare(a, b *tensor.TensorNumeric[T], pred func(x, y T) bool) (*tensor.BoolTensor, error) {
	if a == nil || b == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	outputShape, broadcastA, broadcastB, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	size := 1
	for _, d := range outputShape {
		size *= d
	}
	out := make([]bool, size)
	aData := a.Data()
	bData := b.Data()
	for i := range out {
		aIndex := tensor.BroadcastIndex(i, a.Shape(), outputShape, broadcastA)
		bIndex := tensor.BroadcastIndex(i, b.Shape(), outputShape, broadcastB)
		out[i] = pred(aData[aIndex], bData[bIndex])
	}

	return tensor.NewBool(outputShape, out)
}

func (e *CPUEngine[T]) compareScalar(a *tensor.TensorNumeric[T], scalar T, pred func(x, y T) bool) (*tensor.BoolTensor, error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	data := a.Data()
	out := make([]bool, len(data))
	for i, v := range data {
		out[i] = pred(v, scalar)
	}

	return tensor.NewBool(a.Shape(), out)
}

func (e *CPUEngine[T]) equal(x, y T) bool        { return e.ops.IsZero(e.ops.Sub(x, y)) }
func (e *CPUEngine[T]) greater(x, y T) bool      { return e.ops.GreaterThan(x, y) }
func (e *CPUEngine[T]) greaterEqual(x, y T) bool { return !e.ops.GreaterThan(y, x) }
func (e *CPUEngine[T]) lower(x, y T) bool        { return e.ops.GreaterThan(y, x) }
func (e *CPUEngine[T]) lowerEqual(x, y T) bool   { return !e.ops.GreaterThan(x, y) }

// Equal reports element-wise equality between two tensors.
func (e *CPUEngine[T]) Equal(_ context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error) {
	return e.compare(a, b, e.equal)
}

// Greater reports element-wise a > b.
func (e *CPUEngine[T]) Greater(_ context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error) {
	return e.compare(a, b, e.greater)
}

// GreaterEqual reports element-wise a >= b.
func (e *CPUEngine[T]) GreaterEqual(_ context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error) {
	return e.compare(a, b, e.greaterEqual)
}

// Lower reports element-wise a < b.
func (e *CPUEngine[T]) Lower(_ context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error) {
	return e.compare(a, b, e.lower)
}

// LowerEqual reports element-wise a <= b.
func (e *CPUEngine[T]) LowerEqual(_ context.Context, a, b *tensor.TensorNumeric[T]) (*tensor.BoolTensor, error) {
	return e.compare(a, b, e.lowerEqual)
}

// EqualScalar reports element-wise a == scalar.
func (e *CPUEngine[T]) EqualScalar(_ context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error) {
	return e.compareScalar(a, scalar, e.equal)
}

// GreaterScalar reports element-wise a > scalar.
func (e *CPUEngine[T]) GreaterScalar(_ context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error) {
	return e.compareScalar(a, scalar, e.greater)
}

// GreaterEqualScalar reports element-wise a >= scalar.
func (e *CPUEngine[T]) GreaterEqualScalar(_ context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error) {
	return e.compareScalar(a, scalar, e.greaterEqual)
}

// LowerScalar reports element-wise a < scalar.
func (e *CPUEngine[T]) LowerScalar(_ context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error) {
	return e.compareScalar(a, scalar, e.lower)
}

// LowerEqualScalar reports element-wise a <= scalar.
func (e *CPUEngine[T]) LowerEqualScalar(_ context.Context, a *tensor.TensorNumeric[T], scalar T) (*tensor.BoolTensor, error) {
	return e.compareScalar(a, scalar, e.lowerEqual)
}

// --- Reductions returning index tensors ---

func (e *CPUEngine[T]) argExtreme(a *tensor.TensorNumeric[T], axis int, better func(candidate, best T) bool) (*tensor.TensorNumeric[int], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	shape := a.Shape()
	if axis < 0 || axis >= len(shape) {
		return nil, fmt.Errorf("axis %d is out of bounds for tensor with %d dimensions", axis, len(shape))
	}

	outShape := make([]int, 0, len(shape)-1)
	for i, dim := range shape {
		if i != axis {
			outShape = append(outShape, dim)
		}
	}
	if len(outShape) == 0 {
		outShape = []int{1}
	}

	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	axisLen := shape[axis]

	out, err := tensor.New[int](outShape, nil)
	if err != nil {
		return nil, err
	}
	outData := out.Data()
	aData := a.Data()

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			bestIdx := 0
			best := aData[o*axisLen*inner+in]
			for k := 1; k < axisLen; k++ {
				candidate := aData[o*axisLen*inner+k*inner+in]
				if better(candidate, best) {
					best = candidate
					bestIdx = k
				}
			}
			outData[o*inner+in] = bestIdx
		}
	}

	return out, nil
}

// ArgMax returns the index of the maximum element along an axis.
func (e *CPUEngine[T]) ArgMax(_ context.Context, a *tensor.TensorNumeric[T], axis int) (*tensor.TensorNumeric[int], error) {
	return e.argExtreme(a, axis, e.ops.GreaterThan)
}

// ArgMin returns the index of the minimum element along an axis.
func (e *CPUEngine[T]) ArgMin(_ context.Context, a *tensor.TensorNumeric[T], axis int) (*tensor.TensorNumeric[int], error) {
	return e.argExtreme(a, axis, func(candidate, best T) bool { return e.ops.GreaterThan(best, candidate) })
}

// --- Neural-net primitives ---

// Conv2D performs a valid (no padding), unit-stride 2D convolution over an
// NCHW input with an (outC, inC, kH, kW) kernel. Out-of-core scope per the
// expanded spec, but given a concrete body so the backend contract is
// exercisable end to end.
func (e *CPUEngine[T]) Conv2D(_ context.Context, input, kernel *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if input == nil || kernel == nil {
		return nil, errors.New("inputs cannot be nil")
	}
	inShape := input.Shape()
	kShape := kernel.Shape()
	if len(inShape) != 4 || len(kShape) != 4 {
		return nil, errors.New("conv2d: input and kernel must both be rank 4 (NCHW / outC,inC,kH,kW)")
	}
	n, cIn, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	cOut, kCIn, kH, kW := kShape[0], kShape[1], kShape[2], kShape[3]
	if cIn != kCIn {
		return nil, fmt.Errorf("conv2d: input channels %d must match kernel input channels %d", cIn, kCIn)
	}
	outH := h - kH + 1
	outW := w - kW + 1
	if outH <= 0 || outW <= 0 {
		return nil, errors.New("conv2d: kernel larger than input")
	}

	out, err := tensor.New[T]([]int{n, cOut, outH, outW}, nil)
	if err != nil {
		return nil, err
	}

	inData := input.Data()
	kData := kernel.Data()
	outData := out.Data()

	for ni := 0; ni < n; ni++ {
		for oc := 0; oc < cOut; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					acc := e.ops.FromFloat64(0)
					for ic := 0; ic < cIn; ic++ {
						for kh := 0; kh < kH; kh++ {
							for kw := 0; kw < kW; kw++ {
								inIdx := ((ni*cIn+ic)*h+(oh+kh))*w + (ow + kw)
								kIdx := ((oc*kCIn+ic)*kH+kh)*kW + kw
								acc = e.ops.Add(acc, e.ops.Mul(inData[inIdx], kData[kIdx]))
							}
						}
					}
					outIdx := ((ni*cOut+oc)*outH+oh)*outW + ow
					outData[outIdx] = acc
				}
			}
		}
	}

	return out, nil
}

func (e *CPUEngine[T]) maxPool2D(input *tensor.TensorNumeric[T], kH, kW, strideH, strideW int, wantIndices bool) (*tensor.TensorNumeric[T], *tensor.TensorNumeric[int], error) {
	if input == nil {
		return nil, nil, errors.New("input tensor cannot be nil")
	}
	inShape := input.Shape()
	if len(inShape) != 4 {
		return nil, nil, errors.New("max_pool2d: input must be rank 4 (NCHW)")
	}
	n, c, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	if strideH <= 0 || strideW <= 0 {
		return nil, nil, errors.New("max_pool2d: strides must be positive")
	}
	outH := (h-kH)/strideH + 1
	outW := (w-kW)/strideW + 1
	if outH <= 0 || outW <= 0 {
		return nil, nil, errors.New("max_pool2d: window larger than input")
	}

	out, err := tensor.New[T]([]int{n, c, outH, outW}, nil)
	if err != nil {
		return nil, nil, err
	}
	var idxOut *tensor.TensorNumeric[int]
	if wantIndices {
		idxOut, err = tensor.New[int]([]int{n, c, outH, outW}, nil)
		if err != nil {
			return nil, nil, err
		}
	}

	inData := input.Data()
	outData := out.Data()

	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					baseH := oh * strideH
					baseW := ow * strideW
					bestIdx := 0
					best := inData[((ni*c+ci)*h+baseH)*w+baseW]
					for kh := 0; kh < kH; kh++ {
						for kw := 0; kw < kW; kw++ {
							flat := kh*kW + kw
							v := inData[((ni*c+ci)*h+baseH+kh)*w+baseW+kw]
							if e.ops.GreaterThan(v, best) {
								best = v
								bestIdx = flat
							}
						}
					}
					outIdx := ((ni*c+ci)*outH+oh)*outW + ow
					outData[outIdx] = best
					if wantIndices {
						idxOut.Data()[outIdx] = bestIdx
					}
				}
			}
		}
	}

	return out, idxOut, nil
}

// MaxPool2D performs 2D max pooling over an NCHW input.
func (e *CPUEngine[T]) MaxPool2D(_ context.Context, input *tensor.TensorNumeric[T], kH, kW, strideH, strideW int) (*tensor.TensorNumeric[T], error) {
	out, _, err := e.maxPool2D(input, kH, kW, strideH, strideW, false)

	return out, err
}

// MaxPool2DWithIndices performs 2D max pooling and additionally returns the
// flat index, within each pooling window, that the maximum was read from.
func (e *CPUEngine[T]) MaxPool2DWithIndices(_ context.Context, input *tensor.TensorNumeric[T], kH, kW, strideH, strideW int) (*tensor.TensorNumeric[T], *tensor.TensorNumeric[int], error) {
	return e.maxPool2D(input, kH, kW, strideH, strideW, true)
}

// --- Precision conversion ---
//
// ToFullPrecision and FromFullPrecision cross the T <-> float32 type
// parameter boundary, which a method on Engine[T] cannot do (a method
// can't introduce its own type parameter), so both are free functions.

// ToFullPrecision casts every element of a reduced-precision tensor up to
// float32, the adjoint pair named in the backend contract's precision-cast
// primitives.
func ToFullPrecision[T tensor.Numeric](a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[float32], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	data := a.Data()
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(numericToFloat64(v))
	}

	return tensor.New[float32](a.Shape(), out)
}

// FromFullPrecision casts a float32 tensor down to the reduced-precision
// element type T.
func FromFullPrecision[T tensor.Numeric](a *tensor.TensorNumeric[float32]) (*tensor.TensorNumeric[T], error) {
	if a == nil {
		return nil, errors.New("input tensor cannot be nil")
	}
	var zero T
	data := a.Data()
	out := make([]T, len(data))
	for i, v := range data {
		out[i] = float64ToNumeric(float64(v), zero)
	}

	return tensor.New[T](a.Shape(), out)
}

// Seed sets the seed for the process-wide RNG source used by RandomUniform.
// Without a Seed call, the source starts from a fixed default and every run
// draws the same sequence; call Seed to get a fresh, reproducible sequence
// of your own choosing.
func Seed(seed uint64) {
	globalRand = rand.New(rand.NewSource(int64(seed))) //nolint:gosec // deterministic seeding is the point of this call
}

var globalRand = rand.New(rand.NewSource(1)) //nolint:gosec // replaced by Seed for reproducible runs

// Cat concatenates tensors along a given axis. It is an alias for Concat,
// matching the backend contract's "cat" naming.
func (e *CPUEngine[T]) Cat(ctx context.Context, tensors []*tensor.TensorNumeric[T], axis int, dst ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return e.Concat(ctx, tensors, axis, dst...)
}
