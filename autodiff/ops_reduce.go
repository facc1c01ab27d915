package autodiff

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// Sum implements sum(a,axis,keepDims): ∂a = the output gradient broadcast
// back out along axis to a's original extent.
func (t *Tensor[T]) Sum(axis int, keepDims bool) (*Tensor[T], error) {
	primitive, err := t.engine.Sum(context.Background(), t.primitive, axis, keepDims)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalShape := t.primitive.Shape()
	width := originalShape[axis]

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		// A rank-1 input already reduces to shape [1], its kept-dims shape.
		return broadcastAlongAxis(ctx, engine, grad, axis, width, keepDims || len(originalShape) == 1)
	})
}

// Mean implements mean(a,axis,keepDims): ∂a = sum's adjoint scaled by 1/N,
// N being the size of the reduced axis.
func (t *Tensor[T]) Mean(axis int, keepDims bool) (*Tensor[T], error) {
	primitive, err := t.engine.ReduceMean(context.Background(), t.primitive, axis, keepDims)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalShape := t.primitive.Shape()
	width := originalShape[axis]

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		broadcast, err := broadcastAlongAxis(ctx, engine, grad, axis, width, keepDims || len(originalShape) == 1)
		if err != nil {
			return nil, err
		}

		var n T
		n = float64ToNumeric(float64(width), n)

		return engine.DivScalar(ctx, broadcast, n)
	})
}

// broadcastAlongAxis undoes a reduction over a single axis: it restores the
// size-1 placeholder (if the forward pass dropped it) then repeats the
// gradient out to width, the axis's original extent.
func broadcastAlongAxis[T tensor.Numeric](ctx context.Context, engine compute.Engine[T], grad *tensor.TensorNumeric[T], axis, width int, keepDims bool) (*tensor.TensorNumeric[T], error) {
	if !keepDims {
		gradShape := grad.Shape()
		unsqueezed := make([]int, len(gradShape)+1)
		copy(unsqueezed, gradShape[:axis])
		unsqueezed[axis] = 1
		copy(unsqueezed[axis+1:], gradShape[axis:])

		reshaped, err := engine.Reshape(ctx, grad, unsqueezed)
		if err != nil {
			return nil, err
		}

		grad = reshaped
	}

	if width == 1 {
		return grad, nil
	}

	return engine.Repeat(ctx, grad, axis, width)
}

// ArgMax implements argmax(a,axis): a plain index tensor with no gradient —
// the max index is a discrete, non-differentiable quantity.
func (t *Tensor[T]) ArgMax(axis int) (*tensor.TensorNumeric[int], error) {
	return t.engine.ArgMax(context.Background(), t.primitive, axis)
}

// ArgMin implements argmin(a,axis): see ArgMax.
func (t *Tensor[T]) ArgMin(axis int) (*tensor.TensorNumeric[int], error) {
	return t.engine.ArgMin(context.Background(), t.primitive, axis)
}
