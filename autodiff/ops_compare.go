package autodiff

import (
	"context"

	"github.com/zerfoo/gradcore/tensor"
)

// Equal, Greater, GreaterEqual, Lower, and LowerEqual are pass-through
// comparisons: their outputs are discrete booleans, never differentiable,
// so they return *tensor.BoolTensor directly rather than a tracked Tensor.

func (t *Tensor[T]) Equal(other *Tensor[T]) (*tensor.BoolTensor, error) {
	return t.engine.Equal(context.Background(), t.primitive, other.primitive)
}

func (t *Tensor[T]) Greater(other *Tensor[T]) (*tensor.BoolTensor, error) {
	return t.engine.Greater(context.Background(), t.primitive, other.primitive)
}

func (t *Tensor[T]) GreaterEqual(other *Tensor[T]) (*tensor.BoolTensor, error) {
	return t.engine.GreaterEqual(context.Background(), t.primitive, other.primitive)
}

func (t *Tensor[T]) Lower(other *Tensor[T]) (*tensor.BoolTensor, error) {
	return t.engine.Lower(context.Background(), t.primitive, other.primitive)
}

func (t *Tensor[T]) LowerEqual(other *Tensor[T]) (*tensor.BoolTensor, error) {
	return t.engine.LowerEqual(context.Background(), t.primitive, other.primitive)
}

func (t *Tensor[T]) EqualScalar(scalar T) (*tensor.BoolTensor, error) {
	return t.engine.EqualScalar(context.Background(), t.primitive, scalar)
}

func (t *Tensor[T]) GreaterScalar(scalar T) (*tensor.BoolTensor, error) {
	return t.engine.GreaterScalar(context.Background(), t.primitive, scalar)
}

func (t *Tensor[T]) GreaterEqualScalar(scalar T) (*tensor.BoolTensor, error) {
	return t.engine.GreaterEqualScalar(context.Background(), t.primitive, scalar)
}

func (t *Tensor[T]) LowerScalar(scalar T) (*tensor.BoolTensor, error) {
	return t.engine.LowerScalar(context.Background(), t.primitive, scalar)
}

func (t *Tensor[T]) LowerEqualScalar(scalar T) (*tensor.BoolTensor, error) {
	return t.engine.LowerEqualScalar(context.Background(), t.primitive, scalar)
}
