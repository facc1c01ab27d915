package autodiff

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// MatMul implements matmul(a,b) over the trailing two axes (batched: leading
// axes broadcast): ∂a = g·bᵀ, ∂b = aᵀ·g, transposing only the trailing pair.
func (t *Tensor[T]) MatMul(other *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.MatMul(context.Background(), t.primitive, other.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, other.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine
	aVal, bVal := t.primitive, other.primitive

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: t.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				bTransposed, err := swapLastTwo(ctx, engine, bVal)
				if err != nil {
					return nil, err
				}

				return engine.MatMul(ctx, grad, bTransposed)
			},
		})
	}
	if other.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: other.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				aTransposed, err := swapLastTwo(ctx, engine, aVal)
				if err != nil {
					return nil, err
				}

				return engine.MatMul(ctx, aTransposed, grad)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, other.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(other.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

func swapLastTwo[T tensor.Numeric](ctx context.Context, engine compute.Engine[T], a *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	ndim := len(a.Shape())

	return engine.SwapDims(ctx, a, ndim-2, ndim-1)
}

// SwapDims implements swap_dims(a,i,j): ∂a = swap_dims(g,j,i) — swapping the
// same two axes back undoes the permutation.
func (t *Tensor[T]) SwapDims(dim0, dim1 int) (*Tensor[T], error) {
	primitive, err := t.engine.SwapDims(context.Background(), t.primitive, dim0, dim1)
	if err != nil {
		return nil, err
	}

	engine := t.engine

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.SwapDims(ctx, grad, dim1, dim0)
	})
}

// Transpose implements transpose(a,axes): ∂a = transpose(g, invert(axes)).
func (t *Tensor[T]) Transpose(axes []int) (*Tensor[T], error) {
	primitive, err := t.engine.Transpose(context.Background(), t.primitive, axes)
	if err != nil {
		return nil, err
	}

	engine := t.engine

	inverse := make([]int, len(axes))
	for i, axis := range axes {
		inverse[axis] = i
	}

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.Transpose(ctx, grad, inverse)
	})
}

// Reshape implements reshape(a,shape): ∂a = reshape(g, a.shape()).
func (t *Tensor[T]) Reshape(shape []int) (*Tensor[T], error) {
	primitive, err := t.engine.Reshape(context.Background(), t.primitive, shape)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalShape := t.primitive.Shape()

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.Reshape(ctx, grad, originalShape)
	})
}

// Repeat implements repeat(a,axis,n): ∂a = sum(g, axis, keepDims=true),
// since every repetition along axis receives the same upstream gradient.
func (t *Tensor[T]) Repeat(axis, repetitions int) (*Tensor[T], error) {
	primitive, err := t.engine.Repeat(context.Background(), t.primitive, axis, repetitions)
	if err != nil {
		return nil, err
	}

	engine := t.engine

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.Sum(ctx, grad, axis, true)
	})
}

// Cat implements cat([a0..an], axis): ∂aᵢ = index(g, the slice aᵢ occupied
// along axis) for every tracked operand; untracked operands contribute no
// target and so capture nothing.
func Cat[T tensor.Numeric](operands []*Tensor[T], axis int) (*Tensor[T], error) {
	engine := operands[0].engine

	primitives := make([]*tensor.TensorNumeric[T], len(operands))
	for i, operand := range operands {
		primitives[i] = operand.primitive
	}

	primitive, err := engine.Concat(context.Background(), primitives, axis)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, len(operands))
	for i, operand := range operands {
		nodes[i] = operand.node
	}

	requirement := joinRequirement(nodes...)
	if requirement == None {
		return operands[0].wrapUntracked(primitive), nil
	}

	ndim := len(primitive.Shape())

	var targets []gradTarget[T]

	offset := 0
	for _, operand := range operands {
		width := operand.primitive.Shape()[axis]
		if operand.node.IsTracked() {
			start, end := offset, offset+width
			targets = append(targets, gradTarget[T]{
				id: operand.node.id,
				compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
					ranges := make([][2]int, ndim)
					gradShape := grad.Shape()
					for d := 0; d < ndim; d++ {
						if d == axis {
							ranges[d] = [2]int{start, end}
						} else {
							ranges[d] = [2]int{0, gradShape[d]}
						}
					}

					return engine.Index(ctx, grad, ranges)
				},
			})
		}
		offset += width
	}

	node := newNode(requirement, trackedParents(nodes...)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)

	graph := NewGraph()
	for _, operand := range operands {
		graph = graph.Merge(operand.graph)
	}
	graph = graph.WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}
