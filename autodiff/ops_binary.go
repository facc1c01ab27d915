package autodiff

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// Add implements add(a,b): ∂a = g, ∂b = g (stateless fast path — no operand
// is captured; reduceGradToShape handles the case where a or b's shape was
// broadcast against the other).
func (t *Tensor[T]) Add(other *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.Add(context.Background(), t.primitive, other.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, other.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	aShape, bShape := t.primitive.Shape(), other.primitive.Shape()
	engine := t.engine

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{id: t.node.id, compute: reduceTo[T](engine, aShape)})
	}
	if other.node.IsTracked() {
		targets = append(targets, gradTarget[T]{id: other.node.id, compute: reduceTo[T](engine, bShape)})
	}

	node := newNode(requirement, trackedParents(t.node, other.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(other.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// Sub implements sub(a,b): ∂a = g, ∂b = −g.
func (t *Tensor[T]) Sub(other *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.Sub(context.Background(), t.primitive, other.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, other.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	aShape, bShape := t.primitive.Shape(), other.primitive.Shape()
	engine := t.engine

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{id: t.node.id, compute: reduceTo[T](engine, aShape)})
	}
	if other.node.IsTracked() {
		negThenReduce := func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
			negated, err := engine.Neg(ctx, grad)
			if err != nil {
				return nil, err
			}

			return reduceGradToShape(ctx, engine, negated, bShape)
		}
		targets = append(targets, gradTarget[T]{id: other.node.id, compute: negThenReduce})
	}

	node := newNode(requirement, trackedParents(t.node, other.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(other.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// Neg implements neg(a): ∂a = −g.
func (t *Tensor[T]) Neg() (*Tensor[T], error) {
	primitive, err := t.engine.Neg(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	if !t.node.IsTracked() {
		return t.wrapUntracked(primitive), nil
	}

	node := newNode(GradInBackward, trackedParents(t.node)...)
	step := newOpStep(t.engine, node, primitive.Shape(), gradTarget[T]{id: t.node.id, compute: negGrad[T](t.engine)})

	return &Tensor[T]{primitive: primitive, node: node, graph: t.graph.WithStep(step), engine: t.engine}, nil
}

// AddScalar implements add_scalar(a,s): ∂a = g.
func (t *Tensor[T]) AddScalar(scalar T) (*Tensor[T], error) {
	primitive, err := t.engine.AddScalar(context.Background(), t.primitive, scalar)
	if err != nil {
		return nil, err
	}

	return t.unaryStep(primitive, passGrad[T])
}

// SubScalar implements a constant-shifted subtraction: ∂a = g (s is a
// constant, so its partial is never tracked).
func (t *Tensor[T]) SubScalar(scalar T) (*Tensor[T], error) {
	primitive, err := t.engine.SubScalar(context.Background(), t.primitive, scalar)
	if err != nil {
		return nil, err
	}

	return t.unaryStep(primitive, passGrad[T])
}

// MulScalar implements mul_scalar(a,s): ∂a = s·g.
func (t *Tensor[T]) MulScalar(scalar T) (*Tensor[T], error) {
	primitive, err := t.engine.MulScalar(context.Background(), t.primitive, scalar)
	if err != nil {
		return nil, err
	}

	engine := t.engine

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.MulScalar(ctx, grad, scalar)
	})
}

// DivScalar implements div_scalar(a,s): ∂a = g/s.
func (t *Tensor[T]) DivScalar(scalar T) (*Tensor[T], error) {
	primitive, err := t.engine.DivScalar(context.Background(), t.primitive, scalar)
	if err != nil {
		return nil, err
	}

	engine := t.engine

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.DivScalar(ctx, grad, scalar)
	})
}

// Mul implements mul(a,b): ∂a = g·b, ∂b = g·a. Minimal state capture: b is
// only ever referenced by a's closure (needed iff a is tracked), and a only
// by b's closure (needed iff b is tracked) — each captured via ordinary Go
// closure semantics, no extra cloning required since tensors here are
// produced fresh and never mutated in place.
func (t *Tensor[T]) Mul(other *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.Mul(context.Background(), t.primitive, other.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, other.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine
	aVal, bVal := t.primitive, other.primitive
	aShape, bShape := aVal.Shape(), bVal.Shape()

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: t.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				product, err := engine.Mul(ctx, grad, bVal)
				if err != nil {
					return nil, err
				}

				return reduceGradToShape(ctx, engine, product, aShape)
			},
		})
	}
	if other.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: other.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				product, err := engine.Mul(ctx, grad, aVal)
				if err != nil {
					return nil, err
				}

				return reduceGradToShape(ctx, engine, product, bShape)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, other.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(other.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// Div implements div(a,b): ∂a = g/b, ∂b = −g·a/b². b is captured whenever
// either side is tracked; a is captured only for b's partial.
func (t *Tensor[T]) Div(other *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.Div(context.Background(), t.primitive, other.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, other.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine
	aVal, bVal := t.primitive, other.primitive
	aShape, bShape := aVal.Shape(), bVal.Shape()

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: t.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				quotient, err := engine.Div(ctx, grad, bVal)
				if err != nil {
					return nil, err
				}

				return reduceGradToShape(ctx, engine, quotient, aShape)
			},
		})
	}
	if other.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: other.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				num, err := engine.Mul(ctx, grad, aVal)
				if err != nil {
					return nil, err
				}

				bSquared, err := engine.Mul(ctx, bVal, bVal)
				if err != nil {
					return nil, err
				}

				quotient, err := engine.Div(ctx, num, bSquared)
				if err != nil {
					return nil, err
				}

				negated, err := engine.Neg(ctx, quotient)
				if err != nil {
					return nil, err
				}

				return reduceGradToShape(ctx, engine, negated, bShape)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, other.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(other.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// unaryStep is the shared wiring for every single-operand op whose adjoint
// needs no operand beyond the incoming gradient.
func (t *Tensor[T]) unaryStep(primitive *tensor.TensorNumeric[T], backward func(context.Context, *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)) (*Tensor[T], error) {
	if !t.node.IsTracked() {
		return t.wrapUntracked(primitive), nil
	}

	node := newNode(GradInBackward, trackedParents(t.node)...)
	step := newOpStep(t.engine, node, primitive.Shape(), gradTarget[T]{id: t.node.id, compute: backward})

	return &Tensor[T]{primitive: primitive, node: node, graph: t.graph.WithStep(step), engine: t.engine}, nil
}

// reduceTo builds a gradTarget compute closure that reduces the incoming
// gradient down to shape via reduceGradToShape.
func reduceTo[T tensor.Numeric](engine compute.Engine[T], shape []int) func(context.Context, *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return reduceGradToShape(ctx, engine, grad, shape)
	}
}
