package autodiff

import (
	"context"
	"sort"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// Tensor decorates a backend-native primitive with a node (identity,
// requirement) and a graph (the Steps collected while building it). Every
// operation on a Tensor re-implements the wrapped engine's contract: it
// performs the real computation through engine, then — only if the
// operation's joint requirement is non-None — records a Step.
type Tensor[T tensor.Numeric] struct {
	primitive *tensor.TensorNumeric[T]
	node      *Node
	graph     *Graph
	engine    compute.Engine[T]
}

// FromInner wraps a raw backend primitive as a fresh, untracked leaf.
func FromInner[T tensor.Numeric](engine compute.Engine[T], primitive *tensor.TensorNumeric[T]) *Tensor[T] {
	return &Tensor[T]{
		primitive: primitive,
		node:      newLeaf(None),
		graph:     NewGraph(),
		engine:    engine,
	}
}

// Inner returns the wrapped backend primitive, crossing back out of the
// autodiff decorator.
func (t *Tensor[T]) Inner() *tensor.TensorNumeric[T] {
	return t.primitive
}

// Node exposes the tensor's graph node.
func (t *Tensor[T]) Node() *Node {
	return t.node
}

// Shape returns the wrapped primitive's shape.
func (t *Tensor[T]) Shape() []int {
	return t.primitive.Shape()
}

// Engine returns the backend this tensor is tracked against.
func (t *Tensor[T]) Engine() compute.Engine[T] {
	return t.engine
}

// RequireGrad returns a new tensor over the same primitive, marked as a
// gradient-requiring leaf. It does not mutate the receiver.
func (t *Tensor[T]) RequireGrad() *Tensor[T] {
	return &Tensor[T]{
		primitive: t.primitive,
		node:      newLeaf(Grad),
		graph:     NewGraph(),
		engine:    t.engine,
	}
}

// IsRequireGrad reports whether this tensor's node carries a gradient
// requirement (either user-marked or propagated from an ancestor).
func (t *Tensor[T]) IsRequireGrad() bool {
	return t.node.IsTracked()
}

// Detach returns a tensor over the same primitive with a fresh leaf node,
// graph severed. The Grad marker is preserved for leaf parameters (users
// detach activations, not parameters); any other requirement becomes None.
func (t *Tensor[T]) Detach() *Tensor[T] {
	requirement := None
	if t.node.requirement == Grad {
		requirement = Grad
	}

	return &Tensor[T]{
		primitive: t.primitive,
		node:      newLeaf(requirement),
		graph:     NewGraph(),
		engine:    t.engine,
	}
}

// wrapUntracked builds the output of an operation whose joint requirement
// is None: a fresh leaf, no step, no captured state.
func (t *Tensor[T]) wrapUntracked(primitive *tensor.TensorNumeric[T]) *Tensor[T] {
	return &Tensor[T]{
		primitive: primitive,
		node:      newLeaf(None),
		graph:     NewGraph(),
		engine:    t.engine,
	}
}

// gradTarget pairs a tracked parent id with the closure that computes its
// partial gradient from the step's consumed output gradient. The closure
// captures, by ordinary Go closure semantics, exactly the operand values
// the "minimal state capture" rule says this parent's partial needs —
// nothing else is kept alive past the step's construction.
type gradTarget[T tensor.Numeric] struct {
	id      NodeID
	compute func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error)
}

// opStep is the single Step implementation every operation in this package
// builds: consume the output gradient (or zeros, if nothing arrived),
// evaluate each tracked parent's closure against it, and register the
// results. Per-operation differences live entirely in the closures passed
// to newOpStep, not in a family of Step types.
type opStep[T tensor.Numeric] struct {
	output      NodeID
	order       uint64
	outputShape []int
	engine      compute.Engine[T]
	targets     []gradTarget[T]
}

func newOpStep[T tensor.Numeric](engine compute.Engine[T], node *Node, outputShape []int, targets ...gradTarget[T]) *opStep[T] {
	return &opStep[T]{
		output:      node.id,
		order:       node.order,
		outputShape: outputShape,
		engine:      engine,
		targets:     targets,
	}
}

func (s *opStep[T]) OutputNode() NodeID { return s.output }
func (s *opStep[T]) Order() uint64      { return s.order }

func (s *opStep[T]) Backward(g *Gradients) error {
	ctx := context.Background()

	grad, ok := ConsumeGrad[T](g, s.output)
	if !ok {
		zeros, err := s.engine.NewZeros(ctx, s.outputShape)
		if err != nil {
			return err
		}

		grad = zeros
	}

	for _, target := range s.targets {
		partial, err := target.compute(ctx, grad)
		if err != nil {
			return err
		}

		if err := RegisterGrad(g, s.engine, target.id, partial); err != nil {
			return err
		}
	}

	return nil
}

// trackedParents filters nodes down to those that are tracked, preserving order.
func trackedParents(nodes ...*Node) []NodeID {
	ids := make([]NodeID, 0, len(nodes))
	for _, n := range nodes {
		if n.IsTracked() {
			ids = append(ids, n.id)
		}
	}

	return ids
}

// passGrad is the identity adjoint, used by every operation in the
// stateless fast path (add, sub, neg, add_scalar, sub_scalar).
func passGrad[T tensor.Numeric](_ context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return grad, nil
}

// negGrad negates the incoming gradient.
func negGrad[T tensor.Numeric](engine compute.Engine[T]) func(context.Context, *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	return func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.Neg(ctx, grad)
	}
}

// reduceGradToShape sums grad down to target, right-aligning axes the way
// broadcasting does, so a gradient produced at a broadcast output shape can
// be summed back onto a narrower operand shape before being registered.
// When no axis needed reducing this is just a reshape, a no-op for equal
// shapes.
func reduceGradToShape[T tensor.Numeric](ctx context.Context, engine compute.Engine[T], grad *tensor.TensorNumeric[T], target []int) (*tensor.TensorNumeric[T], error) {
	gradShape := grad.Shape()
	diff := len(gradShape) - len(target)

	padded := make([]int, len(gradShape))
	for i := 0; i < diff; i++ {
		padded[i] = 1
	}
	copy(padded[diff:], target)

	result := grad
	for axis := 0; axis < len(gradShape); axis++ {
		if padded[axis] == 1 && gradShape[axis] != 1 {
			summed, err := engine.Sum(ctx, result, axis, true)
			if err != nil {
				return nil, err
			}

			result = summed
		}
	}

	return engine.Reshape(ctx, result, target)
}

// Backward runs the backward engine from this tensor as root. If this
// tensor's node is not tracked (requirement None), it returns an empty
// Gradients store rather than an error: "no gradient produced" is a valid
// outcome, not a failure.
func (t *Tensor[T]) Backward() (*Gradients, error) {
	grads := NewGradients()

	if !t.node.IsTracked() {
		return grads, nil
	}

	ctx := context.Background()

	seed, err := t.engine.NewOnes(ctx, t.primitive.Shape())
	if err != nil {
		return nil, err
	}

	if err := RegisterGrad(grads, t.engine, t.node.id, seed); err != nil {
		return nil, err
	}

	steps := t.graph.Steps()
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Order() > steps[j].Order()
	})

	for _, step := range steps {
		if err := step.Backward(grads); err != nil {
			return nil, err
		}
	}

	return grads, nil
}

// Grad is the public, non-destructive gradient accessor: Gradients::grad(tensor).
func Grad[T tensor.Numeric](g *Gradients, t *Tensor[T]) (*tensor.TensorNumeric[T], bool) {
	return GetGrad[T](g, t.node.id)
}

// GradRemove removes and returns the gradient for t: Gradients::grad_remove(tensor).
func GradRemove[T tensor.Numeric](g *Gradients, t *Tensor[T]) (*tensor.TensorNumeric[T], bool) {
	return ConsumeGrad[T](g, t.node.id)
}
