package autodiff

import (
	"context"

	"github.com/zerfoo/gradcore/tensor"
)

// Index implements index(a,ranges): ∂a = index_assign(zeros(a.shape), ranges, g),
// scattering the output gradient back into the region it was sliced from.
func (t *Tensor[T]) Index(ranges [][2]int) (*Tensor[T], error) {
	primitive, err := t.engine.Index(context.Background(), t.primitive, ranges)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalShape := t.primitive.Shape()

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		zeros, err := engine.NewZeros(ctx, originalShape)
		if err != nil {
			return nil, err
		}

		return engine.IndexAssign(ctx, zeros, ranges, grad)
	})
}

// IndexAssign implements index_assign(a,ranges,v): the region is overwritten,
// so ∂a = g with that region zeroed (v's partial carries the gradient that
// flowed through it instead), and ∂v = index(g,ranges).
func (t *Tensor[T]) IndexAssign(ranges [][2]int, v *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.IndexAssign(context.Background(), t.primitive, ranges, v.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, v.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine
	vShape := v.primitive.Shape()

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: t.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				zeros, err := engine.NewZeros(ctx, vShape)
				if err != nil {
					return nil, err
				}

				return engine.IndexAssign(ctx, grad, ranges, zeros)
			},
		})
	}
	if v.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: v.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				return engine.Index(ctx, grad, ranges)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, v.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(v.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// IndexSelect implements index_select(a,idx): a gather along the leading
// axis of a rank-1 or rank-2 tensor. ∂a = index_select_assign(zeros(a.shape), idx, g), which
// scatter-adds so repeated indices correctly accumulate the gradient
// contributed by every output position that read them.
func (t *Tensor[T]) IndexSelect(idx *tensor.TensorNumeric[int]) (*Tensor[T], error) {
	primitive, err := t.engine.IndexSelect(context.Background(), t.primitive, idx)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalShape := t.primitive.Shape()

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		zeros, err := engine.NewZeros(ctx, originalShape)
		if err != nil {
			return nil, err
		}

		return engine.IndexSelectAssign(ctx, zeros, idx, grad)
	})
}

// IndexSelectAssign implements index_select_assign(a,idx,v), a scatter-add:
// ∂a = g (addition leaves both operands' partials unchanged), ∂v = the
// gather of g at the same idx — the inverse read of the scatter-add write.
func (t *Tensor[T]) IndexSelectAssign(idx *tensor.TensorNumeric[int], v *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.IndexSelectAssign(context.Background(), t.primitive, idx, v.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, v.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{id: t.node.id, compute: passGrad[T]})
	}
	if v.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: v.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				return engine.IndexSelect(ctx, grad, idx)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, v.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(v.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// IndexSelectDim implements index_select_dim(a,dim,idx): the single-axis
// analogue of IndexSelect.
func (t *Tensor[T]) IndexSelectDim(dim int, idx *tensor.TensorNumeric[int]) (*Tensor[T], error) {
	primitive, err := t.engine.IndexSelectDim(context.Background(), t.primitive, dim, idx)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalShape := t.primitive.Shape()

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		zeros, err := engine.NewZeros(ctx, originalShape)
		if err != nil {
			return nil, err
		}

		return engine.IndexSelectDimAssign(ctx, zeros, dim, idx, grad)
	})
}

// IndexSelectDimAssign implements index_select_dim_assign(a,dim,idx,v): the
// single-axis analogue of IndexSelectAssign.
func (t *Tensor[T]) IndexSelectDimAssign(dim int, idx *tensor.TensorNumeric[int], v *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.IndexSelectDimAssign(context.Background(), t.primitive, dim, idx, v.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, v.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{id: t.node.id, compute: passGrad[T]})
	}
	if v.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: v.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				return engine.IndexSelectDim(ctx, grad, dim, idx)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, v.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(v.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}

// MaskFill implements mask_fill(a,mask,value): ∂a = mask_fill(g,mask,0) —
// the filled positions contributed nothing from a, so their gradient is cut.
func (t *Tensor[T]) MaskFill(mask *tensor.BoolTensor, value T) (*Tensor[T], error) {
	primitive, err := t.engine.MaskFill(context.Background(), t.primitive, mask, value)
	if err != nil {
		return nil, err
	}

	engine := t.engine

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		var zero T

		return engine.MaskFill(ctx, grad, mask, zero)
	})
}

// MaskScatter implements mask_scatter(a,mask,v): positions where mask is
// true came from v, the rest from a. ∂a = mask_fill(g,mask,0) (cut the
// positions v supplied); ∂v = mask_scatter(zeros,mask,g) (keep only the
// positions v supplied, picked out of g).
func (t *Tensor[T]) MaskScatter(mask *tensor.BoolTensor, v *Tensor[T]) (*Tensor[T], error) {
	primitive, err := t.engine.MaskScatter(context.Background(), t.primitive, mask, v.primitive)
	if err != nil {
		return nil, err
	}

	requirement := joinRequirement(t.node, v.node)
	if requirement == None {
		return t.wrapUntracked(primitive), nil
	}

	engine := t.engine
	vShape := v.primitive.Shape()

	var targets []gradTarget[T]
	if t.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: t.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				var zero T

				return engine.MaskFill(ctx, grad, mask, zero)
			},
		})
	}
	if v.node.IsTracked() {
		targets = append(targets, gradTarget[T]{
			id: v.node.id,
			compute: func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
				zeros, err := engine.NewZeros(ctx, vShape)
				if err != nil {
					return nil, err
				}

				return engine.MaskScatter(ctx, zeros, mask, grad)
			},
		})
	}

	node := newNode(requirement, trackedParents(t.node, v.node)...)
	step := newOpStep(engine, node, primitive.Shape(), targets...)
	graph := t.graph.Merge(v.graph).WithStep(step)

	return &Tensor[T]{primitive: primitive, node: node, graph: graph, engine: engine}, nil
}
