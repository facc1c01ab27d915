package autodiff

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// toFullPrecisionStep and fromFullPrecisionStep exist because opStep is
// parameterized by a single T: a precision cast's parent and output live at
// different element types, so the backward closure can't be expressed as a
// gradTarget[T] compute func — it must call RegisterGrad against a
// different type parameter than the step's own output.

type toFullPrecisionStep[T tensor.Numeric] struct {
	output       NodeID
	order        uint64
	outputShape  []int
	outputEngine compute.Engine[float32]
	parent       NodeID
	parentEngine compute.Engine[T]
}

func (s *toFullPrecisionStep[T]) OutputNode() NodeID { return s.output }
func (s *toFullPrecisionStep[T]) Order() uint64      { return s.order }

func (s *toFullPrecisionStep[T]) Backward(g *Gradients) error {
	ctx := context.Background()

	grad, ok := ConsumeGrad[float32](g, s.output)
	if !ok {
		zeros, err := s.outputEngine.NewZeros(ctx, s.outputShape)
		if err != nil {
			return err
		}

		grad = zeros
	}

	downcast, err := compute.FromFullPrecision[T](grad)
	if err != nil {
		return err
	}

	return RegisterGrad(g, s.parentEngine, s.parent, downcast)
}

type fromFullPrecisionStep[T tensor.Numeric] struct {
	output       NodeID
	order        uint64
	outputShape  []int
	outputEngine compute.Engine[T]
	parent       NodeID
	parentEngine compute.Engine[float32]
}

func (s *fromFullPrecisionStep[T]) OutputNode() NodeID { return s.output }
func (s *fromFullPrecisionStep[T]) Order() uint64      { return s.order }

func (s *fromFullPrecisionStep[T]) Backward(g *Gradients) error {
	ctx := context.Background()

	grad, ok := ConsumeGrad[T](g, s.output)
	if !ok {
		zeros, err := s.outputEngine.NewZeros(ctx, s.outputShape)
		if err != nil {
			return err
		}

		grad = zeros
	}

	upcast, err := compute.ToFullPrecision[T](grad)
	if err != nil {
		return err
	}

	return RegisterGrad(g, s.parentEngine, s.parent, upcast)
}

// ToFullPrecision implements to_full_precision(a): casts every element of a
// reduced-precision tensor up to float32, carrying the gradient requirement
// across the precision boundary. Its adjoint casts the incoming float32
// gradient back down to T.
func ToFullPrecision[T tensor.Numeric](t *Tensor[T], engine32 compute.Engine[float32]) (*Tensor[float32], error) {
	primitive, err := compute.ToFullPrecision[T](t.primitive)
	if err != nil {
		return nil, err
	}

	if !t.node.IsTracked() {
		return &Tensor[float32]{primitive: primitive, node: newLeaf(None), graph: NewGraph(), engine: engine32}, nil
	}

	node := newNode(GradInBackward, t.node.id)
	step := &toFullPrecisionStep[T]{
		output:       node.id,
		order:        node.order,
		outputShape:  primitive.Shape(),
		outputEngine: engine32,
		parent:       t.node.id,
		parentEngine: t.engine,
	}

	return &Tensor[float32]{primitive: primitive, node: node, graph: t.graph.WithStep(step), engine: engine32}, nil
}

// FromFullPrecision implements from_full_precision(a): casts a float32
// tensor down to T. Its adjoint casts the incoming gradient back up to
// float32.
func FromFullPrecision[T tensor.Numeric](t *Tensor[float32], engine compute.Engine[T]) (*Tensor[T], error) {
	primitive, err := compute.FromFullPrecision[T](t.primitive)
	if err != nil {
		return nil, err
	}

	if !t.node.IsTracked() {
		return &Tensor[T]{primitive: primitive, node: newLeaf(None), graph: NewGraph(), engine: engine}, nil
	}

	node := newNode(GradInBackward, t.node.id)
	step := &fromFullPrecisionStep[T]{
		output:       node.id,
		order:        node.order,
		outputShape:  primitive.Shape(),
		outputEngine: engine,
		parent:       t.node.id,
		parentEngine: t.engine,
	}

	return &Tensor[T]{primitive: primitive, node: node, graph: t.graph.WithStep(step), engine: engine}, nil
}

// ToDevice implements to_device(a,device): ∂a = to_device(g, this tensor's
// original device).
func (t *Tensor[T]) ToDevice(device string) (*Tensor[T], error) {
	primitive, err := t.engine.ToDevice(context.Background(), t.primitive, device)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	originalDevice := t.device()

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.ToDevice(ctx, grad, originalDevice)
	})
}

// device reports the CPU placeholder device name used by this tensor's
// engine. Multi-device placement is out of scope; ToDevice's adjoint still
// needs a name to cast back to.
func (t *Tensor[T]) device() string {
	return "cpu"
}
