package optimizer

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// SgdState composes the per-parameter state of Sgd's two optional
// transforms. Either field may be nil if the corresponding transform is
// disabled.
type SgdState[T tensor.Numeric] struct {
	WeightDecay *WeightDecayState[T]
	Momentum    *MomentumState[T]
}

// ToDevice moves both composed states to device.
func (s *SgdState[T]) ToDevice(ctx context.Context, engine compute.Engine[T], device string) (*SgdState[T], error) {
	if s == nil {
		return nil, nil
	}

	weightDecay, err := s.WeightDecay.ToDevice(ctx, engine, device)
	if err != nil {
		return nil, err
	}

	momentum, err := s.Momentum.ToDevice(ctx, engine, device)
	if err != nil {
		return nil, err
	}

	return &SgdState[T]{WeightDecay: weightDecay, Momentum: momentum}, nil
}

// Sgd composes an optional WeightDecay transform, an optional Momentum
// transform, and a learning-rate scaled update: θ' = θ − lr·g'', where g''
// is the gradient after both transforms ran (in that order).
type Sgd[T tensor.Numeric] struct {
	engine      compute.Engine[T]
	weightDecay *WeightDecay[T]
	momentum    *Momentum[T]
}

// SgdOption configures an Sgd optimizer at construction time.
type SgdOption[T tensor.Numeric] func(*Sgd[T])

// WithWeightDecay enables the weight-decay transform.
func WithWeightDecay[T tensor.Numeric](penalty T) SgdOption[T] {
	return func(s *Sgd[T]) {
		s.weightDecay = NewWeightDecay(s.engine, penalty)
	}
}

// WithMomentum enables the momentum transform.
func WithMomentum[T tensor.Numeric](momentum, dampening T, nesterov bool) SgdOption[T] {
	return func(s *Sgd[T]) {
		s.momentum = NewMomentum(s.engine, momentum, dampening, nesterov)
	}
}

// NewSgd builds an Sgd optimizer for the given backend and options. The
// learning rate is not stored: SimpleOptimizer takes it as a per-call
// argument to Step.
func NewSgd[T tensor.Numeric](engine compute.Engine[T], opts ...SgdOption[T]) *Sgd[T] {
	s := &Sgd[T]{engine: engine}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Step runs the composed transform chain and the learning-rate scaled
// update, implementing SimpleOptimizer for Sgd.
func (s *Sgd[T]) Step(ctx context.Context, lr T, param, grad *tensor.TensorNumeric[T], state *SgdState[T]) (*tensor.TensorNumeric[T], *SgdState[T], error) {
	if state == nil {
		state = &SgdState[T]{}
	}

	transformed := grad
	newState := &SgdState[T]{}

	if s.weightDecay != nil {
		decayed, nextWeightDecay, err := s.weightDecay.Transform(ctx, transformed, state.WeightDecay)
		if err != nil {
			return nil, nil, err
		}

		transformed = decayed
		newState.WeightDecay = nextWeightDecay
	}

	if s.momentum != nil {
		accelerated, nextMomentum, err := s.momentum.Transform(ctx, transformed, state.Momentum)
		if err != nil {
			return nil, nil, err
		}

		transformed = accelerated
		newState.Momentum = nextMomentum
	}

	newParam, err := scaleAndApply(ctx, s.engine, param, transformed, lr)
	if err != nil {
		return nil, nil, err
	}

	return newParam, newState, nil
}
