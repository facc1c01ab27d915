package optimizer

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// MomentumState holds the running velocity carried forward between calls to
// Momentum.Transform.
type MomentumState[T tensor.Numeric] struct {
	Velocity *tensor.TensorNumeric[T]
}

// ToDevice moves the velocity to device.
func (s *MomentumState[T]) ToDevice(ctx context.Context, engine compute.Engine[T], device string) (*MomentumState[T], error) {
	if s == nil || s.Velocity == nil {
		return s, nil
	}

	moved, err := engine.ToDevice(ctx, s.Velocity, device)
	if err != nil {
		return nil, err
	}

	return &MomentumState[T]{Velocity: moved}, nil
}

// Momentum accumulates a running velocity: v' = μ·v + (1−τ)·g when a
// previous velocity exists, else v'=g. The output gradient is the
// Nesterov look-ahead μ·v'+g when Nesterov is enabled, otherwise v' itself.
type Momentum[T tensor.Numeric] struct {
	engine    compute.Engine[T]
	momentum  T
	dampening T
	nesterov  bool
}

// NewMomentum builds a Momentum transform with coefficient momentum,
// dampening factor dampening, and the given Nesterov setting.
func NewMomentum[T tensor.Numeric](engine compute.Engine[T], momentum, dampening T, nesterov bool) *Momentum[T] {
	return &Momentum[T]{engine: engine, momentum: momentum, dampening: dampening, nesterov: nesterov}
}

// Transform applies the velocity update and returns the next state.
func (m *Momentum[T]) Transform(ctx context.Context, grad *tensor.TensorNumeric[T], state *MomentumState[T]) (*tensor.TensorNumeric[T], *MomentumState[T], error) {
	var velocity *tensor.TensorNumeric[T]

	if state != nil && state.Velocity != nil {
		var oneMinusDampening T
		oneMinusDampening = oneMinus(oneMinusDampening, m.dampening)

		scaledVelocity, err := m.engine.MulScalar(ctx, state.Velocity, m.momentum)
		if err != nil {
			return nil, nil, err
		}

		scaledGrad, err := m.engine.MulScalar(ctx, grad, oneMinusDampening)
		if err != nil {
			return nil, nil, err
		}

		summed, err := m.engine.Add(ctx, scaledVelocity, scaledGrad)
		if err != nil {
			return nil, nil, err
		}

		velocity = summed
	} else {
		velocity = grad
	}

	newState := &MomentumState[T]{Velocity: velocity}

	if !m.nesterov {
		return velocity, newState, nil
	}

	scaled, err := m.engine.MulScalar(ctx, velocity, m.momentum)
	if err != nil {
		return nil, nil, err
	}

	lookahead, err := m.engine.Add(ctx, scaled, grad)
	if err != nil {
		return nil, nil, err
	}

	return lookahead, newState, nil
}
