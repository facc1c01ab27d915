package optimizer

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// WeightDecayState holds the previous step's raw gradient — the gradient as
// it was before this transform ran, not after. This is the state carried
// forward, per parameter, between calls to WeightDecay.Transform.
type WeightDecayState[T tensor.Numeric] struct {
	GradientRecord *tensor.TensorNumeric[T]
}

// ToDevice moves the recorded gradient to device, used when a parameter's
// whole optimizer state migrates backends.
func (s *WeightDecayState[T]) ToDevice(ctx context.Context, engine compute.Engine[T], device string) (*WeightDecayState[T], error) {
	if s == nil || s.GradientRecord == nil {
		return s, nil
	}

	moved, err := engine.ToDevice(ctx, s.GradientRecord, device)
	if err != nil {
		return nil, err
	}

	return &WeightDecayState[T]{GradientRecord: moved}, nil
}

// WeightDecay applies an L2-like penalty by blending in the previous step's
// raw gradient: g' = state·penalty + g when state is present, else g'=g.
// The new state records this step's pre-transform gradient g — not g' —
// so the penalty always lags one step behind, exactly as named in the
// optimizer core's closing formula (WeightDecay algebra).
type WeightDecay[T tensor.Numeric] struct {
	engine  compute.Engine[T]
	penalty T
}

// NewWeightDecay builds a WeightDecay transform with the given penalty.
func NewWeightDecay[T tensor.Numeric](engine compute.Engine[T], penalty T) *WeightDecay[T] {
	return &WeightDecay[T]{engine: engine, penalty: penalty}
}

// Transform applies the decay and returns the next state to carry forward.
func (w *WeightDecay[T]) Transform(ctx context.Context, grad *tensor.TensorNumeric[T], state *WeightDecayState[T]) (*tensor.TensorNumeric[T], *WeightDecayState[T], error) {
	transformed := grad

	if state != nil && state.GradientRecord != nil {
		scaled, err := w.engine.MulScalar(ctx, state.GradientRecord, w.penalty)
		if err != nil {
			return nil, nil, err
		}

		summed, err := w.engine.Add(ctx, scaled, grad)
		if err != nil {
			return nil, nil, err
		}

		transformed = summed
	}

	return transformed, &WeightDecayState[T]{GradientRecord: grad}, nil
}
