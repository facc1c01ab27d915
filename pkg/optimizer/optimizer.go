// Package optimizer implements the backend-parametric optimizer core: a
// SimpleOptimizer transform taking a learning rate, a parameter, its
// gradient, and per-parameter state, and returning the updated parameter and
// state. WeightDecay and Momentum are composable gradient transforms; Sgd
// chains them with the learning-rate scaled update. The optimizer itself is
// stateless beyond its hyperparameters — all per-parameter state lives in
// the State types and is threaded by the caller.
package optimizer

import (
	"context"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// SimpleOptimizer is the backend-parametric optimizer contract: given a
// learning rate, the current parameter tensor, its gradient, and
// per-parameter state, it returns a new parameter tensor and new state.
type SimpleOptimizer[T tensor.Numeric, S any] interface {
	Step(ctx context.Context, lr T, param, grad *tensor.TensorNumeric[T], state *S) (*tensor.TensorNumeric[T], *S, error)
}

// scaleAndApply computes param - lr*grad, the update shared by every
// SimpleOptimizer implementation in this package.
func scaleAndApply[T tensor.Numeric](ctx context.Context, engine compute.Engine[T], param, grad *tensor.TensorNumeric[T], lr T) (*tensor.TensorNumeric[T], error) {
	scaled, err := engine.MulScalar(ctx, grad, lr)
	if err != nil {
		return nil, err
	}

	return engine.Sub(ctx, param, scaled)
}
