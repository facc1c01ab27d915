package autodiff

import (
	"context"
	"math"

	"github.com/zerfoo/gradcore/tensor"
)

// Exp implements exp(a): ∂a = g·exp(a), captured from the forward output so
// the backward closure never recomputes it.
func (t *Tensor[T]) Exp() (*Tensor[T], error) {
	primitive, err := t.engine.Exp(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	output := primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.Mul(ctx, grad, output)
	})
}

// Log implements log(a): ∂a = g/a.
func (t *Tensor[T]) Log() (*Tensor[T], error) {
	primitive, err := t.engine.Log(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		return engine.Div(ctx, grad, input)
	})
}

// Log1p implements log1p(a): ∂a = g/(a+1).
func (t *Tensor[T]) Log1p() (*Tensor[T], error) {
	primitive, err := t.engine.Log1p(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		var one T
		one = float64ToNumeric(1, one)

		shifted, err := engine.AddScalar(ctx, input, one)
		if err != nil {
			return nil, err
		}

		return engine.Div(ctx, grad, shifted)
	})
}

// Sqrt implements sqrt(a): ∂a = g·0.5·a^(−0.5).
func (t *Tensor[T]) Sqrt() (*Tensor[T], error) {
	primitive, err := t.engine.Sqrt(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		inverse, err := engine.Powf(ctx, input, -0.5)
		if err != nil {
			return nil, err
		}

		var half T
		half = float64ToNumeric(0.5, half)

		scaled, err := engine.MulScalar(ctx, inverse, half)
		if err != nil {
			return nil, err
		}

		return engine.Mul(ctx, grad, scaled)
	})
}

// Powf implements powf(a,p): ∂a = g·p·a^(p−1).
func (t *Tensor[T]) Powf(p float64) (*Tensor[T], error) {
	primitive, err := t.engine.Powf(context.Background(), t.primitive, p)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		derivative, err := engine.Powf(ctx, input, p-1)
		if err != nil {
			return nil, err
		}

		var pScalar T
		pScalar = float64ToNumeric(p, pScalar)

		scaled, err := engine.MulScalar(ctx, derivative, pScalar)
		if err != nil {
			return nil, err
		}

		return engine.Mul(ctx, grad, scaled)
	})
}

// Sin implements sin(a): ∂a = g·cos(a).
func (t *Tensor[T]) Sin() (*Tensor[T], error) {
	primitive, err := t.engine.Sin(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		cosine, err := engine.Cos(ctx, input)
		if err != nil {
			return nil, err
		}

		return engine.Mul(ctx, grad, cosine)
	})
}

// Cos implements cos(a): ∂a = −g·sin(a).
func (t *Tensor[T]) Cos() (*Tensor[T], error) {
	primitive, err := t.engine.Cos(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		sine, err := engine.Sin(ctx, input)
		if err != nil {
			return nil, err
		}

		product, err := engine.Mul(ctx, grad, sine)
		if err != nil {
			return nil, err
		}

		return engine.Neg(ctx, product)
	})
}

// Tanh implements tanh(a): ∂a = g·(1−tanh(a)²), captured from the forward
// output.
func (t *Tensor[T]) Tanh() (*Tensor[T], error) {
	primitive, err := t.engine.Tanh(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	output := primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		squared, err := engine.Mul(ctx, output, output)
		if err != nil {
			return nil, err
		}

		var one T
		one = float64ToNumeric(1, one)

		complement, err := engine.SubScalar(ctx, squared, one)
		if err != nil {
			return nil, err
		}

		negComplement, err := engine.Neg(ctx, complement)
		if err != nil {
			return nil, err
		}

		return engine.Mul(ctx, grad, negComplement)
	})
}

// Erf implements erf(a): ∂a = g·(2/√π)·exp(−a²).
func (t *Tensor[T]) Erf() (*Tensor[T], error) {
	primitive, err := t.engine.Erf(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		squared, err := engine.Mul(ctx, input, input)
		if err != nil {
			return nil, err
		}

		negSquared, err := engine.Neg(ctx, squared)
		if err != nil {
			return nil, err
		}

		exponentiated, err := engine.Exp(ctx, negSquared)
		if err != nil {
			return nil, err
		}

		var coeff T
		coeff = float64ToNumeric(2/math.Sqrt(math.Pi), coeff)

		scaled, err := engine.MulScalar(ctx, exponentiated, coeff)
		if err != nil {
			return nil, err
		}

		return engine.Mul(ctx, grad, scaled)
	})
}

// Relu implements relu(a): ∂a = g where a>0, else 0.
func (t *Tensor[T]) Relu() (*Tensor[T], error) {
	primitive, err := t.engine.Relu(context.Background(), t.primitive)
	if err != nil {
		return nil, err
	}

	engine := t.engine
	input := t.primitive

	return t.unaryStep(primitive, func(ctx context.Context, grad *tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
		var zero T

		nonPositive, err := engine.LowerEqualScalar(ctx, input, zero)
		if err != nil {
			return nil, err
		}

		return engine.MaskFill(ctx, grad, nonPositive, zero)
	})
}
