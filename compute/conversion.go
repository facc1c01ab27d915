package compute

import (
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
)

// numericToFloat64 converts a generic Numeric-constrained value to float64 by
// dispatching on its concrete type. float8.Float8 and float16.Float16 are
// structs, not convertible numeric kinds, so a plain float64(v) conversion
// does not compile for them; every concrete case here does compile.
func numericToFloat64[T any](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float16.Float16:
		return float64(x.ToFloat32())
	case float8.Float8:
		return float64(x.ToFloat32())
	default:
		return 0
	}
}

// float64ToNumeric is the inverse of numericToFloat64: it converts f into the
// concrete representation of T, using zero only to carry the type witness.
func float64ToNumeric[T any](f float64, zero T) T {
	switch any(zero).(type) {
	case float32:
		return any(float32(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case float64:
		return any(f).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case int:
		return any(int(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case int8:
		return any(int8(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case int16:
		return any(int16(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case int32:
		return any(int32(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case int64:
		return any(int64(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case uint:
		return any(uint(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case uint32:
		return any(uint32(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case uint64:
		return any(uint64(f)).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case float16.Float16:
		return any(float16.FromFloat32(float32(f))).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	case float8.Float8:
		return any(float8.ToFloat8(float32(f))).(T) //nolint:forcetypeassert // dispatch is exhaustive over Numeric
	default:
		return zero
	}
}
