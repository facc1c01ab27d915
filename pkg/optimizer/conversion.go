package optimizer

import (
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
)

// scalarToFloat64 and float64ToScalar mirror the conversion dispatch used
// throughout the backend package: float8.Float8 and float16.Float16 are
// structs, not convertible numeric kinds, so plain float64(v)/T(f)
// conversions do not compile for them.
func scalarToFloat64[T any](v T) float64 {
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

func float64ToScalar[T any](f float64, zero T) T {
	switch any(zero).(type) {
	case float32:
		return any(float32(f)).(T)
	case float64:
		return any(f).(T)
	case int:
		return any(int(f)).(T)
	case int8:
		return any(int8(f)).(T)
	case int16:
		return any(int16(f)).(T)
	case int32:
		return any(int32(f)).(T)
	case int64:
		return any(int64(f)).(T)
	case uint:
		return any(uint(f)).(T)
	case uint32:
		return any(uint32(f)).(T)
	case uint64:
		return any(uint64(f)).(T)
	case float16.Float16:
		return any(float16.FromFloat32(float32(f))).(T)
	case float8.Float8:
		return any(float8.ToFloat8(float32(f))).(T)
	default:
		return zero
	}
}

// oneMinus returns 1 - x as a T, zero only carrying the type witness.
func oneMinus[T any](zero, x T) T {
	return float64ToScalar(1-scalarToFloat64(x), zero)
}
