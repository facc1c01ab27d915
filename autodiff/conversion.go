package autodiff

import (
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
)

// float64ToNumeric converts f into a Numeric-constrained T, dispatching on
// zero's concrete type. float8.Float8 and float16.Float16 are structs, not
// convertible numeric kinds, so a plain T(f) conversion does not compile for
// them; every concrete case here does. zero only carries the type — its
// value is never read.
func float64ToNumeric[T any](f float64, zero T) T {
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
		panic("autodiff: unsupported numeric type in float64ToNumeric")
	}
}
