package tensor

import "fmt"

// BoolTensor is the boolean counterpart to TensorNumeric, used by comparison
// primitives (Equal, Greater, Lower and their scalar/equal variants) and by
// mask-driven indexing (MaskFill, MaskScatter). It intentionally does not
// participate in the Numeric constraint: boolean results never carry a
// gradient, so they never need to flow through an autodiff-tracked tensor.
type BoolTensor struct {
	shape []int
	data  []bool
}

// NewBool creates a new BoolTensor with the given shape and data.
func NewBool(shape []int, data []bool) (*BoolTensor, error) {
	size := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("invalid shape dimension: %d; must be non-negative", dim)
		}

		size *= dim
	}

	if data == nil {
		data = make([]bool, size)
	}

	if len(data) != size {
		return nil, fmt.Errorf("data length (%d) does not match tensor size (%d)", len(data), size)
	}

	return &BoolTensor{shape: shape, data: data}, nil
}

// Shape returns a copy of the tensor's shape.
func (t *BoolTensor) Shape() []int {
	shapeCopy := make([]int, len(t.shape))
	copy(shapeCopy, t.shape)

	return shapeCopy
}

// Data returns the underlying boolean slice.
func (t *BoolTensor) Data() []bool {
	return t.data
}

// Size returns the total number of elements.
func (t *BoolTensor) Size() int {
	size := 1
	for _, dim := range t.shape {
		size *= dim
	}

	return size
}
