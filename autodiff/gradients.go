package autodiff

import (
	"context"
	"fmt"
	"sync"

	"github.com/zerfoo/gradcore/compute"
	"github.com/zerfoo/gradcore/tensor"
)

// Gradients is the heterogeneous node-id -> tensor accumulator built up
// during one backward invocation. It is owned by that single invocation and
// never shared across calls; entries of different rank and element type
// coexist behind the type-erased map, recovered per-call via the generic
// RegisterGrad/ConsumeGrad/GetGrad functions (Go methods cannot add their own type
// parameter, so these are free functions rather than methods on Gradients).
type Gradients struct {
	mu   sync.Mutex
	data map[NodeID]any
}

// NewGradients returns an empty store.
func NewGradients() *Gradients {
	return &Gradients{data: make(map[NodeID]any)}
}

// RegisterGrad sums grad into any existing entry for node, using eng.Add to
// perform the accumulation. A missing entry is inserted directly.
func RegisterGrad[T tensor.Numeric](g *Gradients, eng compute.Engine[T], node NodeID, grad *tensor.TensorNumeric[T]) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.data[node]
	if !ok {
		g.data[node] = grad

		return nil
	}

	prev, ok := existing.(*tensor.TensorNumeric[T])
	if !ok {
		panic(fmt.Sprintf("autodiff: gradient type/rank mismatch registering node %d", node))
	}

	sum, err := eng.Add(context.Background(), prev, grad)
	if err != nil {
		return err
	}
	g.data[node] = sum

	return nil
}

// ConsumeGrad removes and returns the gradient stored for node. The second
// return is false if no gradient was ever registered for it.
func ConsumeGrad[T tensor.Numeric](g *Gradients, node NodeID) (*tensor.TensorNumeric[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.data[node]
	if !ok {
		return nil, false
	}
	delete(g.data, node)

	t, ok := v.(*tensor.TensorNumeric[T])
	if !ok {
		panic(fmt.Sprintf("autodiff: gradient type/rank mismatch consuming node %d", node))
	}

	return t, true
}

// GetGrad is a non-destructive read, used by the public grad accessor.
func GetGrad[T tensor.Numeric](g *Gradients, node NodeID) (*tensor.TensorNumeric[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.data[node]
	if !ok {
		return nil, false
	}

	t, ok := v.(*tensor.TensorNumeric[T])
	if !ok {
		panic(fmt.Sprintf("autodiff: gradient type/rank mismatch reading node %d", node))
	}

	return t, true
}

// Len reports how many node entries remain in the store.
func (g *Gradients) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.data)
}
