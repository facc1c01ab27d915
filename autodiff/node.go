// Package autodiff implements the reverse-mode automatic differentiation
// decorator: it wraps a compute.Engine backend and, by re-implementing the
// same primitive set, records a directed acyclic graph of Steps while
// forwarding every actual computation to the wrapped engine.
package autodiff

import "sync/atomic"

// NodeID identifies a Node. It doubles as the node's position in the global
// creation order: ids are handed out by a single monotonically increasing
// counter, so comparing two ids is equivalent to comparing their order.
type NodeID uint64

var nodeCounter atomic.Uint64

func nextNodeID() NodeID {
	return NodeID(nodeCounter.Add(1))
}

// Requirement classifies a node's participation in gradient tracking.
type Requirement int

const (
	// None means the node carries no gradient and backward ignores it.
	None Requirement = iota
	// Grad means the user explicitly marked this leaf as requiring a gradient.
	Grad
	// GradInBackward means an interior node must compute a gradient because
	// some ancestor requires one.
	GradInBackward
)

// String renders the requirement for diagnostics.
func (r Requirement) String() string {
	switch r {
	case None:
		return "none"
	case Grad:
		return "grad"
	case GradInBackward:
		return "grad_in_backward"
	default:
		return "unknown"
	}
}

// Node is an immutable record of one tensor's position in the computation
// graph: its identity, its tracked parents, its creation order, and its
// gradient requirement.
type Node struct {
	id          NodeID
	parents     []NodeID
	order       uint64
	requirement Requirement
}

// ID returns the node's process-unique identifier.
func (n *Node) ID() NodeID { return n.id }

// Order returns the node's position in the global creation order. Parents
// always have a strictly smaller order than their children.
func (n *Node) Order() uint64 { return n.order }

// Requirement returns the node's gradient requirement.
func (n *Node) Requirement() Requirement { return n.requirement }

// Parents returns the tracked parent ids (those whose own requirement was
// non-None at the time this node was built).
func (n *Node) Parents() []NodeID {
	out := make([]NodeID, len(n.parents))
	copy(out, n.parents)

	return out
}

// IsTracked reports whether this node participates in backward.
func (n *Node) IsTracked() bool { return n.requirement != None }

// newNode allocates a fresh node, stamping a new id/order.
func newNode(requirement Requirement, parents ...NodeID) *Node {
	id := nextNodeID()

	return &Node{
		id:          id,
		order:       uint64(id),
		parents:     parents,
		requirement: requirement,
	}
}

// newLeaf builds a node with no parents, used for tensors entering the
// graph fresh (via RequireGrad or Detach).
func newLeaf(requirement Requirement) *Node {
	return newNode(requirement)
}

// joinRequirement computes a child's gradient requirement from its parents:
// any parent whose requirement is not None (Grad or GradInBackward) makes the
// result GradInBackward, otherwise None.
func joinRequirement(nodes ...*Node) Requirement {
	for _, n := range nodes {
		if n != nil && n.requirement != None {
			return GradInBackward
		}
	}

	return None
}
