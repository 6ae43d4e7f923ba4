package neat

// Connection is an outgoing weighted edge of a Node. The target is referenced
// by its local index in the owning genome's node slice.
type Connection struct {
	To         int     // Local id of the target node.
	Innovation int     // Historical id of the edge-creation event.
	Weight     float64
	Active     bool // Disabled connections are skipped during evaluation but kept for crossover.
}

// Node is a single neuron of a genome.
// LocalID indexes the genome's node slice and changes whenever a genome is
// rebuilt; GlobalID is the historical identity shared across genomes.
type Node struct {
	LocalID  int
	GlobalID int
	Edges    []Connection
}

// AddEdge appends a connection. Callers must have validated acyclicity.
func (n *Node) AddEdge(innovation int, weight float64, active bool, to int) {
	n.Edges = append(n.Edges, Connection{
		To:         to,
		Innovation: innovation,
		Weight:     weight,
		Active:     active,
	})
}

// DisableEdge deactivates the first connection to the given node.
// It reports whether the flag actually changed.
func (n *Node) DisableEdge(to int) bool {
	return n.setActive(to, false)
}

// EnableEdge activates the first connection to the given node.
// It reports whether the flag actually changed.
func (n *Node) EnableEdge(to int) bool {
	return n.setActive(to, true)
}

func (n *Node) setActive(to int, active bool) bool {
	for i := range n.Edges {
		if n.Edges[i].To == to {
			changed := n.Edges[i].Active != active
			n.Edges[i].Active = active
			return changed
		}
	}
	return false
}

// EdgeExists reports whether a connection (active or not) to the node exists.
func (n *Node) EdgeExists(to int) bool {
	_, ok := n.find(to)
	return ok
}

// EdgeWeight returns the weight of the connection to the given node.
func (n *Node) EdgeWeight(to int) (float64, bool) {
	c, ok := n.find(to)
	if !ok {
		return 0, false
	}
	return c.Weight, true
}

// RemoveLastEdge pops the most recently added connection.
func (n *Node) RemoveLastEdge() {
	if len(n.Edges) == 0 {
		return
	}
	n.Edges = n.Edges[:len(n.Edges)-1]
}

func (n *Node) hasActiveEdge(to int) bool {
	c, ok := n.find(to)
	return ok && c.Active
}

func (n *Node) find(to int) (Connection, bool) {
	for _, c := range n.Edges {
		if c.To == to {
			return c, true
		}
	}
	return Connection{}, false
}
