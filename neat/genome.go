package neat

import (
	"fmt"
	"sort"
	"strings"
)

// RandomEdgeAttempts bounds the candidate search of RandomEdge.
const RandomEdgeAttempts = 100

// Genome is one candidate network: a node arena laid out as
// [inputs | bias | outputs | hidden...] plus the connections each node owns.
//
// The relation induced by active connections is acyclic at all times.
type Genome struct {
	inputs  int
	outputs int
	nodes   []Node
	// index maps a global node id to its local id.
	index map[int]int
	// edges holds the live (active, non-bias) local pairs, sorted, so that
	// random splits can pick one uniformly.
	edges          []ConnectionKey
	numConnections int
	act            ActivationFunc
}

// NewGenome creates a genome with inputs+outputs+1 nodes and no connections.
// The bias node sits right after the inputs.
func NewGenome(inputs, outputs int, act ActivationFunc) *Genome {
	g := &Genome{
		inputs:  inputs,
		outputs: outputs,
		index:   make(map[int]int),
		act:     act,
	}
	for i := 0; i < inputs+outputs+1; i++ {
		g.nodes = append(g.nodes, Node{LocalID: i, GlobalID: i})
		g.index[i] = i
	}
	return g
}

// NumInputs returns the number of input nodes.
func (g *Genome) NumInputs() int { return g.inputs }

// NumOutputs returns the number of output nodes.
func (g *Genome) NumOutputs() int { return g.outputs }

// NumNodes returns the size of the node arena.
func (g *Genome) NumNodes() int { return len(g.nodes) }

// NumHidden returns the number of hidden nodes added by mutation.
func (g *Genome) NumHidden() int { return len(g.nodes) - g.baseNodes() }

// NumConnections returns the number of active connections.
func (g *Genome) NumConnections() int { return g.numConnections }

// BiasIndex returns the local id of the bias node.
func (g *Genome) BiasIndex() int { return g.inputs }

// Activation returns the activation function shared by all nodes.
func (g *Genome) Activation() ActivationFunc { return g.act }

// Nodes exposes the node arena. It must be treated as read-only.
func (g *Genome) Nodes() []Node { return g.nodes }

func (g *Genome) baseNodes() int { return g.inputs + g.outputs + 1 }

// ConnectEnds connects every input and the bias to every output with uniform
// random weights in [-maxWeight, maxWeight]. Innovation numbers are
// input_index*outputs + output_index so every fully connected genome agrees.
func (g *Genome) ConnectEnds(rng RandomSource, maxWeight float64) {
	for i := 0; i <= g.inputs; i++ {
		for j := 0; j < g.outputs; j++ {
			g.AddEdge(i, g.inputs+1+j, i*g.outputs+j, uniform(rng, -maxWeight, maxWeight), true)
		}
	}
}

// PerturbWeights nudges every weight by a uniform step in [-delta, delta].
func (g *Genome) PerturbWeights(rng RandomSource, delta, maxWeight float64) {
	for i := range g.nodes {
		for j := range g.nodes[i].Edges {
			c := &g.nodes[i].Edges[j]
			c.Weight = perturb(rng, c.Weight, delta, maxWeight)
		}
	}
}

// RandomizeWeights replaces every weight with a fresh uniform draw.
func (g *Genome) RandomizeWeights(rng RandomSource, maxWeight float64) {
	for i := range g.nodes {
		for j := range g.nodes[i].Edges {
			g.nodes[i].Edges[j].Weight = uniform(rng, -maxWeight, maxWeight)
		}
	}
}

// RandomDisable disables one live edge chosen uniformly at random.
func (g *Genome) RandomDisable(rng RandomSource) bool {
	e, ok := g.RandomSplit(rng)
	if !ok {
		return false
	}
	g.DisableEdge(e.InNodeID, e.OutNodeID)
	return true
}

// NodeExists reports whether a node with the given global id is present.
func (g *Genome) NodeExists(globalID int) bool {
	_, ok := g.index[globalID]
	return ok
}

// LocalID returns the local id of a global node id.
func (g *Genome) LocalID(globalID int) (int, bool) {
	id, ok := g.index[globalID]
	return id, ok
}

// LocalToGlobal returns the historical id of a local node.
func (g *Genome) LocalToGlobal(local int) int {
	return g.nodes[local].GlobalID
}

// AddNode appends a hidden node with the given historical id and returns its local id.
func (g *Genome) AddNode(globalID int) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{LocalID: id, GlobalID: globalID})
	g.index[globalID] = id
	return id
}

// AddEdge adds a connection between two local nodes. Acyclicity must have
// been checked by the caller. Edges leaving the bias node are never entered
// into the split candidate set.
func (g *Genome) AddEdge(from, to, innovation int, weight float64, active bool) {
	if from == to {
		panic(fmt.Sprintf("self-loop connection on node %d", from))
	}
	if active {
		g.numConnections++
		if from != g.BiasIndex() {
			g.insertEdge(ConnectionKey{InNodeID: from, OutNodeID: to})
		}
	}
	g.nodes[from].AddEdge(innovation, weight, active, to)
}

// EdgeExists reports whether any connection (active or not) links the two local nodes.
func (g *Genome) EdgeExists(from, to int) bool {
	return g.nodes[from].EdgeExists(to)
}

// EdgeWeight returns the weight of the connection between two local nodes.
func (g *Genome) EdgeWeight(from, to int) (float64, bool) {
	return g.nodes[from].EdgeWeight(to)
}

// DisableEdge deactivates the connection and drops it from the live edge set.
func (g *Genome) DisableEdge(from, to int) {
	if g.nodes[from].DisableEdge(to) {
		g.numConnections--
	}
	g.removeEdge(ConnectionKey{InNodeID: from, OutNodeID: to})
}

// EnableEdge re-activates the connection. The caller guarantees that doing so
// keeps the graph acyclic.
func (g *Genome) EnableEdge(from, to int) {
	if !g.nodes[from].EnableEdge(to) {
		return
	}
	g.numConnections++
	if from != g.BiasIndex() {
		g.insertEdge(ConnectionKey{InNodeID: from, OutNodeID: to})
	}
}

// SplitEdge replaces from->to with from->new->to. The first new edge gets
// weight 1.0 and the given innovation, the second inherits the old weight and
// innovation+1. It does nothing and returns false if a node with newGlobalID
// already exists.
func (g *Genome) SplitEdge(from, to, innovation, newGlobalID int) bool {
	if g.NodeExists(newGlobalID) {
		return false
	}
	oldWeight, ok := g.EdgeWeight(from, to)
	if !ok {
		return false
	}
	g.DisableEdge(from, to)
	id := g.AddNode(newGlobalID)
	g.AddEdge(from, id, innovation, 1.0, true)
	g.AddEdge(id, to, innovation+1, oldWeight, true)
	return true
}

// RandomEdge searches for a new connection that keeps the genome acyclic.
// Sources are inputs, the bias or hidden nodes; targets are outputs or hidden
// nodes. Each candidate is inserted speculatively, probed with CheckCycle and
// removed again. The search gives up after RandomEdgeAttempts draws, so a
// false result does not prove that no valid edge exists.
func (g *Genome) RandomEdge(rng RandomSource) (ConnectionKey, bool) {
	hidden := g.NumHidden()
	if g.outputs+hidden == 0 {
		return ConnectionKey{}, false
	}
	for attempt := 0; attempt < RandomEdgeAttempts; attempt++ {
		u := intRange(rng, 0, g.inputs+hidden)
		if u > g.inputs {
			// skip over the output block
			u += g.outputs
		}
		v := g.inputs + 1 + intRange(rng, 0, g.outputs+hidden-1)
		if u == v || g.nodes[u].hasActiveEdge(v) {
			continue
		}
		g.nodes[u].AddEdge(-1, 1.0, true, v)
		cycle := g.CheckCycle()
		g.nodes[u].RemoveLastEdge()
		if !cycle {
			return ConnectionKey{InNodeID: u, OutNodeID: v}, true
		}
	}
	return ConnectionKey{}, false
}

// RandomSplit picks one live, non-bias edge uniformly at random.
func (g *Genome) RandomSplit(rng RandomSource) (ConnectionKey, bool) {
	if len(g.edges) == 0 {
		return ConnectionKey{}, false
	}
	return g.edges[rng.Intn(len(g.edges))], true
}

// Evaluate propagates an input vector through the network in topological
// order (Kahn's algorithm over active connections) and returns the output
// node values. The bias node is fixed to 1.0. A node's activation is applied
// once its last incoming active connection has been consumed; nodes without
// incoming active connections keep the value 0.
func (g *Genome) Evaluate(input []float64) ([]float64, error) {
	if len(input) != g.inputs {
		return nil, fmt.Errorf("mismatch between input count (%d) and genome input nodes (%d)", len(input), g.inputs)
	}
	inDeg := make([]int, len(g.nodes))
	values := make([]float64, len(g.nodes))
	copy(values, input)
	values[g.BiasIndex()] = 1.0

	for _, n := range g.nodes {
		for _, c := range n.Edges {
			if c.Active {
				inDeg[c.To]++
			}
		}
	}
	queue := make([]int, 0, len(g.nodes))
	for u := range g.nodes {
		if inDeg[u] == 0 {
			queue = append(queue, u)
		}
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, c := range g.nodes[u].Edges {
			if !c.Active {
				continue
			}
			values[c.To] += values[u] * c.Weight
			inDeg[c.To]--
			if inDeg[c.To] == 0 {
				values[c.To] = g.act(values[c.To])
				queue = append(queue, c.To)
			}
		}
	}
	out := make([]float64, g.outputs)
	copy(out, values[g.inputs+1:g.baseNodes()])
	return out, nil
}

// CheckCycle reports whether the active connections contain a directed cycle.
// Iterative three-colour DFS, O(nodes + active edges).
func (g *Genome) CheckCycle() bool {
	const (
		white = iota
		gray
		black
	)
	type frame struct {
		node int
		next int
	}
	color := make([]int, len(g.nodes))
	stack := make([]frame, 0, len(g.nodes))
	for root := range g.nodes {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack = append(stack, frame{node: root})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.nodes[top.node].Edges
			if top.next == len(edges) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			c := edges[top.next]
			top.next++
			if !c.Active {
				continue
			}
			switch color[c.To] {
			case gray:
				return true
			case white:
				color[c.To] = gray
				stack = append(stack, frame{node: c.To})
			}
		}
	}
	return false
}

// String returns a short description of the network followed by its genes.
func (g *Genome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Genome(Nodes: %d, Hidden: %d, Active: %d, Splittable: %d)\n",
		len(g.nodes), g.NumHidden(), g.numConnections, len(g.edges))
	for _, gene := range g.Flatten() {
		fmt.Fprintf(&b, "  %s\n", gene)
	}
	return b.String()
}

func (g *Genome) insertEdge(key ConnectionKey) {
	i := sort.Search(len(g.edges), func(i int) bool { return !lessKey(g.edges[i], key) })
	if i < len(g.edges) && g.edges[i] == key {
		return
	}
	g.edges = append(g.edges, ConnectionKey{})
	copy(g.edges[i+1:], g.edges[i:])
	g.edges[i] = key
}

func (g *Genome) removeEdge(key ConnectionKey) {
	i := sort.Search(len(g.edges), func(i int) bool { return !lessKey(g.edges[i], key) })
	if i < len(g.edges) && g.edges[i] == key {
		g.edges = append(g.edges[:i], g.edges[i+1:]...)
	}
}

// hasLiveEdge reports whether the pair is in the live edge set.
func (g *Genome) hasLiveEdge(from, to int) bool {
	key := ConnectionKey{InNodeID: from, OutNodeID: to}
	i := sort.Search(len(g.edges), func(i int) bool { return !lessKey(g.edges[i], key) })
	return i < len(g.edges) && g.edges[i] == key
}

func lessKey(a, b ConnectionKey) bool {
	if a.InNodeID != b.InNodeID {
		return a.InNodeID < b.InNodeID
	}
	return a.OutNodeID < b.OutNodeID
}
