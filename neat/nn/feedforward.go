package nn

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/neatdag/neat"
)

// Incoming is one active connection feeding a node.
type Incoming struct {
	From   int
	Weight float64
}

// FeedForwardNetwork is a genome compiled for repeated activation: the
// evaluation order is computed once and every node knows its inputs.
type FeedForwardNetwork struct {
	NumInputs     int
	NumOutputs    int
	Bias          int          // Local id of the bias node
	NodeEvalOrder []int        // Topologically sorted local ids of non-input nodes
	Inputs        [][]Incoming // Per node, its active incoming connections
	Activation    neat.ActivationFunc
	numNodes      int
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a genome.
// It performs a topological sort to determine the activation order and fails
// if the active connections contain a cycle.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	nodes := g.Nodes()
	dg := simple.NewDirectedGraph()
	for i := range nodes {
		dg.AddNode(simple.Node(int64(i)))
	}

	inputs := make([][]Incoming, len(nodes))
	for _, n := range nodes {
		for _, c := range n.Edges {
			if !c.Active {
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(int64(n.LocalID)), simple.Node(int64(c.To))))
			inputs[c.To] = append(inputs[c.To], Incoming{From: n.LocalID, Weight: c.Weight})
		}
	}

	sorted, err := topo.Sort(dg)
	if err != nil {
		return nil, fmt.Errorf("failed topological sort: %w", err)
	}

	order := make([]int, 0, len(sorted))
	for _, n := range sorted {
		id := int(n.ID())
		if id <= g.BiasIndex() {
			continue
		}
		order = append(order, id)
	}

	return &FeedForwardNetwork{
		NumInputs:     g.NumInputs(),
		NumOutputs:    g.NumOutputs(),
		Bias:          g.BiasIndex(),
		NodeEvalOrder: order,
		Inputs:        inputs,
		Activation:    g.Activation(),
		numNodes:      len(nodes),
	}, nil
}

// Activate computes the network's output for a given slice of input values.
// Nodes without active incoming connections output 0, matching Genome.Evaluate.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != net.NumInputs {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), net.NumInputs)
	}

	values := make([]float64, net.numNodes)
	copy(values, inputs)
	values[net.Bias] = 1.0

	for _, id := range net.NodeEvalOrder {
		in := net.Inputs[id]
		if len(in) == 0 {
			continue
		}
		sum := 0.0
		for _, c := range in {
			sum += values[c.From] * c.Weight
		}
		values[id] = net.Activation(sum)
	}

	outputs := make([]float64, net.NumOutputs)
	copy(outputs, values[net.Bias+1:net.Bias+1+net.NumOutputs])
	return outputs, nil
}
