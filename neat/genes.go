package neat

import (
	"fmt"
	"sort"
)

// ConnectionKey identifies a directed (in, out) node pair. Depending on the
// context the ids are either local (genome layout) or global (historical).
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// ConnectionGene is the flattened, layout-independent record of one
// connection. It is keyed by global node ids and the innovation number and is
// the only structured value exchanged between genomes.
type ConnectionGene struct {
	Key        ConnectionKey // Global (in_node_id, out_node_id)
	Innovation int
	Weight     float64
	Enabled    bool
}

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Inno: %d, Key: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.Key.InNodeID, cg.Key.OutNodeID, cg.Weight, cg.Enabled)
}

// Flatten returns the genome's connections as gene records sorted ascending by
// innovation number. The ordering is what crossover and compatibility rely on
// to align two genomes.
func (g *Genome) Flatten() []ConnectionGene {
	genes := make([]ConnectionGene, 0, g.countEdges())
	for _, n := range g.nodes {
		for _, c := range n.Edges {
			genes = append(genes, ConnectionGene{
				Key:        ConnectionKey{InNodeID: n.GlobalID, OutNodeID: g.nodes[c.To].GlobalID},
				Innovation: c.Innovation,
				Weight:     c.Weight,
				Enabled:    c.Active,
			})
		}
	}
	sort.Slice(genes, func(i, j int) bool {
		if genes[i].Innovation != genes[j].Innovation {
			return genes[i].Innovation < genes[j].Innovation
		}
		if genes[i].Key.InNodeID != genes[j].Key.InNodeID {
			return genes[i].Key.InNodeID < genes[j].Key.InNodeID
		}
		return genes[i].Key.OutNodeID < genes[j].Key.OutNodeID
	})
	return genes
}

// UnFlatten rebuilds a genome from gene records. Base nodes (inputs, bias,
// outputs) keep their fixed slots; every hidden global id referenced by the
// genes gets a dense local id in ascending global order.
func UnFlatten(genes []ConnectionGene, inputs, outputs int, act ActivationFunc) *Genome {
	g := newSkeleton(genes, inputs, outputs, act)
	for _, gene := range genes {
		g.AddEdge(g.index[gene.Key.InNodeID], g.index[gene.Key.OutNodeID], gene.Innovation, gene.Weight, gene.Enabled)
	}
	return g
}

// Clone is a full structural round trip through Flatten/UnFlatten, so no
// local layout is shared between the copies.
func (g *Genome) Clone() *Genome {
	return UnFlatten(g.Flatten(), g.inputs, g.outputs, g.act)
}

// newSkeleton creates an edgeless genome holding every node referenced by genes.
func newSkeleton(genes []ConnectionGene, inputs, outputs int, act ActivationFunc) *Genome {
	g := NewGenome(inputs, outputs, act)
	base := g.baseNodes()
	seen := make(map[int]bool)
	hidden := []int{}
	for _, gene := range genes {
		for _, id := range [2]int{gene.Key.InNodeID, gene.Key.OutNodeID} {
			if id >= base && !seen[id] {
				seen[id] = true
				hidden = append(hidden, id)
			}
		}
	}
	sort.Ints(hidden)
	for _, id := range hidden {
		g.AddNode(id)
	}
	return g
}

func (g *Genome) countEdges() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.Edges)
	}
	return total
}
