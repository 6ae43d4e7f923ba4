package neat

import (
	"fmt"
	"math"
	"sort"
)

// Breed creates a child from two parents, fitter first. Genes are merged by
// innovation number:
//   - matching genes take the weight and flag of either parent uniformly;
//     when exactly one parent has the gene disabled the child is disabled
//     with probability DisableInheritProb,
//   - genes only the fitter parent has are always inherited,
//   - genes only the other parent has are dropped.
//
// The child's nodes are those referenced by the fitter parent's genes.
func (p *Population) Breed(fitter, other *Genome) *Genome {
	genesU := fitter.Flatten()
	genesV := other.Flatten()
	child := newSkeleton(genesU, p.inputs, p.outputs, p.activation)

	// Edges disabled in the fitter parent but active in the child. The fitter
	// parent's active edges are acyclic, so disabling these restores the
	// invariant if the merge closed a cycle.
	var reenabled []ConnectionKey

	add := func(gene ConnectionGene, weight float64, enabled bool) {
		u := child.index[gene.Key.InNodeID]
		v := child.index[gene.Key.OutNodeID]
		if u == v {
			panic(fmt.Sprintf("crossover produced self-loop on global node %d", gene.Key.InNodeID))
		}
		child.AddEdge(u, v, gene.Innovation, weight, enabled)
		if enabled && !gene.Enabled {
			reenabled = append(reenabled, ConnectionKey{InNodeID: u, OutNodeID: v})
		}
	}

	i, j := 0, 0
	for i < len(genesU) && j < len(genesV) {
		a, b := genesU[i], genesV[j]
		switch {
		case a.Innovation == b.Innovation:
			if a.Key != b.Key {
				panic(fmt.Sprintf("crossover misalignment on innovation %d: %v vs %v", a.Innovation, a.Key, b.Key))
			}
			picked := a
			if chance(p.rng, 0.5) {
				picked = b
			}
			enabled := picked.Enabled
			if a.Enabled != b.Enabled {
				enabled = !chance(p.rng, p.Config.Reproduction.DisableInheritProb)
			}
			add(a, picked.Weight, enabled)
			i++
			j++
		case a.Innovation < b.Innovation:
			add(a, a.Weight, a.Enabled)
			i++
		default:
			j++
		}
	}
	for ; i < len(genesU); i++ {
		add(genesU[i], genesU[i].Weight, genesU[i].Enabled)
	}

	if len(reenabled) > 0 && child.CheckCycle() {
		for _, e := range reenabled {
			child.DisableEdge(e.InNodeID, e.OutNodeID)
		}
	}
	return child
}

// computeSpawnAmounts splits popSize offspring between species in proportion
// to their fitness. Each species first gets floor(fitness*popSize/total);
// the remaining slots are handed out one at a time, cycling through the
// species from fittest to least fit. The result always sums to popSize.
func computeSpawnAmounts(speciesFitness []float64, popSize int) []int {
	spawnAmounts := make([]int, len(speciesFitness))
	if len(speciesFitness) == 0 {
		return spawnAmounts
	}

	total := 0.0
	for _, f := range speciesFitness {
		total += f
	}

	assigned := 0
	if total > 0 && isFinite(total) {
		for i, f := range speciesFitness {
			n := int(math.Floor(f * float64(popSize) / total))
			if n < 0 {
				n = 0
			}
			spawnAmounts[i] = n
			assigned += n
		}
	}

	order := make([]int, len(speciesFitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return speciesFitness[order[a]] > speciesFitness[order[b]]
	})

	// Floating point error can push the floors one over the target.
	for k := len(order) - 1; assigned > popSize; k-- {
		if k < 0 {
			k = len(order) - 1
		}
		if idx := order[k]; spawnAmounts[idx] > 0 {
			spawnAmounts[idx]--
			assigned--
		}
	}
	for k := 0; assigned < popSize; k = (k + 1) % len(order) {
		spawnAmounts[order[k]]++
		assigned++
	}
	return spawnAmounts
}

// offspring is a child genome together with whether it is an unmodified champion.
type offspring struct {
	genome   *Genome
	champion bool
}

// createSpecies produces n children from one species' members. Members are
// ranked by fitness; species larger than ChampionMinSize pass their best
// genome on unchanged. Parents are drawn uniformly from the top
// SurvivalThreshold fraction and the fitter one is always passed first.
func (p *Population) createSpecies(members []*Genome, fitness []float64, n int) []offspring {
	if len(members) != len(fitness) {
		panic(fmt.Sprintf("species has %d members but %d fitness values", len(members), len(fitness)))
	}
	children := make([]offspring, 0, n)
	if n <= 0 || len(members) == 0 {
		return children
	}

	rank := make([]int, len(members))
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(a, b int) bool {
		return fitness[rank[a]] > fitness[rank[b]]
	})

	if len(members) > p.Config.Reproduction.ChampionMinSize {
		children = append(children, offspring{genome: members[rank[0]].Clone(), champion: true})
	}

	top := int(math.Ceil(p.Config.Reproduction.SurvivalThreshold * float64(len(members))))
	if top < 1 {
		top = 1
	}
	if top > len(members) {
		top = len(members)
	}

	for len(children) < n {
		a := rank[p.rng.Intn(top)]
		b := rank[p.rng.Intn(top)]
		if fitness[b] > fitness[a] {
			a, b = b, a
		}
		children = append(children, offspring{genome: p.Breed(members[a], members[b])})
	}
	return children
}

// mutateWeights perturbs all weights of a child with WeightMutateRate, or
// replaces them with WeightReplaceRate.
func (p *Population) mutateWeights(g *Genome) {
	r := p.rng.Float64()
	if r < p.Config.Mutation.WeightMutateRate {
		g.PerturbWeights(p.rng, p.Config.Genome.PerturbDelta, p.Config.Genome.MaxWeight)
		return
	}
	if r < p.Config.Mutation.WeightMutateRate+p.Config.Mutation.WeightReplaceRate {
		g.RandomizeWeights(p.rng, p.Config.Genome.MaxWeight)
	}
}
