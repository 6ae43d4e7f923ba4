package neat

// Species represents a group of genetically similar genomes.
type Species struct {
	Members []int   // Indices into the generation the species was built from.
	Leader  *Genome // Compatibility reference for the next generation's clustering.
	Fitness float64 // Total shared fitness, filled in by NextGeneration.
}

// Speciate partitions a generation into species. The current species' leaders
// seed the clustering: each genome joins the first leader closer than the
// compatibility threshold, otherwise it founds a new species and leads it.
// Empty species are dropped and every surviving species gets a new leader
// drawn uniformly from its members.
func (p *Population) Speciate(genomes []*Genome) []*Species {
	threshold := p.Config.SpeciesSet.CompatibilityThreshold

	species := make([]*Species, 0, len(p.Species))
	for _, s := range p.Species {
		if s.Leader != nil && len(s.Members) > 0 {
			species = append(species, &Species{Leader: s.Leader})
		}
	}

	for idx, g := range genomes {
		placed := false
		for _, s := range species {
			if p.Delta(s.Leader, g) < threshold {
				s.Members = append(s.Members, idx)
				placed = true
				break
			}
		}
		if !placed {
			species = append(species, &Species{Leader: g, Members: []int{idx}})
		}
	}

	alive := species[:0]
	for _, s := range species {
		if len(s.Members) == 0 {
			continue
		}
		s.Leader = genomes[s.Members[p.rng.Intn(len(s.Members))]]
		alive = append(alive, s)
	}
	return alive
}

// Delta is the compatibility distance between two genomes under the
// population's coefficients.
func (p *Population) Delta(u, v *Genome) float64 {
	return Compatibility(u, v, &p.Config.SpeciesSet)
}
