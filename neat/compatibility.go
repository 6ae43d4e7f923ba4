package neat

import "math"

// Compatibility computes the NEAT distance between two genomes from their
// innovation-sorted gene lists:
//
//	c1*E/N + c2*D/N + c3*W
//
// E counts excess genes (left over once the shorter list is exhausted), D
// counts disjoint genes on both sides, W is the mean absolute weight
// difference of matching genes (0 when nothing matches). N is the size of the
// larger genome, or 1 when that is below SmallGenomeThreshold.
func Compatibility(u, v *Genome, config *SpeciesSetConfig) float64 {
	genesU := u.Flatten()
	genesV := v.Flatten()

	i, j := 0, 0
	disjoint, excess, matching := 0, 0, 0
	weightDiff := 0.0
	for i < len(genesU) && j < len(genesV) {
		a, b := genesU[i].Innovation, genesV[j].Innovation
		switch {
		case a == b:
			weightDiff += math.Abs(genesU[i].Weight - genesV[j].Weight)
			matching++
			i++
			j++
		case a < b:
			disjoint++
			i++
		default:
			disjoint++
			j++
		}
	}
	excess = (len(genesU) - i) + (len(genesV) - j)

	n := max(len(genesU), len(genesV))
	if n < config.SmallGenomeThreshold || n == 0 {
		n = 1
	}
	N := float64(n)

	d := config.ExcessCoefficient*float64(excess)/N + config.DisjointCoefficient*float64(disjoint)/N
	if matching > 0 {
		d += config.WeightCoefficient * weightDiff / float64(matching)
	}
	return d
}
