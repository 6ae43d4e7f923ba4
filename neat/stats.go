package neat

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one evaluated generation.
type GenerationStats struct {
	RunID           uuid.UUID
	Generation      int
	SpeciesCount    int
	MaxFitness      float64
	MinFitness      float64
	MeanFitness     float64
	StdevFitness    float64
	MeanNodes       float64
	MeanConnections float64
}

// Stats computes summary statistics of the current generation for the given
// fitness vector.
func (p *Population) Stats(fitness []float64) GenerationStats {
	s := GenerationStats{
		RunID:        p.RunID,
		Generation:   p.Generation,
		SpeciesCount: len(p.Species),
	}
	if len(fitness) > 0 {
		s.MaxFitness = floats.Max(fitness)
		s.MinFitness = floats.Min(fitness)
		s.MeanFitness = stat.Mean(fitness, nil)
	}
	if len(fitness) > 1 {
		s.StdevFitness = stat.StdDev(fitness, nil)
	}
	if len(p.Genomes) > 0 {
		nodes := make([]float64, len(p.Genomes))
		conns := make([]float64, len(p.Genomes))
		for i, g := range p.Genomes {
			nodes[i] = float64(g.NumNodes())
			conns[i] = float64(g.NumConnections())
		}
		s.MeanNodes = stat.Mean(nodes, nil)
		s.MeanConnections = stat.Mean(conns, nil)
	}
	return s
}
