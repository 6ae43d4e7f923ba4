package neat

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPopulation builds a small seeded population. modify, if non-nil,
// adjusts the default config before the population is created.
func newTestPopulation(t *testing.T, modify func(*Config)) *Population {
	t.Helper()
	config := DefaultConfig()
	config.Neat.PopSize = 30
	if modify != nil {
		modify(config)
	}
	p, err := NewPopulation(config, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return p
}

func randomFitness(rng *rand.Rand, n int) []float64 {
	fitness := make([]float64, n)
	for i := range fitness {
		fitness[i] = rng.Float64()
	}
	return fitness
}

// requireSpeciesPartition checks that every genome belongs to exactly one species.
func requireSpeciesPartition(t *testing.T, p *Population) {
	t.Helper()
	seen := make([]bool, len(p.Genomes))
	for _, s := range p.Species {
		require.NotEmpty(t, s.Members)
		require.NotNil(t, s.Leader)
		for _, idx := range s.Members {
			require.False(t, seen[idx], "genome %d in two species", idx)
			seen[idx] = true
		}
	}
	for idx, ok := range seen {
		require.True(t, ok, "genome %d has no species", idx)
	}
}

func TestNewPopulation(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) {
		c.Neat.NumInputs = 3
		c.Neat.NumOutputs = 2
	})

	require.Len(t, p.Genomes, 30)
	for _, g := range p.Genomes {
		assert.Equal(t, 8, g.NumConnections())
		assert.Equal(t, 6, g.NumNodes())
	}
	assert.Equal(t, 0, p.Generation)
	assert.Nil(t, p.BestGenome)
	assert.True(t, math.IsInf(p.BestFitness, -1))
	assert.NotEqual(t, [16]byte{}, [16]byte(p.RunID))
	requireSpeciesPartition(t, p)
}

func TestNewPopulationWithoutConnections(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) { c.Neat.ConnectEnds = false })

	for _, g := range p.Genomes {
		assert.Equal(t, 0, g.NumConnections())
	}
	require.Len(t, p.Species, 1, "edgeless genomes are all compatible")
}

func TestNewPopulationInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Neat.PopSize = 0
	_, err := NewPopulation(config, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	config = DefaultConfig()
	config.Neat.Activation = "softmax"
	_, err = NewPopulation(config, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestMutateAddsEdge(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) { c.Mutation.SplitProb = 0 })
	g := NewGenome(2, 1, Sigmoid)

	require.True(t, p.Mutate(g))
	genes := g.Flatten()
	require.Len(t, genes, 1)
	assert.Equal(t, 1.0, genes[0].Weight)
	assert.True(t, genes[0].Enabled)
	assert.Equal(t, genes[0].Key.InNodeID, genes[0].Innovation, "seeded innovation of input/bias->output")
}

func TestMutateReenablesDisabledEdge(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) {
		c.Neat.NumInputs = 1
		c.Mutation.SplitProb = 0
	})
	g := NewGenome(1, 1, Sigmoid)
	g.AddEdge(0, 2, 0, 0.3, false)
	g.AddEdge(1, 2, 1, 0.3, true)

	require.True(t, p.Mutate(g))
	assert.Equal(t, 2, g.NumConnections())
	assert.Len(t, g.Flatten(), 2)
}

func TestMutateSplitsEdge(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) { c.Mutation.SplitProb = 1 })
	g := NewGenome(2, 1, Sigmoid)
	g.AddEdge(1, 3, 1, 0.7, true)

	require.True(t, p.Mutate(g))
	assert.Equal(t, 1, g.NumHidden())
	assert.Equal(t, 2, g.NumConnections())
	assert.True(t, g.NodeExists(4))
	requireConsistent(t, g)

	g = NewGenome(2, 1, Sigmoid)
	assert.False(t, p.Mutate(g), "nothing to split")
}

func TestEvaluateAll(t *testing.T) {
	p := newTestPopulation(t, nil)

	fitness, err := p.EvaluateAll([]float64{1, 0}, func(input, output []float64) float64 {
		return 1 - math.Abs(output[0]-1)
	})
	require.NoError(t, err)
	require.Len(t, fitness, len(p.Genomes))
	for _, f := range fitness {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}

	_, err = p.EvaluateAll([]float64{1}, func(input, output []float64) float64 { return 0 })
	assert.Error(t, err)
}

func TestNextGeneration(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) {
		c.Mutation.MutationRate = 1
		c.Mutation.DisableProb = 0.05
	})
	rng := rand.New(rand.NewSource(7))

	for gen := 0; gen < 25; gen++ {
		require.NoError(t, p.NextGeneration(randomFitness(rng, len(p.Genomes))))
		require.Len(t, p.Genomes, 30)
		assert.Equal(t, gen+1, p.Generation)
		for _, g := range p.Genomes {
			requireConsistent(t, g)
		}
		requireSpeciesPartition(t, p)
	}
	assert.Nil(t, p.BestGenome, "best tracking belongs to RunGeneration")
	assert.Greater(t, p.Innovations.InnovationCount(), 3)
}

func TestNextGenerationFitnessEdgeCases(t *testing.T) {
	p := newTestPopulation(t, nil)
	n := len(p.Genomes)

	require.NoError(t, p.NextGeneration(make([]float64, n)), "all zero")

	negative := make([]float64, n)
	for i := range negative {
		negative[i] = -float64(i) - 1
	}
	require.NoError(t, p.NextGeneration(negative))
	require.Len(t, p.Genomes, n)
	assert.Equal(t, 2, p.Generation)
}

func TestNextGenerationRejectsBadFitness(t *testing.T) {
	p := newTestPopulation(t, nil)

	err := p.NextGeneration(make([]float64, 3))
	assert.ErrorIs(t, err, ErrFitnessLength)

	bad := make([]float64, len(p.Genomes))
	bad[4] = math.NaN()
	err = p.NextGeneration(bad)
	assert.ErrorIs(t, err, ErrInvalidFitness)

	bad[4] = math.Inf(1)
	assert.ErrorIs(t, p.NextGeneration(bad), ErrInvalidFitness)
	assert.Equal(t, 0, p.Generation)
}

func TestChampionSurvives(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) {
		c.Neat.ConnectEnds = false
		c.Reproduction.ChampionMinSize = 0
	})
	require.Len(t, p.Species, 1)

	// Give exactly one genome a distinctive structure and the best fitness.
	best := p.Genomes[3]
	best.AddEdge(0, 3, 0, 0.25, true)
	fitness := make([]float64, len(p.Genomes))
	fitness[3] = 1

	require.NoError(t, p.NextGeneration(fitness))
	found := false
	for _, g := range p.Genomes {
		genes := g.Flatten()
		if len(genes) == 1 && genes[0].Innovation == 0 && genes[0].Weight == 0.25 {
			found = true
		}
	}
	assert.True(t, found, "species champion is copied unchanged")
	assert.Equal(t, 1, best.NumConnections())
}

func TestRunGenerationThreshold(t *testing.T) {
	p := newTestPopulation(t, nil)
	allOnes := func(genomes []*Genome) ([]float64, error) {
		fitness := make([]float64, len(genomes))
		for i := range fitness {
			fitness[i] = 1
		}
		return fitness, nil
	}

	winner, err := p.RunGeneration(allOnes)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 0, p.Generation)
	assert.Equal(t, 1.0, p.BestFitness)

	p = newTestPopulation(t, func(c *Config) { c.Neat.NoFitnessTermination = true })
	winner, err = p.RunGeneration(allOnes)
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Equal(t, 1, p.Generation)
}

func TestRunGenerationErrors(t *testing.T) {
	p := newTestPopulation(t, nil)
	boom := errors.New("boom")

	_, err := p.RunGeneration(func([]*Genome) ([]float64, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, err = p.RunGeneration(func([]*Genome) ([]float64, error) { return []float64{1}, nil })
	assert.ErrorIs(t, err, ErrFitnessLength)
	assert.Equal(t, 0, p.Generation)
}

func TestRunGenerationRejectsNonFiniteFitness(t *testing.T) {
	for _, bad := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		p := newTestPopulation(t, nil)
		fitnessFunc := func(genomes []*Genome) ([]float64, error) {
			fitness := make([]float64, len(genomes))
			fitness[0] = bad
			return fitness, nil
		}

		winner, err := p.RunGeneration(fitnessFunc)
		assert.ErrorIs(t, err, ErrInvalidFitness, "fitness %v", bad)
		assert.Nil(t, winner)
		assert.Nil(t, p.BestGenome)
		assert.True(t, math.IsInf(p.BestFitness, -1), "fitness %v must not be recorded", bad)
		assert.Equal(t, 0, p.Generation)
	}
}

func TestRunGenerationBestNeverRegresses(t *testing.T) {
	p := newTestPopulation(t, func(c *Config) { c.Neat.NoFitnessTermination = true })
	scores := []float64{0.5, 0.9, 0.2, 0.7}
	for gen, top := range scores {
		fitnessFunc := func(genomes []*Genome) ([]float64, error) {
			fitness := make([]float64, len(genomes))
			fitness[gen%len(genomes)] = top
			return fitness, nil
		}
		_, err := p.RunGeneration(fitnessFunc)
		require.NoError(t, err)
	}
	assert.Equal(t, 0.9, p.BestFitness)
	require.NotNil(t, p.BestGenome)
	assert.Equal(t, len(scores), p.Generation)
}

func TestStats(t *testing.T) {
	p := newTestPopulation(t, nil)

	s := p.Stats([]float64{1, 2, 3})
	assert.Equal(t, p.RunID, s.RunID)
	assert.Equal(t, 3.0, s.MaxFitness)
	assert.Equal(t, 1.0, s.MinFitness)
	assert.InDelta(t, 2.0, s.MeanFitness, 1e-12)
	assert.InDelta(t, 1.0, s.StdevFitness, 1e-12)
	assert.Equal(t, 4.0, s.MeanNodes)
	assert.Equal(t, 3.0, s.MeanConnections)
	assert.Equal(t, len(p.Species), s.SpeciesCount)

	s = p.Stats([]float64{5})
	assert.Equal(t, 0.0, s.StdevFitness)
}
