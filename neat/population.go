package neat

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrFitnessLength is returned when a fitness vector does not have one
	// entry per genome.
	ErrFitnessLength = errors.New("fitness vector length does not match population size")
	// ErrInvalidFitness is returned for NaN or infinite fitness values.
	ErrInvalidFitness = errors.New("fitness values must be finite")
)

// MetricFunc scores the output a genome produced for an input. Whether larger
// is better is up to the driver; the population only ranks the values.
type MetricFunc func(input, output []float64) float64

// FitnessFunc evaluates a whole generation and returns one fitness value per
// genome, in order.
type FitnessFunc func(genomes []*Genome) ([]float64, error)

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config      *Config
	Genomes     []*Genome          // Current generation
	Species     []*Species         // Species of the current generation
	Innovations *InnovationTracker // Shared by every genome of the run
	Generation  int
	BestGenome  *Genome // Best genome found so far
	BestFitness float64
	RunID       uuid.UUID
	Logger      *slog.Logger

	inputs     int
	outputs    int
	activation ActivationFunc
	rng        RandomSource
}

// NewPopulation creates the first generation from the config and speciates it.
func NewPopulation(config *Config, rng RandomSource) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	act, err := GetActivation(config.Neat.Activation)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve activation: %w", err)
	}

	p := &Population{
		Config:      config,
		Innovations: NewInnovationTracker(config.Neat.NumInputs, config.Neat.NumOutputs),
		BestFitness: math.Inf(-1),
		RunID:       uuid.New(),
		Logger:      slog.Default(),
		inputs:      config.Neat.NumInputs,
		outputs:     config.Neat.NumOutputs,
		activation:  act,
		rng:         rng,
	}
	p.Genomes = make([]*Genome, config.Neat.PopSize)
	for i := range p.Genomes {
		g := NewGenome(p.inputs, p.outputs, act)
		if config.Neat.ConnectEnds {
			g.ConnectEnds(rng, config.Genome.MaxWeight)
		}
		p.Genomes[i] = g
	}
	p.Species = p.Speciate(p.Genomes)
	return p, nil
}

// Mutate applies one structural mutation to a genome: with SplitProb an
// existing edge is split, otherwise a new acyclic edge is added (or an
// existing disabled one re-enabled). Historical ids come from the
// population's InnovationTracker. It reports whether the genome changed.
func (p *Population) Mutate(g *Genome) bool {
	changed := false
	if chance(p.rng, p.Config.Mutation.DisableProb) {
		changed = g.RandomDisable(p.rng)
	}

	if chance(p.rng, p.Config.Mutation.SplitProb) {
		e, ok := g.RandomSplit(p.rng)
		if !ok {
			return changed
		}
		from := g.LocalToGlobal(e.InNodeID)
		to := g.LocalToGlobal(e.OutNodeID)
		node := p.Innovations.SplitNode(from, to)
		inno := p.Innovations.EdgeInnovation(from, node)
		if next := p.Innovations.EdgeInnovation(node, to); next != inno+1 {
			panic(fmt.Sprintf("split of %d->%d has non-consecutive innovations %d, %d", from, to, inno, next))
		}
		return g.SplitEdge(e.InNodeID, e.OutNodeID, inno, node) || changed
	}

	e, ok := g.RandomEdge(p.rng)
	if !ok {
		return changed
	}
	inno := p.Innovations.EdgeInnovation(g.LocalToGlobal(e.InNodeID), g.LocalToGlobal(e.OutNodeID))
	if g.EdgeExists(e.InNodeID, e.OutNodeID) {
		g.EnableEdge(e.InNodeID, e.OutNodeID)
	} else {
		g.AddEdge(e.InNodeID, e.OutNodeID, inno, 1.0, true)
	}
	return true
}

// EvaluateAll runs every genome on one input and scores it with metric.
func (p *Population) EvaluateAll(input []float64, metric MetricFunc) ([]float64, error) {
	fitness := make([]float64, len(p.Genomes))
	for i, g := range p.Genomes {
		out, err := g.Evaluate(input)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate genome %d: %w", i, err)
		}
		fitness[i] = metric(input, out)
	}
	return fitness, nil
}

// NextGeneration replaces the current generation using the given fitness
// vector (one value per genome). Fitness is shared within species, offspring
// slots are allocated per species, children are bred and mutated, and the new
// generation is speciated against the current leaders.
//
// BestGenome is only updated by RunGeneration.
func (p *Population) NextGeneration(fitness []float64) error {
	if err := p.validateFitness(fitness); err != nil {
		return err
	}
	minFitness := math.Inf(1)
	for _, f := range fitness {
		minFitness = math.Min(minFitness, f)
	}
	if len(p.Species) == 0 {
		p.Species = p.Speciate(p.Genomes)
	}

	// Explicit fitness sharing on a non-negative scale.
	shift := 0.0
	if minFitness < 0 {
		shift = -minFitness
	}
	speciesFitness := make([]float64, len(p.Species))
	for s, sp := range p.Species {
		total := 0.0
		for _, idx := range sp.Members {
			total += (fitness[idx] + shift) / float64(len(sp.Members))
		}
		sp.Fitness = total
		speciesFitness[s] = total
	}

	popSize := p.Config.Neat.PopSize
	spawn := computeSpawnAmounts(speciesFitness, popSize)

	next := make([]offspring, 0, popSize)
	for s, sp := range p.Species {
		members := make([]*Genome, len(sp.Members))
		fit := make([]float64, len(sp.Members))
		for k, idx := range sp.Members {
			members[k] = p.Genomes[idx]
			fit[k] = fitness[idx]
		}
		next = append(next, p.createSpecies(members, fit, spawn[s])...)
	}
	if len(next) != popSize {
		panic(fmt.Sprintf("generation %d produced %d offspring, want %d", p.Generation, len(next), popSize))
	}

	newGen := make([]*Genome, len(next))
	for i, child := range next {
		if !child.champion {
			if chance(p.rng, p.Config.Mutation.MutationRate) {
				p.Mutate(child.genome)
			}
			p.mutateWeights(child.genome)
		}
		newGen[i] = child.genome
	}

	p.Species = p.Speciate(newGen)
	p.Genomes = newGen
	p.Generation++
	return nil
}

// RunGeneration executes a single generation of the NEAT algorithm.
// Returns the winning genome if the fitness threshold is met this generation, otherwise nil.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (*Genome, error) {
	genStartTime := time.Now()
	log := p.Logger.With("run", p.RunID.String(), "generation", p.Generation)

	fitness, err := fitnessFunc(p.Genomes)
	if err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}
	if err := p.validateFitness(fitness); err != nil {
		return nil, err
	}

	if p.trackBest(fitness) {
		log.Info("new best genome", "fitness", p.BestFitness, "nodes", p.BestGenome.NumNodes(), "connections", p.BestGenome.NumConnections())
	}
	stats := p.Stats(fitness)
	log.Info("generation evaluated",
		"species", stats.SpeciesCount,
		"max_fitness", stats.MaxFitness,
		"mean_fitness", stats.MeanFitness,
		"stdev_fitness", stats.StdevFitness,
		"mean_nodes", stats.MeanNodes,
	)

	if !p.Config.Neat.NoFitnessTermination && p.BestGenome != nil && p.BestFitness >= p.Config.Neat.FitnessThreshold {
		return p.BestGenome, nil
	}

	if err := p.NextGeneration(fitness); err != nil {
		return nil, err
	}
	log.Debug("generation finished", "species", len(p.Species), "elapsed", time.Since(genStartTime))
	return nil, nil
}

// validateFitness checks that fitness holds one finite value per genome.
func (p *Population) validateFitness(fitness []float64) error {
	if len(fitness) != len(p.Genomes) {
		return fmt.Errorf("generation %d: got %d values for %d genomes: %w", p.Generation, len(fitness), len(p.Genomes), ErrFitnessLength)
	}
	for i, f := range fitness {
		if !isFinite(f) {
			return fmt.Errorf("generation %d: genome %d has fitness %v: %w", p.Generation, i, f, ErrInvalidFitness)
		}
	}
	return nil
}

// trackBest records the best genome of the current generation if it beats
// the best seen so far.
func (p *Population) trackBest(fitness []float64) bool {
	best := -1
	for i, f := range fitness {
		if best == -1 || f > fitness[best] {
			best = i
		}
	}
	if best == -1 || fitness[best] <= p.BestFitness {
		return false
	}
	p.BestFitness = fitness[best]
	p.BestGenome = p.Genomes[best].Clone()
	return true
}
