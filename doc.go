// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// Genomes are directed acyclic networks whose nodes carry a historical (global)
// id next to their position in the genome. Structural mutations, splitting an
// edge or adding a new acyclic one, are numbered by a population-wide
// innovation registry so that crossover can align genes of unrelated genomes.
// A population clusters its genomes into species by compatibility distance,
// shares fitness within each species and breeds the next generation from the
// fittest members.
//
// The algorithm itself lives in the neat subpackage; neat/nn compiles a
// genome into a feed-forward network for repeated activation.
//
// Basic usage:
//
//	// Load configuration (INI or YAML)
//	config, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
//	pop, err := neat.NewPopulation(config, rng)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations with your fitness function
//	for i := 0; i < 100; i++ {
//		winner, err := pop.RunGeneration(evalGenomes)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//
//		if winner != nil {
//			fmt.Println("Solution found!")
//			break
//		}
//	}
package neat
