package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig         `yaml:"neat"`
	Genome       GenomeConfig       `yaml:"genome"`
	Mutation     MutationConfig     `yaml:"mutation"`
	SpeciesSet   SpeciesSetConfig   `yaml:"species_set"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
}

// NeatConfig holds the population-level parameters.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size" yaml:"pop_size"`
	NumInputs            int     `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs           int     `ini:"num_outputs" yaml:"num_outputs"`
	Activation           string  `ini:"activation" yaml:"activation"`     // Name in ActivationFunctions
	ConnectEnds          bool    `ini:"connect_ends" yaml:"connect_ends"` // Start fully input->output connected
	FitnessThreshold     float64 `ini:"fitness_threshold" yaml:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination" yaml:"no_fitness_termination"`
}

// GenomeConfig holds connection weight parameters.
type GenomeConfig struct {
	MaxWeight    float64 `ini:"max_weight" yaml:"max_weight"`       // Weights live in [-max_weight, max_weight]
	PerturbDelta float64 `ini:"perturb_delta" yaml:"perturb_delta"` // Max step of a weight perturbation
}

// MutationConfig holds the per-child mutation probabilities.
type MutationConfig struct {
	MutationRate      float64 `ini:"mutation_rate" yaml:"mutation_rate"` // Structural mutation chance per child
	SplitProb         float64 `ini:"split_prob" yaml:"split_prob"`       // Split vs add-connection choice
	DisableProb       float64 `ini:"disable_prob" yaml:"disable_prob"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate" yaml:"weight_mutate_rate"`
	WeightReplaceRate float64 `ini:"weight_replace_rate" yaml:"weight_replace_rate"`
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	ExcessCoefficient      float64 `ini:"excess_coefficient" yaml:"excess_coefficient"`
	DisjointCoefficient    float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	WeightCoefficient      float64 `ini:"weight_coefficient" yaml:"weight_coefficient"`
	SmallGenomeThreshold   int     `ini:"small_genome_threshold" yaml:"small_genome_threshold"` // Below this N is taken as 1
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	SurvivalThreshold  float64 `ini:"survival_threshold" yaml:"survival_threshold"` // Fraction of a species eligible as parents
	ChampionMinSize    int     `ini:"champion_min_size" yaml:"champion_min_size"`   // Species larger than this keep their champion
	DisableInheritProb float64 `ini:"disable_inherit_prob" yaml:"disable_inherit_prob"`
}

// DefaultConfig returns a configuration with the classic NEAT constants.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:          150,
			NumInputs:        2,
			NumOutputs:       1,
			Activation:       "sigmoid",
			ConnectEnds:      true,
			FitnessThreshold: 0.95,
		},
		Genome: GenomeConfig{
			MaxWeight:    8.0,
			PerturbDelta: 0.8,
		},
		Mutation: MutationConfig{
			MutationRate:      0.10,
			SplitProb:         0.30,
			WeightMutateRate:  0.80,
			WeightReplaceRate: 0.10,
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityThreshold: 3.0,
			ExcessCoefficient:      0.8,
			DisjointCoefficient:    0.8,
			WeightCoefficient:      0.4,
			SmallGenomeThreshold:   20,
		},
		Reproduction: ReproductionConfig{
			SurvivalThreshold:  0.35,
			ChampionMinSize:    5,
			DisableInheritProb: 0.75,
		},
	}
}

// LoadConfig loads configuration parameters from a file on top of
// DefaultConfig. Files ending in .yaml or .yml are decoded as YAML, anything
// else as INI with one section per sub-config.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to decode config file '%s': %w", filePath, err)
		}
	default:
		if err := loadIni(filePath, config); err != nil {
			return nil, err
		}
	}

	config.Neat.Activation = strings.TrimSpace(config.Neat.Activation)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadIni(filePath string, config *Config) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	sections := []struct {
		name   string
		target interface{}
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultMutation", &config.Mutation},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultReproduction", &config.Reproduction},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return nil
}

// Validate checks that every parameter is in range.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Neat.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Neat.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if _, err := GetActivation(c.Neat.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Genome.MaxWeight <= 0 {
		return fmt.Errorf("config error: max_weight must be positive")
	}
	if c.Genome.PerturbDelta < 0 {
		return fmt.Errorf("config error: perturb_delta cannot be negative")
	}
	probs := []struct {
		name  string
		value float64
	}{
		{"mutation_rate", c.Mutation.MutationRate},
		{"split_prob", c.Mutation.SplitProb},
		{"disable_prob", c.Mutation.DisableProb},
		{"weight_mutate_rate", c.Mutation.WeightMutateRate},
		{"weight_replace_rate", c.Mutation.WeightReplaceRate},
		{"survival_threshold", c.Reproduction.SurvivalThreshold},
		{"disable_inherit_prob", c.Reproduction.DisableInheritProb},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}
	if c.Mutation.WeightMutateRate+c.Mutation.WeightReplaceRate > 1 {
		return fmt.Errorf("config error: weight_mutate_rate + weight_replace_rate cannot exceed 1")
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if c.SpeciesSet.ExcessCoefficient < 0 || c.SpeciesSet.DisjointCoefficient < 0 || c.SpeciesSet.WeightCoefficient < 0 {
		return fmt.Errorf("config error: compatibility coefficients cannot be negative")
	}
	if c.SpeciesSet.SmallGenomeThreshold < 0 {
		return fmt.Errorf("config error: small_genome_threshold cannot be negative")
	}
	if c.Reproduction.ChampionMinSize < 0 {
		return fmt.Errorf("config error: champion_min_size cannot be negative")
	}
	return nil
}
