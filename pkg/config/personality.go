package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/kinda/pkg/chaos"
)

// PersonalityFile is the YAML shape for a custom personality profile. Every
// field that is omitted falls back to the corresponding value from the
// built-in personality named by Base (default "playful"), so a file only
// needs to state what it changes.
type PersonalityFile struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`

	Probabilities map[string]float64 `yaml:"probabilities"`

	FuzzRanges map[string]struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"fuzz_ranges"`

	ChaosMultiplier     *float64 `yaml:"chaos_multiplier"`
	CascadeThreshold    *int     `yaml:"cascade_threshold"`
	InstabilityGain     *float64 `yaml:"instability_gain"`
	InstabilityDecay    *float64 `yaml:"instability_decay"`
	DecayEvery          *int     `yaml:"decay_every"`
	ConfidenceThreshold *float64 `yaml:"confidence_threshold"`
	CascadeSensitivity  *float64 `yaml:"cascade_sensitivity"`
}

// LoadPersonality reads a custom personality profile from a YAML file and
// returns it as a chaos.Personality ready for chaos.InitWith. The file's
// settings overlay the built-in base profile it names, the same
// overrides-over-defaults layering Load applies to kinda.yaml.
func LoadPersonality(path string) (chaos.Personality, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chaos.Personality{}, fmt.Errorf("failed to read personality file: %w", err)
	}

	var pf PersonalityFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return chaos.Personality{}, fmt.Errorf("failed to parse personality file: %w", err)
	}
	return pf.Personality()
}

// Personality materializes pf over its base profile, validating as it goes.
func (pf *PersonalityFile) Personality() (chaos.Personality, error) {
	if pf.Name == "" {
		return chaos.Personality{}, fmt.Errorf("personality: name is required")
	}

	baseName := pf.Base
	if baseName == "" {
		baseName = "playful"
	}
	p, ok := chaos.Lookup(baseName)
	if !ok {
		return chaos.Personality{}, fmt.Errorf("personality: unknown base %q", baseName)
	}
	p.Name = pf.Name

	// Maps are copied before overlay so the built-in profiles stay immutable.
	probs := make(map[chaos.ProbabilityKey]float64, len(p.BaseProbabilities))
	for k, v := range p.BaseProbabilities {
		probs[k] = v
	}
	for k, v := range pf.Probabilities {
		if v < 0 || v > 1 {
			return chaos.Personality{}, fmt.Errorf("personality: probability %q = %v is outside [0, 1]", k, v)
		}
		probs[chaos.ProbabilityKey(k)] = v
	}
	p.BaseProbabilities = probs

	ranges := make(map[chaos.FuzzKind]chaos.FuzzRange, len(p.FuzzRanges))
	for k, v := range p.FuzzRanges {
		ranges[k] = v
	}
	for k, v := range pf.FuzzRanges {
		if v.Min > v.Max {
			return chaos.Personality{}, fmt.Errorf("personality: fuzz range %q has min %v > max %v", k, v.Min, v.Max)
		}
		ranges[chaos.FuzzKind(k)] = chaos.FuzzRange{Min: v.Min, Max: v.Max}
	}
	p.FuzzRanges = ranges

	if pf.ChaosMultiplier != nil {
		p.ChaosMultiplier = *pf.ChaosMultiplier
	}
	if pf.CascadeThreshold != nil {
		p.CascadeThreshold = *pf.CascadeThreshold
	}
	if pf.InstabilityGain != nil {
		p.InstabilityGain = *pf.InstabilityGain
	}
	if pf.InstabilityDecay != nil {
		p.InstabilityDecay = *pf.InstabilityDecay
	}
	if pf.DecayEvery != nil {
		p.DecayEvery = *pf.DecayEvery
	}
	if pf.ConfidenceThreshold != nil {
		if *pf.ConfidenceThreshold < 0 || *pf.ConfidenceThreshold > 1 {
			return chaos.Personality{}, fmt.Errorf("personality: confidence_threshold %v is outside [0, 1]", *pf.ConfidenceThreshold)
		}
		p.ConfidenceThreshold = *pf.ConfidenceThreshold
	}
	if pf.CascadeSensitivity != nil {
		if *pf.CascadeSensitivity < 0 || *pf.CascadeSensitivity > 1 {
			return chaos.Personality{}, fmt.Errorf("personality: cascade_sensitivity %v is outside [0, 1]", *pf.CascadeSensitivity)
		}
		p.CascadeSensitivity = *pf.CascadeSensitivity
	}

	return p, nil
}
