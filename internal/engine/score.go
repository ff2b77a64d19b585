package engine

import "buyerfinder/internal/domain"

// Weights is the additive scoring table. Each factor contributes its weight
// once; the sum is clamped to 0..100 so scores stay comparable across runs.
type Weights struct {
	Phone      int `yaml:"phone"`
	Address    int `yaml:"address"`
	Website    int `yaml:"website"`
	Classified int `yaml:"classified"`
	Registry   int `yaml:"registry"`
}

func DefaultWeights() Weights {
	return Weights{
		Phone:      30,
		Address:    20,
		Website:    10,
		Classified: 20,
		Registry:   20,
	}
}

// Score computes the 0..100 relevance score from the prospect's final field
// state. Deterministic: same prospect, same score.
func (e *Engine) Score(p domain.Prospect) int {
	score := 0
	if p.Phone != "" {
		score += e.weights.Phone
	}
	if p.Address != "" {
		score += e.weights.Address
	}
	if p.Website != "" {
		score += e.weights.Website
	}
	if p.Type != domain.TypeUnknown {
		score += e.weights.Classified
	}
	if p.HasSource(domain.SourceRegistry) {
		score += e.weights.Registry
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
