package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/engine"
)

// Rule is one classification entry: any listed keyword maps a prospect to
// the given type. Order in the file is evaluation order.
type Rule struct {
	Type string   `yaml:"type"`
	Any  []string `yaml:"any"`
}

type Config struct {
	App struct {
		DataDir      string `yaml:"data_dir"`
		OutputDir    string `yaml:"output_dir"`
		OutputFormat string `yaml:"output_format"` // csv, xlsx or json
	} `yaml:"app"`

	Search struct {
		Locations    []string `yaml:"locations"`
		Categories   []string `yaml:"categories"`
		LookbackDays int      `yaml:"lookback_days"`
	} `yaml:"search"`

	Sources struct {
		YellowPages struct {
			Enabled        bool    `yaml:"enabled"`
			BaseURL        string  `yaml:"base_url"`
			RequestsPerSec float64 `yaml:"requests_per_sec"`
			Burst          int     `yaml:"burst"`
		} `yaml:"yellowpages"`

		Registry struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"registry"`
	} `yaml:"sources"`

	Classify struct {
		Rules []Rule `yaml:"rules"`
	} `yaml:"classify"`

	Scoring engine.Weights `yaml:"scoring"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// EngineRules converts the YAML table into the engine's rule type, skipping
// entries whose type label is unknown (Validate reports those).
func (c Config) EngineRules() []engine.Rule {
	out := make([]engine.Rule, 0, len(c.Classify.Rules))
	for _, r := range c.Classify.Rules {
		t, ok := prospectTypeFromLabel(r.Type)
		if !ok {
			continue
		}
		out = append(out, engine.Rule{Type: t, Any: r.Any})
	}
	return out
}

func prospectTypeFromLabel(label string) (domain.ProspectType, bool) {
	switch domain.ProspectType(label) {
	case domain.TypeAutoDealer, domain.TypeVehicleBuyer, domain.TypeBodyShop, domain.TypeFleet:
		return domain.ProspectType(label), true
	}
	return domain.TypeUnknown, false
}
