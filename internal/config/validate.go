package config

import (
	"errors"
	"fmt"
	"strings"
)

var validFormats = map[string]bool{"csv": true, "xlsx": true, "json": true}

func Validate(cfg Config) error {
	var errs []string

	if !validFormats[cfg.App.OutputFormat] {
		errs = append(errs, fmt.Sprintf("app.output_format must be csv, xlsx or json (got %q)", cfg.App.OutputFormat))
	}
	if cfg.Search.LookbackDays < 0 {
		errs = append(errs, "search.lookback_days must be >= 0")
	}
	if cfg.Sources.YellowPages.Enabled {
		if cfg.Sources.YellowPages.BaseURL == "" {
			errs = append(errs, "sources.yellowpages.base_url is required when the source is enabled")
		}
		if cfg.Sources.YellowPages.RequestsPerSec < 0 {
			errs = append(errs, "sources.yellowpages.requests_per_sec must be >= 0")
		}
		if len(cfg.Search.Categories) == 0 {
			errs = append(errs, "search.categories must have at least 1 entry for the directory source")
		}
	}
	if (cfg.Sources.YellowPages.Enabled || cfg.Sources.Registry.Enabled) && len(cfg.Search.Locations) == 0 {
		errs = append(errs, "search.locations must have at least 1 entry")
	}

	for i, r := range cfg.Classify.Rules {
		if _, ok := prospectTypeFromLabel(r.Type); !ok {
			errs = append(errs, fmt.Sprintf("classify.rules[%d].type %q is not a known prospect type", i, r.Type))
		}
		if len(r.Any) == 0 {
			errs = append(errs, fmt.Sprintf("classify.rules[%d].any must have at least 1 term", i))
		}
		for j, term := range r.Any {
			if strings.TrimSpace(term) == "" {
				errs = append(errs, fmt.Sprintf("classify.rules[%d].any[%d] cannot be empty", i, j))
			}
		}
	}

	for name, w := range map[string]int{
		"phone":      cfg.Scoring.Phone,
		"address":    cfg.Scoring.Address,
		"website":    cfg.Scoring.Website,
		"classified": cfg.Scoring.Classified,
		"registry":   cfg.Scoring.Registry,
	} {
		if w < 0 || w > 100 {
			errs = append(errs, fmt.Sprintf("scoring.%s must be in 0..100", name))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
