package engine

import (
	"strings"

	"buyerfinder/internal/domain"
)

// Rule maps a set of keywords to a prospect type. Rules are evaluated in
// order against the prospect's name and category; the first hit wins.
type Rule struct {
	Type domain.ProspectType
	Any  []string
}

// DefaultRules mirror the stock keyword lists shipped in config.yml.
func DefaultRules() []Rule {
	return []Rule{
		{Type: domain.TypeVehicleBuyer, Any: []string{"buyer", "cash for cars", "we buy", "wholesale"}},
		{Type: domain.TypeAutoDealer, Any: []string{"dealer", "auto sales", "motors", "automotive", "auto", "car"}},
		{Type: domain.TypeBodyShop, Any: []string{"body shop", "collision", "repair"}},
		{Type: domain.TypeFleet, Any: []string{"rental", "leasing", "fleet"}},
	}
}

// Classify assigns a prospect type. A registry-sourced record with a recent
// registration beats every keyword rule; after that, case-insensitive
// substring matching over name and category in rule order.
func (e *Engine) Classify(p domain.Prospect) domain.ProspectType {
	if p.RecentRegistration && p.HasSource(domain.SourceRegistry) {
		return domain.TypeVehicleBuyer
	}

	text := strings.ToLower(p.Name + " " + p.Category)
	for _, r := range e.rules {
		for _, needle := range r.Any {
			n := strings.ToLower(strings.TrimSpace(needle))
			if n == "" {
				continue
			}
			if strings.Contains(text, n) {
				return r.Type
			}
		}
	}
	return domain.TypeUnknown
}
