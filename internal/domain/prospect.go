package domain

// SourceKind identifies where a raw record came from.
type SourceKind string

const (
	SourceDirectory SourceKind = "directory"
	SourceRegistry  SourceKind = "registry"
)

// ProspectType is the category a consolidated prospect is classified into.
type ProspectType string

const (
	TypeAutoDealer   ProspectType = "Auto Dealer"
	TypeVehicleBuyer ProspectType = "Vehicle Buyer"
	TypeBodyShop     ProspectType = "Body Shop"
	TypeFleet        ProspectType = "Fleet"
	TypeUnknown      ProspectType = "Unknown"
)

// RawRecord is one unprocessed record from a single source. Fields use the
// source adapter's canonical keys (name, phone, address, website, category,
// recent_registration). A RawRecord is never mutated once built.
type RawRecord struct {
	Source SourceKind
	Fields map[string]string
}

// Prospect is the canonical lead record produced by the consolidation engine.
type Prospect struct {
	Name         string
	Phone        string // digits only, comparison form; empty if < 10 digits
	PhoneDisplay string
	Address      string
	Website      string
	Category     string

	RecentRegistration bool // registry-only indicator

	Type  ProspectType
	Score int

	Sources   []SourceKind // in order of first contribution, never shrinks
	FirstSeen int          // arrival position of the first record for this identity
}

func (p *Prospect) HasSource(k SourceKind) bool {
	for _, s := range p.Sources {
		if s == k {
			return true
		}
	}
	return false
}

func (p *Prospect) AddSource(k SourceKind) {
	if !p.HasSource(k) {
		p.Sources = append(p.Sources, k)
	}
}
