package engine

import (
	"strings"

	"buyerfinder/internal/domain"
)

// IdentityKey derives the string used to decide whether two prospects are
// the same real-world entity. Strongest signal first:
//
//  1. normalized phone digits
//  2. name + address (case-folded, whitespace-collapsed)
//  3. name alone — may over-merge distinct entities that share a name;
//     kept deliberately, see the pipeline tests
func IdentityKey(p domain.Prospect) string {
	if p.Phone != "" {
		return "tel:" + p.Phone
	}
	name := foldKey(p.Name)
	if addr := foldKey(p.Address); addr != "" {
		return "loc:" + name + "|" + addr
	}
	return "name:" + name
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Deduplicate collapses prospects sharing an identity key into one record
// per entity, preserving first-seen order of surviving identities. Single
// pass, linear in the input length. Running it on its own output is a no-op.
func Deduplicate(in []domain.Prospect) []domain.Prospect {
	out := make([]domain.Prospect, 0, len(in))
	index := make(map[string]int, len(in))

	for _, p := range in {
		key := IdentityKey(p)
		if i, seen := index[key]; seen {
			merge(&out[i], p)
			continue
		}
		index[key] = len(out)
		p.FirstSeen = len(out)
		out = append(out, p)
	}
	return out
}

// merge folds src into dst. dst is the first-seen record: its name and
// position are kept. Scalars prefer the non-empty value; on conflict the
// registry value wins over a directory one, otherwise first-seen stays.
func merge(dst *domain.Prospect, src domain.Prospect) {
	srcRegistry := src.HasSource(domain.SourceRegistry)
	overwrite := func(dstVal string) bool {
		if dstVal == "" {
			return true
		}
		return srcRegistry && !dst.HasSource(domain.SourceRegistry)
	}

	if src.Phone != "" && overwrite(dst.Phone) {
		dst.Phone = src.Phone
		dst.PhoneDisplay = src.PhoneDisplay
	}
	if src.Address != "" && overwrite(dst.Address) {
		dst.Address = src.Address
	}
	if src.Website != "" && overwrite(dst.Website) {
		dst.Website = src.Website
	}
	if src.Category != "" && overwrite(dst.Category) {
		dst.Category = src.Category
	}
	if src.RecentRegistration {
		dst.RecentRegistration = true
	}

	for _, k := range src.Sources {
		dst.AddSource(k)
	}
}
