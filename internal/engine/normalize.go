package engine

import (
	"strings"

	"buyerfinder/internal/domain"
)

// minPhoneDigits is the fewest digits a phone number can have and still be
// usable as a comparison key (US numbers with area code).
const minPhoneDigits = 10

// nameKeys are checked in order; the first non-empty field becomes the
// prospect's display name.
var nameKeys = []string{"name", "owner_name", "business_name"}

// Normalize converts one raw source record into a canonical Prospect.
// Records without a usable name (blank or shorter than 2 characters after
// trimming) are rejected: ok is false and the record never enters the
// pipeline.
func Normalize(r domain.RawRecord) (domain.Prospect, bool) {
	var name string
	for _, k := range nameKeys {
		if name = cleanText(r.Fields[k]); name != "" {
			break
		}
	}
	if len([]rune(name)) < 2 {
		return domain.Prospect{}, false
	}

	p := domain.Prospect{
		Name:     name,
		Address:  cleanText(r.Fields["address"]),
		Website:  strings.TrimSpace(r.Fields["website"]),
		Category: cleanText(r.Fields["category"]),
		Type:     domain.TypeUnknown,
		Sources:  []domain.SourceKind{r.Source},
	}

	if digits := phoneDigits(r.Fields["phone"]); len(digits) >= minPhoneDigits {
		p.Phone = digits
		p.PhoneDisplay = cleanText(r.Fields["phone"])
	}

	switch strings.ToLower(strings.TrimSpace(r.Fields["recent_registration"])) {
	case "true", "yes", "1":
		p.RecentRegistration = true
	}

	return p, true
}

func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
