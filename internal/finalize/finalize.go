// Package finalize turns tokenized rows plus a column mapping into canonical
// profiles ready for enrichment.
package finalize

import (
	"github.com/hurttlocker/rolodex/internal/profile"
)

// Finalize produces one pending profile per row, applying the mapping the
// caller supplies. Columns mapped to ignore are skipped. Every profile comes
// out with a non-empty name: a name cell that cleans to nothing falls back to
// the placeholder label.
//
// LinkedIn cells get URL extraction instead of cleaning; when no URL-shaped
// substring is present the field stays unset so downstream code can tell "no
// URL" from "URL present". All other mapped fields take the cleaned value
// verbatim, empty included.
func Finalize(mappings []profile.ColumnMapping, rows [][]string) []*profile.Profile {
	profiles := make([]*profile.Profile, 0, len(rows))
	for _, row := range rows {
		p := profile.New()
		for col, m := range mappings {
			if m.MappedTo == profile.FieldIgnore || col >= len(row) {
				continue
			}
			raw := row[col]

			switch m.MappedTo {
			case profile.FieldName:
				p.Name = Clean(raw)
			case profile.FieldTitle:
				p.Title = Clean(raw)
			case profile.FieldCompany:
				p.Company = Clean(raw)
			case profile.FieldEmail:
				p.Email = Clean(raw)
			case profile.FieldLinkedInURL:
				if url := ExtractURL(raw); url != "" {
					p.LinkedInURL = url
				}
			}
		}
		if p.Name == "" {
			p.Name = profile.PlaceholderName
		}
		profiles = append(profiles, p)
	}
	return profiles
}
