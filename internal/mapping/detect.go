// Package mapping infers which canonical field each source column feeds.
package mapping

import (
	"strings"

	"github.com/hurttlocker/rolodex/internal/profile"
)

// detectRule maps a lower-cased header substring to a canonical field.
// Rules are ordered; the first match wins.
type detectRule struct {
	substrings []string
	field      profile.Field
}

var detectRules = []detectRule{
	{[]string{"name"}, profile.FieldName},
	{[]string{"title", "role"}, profile.FieldTitle},
	{[]string{"company", "work"}, profile.FieldCompany},
	{[]string{"linkedin", "profile"}, profile.FieldLinkedInURL},
	{[]string{"email"}, profile.FieldEmail},
}

// previewLimit caps how many sample values a mapping carries.
const previewLimit = 3

// Detect proposes a field for every header, in header order. Pure and
// deterministic: the same input always produces the same mappings.
//
// A header with no rule match maps to ignore with AutoDetected=false. The
// preview holds the column's first non-empty values from up to the first
// three rows, so it can be shorter than three even when more rows exist.
func Detect(headers []string, rows [][]string) []profile.ColumnMapping {
	mappings := make([]profile.ColumnMapping, 0, len(headers))
	for i, header := range headers {
		m := profile.ColumnMapping{
			Header:   header,
			MappedTo: profile.FieldIgnore,
			Preview:  preview(rows, i),
		}

		lower := strings.ToLower(header)
	rules:
		for _, rule := range detectRules {
			for _, sub := range rule.substrings {
				if strings.Contains(lower, sub) {
					m.MappedTo = rule.field
					m.AutoDetected = true
					break rules
				}
			}
		}

		mappings = append(mappings, m)
	}
	return mappings
}

func preview(rows [][]string, col int) []string {
	values := make([]string, 0, previewLimit)
	for i := 0; i < len(rows) && i < previewLimit; i++ {
		if col >= len(rows[i]) {
			continue
		}
		if v := rows[i][col]; v != "" {
			values = append(values, v)
		}
	}
	return values
}
