// Package codec round-trips canonical profiles through the two transport
// formats at the pipeline boundary: the tabular export and the structured
// session format.
//
// The tabular format is lossy for skills containing literal commas; skills
// are serialized as one comma-joined quoted field and re-split on commas at
// import. The structured format is the lossless one.
package codec

import (
	"strings"

	"github.com/hurttlocker/rolodex/internal/profile"
	"github.com/hurttlocker/rolodex/internal/tabular"
)

// ExportHeaders is the fixed tabular header row, in order.
var ExportHeaders = []string{
	"Name",
	"Title",
	"Company",
	"Region",
	"LinkedIn",
	"Years of Experience",
	"Background",
	"Responsibilities",
	"Achievements",
	"Skills",
}

// ExportCSV serializes profiles to the tabular format. Every field value is
// double-quoted with internal quotes doubled, so commas, quotes, and
// embedded newlines survive tokenization.
func ExportCSV(profiles []*profile.Profile) string {
	var sb strings.Builder

	writeRow(&sb, ExportHeaders)
	for _, p := range profiles {
		writeRow(&sb, []string{
			p.Name,
			p.Title,
			p.Company,
			p.Region,
			p.LinkedInURL,
			p.YearsOfExperience,
			p.Background,
			p.WhatTheyDo,
			p.Achievements,
			strings.Join(p.Skills, ", "),
		})
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}

// IsExportedTabular reports whether a header row came from ExportCSV: every
// export header must be present (any order). Raw source exports carry their
// own ad-hoc headers and go through mapping inference instead.
func IsExportedTabular(headers []string) bool {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, h := range ExportHeaders {
		if !present[h] {
			return false
		}
	}
	return true
}

// ImportCSV parses a previously-exported tabular file back into profiles.
func ImportCSV(text string) []*profile.Profile {
	headers, rows := tabular.Tokenize(text)
	return ImportRows(headers, rows)
}

// ImportRows rebuilds profiles from already-tokenized exported tabular data.
// Columns are matched by header name, so column order does not matter.
// Unrecognized columns are ignored; missing columns leave fields empty.
// Imported profiles get fresh IDs and a pending status; the tabular format
// does not carry lifecycle state.
func ImportRows(headers []string, rows [][]string) []*profile.Profile {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}

	cell := func(row []string, header string) string {
		i, ok := index[header]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	profiles := make([]*profile.Profile, 0, len(rows))
	for _, row := range rows {
		p := profile.New()
		p.Name = cell(row, "Name")
		p.Title = cell(row, "Title")
		p.Company = cell(row, "Company")
		p.Region = cell(row, "Region")
		p.LinkedInURL = cell(row, "LinkedIn")
		p.YearsOfExperience = cell(row, "Years of Experience")
		p.Background = cell(row, "Background")
		p.WhatTheyDo = cell(row, "Responsibilities")
		p.Achievements = cell(row, "Achievements")
		p.Skills = splitSkills(cell(row, "Skills"))
		if p.Name == "" {
			p.Name = profile.PlaceholderName
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// splitSkills re-splits the comma-joined skills field, stripping surrounding
// quotes and whitespace from each entry. Skills that contained literal commas
// come back split; the documented tabular round-trip loss.
func splitSkills(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		s := strings.TrimSpace(part)
		s = strings.Trim(s, `"`)
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		return nil
	}
	return skills
}
