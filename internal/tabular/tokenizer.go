// Package tabular provides the quote-aware tokenizer for raw contact exports.
//
// The exports this pipeline sees come from event platforms and CRM dumps with
// loose quoting, so the scanner favors resilience over strictness: it never
// returns an error, an unterminated quote is closed implicitly at end of
// input, and ragged rows pass through for the caller to deal with.
package tabular

import "strings"

// Tokenize splits raw text into a header row and ordered data rows.
//
// Scanning is a single left-to-right pass with an in-quotes flag. A double
// quote toggles the flag, except a doubled quote inside quotes which emits a
// literal quote. Outside quotes a comma ends the field and a newline (\n,
// \r\n, or bare \r) ends the field and the row. Field values are trimmed of
// surrounding whitespace once, after the whole field is assembled.
//
// Empty input yields empty headers and no rows.
func Tokenize(text string) (headers []string, rows [][]string) {
	var (
		all      [][]string
		fields   []string
		acc      strings.Builder
		inQuotes bool
	)

	endField := func() {
		fields = append(fields, strings.TrimSpace(acc.String()))
		acc.Reset()
	}

	// A row is emitted only when it holds something: at least one completed
	// field boundary, or a non-empty accumulator. Blank lines vanish.
	endRow := func() {
		if len(fields) == 0 && strings.TrimSpace(acc.String()) == "" {
			acc.Reset()
			return
		}
		endField()
		all = append(all, fields)
		fields = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				acc.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case !inQuotes && c == ',':
			endField()
		case !inQuotes && (c == '\n' || c == '\r'):
			if c == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			acc.WriteRune(c)
		}
	}

	// Flush a trailing row that lacked a terminating newline.
	if len(fields) > 0 || strings.TrimSpace(acc.String()) != "" {
		endField()
		all = append(all, fields)
	}

	if len(all) == 0 {
		return []string{}, nil
	}
	return all[0], all[1:]
}
