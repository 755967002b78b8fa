package mapping

import (
	"reflect"
	"testing"

	"github.com/hurttlocker/rolodex/internal/profile"
)

func TestDetect_RuleTable(t *testing.T) {
	for _, tc := range []struct {
		header string
		want   profile.Field
		auto   bool
	}{
		{"Name", profile.FieldName, true},
		{"Full Name", profile.FieldName, true},
		{"Job Title", profile.FieldTitle, true},
		{"Role", profile.FieldTitle, true},
		{"Company", profile.FieldCompany, true},
		{"Place of Work", profile.FieldCompany, true},
		{"LinkedIn URL", profile.FieldLinkedInURL, true},
		{"Profile Link", profile.FieldLinkedInURL, true},
		{"Email Address", profile.FieldEmail, true},
		{"Ticket Type", profile.FieldIgnore, false},
		{"", profile.FieldIgnore, false},
	} {
		got := Detect([]string{tc.header}, nil)
		if len(got) != 1 {
			t.Fatalf("%q: expected 1 mapping, got %d", tc.header, len(got))
		}
		if got[0].MappedTo != tc.want {
			t.Errorf("%q: mapped to %s, want %s", tc.header, got[0].MappedTo, tc.want)
		}
		if got[0].AutoDetected != tc.auto {
			t.Errorf("%q: autoDetected=%v, want %v", tc.header, got[0].AutoDetected, tc.auto)
		}
	}
}

func TestDetect_FirstRuleWins(t *testing.T) {
	// "Company Name" contains both "name" and "company"; the name rule is
	// first in the table.
	got := Detect([]string{"Company Name"}, nil)
	if got[0].MappedTo != profile.FieldName {
		t.Errorf("expected first matching rule to win, got %s", got[0].MappedTo)
	}
}

func TestDetect_OneMappingPerHeaderInOrder(t *testing.T) {
	headers := []string{"Name", "Junk", "Email"}
	got := Detect(headers, nil)
	if len(got) != len(headers) {
		t.Fatalf("expected %d mappings, got %d", len(headers), len(got))
	}
	for i, m := range got {
		if m.Header != headers[i] {
			t.Errorf("mapping %d out of order: %q", i, m.Header)
		}
	}
}

func TestDetect_PreviewSkipsEmptyValues(t *testing.T) {
	rows := [][]string{
		{"Alice"},
		{""},
		{"Bob"},
		{"Carol"}, // beyond the 3-row window
	}
	got := Detect([]string{"Name"}, rows)
	if !reflect.DeepEqual(got[0].Preview, []string{"Alice", "Bob"}) {
		t.Errorf("unexpected preview: %v", got[0].Preview)
	}
}

func TestDetect_PreviewHandlesShortRows(t *testing.T) {
	rows := [][]string{
		{"Alice", "CEO"},
		{"Bob"}, // missing title column
	}
	got := Detect([]string{"Name", "Title"}, rows)
	if !reflect.DeepEqual(got[1].Preview, []string{"CEO"}) {
		t.Errorf("unexpected preview for ragged rows: %v", got[1].Preview)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	headers := []string{"Name", "Job Title", "Ticket"}
	rows := [][]string{{"Alice", "CEO", "VIP"}}

	first := Detect(headers, rows)
	second := Detect(headers, rows)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Detect is not deterministic:\n%v\n%v", first, second)
	}
}
