package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hurttlocker/rolodex/internal/codec"
	"github.com/hurttlocker/rolodex/internal/profile"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadProfiles_RawCSVUsesMappingInference(t *testing.T) {
	path := writeTemp(t, "raw.csv", "Full Name,Role,Workplace\nAlice,CEO,Acme\n")

	got, err := loadProfiles(path)
	if err != nil {
		t.Fatalf("loadProfiles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(got))
	}
	if got[0].Name != "Alice" || got[0].Title != "CEO" || got[0].Company != "Acme" {
		t.Errorf("mapped fields wrong: %+v", got[0])
	}
}

func TestLoadProfiles_ExportedTabularKeepsEnrichmentPayload(t *testing.T) {
	p := profile.New()
	p.Name = "Alice"
	p.Title = "CTO"
	p.Company = "Acme"
	p.YearsOfExperience = "15"
	p.Background = "Platform work"
	p.WhatTheyDo = "Runs engineering"
	p.Achievements = "Scaled the org"
	p.Skills = []string{"Go", "Kubernetes"}
	p.EnrichmentStatus = profile.StatusSuccess
	p.EnrichmentSource = profile.SourceOraclePrimary

	path := writeTemp(t, "export.csv", codec.ExportCSV([]*profile.Profile{p}))

	got, err := loadProfiles(path)
	if err != nil {
		t.Fatalf("loadProfiles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(got))
	}
	r := got[0]
	if r.YearsOfExperience != "15" || r.Background != "Platform work" ||
		r.WhatTheyDo != "Runs engineering" || r.Achievements != "Scaled the org" {
		t.Errorf("enrichment payload dropped on re-import: %+v", r)
	}
	if !reflect.DeepEqual(r.Skills, []string{"Go", "Kubernetes"}) {
		t.Errorf("skills dropped on re-import: %v", r.Skills)
	}
	// Tabular import carries no lifecycle state.
	if r.EnrichmentStatus != profile.StatusPending {
		t.Errorf("expected pending status, got %s", r.EnrichmentStatus)
	}
}

func TestLoadProfiles_JSONSessionIsLossless(t *testing.T) {
	p := profile.New()
	p.Name = "Alice"
	p.EnrichmentStatus = profile.StatusSuccess
	p.EnrichmentSource = profile.SourceOraclePrimary
	data, err := codec.ExportSession([]*profile.Profile{p})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := writeTemp(t, "session.json", string(data))

	got, err := loadProfiles(path)
	if err != nil {
		t.Fatalf("loadProfiles: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID || got[0].EnrichmentStatus != profile.StatusSuccess {
		t.Errorf("session restore changed the record: %+v", got[0])
	}
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"query text", "--session", "s.json", "--region=EMEA"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if len(f.positional) != 1 || f.positional[0] != "query text" {
		t.Errorf("positional args wrong: %v", f.positional)
	}
	if f.session != "s.json" || f.region != "EMEA" {
		t.Errorf("flags wrong: %+v", f)
	}

	if _, err := parseFlags([]string{"--session"}); err == nil {
		t.Error("dangling flag value must error")
	}
	if _, err := parseFlags([]string{"--bogus", "x"}); err == nil {
		t.Error("unknown flag must error")
	}
}
