package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hurttlocker/rolodex/internal/oracle"
	"github.com/hurttlocker/rolodex/internal/profile"
)

// mockRanker implements Ranker with a fixed response.
type mockRanker struct {
	hits  []oracle.RankHit
	err   error
	calls int
	query string
}

func (m *mockRanker) Rank(_ context.Context, query string, _ []oracle.Candidate) ([]oracle.RankHit, error) {
	m.calls++
	m.query = query
	return m.hits, m.err
}

func fixtures() []*profile.Profile {
	mk := func(name, title, company, region string, skills ...string) *profile.Profile {
		p := profile.New()
		p.Name = name
		p.Title = title
		p.Company = company
		p.Region = region
		p.Skills = skills
		return p
	}
	return []*profile.Profile{
		mk("Alice", "CTO", "Acme", "North America", "Go", "Kubernetes"),
		mk("Bob", "VP Sales", "Globex", "EMEA", "Negotiation"),
		mk("Carol", "Engineer", "Acme", "EMEA", "Rust"),
	}
}

func TestSearch_RegionFilter(t *testing.T) {
	m := NewMerger(nil)
	got := m.Search(context.Background(), "", fixtures(), "EMEA")
	if len(got) != 2 {
		t.Fatalf("expected 2 EMEA profiles, got %d", len(got))
	}
	for _, p := range got {
		if p.Region != "EMEA" {
			t.Errorf("region filter leaked %q", p.Region)
		}
	}
}

func TestSearch_AllRegionsSentinel(t *testing.T) {
	m := NewMerger(nil)
	got := m.Search(context.Background(), "", fixtures(), AllRegions)
	if len(got) != 3 {
		t.Errorf("All Regions must not exclude anything, got %d", len(got))
	}
}

func TestSearch_EmptyQueryNoRanking(t *testing.T) {
	ranker := &mockRanker{hits: []oracle.RankHit{{ID: "x", Score: 90}}}
	m := NewMerger(ranker)

	got := m.Search(context.Background(), "", fixtures(), AllRegions)
	if ranker.calls != 0 {
		t.Errorf("empty query must not call the ranker")
	}
	for _, p := range got {
		if p.Score != nil {
			t.Errorf("empty query must not attach scores")
		}
	}
}

func TestSearch_ShortQueryUsesSubstring(t *testing.T) {
	ranker := &mockRanker{}
	m := NewMerger(ranker)

	got := m.Search(context.Background(), "acme", fixtures(), AllRegions)
	if ranker.calls != 0 {
		t.Errorf("short query must not call the ranker")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 substring matches, got %d", len(got))
	}
}

func TestSearch_SubstringCoversSkillsAndBackground(t *testing.T) {
	profiles := fixtures()
	profiles[2].Background = "Shipped embedded firmware"
	m := NewMerger(nil)

	if got := m.Search(context.Background(), "rust", profiles, AllRegions); len(got) != 1 {
		t.Errorf("skills not searched: %d matches", len(got))
	}
	if got := m.Search(context.Background(), "firmware", profiles, AllRegions); len(got) != 1 {
		t.Errorf("background not searched: %d matches", len(got))
	}
}

func TestSearch_LongQueryRanked(t *testing.T) {
	profiles := fixtures()
	ranker := &mockRanker{hits: []oracle.RankHit{
		{ID: profiles[2].ID, Score: 80, Reason: "strong systems background"},
		{ID: profiles[0].ID, Score: 95, Reason: "platform leadership"},
	}}
	m := NewMerger(ranker)

	query := "experienced platform engineering leader"
	got := m.Search(context.Background(), query, profiles, AllRegions)

	if ranker.calls != 1 {
		t.Fatalf("expected exactly one rank call, got %d", ranker.calls)
	}
	if ranker.query != query {
		t.Errorf("query not passed through: %q", ranker.query)
	}
	if len(got) != 2 {
		t.Fatalf("unranked candidates must drop out, got %d results", len(got))
	}
	if got[0].Name != "Alice" || got[1].Name != "Carol" {
		t.Errorf("not sorted by descending score: %s, %s", got[0].Name, got[1].Name)
	}
	if *got[0].Score != 95 || got[0].MatchReason != "platform leadership" {
		t.Errorf("score/reason pair not attached: %v %q", got[0].Score, got[0].MatchReason)
	}
	// Bob got no hit and must carry no ranking fields.
	if profiles[1].Score != nil || profiles[1].MatchReason != "" {
		t.Errorf("unranked profile carries ranking fields")
	}
}

func TestSearch_StableTieBreak(t *testing.T) {
	profiles := fixtures()
	ranker := &mockRanker{hits: []oracle.RankHit{
		{ID: profiles[0].ID, Score: 70},
		{ID: profiles[1].ID, Score: 70},
		{ID: profiles[2].ID, Score: 70},
	}}
	m := NewMerger(ranker)

	got := m.Search(context.Background(), "a query over ten chars", profiles, AllRegions)
	if got[0].Name != "Alice" || got[1].Name != "Bob" || got[2].Name != "Carol" {
		t.Errorf("ties must keep input order: %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestSearch_EmptyRankFallsBackToSubstring(t *testing.T) {
	ranker := &mockRanker{hits: nil}
	m := NewMerger(ranker)

	// 20-char query, ranker finds nothing relevant.
	got := m.Search(context.Background(), "acme acme acme acme2", fixtures(), AllRegions)
	if ranker.calls != 1 {
		t.Fatalf("expected one rank call, got %d", ranker.calls)
	}
	// Substring over the same query matches nothing here, but the path must
	// be the deterministic one, not an error.
	if len(got) != 0 {
		t.Errorf("expected substring fallback result, got %d", len(got))
	}

	got = m.Search(context.Background(), "acme engineer carol", fixtures(), AllRegions)
	if len(got) != 0 {
		t.Errorf("substring matching is conjunctive on the whole query string, got %d", len(got))
	}
}

func TestSearch_RankErrorFallsBackToSubstring(t *testing.T) {
	ranker := &mockRanker{err: errors.New("oracle down")}
	m := NewMerger(ranker)

	got := m.Search(context.Background(), "engineer at acme corp", fixtures(), AllRegions)
	if ranker.calls != 1 {
		t.Fatalf("expected one rank call, got %d", ranker.calls)
	}
	for _, p := range got {
		if p.Score != nil {
			t.Errorf("fallback path must not attach scores")
		}
	}
}

func TestSearch_ReplacesPreviousScores(t *testing.T) {
	profiles := fixtures()
	ranker := &mockRanker{hits: []oracle.RankHit{{ID: profiles[0].ID, Score: 90, Reason: "match"}}}
	m := NewMerger(ranker)

	m.Search(context.Background(), "platform leadership query", profiles, AllRegions)
	if profiles[0].Score == nil {
		t.Fatal("expected score from first search")
	}

	// Second search takes the deterministic path; stale scores must clear.
	m.Search(context.Background(), "acme", profiles, AllRegions)
	if profiles[0].Score != nil || profiles[0].MatchReason != "" {
		t.Errorf("stale ranking fields survived a new search")
	}
}

func TestSearch_RegionSwitchClearsOutOfFilterScores(t *testing.T) {
	profiles := fixtures()
	ranker := &mockRanker{hits: []oracle.RankHit{{ID: profiles[0].ID, Score: 90, Reason: "old query"}}}
	m := NewMerger(ranker)

	m.Search(context.Background(), "platform leadership query", profiles, AllRegions)
	if profiles[0].Score == nil {
		t.Fatal("expected score from first search")
	}

	// Second search filters to EMEA; Alice (North America) is outside the
	// filtered base but her stale score must still clear.
	ranker.hits = nil
	m.Search(context.Background(), "embedded systems lead", profiles, "EMEA")
	if profiles[0].Score != nil || profiles[0].MatchReason != "" {
		t.Errorf("stale ranking fields survived on out-of-filter profile: score=%v reason=%q",
			profiles[0].Score, profiles[0].MatchReason)
	}
}

func TestSearch_ThresholdCountsRunesNotBytes(t *testing.T) {
	ranker := &mockRanker{}
	m := NewMerger(ranker)

	// Nine runes, 27 bytes. Short queries stay deterministic.
	m.Search(context.Background(), "分散システム経験者", fixtures(), AllRegions)
	if ranker.calls != 0 {
		t.Errorf("short multi-byte query must not call the ranker")
	}

	// Twelve runes crosses the threshold regardless of encoding.
	m.Search(context.Background(), "分散システム経験者求むよ", fixtures(), AllRegions)
	if ranker.calls != 1 {
		t.Errorf("twelve-rune query must call the ranker, got %d calls", ranker.calls)
	}
}

func TestSearch_RegionFilterAppliesBeforeRanking(t *testing.T) {
	profiles := fixtures()
	ranker := &mockRanker{hits: []oracle.RankHit{{ID: profiles[0].ID, Score: 90}}}
	m := NewMerger(ranker)

	// Alice is North America; an EMEA-filtered rank can't include her.
	got := m.Search(context.Background(), "platform leadership query", profiles, "EMEA")
	if len(got) != 0 {
		t.Errorf("rank hit outside the filtered base leaked: %d", len(got))
	}
}
