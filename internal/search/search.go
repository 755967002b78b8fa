// Package search merges deterministic substring filtering with oracle-ranked
// scoring over an in-memory profile set.
//
// Short queries always take the deterministic path. Longer queries hand the
// candidate set to the oracle's rank capability; rank failure or an empty
// rank result silently falls through to substring matching, so search always
// answers.
package search

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hurttlocker/rolodex/internal/oracle"
	"github.com/hurttlocker/rolodex/internal/profile"
)

// AllRegions is the region filter sentinel that disables region filtering.
const AllRegions = "All Regions"

// rankThreshold is the query length, in runes, above which the oracle
// ranker is used.
const rankThreshold = 10

// Ranker is the one oracle capability the merger needs.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []oracle.Candidate) ([]oracle.RankHit, error)
}

// Merger combines substring search with oracle ranking.
type Merger struct {
	ranker Ranker
}

// NewMerger creates a merger. A nil ranker is allowed; every query then takes
// the deterministic path.
func NewMerger(ranker Ranker) *Merger {
	return &Merger{ranker: ranker}
}

// Search filters and optionally ranks profiles. Each invocation replaces the
// previous result set entirely: stale score/reason pairs from earlier
// searches are cleared before any new ones attach.
//
// The region filter applies first (exact match, or pass-through for the
// AllRegions sentinel). An empty query returns the region-filtered set
// unchanged. The merger makes at most one rank call per invocation.
func (m *Merger) Search(ctx context.Context, query string, profiles []*profile.Profile, regionFilter string) []*profile.Profile {
	// Scores clear over the full input set, not just the filtered view, so
	// profiles outside the current region filter cannot keep a score from
	// an earlier query.
	for _, p := range profiles {
		p.ClearScore()
	}
	base := filterRegion(profiles, regionFilter)

	query = strings.TrimSpace(query)
	if query == "" {
		return base
	}

	if utf8.RuneCountInString(query) > rankThreshold && m.ranker != nil {
		if ranked, ok := m.rank(ctx, query, base); ok {
			return ranked
		}
	}

	return substringMatch(query, base)
}

func filterRegion(profiles []*profile.Profile, region string) []*profile.Profile {
	if region == "" || region == AllRegions {
		return profiles
	}
	out := make([]*profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Region == region {
			out = append(out, p)
		}
	}
	return out
}

// rank asks the oracle to score the candidate set. Returns ok=false when the
// call fails or scores nothing, so the caller can fall back deterministically.
func (m *Merger) rank(ctx context.Context, query string, base []*profile.Profile) ([]*profile.Profile, bool) {
	candidates := make([]oracle.Candidate, 0, len(base))
	for _, p := range base {
		candidates = append(candidates, oracle.Candidate{ID: p.ID, Text: compactText(p)})
	}

	hits, err := m.ranker.Rank(ctx, query, candidates)
	if err != nil || len(hits) == 0 {
		return nil, false
	}

	byID := make(map[string]oracle.RankHit, len(hits))
	for _, h := range hits {
		byID[h.ID] = h
	}

	// Candidates without a hit drop out of the result.
	out := make([]*profile.Profile, 0, len(hits))
	for _, p := range base {
		if h, ok := byID[p.ID]; ok {
			p.SetScore(h.Score, h.Reason)
			out = append(out, p)
		}
	}

	// Stable sort keeps input order on ties, so results are deterministic
	// for a fixed rank response.
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Score > *out[j].Score
	})
	return out, true
}

func substringMatch(query string, base []*profile.Profile) []*profile.Profile {
	needle := strings.ToLower(query)
	out := make([]*profile.Profile, 0, len(base))
	for _, p := range base {
		if strings.Contains(haystack(p), needle) {
			out = append(out, p)
		}
	}
	return out
}

func haystack(p *profile.Profile) string {
	parts := []string{p.Name, p.Title, p.Company, p.Background}
	parts = append(parts, p.Skills...)
	return strings.ToLower(strings.Join(parts, " "))
}

// compactText flattens a profile into the one-line form the ranker sees.
func compactText(p *profile.Profile) string {
	parts := make([]string, 0, 5)
	for _, s := range []string{p.Name, p.Title, p.Company, p.Background} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(p.Skills) > 0 {
		parts = append(parts, strings.Join(p.Skills, ", "))
	}
	return strings.Join(parts, " | ")
}
