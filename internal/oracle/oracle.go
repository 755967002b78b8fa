// Package oracle defines the enrichment capability contracts the pipeline
// consumes, and a production implementation backed by an llm.Provider.
//
// The pipeline depends only on the Oracle interface; tests swap in mocks.
// Each capability has its own degradation contract: Identify fails closed,
// Extract surfaces provider errors, InferFallback never fails, and an empty
// Rank result is a valid "no match", not an error.
package oracle

import "context"

// IdentifyResult is a best-effort role lookup. Any field may be empty.
type IdentifyResult struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Region  string `json:"region"`
}

// ExtractResult carries the structured professional facts for one contact.
// IsValid=false means the oracle could not ground the extraction in a real
// person and the caller should degrade to title inference.
type ExtractResult struct {
	YearsOfExperience string          `json:"yearsOfExperience"`
	Region            string          `json:"region"`
	Background        string          `json:"background"`
	WhatTheyDo        string          `json:"whatTheyDo"`
	Achievements      string          `json:"achievements"`
	Skills            []string        `json:"skills"`
	IsValid           bool            `json:"isValid"`
	GroundingLinks    []GroundingLink `json:"groundingLinks"`
}

// GroundingLink is a supporting source for a successful extraction.
type GroundingLink struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// FallbackResult holds generic role facts inferred from title + company alone.
type FallbackResult struct {
	Responsibilities string   `json:"responsibilities"`
	Skills           []string `json:"skills"`
}

// Candidate is one profile offered to the ranker, flattened to compact text.
type Candidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RankHit scores one candidate against a query. Score is 0-100.
type RankHit struct {
	ID     string `json:"id"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Oracle is the full capability surface the pipeline needs.
type Oracle interface {
	// Identify looks up title/company/region hints for a name. Best-effort:
	// it fails closed (all-empty result) when uncertain. Implementations may
	// also return an error; callers treat that identically to all-empty.
	Identify(ctx context.Context, name, linkedinURL string) (IdentifyResult, error)

	// Extract returns structured professional facts, or a provider error.
	Extract(ctx context.Context, name, title, company, linkedinURL string) (ExtractResult, error)

	// InferFallback produces generic responsibilities and skills from title
	// and company alone. It never fails; on internal error it returns a
	// generic non-empty placeholder.
	InferFallback(ctx context.Context, title, company string) FallbackResult

	// Rank scores candidates against a query. An empty result means the
	// oracle found no relevant candidates; that is not an error.
	Rank(ctx context.Context, query string, candidates []Candidate) ([]RankHit, error)
}
