// Package profile defines the data model for the reconciliation pipeline.
//
// A Profile is one contact record flowing through the stages: created by the
// finalizer from a raw row + column mapping, mutated in place by the
// enrichment orchestrator, and optionally annotated with ranking fields by
// the search merger. There is no storage layer; the caller owns the working
// set for the duration of a session.
package profile

import "github.com/google/uuid"

// EnrichmentStatus tracks a profile's position in the enrichment lifecycle.
// Transitions are forward-only: pending -> processing -> {success, fallback, error}.
type EnrichmentStatus string

const (
	StatusPending    EnrichmentStatus = "pending"
	StatusProcessing EnrichmentStatus = "processing"
	StatusSuccess    EnrichmentStatus = "success"
	StatusFallback   EnrichmentStatus = "fallback"
	StatusError      EnrichmentStatus = "error"
)

// Terminal reports whether the status is a batch-complete state.
func (s EnrichmentStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFallback || s == StatusError
}

// EnrichmentSource records which oracle tier produced the enrichment payload.
type EnrichmentSource string

const (
	SourceNone           EnrichmentSource = "none"
	SourceOraclePrimary  EnrichmentSource = "oracle_primary"
	SourceTitleInference EnrichmentSource = "title_inference"
)

// PlaceholderName is assigned when a name cell cleans down to nothing.
// A profile's name is never empty.
const PlaceholderName = "Unknown Contact"

// GroundingLink is a supporting source attached to a successful extraction.
type GroundingLink struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Profile is one reconciled contact record.
//
// Score and MatchReason are set only as a pair, and only by the search
// merger; they are never present on profiles fresh from the orchestrator.
type Profile struct {
	ID string `json:"id"`

	// Identity fields, populated by the finalizer from the mapped row.
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Region      string `json:"region,omitempty"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
	Email       string `json:"email,omitempty"`

	// Enrichment payload, populated by the orchestrator.
	YearsOfExperience string          `json:"yearsOfExperience,omitempty"`
	Background        string          `json:"background,omitempty"`
	WhatTheyDo        string          `json:"whatTheyDo,omitempty"`
	Achievements      string          `json:"achievements,omitempty"`
	Skills            []string        `json:"skills,omitempty"`
	GroundingLinks    []GroundingLink `json:"groundingLinks,omitempty"`

	// Ranking payload, populated by the search merger.
	Score       *int   `json:"score,omitempty"`
	MatchReason string `json:"matchReason,omitempty"`

	EnrichmentStatus EnrichmentStatus `json:"enrichmentStatus"`
	EnrichmentSource EnrichmentSource `json:"enrichmentSource"`

	Selected bool `json:"selected"`
}

// New creates an empty profile with a fresh immutable ID, pending status,
// and selection on.
func New() *Profile {
	return &Profile{
		ID:               uuid.NewString(),
		EnrichmentStatus: StatusPending,
		EnrichmentSource: SourceNone,
		Selected:         true,
	}
}

// SetScore attaches the ranking pair. Merger use only.
func (p *Profile) SetScore(score int, reason string) {
	p.Score = &score
	p.MatchReason = reason
}

// ClearScore drops any ranking pair from a previous search.
func (p *Profile) ClearScore() {
	p.Score = nil
	p.MatchReason = ""
}

// Field is a canonical column target for mapping inference.
type Field string

const (
	FieldName        Field = "name"
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldLinkedInURL Field = "linkedin_url"
	FieldEmail       Field = "email"
	FieldIgnore      Field = "ignore"
)

// ColumnMapping declares the correspondence between one source column and a
// canonical field. MappedTo may be overridden by the caller after detection;
// the finalizer applies whatever mapping it is given.
type ColumnMapping struct {
	Header       string   `json:"header"`
	MappedTo     Field    `json:"mappedTo"`
	Preview      []string `json:"preview"`
	AutoDetected bool     `json:"autoDetected"`
}
