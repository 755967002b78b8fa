// Package enrich drives profiles through the oracle enrichment state machine.
//
// Records are processed strictly one at a time, in input order, with a fixed
// delay between records; the serialization keeps the oracle provider inside
// its rate limits, so do not parallelize it. Each record's outcome is
// isolated: no failure on one record may affect any other record in the
// batch.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/hurttlocker/rolodex/internal/oracle"
	"github.com/hurttlocker/rolodex/internal/profile"
)

// DefaultDelay is the inter-record pacing delay.
const DefaultDelay = 1 * time.Second

// fallbackBackground is the generic background sentence attached when
// extraction degrades to title inference.
const fallbackBackground = "Profile inferred from role and company; person-level details were not verifiable."

// Orchestrator runs the identification, extraction, and fallback phases.
type Orchestrator struct {
	oracle     oracle.Oracle
	delay      time.Duration
	onProgress ProgressFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDelay overrides the inter-record pacing delay.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// WithProgress registers a callback for progress snapshots.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// NewOrchestrator creates an orchestrator over the given oracle.
func NewOrchestrator(orc oracle.Oracle, opts ...Option) *Orchestrator {
	o := &Orchestrator{oracle: orc, delay: DefaultDelay}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enrich processes every profile to a terminal status, in order, mutating
// the profiles in place and returning the same slice. The batch never aborts
// on per-record failure. Cancellation is honored between records: a canceled
// context stops before the next record starts, leaving already-processed
// records at their terminal status and the rest pending.
func (o *Orchestrator) Enrich(ctx context.Context, profiles []*profile.Profile) ([]*profile.Profile, error) {
	log := &progressLog{}
	total := len(profiles)

	for i, p := range profiles {
		if i > 0 {
			if err := o.pace(ctx); err != nil {
				return profiles, err
			}
		}
		if err := ctx.Err(); err != nil {
			return profiles, err
		}

		o.enrichOne(ctx, p, i, total, log)

		log.add(LogEntry{
			Name:    p.Name,
			Status:  string(p.EnrichmentStatus),
			Message: completionMessage(p),
		})
		o.emit(Progress{
			CurrentIndex: i,
			Total:        total,
			Percentage:   percentage(i+1, total),
			CurrentName:  p.Name,
			Phase:        PhaseExtracting,
			RecentLog:    log.snapshot(),
		})
	}

	return profiles, nil
}

// enrichOne runs one profile to a terminal status. Never returns an error:
// every failure mode maps to a status.
func (o *Orchestrator) enrichOne(ctx context.Context, p *profile.Profile, index, total int, log *progressLog) {
	p.EnrichmentStatus = profile.StatusProcessing

	// Phase 1: identification, only when role hints are missing.
	// Failure here is non-fatal; extraction still runs with whatever
	// hints exist.
	if p.Title == "" || p.Company == "" {
		o.emit(Progress{
			CurrentIndex: index,
			Total:        total,
			Percentage:   percentage(index, total),
			CurrentName:  p.Name,
			Phase:        PhaseIdentifying,
			RecentLog:    log.snapshot(),
		})

		if id, err := o.oracle.Identify(ctx, p.Name, p.LinkedInURL); err == nil {
			applyIdentity(p, id)
		}
	}

	// Phase 2: extraction.
	o.emit(Progress{
		CurrentIndex: index,
		Total:        total,
		Percentage:   percentage(index, total),
		CurrentName:  p.Name,
		Phase:        PhaseExtracting,
		RecentLog:    log.snapshot(),
	})

	ext, err := o.oracle.Extract(ctx, p.Name, p.Title, p.Company, p.LinkedInURL)
	if err != nil {
		// Terminal for this record; no automatic retry.
		p.EnrichmentStatus = profile.StatusError
		p.EnrichmentSource = profile.SourceNone
		return
	}

	if ext.IsValid {
		applyExtraction(p, ext)
		p.EnrichmentSource = profile.SourceOraclePrimary
		p.EnrichmentStatus = profile.StatusSuccess
		return
	}

	// Phase 3: low-confidence extraction degrades to title inference.
	fb := o.oracle.InferFallback(ctx, p.Title, p.Company)
	p.WhatTheyDo = fb.Responsibilities
	p.Skills = fb.Skills
	p.Background = fallbackBackground
	p.EnrichmentSource = profile.SourceTitleInference
	p.EnrichmentStatus = profile.StatusFallback
}

// applyIdentity fills only the missing of title, company, and region.
// Values already on the profile are never overwritten.
func applyIdentity(p *profile.Profile, id oracle.IdentifyResult) {
	if p.Title == "" {
		p.Title = id.Title
	}
	if p.Company == "" {
		p.Company = id.Company
	}
	if p.Region == "" {
		p.Region = id.Region
	}
}

// applyExtraction merges a valid extraction into the profile. This is the
// complete list of fields extraction may touch; identity fields keep their
// existing values, region included.
func applyExtraction(p *profile.Profile, ext oracle.ExtractResult) {
	if p.Region == "" {
		p.Region = ext.Region
	}
	p.YearsOfExperience = ext.YearsOfExperience
	p.Background = ext.Background
	p.WhatTheyDo = ext.WhatTheyDo
	p.Achievements = ext.Achievements
	p.Skills = ext.Skills
	p.GroundingLinks = convertLinks(ext.GroundingLinks)
}

func convertLinks(links []oracle.GroundingLink) []profile.GroundingLink {
	if len(links) == 0 {
		return nil
	}
	out := make([]profile.GroundingLink, 0, len(links))
	for _, l := range links {
		out = append(out, profile.GroundingLink{URI: l.URI, Title: l.Title})
	}
	return out
}

func completionMessage(p *profile.Profile) string {
	switch p.EnrichmentStatus {
	case profile.StatusSuccess:
		return "enriched from oracle"
	case profile.StatusFallback:
		return "inferred from title"
	case profile.StatusError:
		return "extraction failed"
	default:
		return string(p.EnrichmentStatus)
	}
}

func (o *Orchestrator) emit(p Progress) {
	if o.onProgress != nil {
		o.onProgress(p)
	}
}

// pace waits the inter-record delay, returning early if the context is
// canceled so a caller-side abort takes effect between records.
func (o *Orchestrator) pace(ctx context.Context) error {
	if o.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(o.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("enrichment canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
