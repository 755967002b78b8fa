package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hurttlocker/rolodex/internal/profile"
)

// sessionVersion marks the structured format revision.
const sessionVersion = 1

// session is the structured export envelope. Unlike the tabular format it
// carries every field, lifecycle state included, for exact round-trip.
type session struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exportedAt"`
	Profiles   []*profile.Profile `json:"profiles"`
}

// ExportSession serializes the full profile list losslessly.
func ExportSession(profiles []*profile.Profile) ([]byte, error) {
	s := session{
		Version:    sessionVersion,
		ExportedAt: time.Now().UTC(),
		Profiles:   profiles,
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

// RestoreSession parses and validates a structured export. Malformed input
// is rejected with a descriptive error and nothing is returned; there is no
// partial restore. Valid input reproduces the profile list exactly, IDs and
// lifecycle state included.
func RestoreSession(data []byte) ([]*profile.Profile, error) {
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid session data: %w", err)
	}
	if s.Version != sessionVersion {
		return nil, fmt.Errorf("unsupported session version %d (want %d)", s.Version, sessionVersion)
	}

	for i, p := range s.Profiles {
		if p == nil {
			return nil, fmt.Errorf("profile %d: null entry", i)
		}
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
	}
	return s.Profiles, nil
}

func validateProfile(p *profile.Profile) error {
	if p.ID == "" {
		return fmt.Errorf("missing id")
	}
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}

	switch p.EnrichmentStatus {
	case profile.StatusPending, profile.StatusProcessing,
		profile.StatusSuccess, profile.StatusFallback, profile.StatusError:
	default:
		return fmt.Errorf("unknown enrichment status %q", p.EnrichmentStatus)
	}

	switch p.EnrichmentSource {
	case profile.SourceNone, profile.SourceOraclePrimary, profile.SourceTitleInference:
	default:
		return fmt.Errorf("unknown enrichment source %q", p.EnrichmentSource)
	}

	// Score and reason travel as a pair.
	if p.Score == nil && p.MatchReason != "" {
		return fmt.Errorf("match reason without score")
	}
	if p.Score != nil && (*p.Score < 0 || *p.Score > 100) {
		return fmt.Errorf("score %d out of range", *p.Score)
	}
	return nil
}
