package enrich

import "fmt"

// Phase names the oracle step a record is currently in.
type Phase string

const (
	PhaseIdentifying Phase = "identifying"
	PhaseExtracting  Phase = "extracting"
)

// maxLogEntries caps the progress log; oldest entries drop off the end.
const maxLogEntries = 50

// LogEntry records the outcome of one record's enrichment.
type LogEntry struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Progress is a snapshot emitted to the caller's callback. It is a value;
// no shared mutable state crosses the callback boundary.
type Progress struct {
	CurrentIndex int        `json:"currentIndex"`
	Total        int        `json:"total"`
	Percentage   string     `json:"percentage"`
	CurrentName  string     `json:"currentName"`
	Phase        Phase      `json:"phase"`
	RecentLog    []LogEntry `json:"recentLog"`
}

// ProgressFunc receives progress snapshots. Called synchronously from the
// enrichment loop; keep it fast.
type ProgressFunc func(Progress)

// progressLog accumulates per-record outcomes, newest first.
type progressLog struct {
	entries []LogEntry
}

func (l *progressLog) add(e LogEntry) {
	l.entries = append([]LogEntry{e}, l.entries...)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[:maxLogEntries]
	}
}

// snapshot returns a copy safe to hand across the callback boundary.
func (l *progressLog) snapshot() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func percentage(completed, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(completed)/float64(total)*100)
}
