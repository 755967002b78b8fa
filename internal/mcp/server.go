// Package mcp exposes the reconciliation pipeline over the Model Context
// Protocol, so agent callers can drive import, enrichment, search, and
// export without the CLI.
//
// The working profile set lives in memory for the lifetime of the server
// process: one session, no persistence. A global mutex serializes tool
// calls: the mcp-go library dispatches handlers concurrently, and the
// pipeline stages assume exclusive ownership of the record set.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/rolodex/internal/codec"
	"github.com/hurttlocker/rolodex/internal/enrich"
	"github.com/hurttlocker/rolodex/internal/finalize"
	"github.com/hurttlocker/rolodex/internal/mapping"
	"github.com/hurttlocker/rolodex/internal/profile"
	"github.com/hurttlocker/rolodex/internal/search"
	"github.com/hurttlocker/rolodex/internal/tabular"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Oracle  OracleDeps
	Version string // version string for MCP server info
}

// OracleDeps bundles the oracle-backed stages. Either may be nil; the
// corresponding tools then report that no oracle is configured.
type OracleDeps struct {
	Orchestrator *enrich.Orchestrator
	Merger       *search.Merger
}

// Session is the in-memory working set shared by the tools.
type Session struct {
	mu       sync.Mutex
	profiles []*profile.Profile
}

// NewServer creates a configured MCP server with all rolodex tools and the
// stats resource.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Rolodex",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	sess := &Session{}

	registerImportTool(s, sess)
	registerEnrichTool(s, sess, cfg.Oracle.Orchestrator)
	registerSearchTool(s, sess, cfg.Oracle.Merger)
	registerExportTool(s, sess)
	registerRestoreTool(s, sess)
	registerStatsResource(s, sess)

	return s
}

// --- Tools ---

func registerImportTool(s *server.MCPServer, sess *Session) {
	tool := mcp.NewTool("rolodex_import",
		mcp.WithDescription("Import tabular (CSV) contacts into the session. A previously exported tabular file is rebuilt column-by-column, enrichment payload included; any other CSV gets column-to-field mapping inferred from its headers, and the response reports the detected mappings. Replaces the current session."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Raw CSV text, first row = headers"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		headers, rows := tabular.Tokenize(content)
		var mappings []profile.ColumnMapping
		if codec.IsExportedTabular(headers) {
			sess.profiles = codec.ImportRows(headers, rows)
		} else {
			mappings = mapping.Detect(headers, rows)
			sess.profiles = finalize.Finalize(mappings, rows)
		}

		out := struct {
			Mappings []profile.ColumnMapping `json:"mappings"`
			Profiles int                     `json:"profiles"`
		}{mappings, len(sess.profiles)}

		data, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerEnrichTool(s *server.MCPServer, sess *Session, orch *enrich.Orchestrator) {
	tool := mcp.NewTool("rolodex_enrich",
		mcp.WithDescription("Run the enrichment pipeline over the session's profiles. Records are processed sequentially with rate-limit pacing; every record reaches a terminal status (success, fallback, or error). Returns per-status counts."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		if orch == nil {
			return mcp.NewToolResultError("no oracle configured; set an LLM provider"), nil
		}
		if len(sess.profiles) == 0 {
			return mcp.NewToolResultError("session is empty; run rolodex_import first"), nil
		}

		if _, err := orch.Enrich(ctx, sess.profiles); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("enrichment stopped: %v", err)), nil
		}

		data, _ := json.MarshalIndent(statusCounts(sess.profiles), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerSearchTool(s *server.MCPServer, sess *Session, merger *search.Merger) {
	tool := mcp.NewTool("rolodex_search",
		mcp.WithDescription("Search the session's profiles. Queries longer than 10 characters are ranked by the oracle (score 0-100 with a match reason); shorter queries and rank misses use deterministic substring matching. Optionally filter by region first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Description("Search query; empty returns the region-filtered set"),
		),
		mcp.WithString("region",
			mcp.Description("Exact region filter; empty or \"All Regions\" disables it"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		m := merger
		if m == nil {
			m = search.NewMerger(nil)
		}

		query := ""
		if q, err := req.RequireString("query"); err == nil {
			query = q
		}
		region := search.AllRegions
		if r, err := req.RequireString("region"); err == nil && r != "" {
			region = r
		}

		results := m.Search(ctx, query, sess.profiles, region)
		data, _ := json.MarshalIndent(results, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerExportTool(s *server.MCPServer, sess *Session) {
	tool := mcp.NewTool("rolodex_export",
		mcp.WithDescription("Export the session. Format \"csv\" is the tabular format (lossy for skills containing commas); \"json\" is the lossless structured session format usable with rolodex_restore."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("format",
			mcp.Description("Export format: csv or json (default: json)"),
			mcp.Enum("csv", "json"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		format := "json"
		if f, err := req.RequireString("format"); err == nil && f != "" {
			format = strings.ToLower(f)
		}

		switch format {
		case "csv":
			return mcp.NewToolResultText(codec.ExportCSV(sess.profiles)), nil
		case "json":
			data, err := codec.ExportSession(sess.profiles)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("export error: %v", err)), nil
			}
			return mcp.NewToolResultText(string(data)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
		}
	})
}

func registerRestoreTool(s *server.MCPServer, sess *Session) {
	tool := mcp.NewTool("rolodex_restore",
		mcp.WithDescription("Replace the session with a previously exported structured (JSON) session. Malformed input is rejected in full; the current session is left untouched on any validation failure."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Structured session JSON from rolodex_export"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		profiles, err := codec.RestoreSession([]byte(content))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("restore rejected: %v", err)), nil
		}
		sess.profiles = profiles

		return mcp.NewToolResultText(fmt.Sprintf("restored %d profiles", len(profiles))), nil
	})
}

// --- Resources ---

func registerStatsResource(s *server.MCPServer, sess *Session) {
	resource := mcp.NewResource(
		"rolodex://stats",
		"Session Statistics",
		mcp.WithResourceDescription("Profile counts by enrichment status for the current session."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		data, _ := json.MarshalIndent(statusCounts(sess.profiles), "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

type sessionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Success  int `json:"success"`
	Fallback int `json:"fallback"`
	Errors   int `json:"errors"`
}

func statusCounts(profiles []*profile.Profile) sessionStats {
	stats := sessionStats{Total: len(profiles)}
	for _, p := range profiles {
		switch p.EnrichmentStatus {
		case profile.StatusSuccess:
			stats.Success++
		case profile.StatusFallback:
			stats.Fallback++
		case profile.StatusError:
			stats.Errors++
		default:
			stats.Pending++
		}
	}
	return stats
}
