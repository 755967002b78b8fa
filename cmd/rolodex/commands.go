package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/rolodex/internal/codec"
	"github.com/hurttlocker/rolodex/internal/config"
	"github.com/hurttlocker/rolodex/internal/enrich"
	"github.com/hurttlocker/rolodex/internal/finalize"
	"github.com/hurttlocker/rolodex/internal/llm"
	"github.com/hurttlocker/rolodex/internal/mapping"
	"github.com/hurttlocker/rolodex/internal/mcp"
	"github.com/hurttlocker/rolodex/internal/oracle"
	"github.com/hurttlocker/rolodex/internal/profile"
	"github.com/hurttlocker/rolodex/internal/search"
	"github.com/hurttlocker/rolodex/internal/tabular"
)

// cmdFlags holds the flags shared across subcommands, parsed by hand.
type cmdFlags struct {
	positional []string
	session    string
	out        string
	llmFlag    string
	delay      string
	region     string
	format     string
	configPath string
}

func parseFlags(args []string) (cmdFlags, error) {
	var f cmdFlags
	take := func(i *int, name string) (string, error) {
		arg := args[*i]
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			return arg[eq+1:], nil
		}
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch {
		case arg == "--session" || strings.HasPrefix(arg, "--session="):
			f.session, err = take(&i, "--session")
		case arg == "--out" || strings.HasPrefix(arg, "--out="):
			f.out, err = take(&i, "--out")
		case arg == "--llm" || strings.HasPrefix(arg, "--llm="):
			f.llmFlag, err = take(&i, "--llm")
		case arg == "--delay" || strings.HasPrefix(arg, "--delay="):
			f.delay, err = take(&i, "--delay")
		case arg == "--region" || strings.HasPrefix(arg, "--region="):
			f.region, err = take(&i, "--region")
		case arg == "--format" || strings.HasPrefix(arg, "--format="):
			f.format, err = take(&i, "--format")
		case arg == "--config" || strings.HasPrefix(arg, "--config="):
			f.configPath, err = take(&i, "--config")
		case strings.HasPrefix(arg, "-"):
			return f, fmt.Errorf("unknown flag: %s", arg)
		default:
			f.positional = append(f.positional, arg)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func (f cmdFlags) resolve() (config.ResolvedConfig, error) {
	return config.Resolve(config.ResolveOptions{
		ConfigPath: f.configPath,
		CLILLM:     f.llmFlag,
		CLIDelay:   f.delay,
	})
}

// buildOracle constructs the oracle client from resolved config. Returns nil
// (no error) when no provider is configured at all, so oracle-optional
// commands can degrade to deterministic behavior.
func buildOracle(cfg config.ResolvedConfig, required bool) (*oracle.Client, error) {
	llmCfg, err := llm.ParseFlag(cfg.LLM.Value)
	if err != nil {
		return nil, err
	}
	llmCfg.APIKey = cfg.APIKeyForProvider(llmCfg.Provider).Value

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		if required {
			return nil, err
		}
		return nil, nil
	}
	return oracle.NewClient(provider), nil
}

func loadProfiles(path string) ([]*profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return codec.RestoreSession(data)
	}
	headers, rows := tabular.Tokenize(string(data))
	// A previously exported tabular file keeps its enrichment payload
	// columns; mapping inference would drop them.
	if codec.IsExportedTabular(headers) {
		return codec.ImportRows(headers, rows), nil
	}
	mappings := mapping.Detect(headers, rows)
	return finalize.Finalize(mappings, rows), nil
}

func writeOut(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func runImport(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.positional) != 1 {
		return fmt.Errorf("usage: rolodex import <file.csv> [--out session.json]")
	}

	data, err := os.ReadFile(f.positional[0])
	if err != nil {
		return err
	}

	headers, rows := tabular.Tokenize(string(data))
	var profiles []*profile.Profile
	if codec.IsExportedTabular(headers) {
		profiles = codec.ImportRows(headers, rows)
		fmt.Fprintf(os.Stderr, "Exported tabular file: columns matched by header\n")
	} else {
		mappings := mapping.Detect(headers, rows)
		profiles = finalize.Finalize(mappings, rows)

		fmt.Fprintf(os.Stderr, "Detected mappings:\n")
		for _, m := range mappings {
			marker := " "
			if m.AutoDetected {
				marker = "*"
			}
			fmt.Fprintf(os.Stderr, "  %s %-24s -> %-12s %v\n", marker, m.Header, m.MappedTo, m.Preview)
		}
	}
	fmt.Fprintf(os.Stderr, "%d profiles created (pending enrichment)\n", len(profiles))

	session, err := codec.ExportSession(profiles)
	if err != nil {
		return err
	}
	return writeOut(f.out, session)
}

func runEnrich(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.positional) != 1 {
		return fmt.Errorf("usage: rolodex enrich <file.csv|session.json> [--llm provider/model] [--delay 1s] [--out session.json]")
	}

	cfg, err := f.resolve()
	if err != nil {
		return err
	}
	orc, err := buildOracle(cfg, true)
	if err != nil {
		return err
	}
	delay, err := cfg.EnrichDelay()
	if err != nil {
		return err
	}

	profiles, err := loadProfiles(f.positional[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Enriching %d profiles via %s (delay %s)\n", len(profiles), orc.Name(), delay)

	orch := enrich.NewOrchestrator(orc,
		enrich.WithDelay(delay),
		enrich.WithProgress(func(p enrich.Progress) {
			fmt.Fprintf(os.Stderr, "  [%d/%d] %s%% %s (%s)\n",
				p.CurrentIndex+1, p.Total, p.Percentage, p.CurrentName, p.Phase)
		}),
	)

	if _, err := orch.Enrich(context.Background(), profiles); err != nil {
		return err
	}

	var success, fallback, failed int
	for _, p := range profiles {
		switch p.EnrichmentStatus {
		case profile.StatusSuccess:
			success++
		case profile.StatusFallback:
			fallback++
		case profile.StatusError:
			failed++
		}
	}
	fmt.Fprintf(os.Stderr, "Done: %d enriched, %d inferred, %d failed\n", success, fallback, failed)

	session, err := codec.ExportSession(profiles)
	if err != nil {
		return err
	}
	return writeOut(f.out, session)
}

func runSearch(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.positional) != 1 || f.session == "" {
		return fmt.Errorf("usage: rolodex search <query> --session session.json [--region <region>]")
	}

	cfg, err := f.resolve()
	if err != nil {
		return err
	}
	orc, err := buildOracle(cfg, false)
	if err != nil {
		return err
	}

	profiles, err := loadProfiles(f.session)
	if err != nil {
		return err
	}

	region := f.region
	if region == "" {
		region = search.AllRegions
	}

	merger := search.NewMerger(nil)
	if orc != nil {
		merger = search.NewMerger(orc)
	}

	results := merger.Search(context.Background(), f.positional[0], profiles, region)

	for _, p := range results {
		if p.Score != nil {
			fmt.Printf("%3d  %-28s %s  (%s)\n", *p.Score, p.Name, p.Title, p.MatchReason)
		} else {
			fmt.Printf("     %-28s %s\n", p.Name, p.Title)
		}
	}
	fmt.Fprintf(os.Stderr, "%d of %d profiles matched\n", len(results), len(profiles))
	return nil
}

func runExport(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.session == "" {
		return fmt.Errorf("usage: rolodex export --session session.json [--format csv|json] [--out file]")
	}

	profiles, err := loadProfiles(f.session)
	if err != nil {
		return err
	}

	format := strings.ToLower(f.format)
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		return writeOut(f.out, []byte(codec.ExportCSV(profiles)))
	case "json":
		data, err := codec.ExportSession(profiles)
		if err != nil {
			return err
		}
		return writeOut(f.out, data)
	default:
		return fmt.Errorf("unknown format %q (supported: csv, json)", format)
	}
}

func runServe(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := f.resolve()
	if err != nil {
		return err
	}
	orc, err := buildOracle(cfg, false)
	if err != nil {
		return err
	}
	delay, err := cfg.EnrichDelay()
	if err != nil {
		return err
	}

	deps := mcp.OracleDeps{}
	if orc != nil {
		deps.Orchestrator = enrich.NewOrchestrator(orc, enrich.WithDelay(delay))
		deps.Merger = search.NewMerger(orc)
	}

	s := mcp.NewServer(mcp.ServerConfig{Oracle: deps, Version: version})
	return server.ServeStdio(s)
}
