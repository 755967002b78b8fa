package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	// Best-effort: a missing .env is the normal case.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(os.Args[2:])
	case "enrich":
		err = runEnrich(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("rolodex %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`rolodex %s - contact profile reconciliation pipeline

Usage:
  rolodex <command> [arguments]

Commands:
  import <file.csv>   Tokenize a raw export, infer column mappings, and
                      write a pending session
  enrich <file>       Run the full pipeline (identify -> extract -> fallback)
                      over a raw .csv or a .json session
  search <query>      Search a session (oracle-ranked for long queries,
                      substring otherwise)
  export              Re-encode a session as csv or json
  serve               Serve the pipeline over MCP (stdio)
  version             Print version

Common Flags:
  --session <file>    Structured session file to operate on
  --out <file>        Output path (default: stdout)
  --llm <p/m>         Oracle provider/model (e.g. google/gemini-2.5-flash)
  --delay <dur>       Inter-record pacing delay (e.g. 1s, 500ms)
  --region <region>   Region filter for search ("All Regions" disables)
  --config <file>     Config file (default: ~/.rolodex/config.yaml)

Environment:
  ROLODEX_LLM, ROLODEX_DELAY, GEMINI_API_KEY, GOOGLE_API_KEY,
  OPENROUTER_API_KEY (also read from .env)
`, version)
}
