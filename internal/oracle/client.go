package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hurttlocker/rolodex/internal/llm"
)

const (
	// callTimeout bounds a single oracle call. OpenRouter models can take
	// 20-30s on grounded extraction; generous headroom.
	callTimeout = 2 * time.Minute

	// rankMaxCandidates caps how many candidates one rank prompt carries.
	rankMaxCandidates = 100
)

// Client implements Oracle on top of a provider-agnostic LLM adapter.
type Client struct {
	provider llm.Provider
}

// NewClient wraps an llm.Provider in the oracle capability surface.
func NewClient(provider llm.Provider) *Client {
	return &Client{provider: provider}
}

// Name reports the underlying provider/model.
func (c *Client) Name() string {
	return c.provider.Name()
}

const identifySystemPrompt = `You identify professionals from minimal hints. Given a person's name and optionally a LinkedIn URL, return your best guess at their current job title, company, and region.

RULES:
- Only state what you are reasonably confident about
- Use empty strings for anything uncertain; never invent
- Region is a coarse geography ("North America", "EMEA", "APAC", ...)

Return ONLY a JSON object:
{"title": "", "company": "", "region": ""}`

// Identify asks the oracle for role hints. Fails closed: a provider error or
// unparseable response comes back as an error the caller treats as all-empty.
func (c *Client) Identify(ctx context.Context, name, linkedinURL string) (IdentifyResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", name)
	if linkedinURL != "" {
		fmt.Fprintf(&sb, "LinkedIn: %s\n", linkedinURL)
	}
	sb.WriteString("\nIdentify this person. Return JSON only.")

	raw, err := c.complete(ctx, identifySystemPrompt, sb.String(), 256)
	if err != nil {
		return IdentifyResult{}, fmt.Errorf("identify call failed: %w", err)
	}

	var result IdentifyResult
	if err := unmarshalResponse(raw, &result); err != nil {
		return IdentifyResult{}, fmt.Errorf("parsing identify response: %w", err)
	}
	result.Title = strings.TrimSpace(result.Title)
	result.Company = strings.TrimSpace(result.Company)
	result.Region = strings.TrimSpace(result.Region)
	return result, nil
}

const extractSystemPrompt = `You research professionals and return structured facts about them. Given a name and role hints, extract what is publicly known.

RULES:
- Set "isValid" true ONLY when you can ground the facts in a real, findable person
- When you cannot, set "isValid" false and leave the other fields empty
- "skills" is an ordered list, most significant first
- "groundingLinks" lists supporting sources when available; empty list is fine

Return ONLY a JSON object:
{
  "yearsOfExperience": "",
  "region": "",
  "background": "",
  "whatTheyDo": "",
  "achievements": "",
  "skills": [],
  "isValid": false,
  "groundingLinks": [{"uri": "", "title": ""}]
}`

// Extract returns structured professional facts or a provider error.
func (c *Client) Extract(ctx context.Context, name, title, company, linkedinURL string) (ExtractResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", name)
	if title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", title)
	}
	if company != "" {
		fmt.Fprintf(&sb, "Company: %s\n", company)
	}
	if linkedinURL != "" {
		fmt.Fprintf(&sb, "LinkedIn: %s\n", linkedinURL)
	}
	sb.WriteString("\nExtract professional facts. Return JSON only.")

	raw, err := c.complete(ctx, extractSystemPrompt, sb.String(), 1024)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("extract call failed: %w", err)
	}

	var result ExtractResult
	if err := unmarshalResponse(raw, &result); err != nil {
		return ExtractResult{}, fmt.Errorf("parsing extract response: %w", err)
	}
	return result, nil
}

const inferSystemPrompt = `You describe what a job role typically involves. Given a title and company, return generic responsibilities and skills for that role; no person-specific claims.

Return ONLY a JSON object:
{"responsibilities": "", "skills": []}`

// genericFallback is returned when inference itself fails. InferFallback must
// always hand back something non-empty.
var genericFallback = FallbackResult{
	Responsibilities: "Carries out the core responsibilities typical of this role.",
	Skills:           []string{"Communication", "Collaboration", "Problem Solving"},
}

// InferFallback produces generic role facts from title + company. Never fails.
func (c *Client) InferFallback(ctx context.Context, title, company string) FallbackResult {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", title)
	}
	if company != "" {
		fmt.Fprintf(&sb, "Company: %s\n", company)
	}
	sb.WriteString("\nDescribe this role. Return JSON only.")

	raw, err := c.complete(ctx, inferSystemPrompt, sb.String(), 512)
	if err != nil {
		return genericFallback
	}

	var result FallbackResult
	if err := unmarshalResponse(raw, &result); err != nil {
		return genericFallback
	}
	if strings.TrimSpace(result.Responsibilities) == "" {
		result.Responsibilities = genericFallback.Responsibilities
	}
	if len(result.Skills) == 0 {
		result.Skills = genericFallback.Skills
	}
	return result
}

const rankSystemPrompt = `You rank contact profiles by relevance to a query. You receive a query and a list of candidates, each with an id and a compact profile text.

RULES:
- Return ONLY candidates that are actually relevant to the query
- Score 0-100, higher = more relevant
- "reason" is a short phrase (15 words max) explaining the match
- An empty array is the correct answer when nothing is relevant

Return ONLY a JSON object:
{"hits": [{"id": "", "score": 0, "reason": ""}]}`

type rankResponse struct {
	Hits []RankHit `json:"hits"`
}

// Rank scores candidates against a query. An empty hit list is a valid
// "no relevance found" result. Scores are clamped to 0-100; hits referencing
// unknown candidate IDs are dropped.
func (c *Client) Rank(ctx context.Context, query string, candidates []Candidate) ([]RankHit, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > rankMaxCandidates {
		candidates = candidates[:rankMaxCandidates]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "QUERY: %s\n\nCANDIDATES:\n", query)
	for _, cand := range candidates {
		fmt.Fprintf(&sb, "- id=%s :: %s\n", cand.ID, cand.Text)
	}
	sb.WriteString("\nRank the relevant candidates. Return JSON only.")

	raw, err := c.complete(ctx, rankSystemPrompt, sb.String(), 2048)
	if err != nil {
		return nil, fmt.Errorf("rank call failed: %w", err)
	}

	var resp rankResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsing rank response: %w", err)
	}

	known := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		known[cand.ID] = struct{}{}
	}

	hits := make([]RankHit, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if _, ok := known[h.ID]; !ok {
			continue
		}
		if h.Score < 0 {
			h.Score = 0
		}
		if h.Score > 100 {
			h.Score = 100
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	return c.provider.Complete(callCtx, prompt, llm.CompletionOpts{
		Temperature: 0.1,
		MaxTokens:   maxTokens,
		Format:      "json",
		System:      system,
	})
}

// unmarshalResponse parses LLM JSON output, stripping markdown code fences
// some models wrap around structured responses.
func unmarshalResponse(raw string, dst any) error {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		start, end := 0, len(lines)
		for i, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				if start == 0 {
					start = i + 1
				} else {
					end = i
					break
				}
			}
		}
		if start > 0 && end > start {
			cleaned = strings.Join(lines[start:end], "\n")
		}
	}

	cleaned = strings.TrimSpace(cleaned)
	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return fmt.Errorf("invalid JSON from LLM: %w", err)
	}
	return nil
}
