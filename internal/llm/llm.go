// Package llm wraps chat-completion providers and the tolerant decoding of
// their JSON responses. Every decode failure is reported as absence, never as
// a pipeline error: model enrichment is optional and its loss must not stop a
// report from being produced.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/brandguard/internal/schema"
)

// Provider is the interface for chat-completion backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// Config identifies the provider and credential used for model analysis.
// An empty APIKey means model analysis is disabled. Temperature is a pointer
// so an explicit zero is distinct from unset; nil means the caller's default.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// NewProvider is the factory for creating providers. It is a package-level
// variable so tests can replace it with a mock without modifying call sites.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(cfg Config) (Provider, error) = defaultNewProvider

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: no API key configured")
	}
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return newOpenAIProvider(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return newAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "google":
		return newGoogleProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// ToneAnalysis is the decoded tone-prompt response.
type ToneAnalysis struct {
	ToneScore        int              `json:"toneScore"`
	Findings         []schema.Finding `json:"findings"`
	SuggestedRewrite string           `json:"suggestedRewrite,omitempty"`
}

// ClaimsAnalysis is the decoded claims-prompt response.
type ClaimsAnalysis struct {
	ClaimsScore      int              `json:"claimsScore"`
	Findings         []schema.Finding `json:"findings"`
	DisclaimerNeeded bool             `json:"disclaimerNeeded"`
	DisclaimerType   string           `json:"disclaimerType,omitempty"`
}

// RewriteChange describes one edit the rewrite analysis made.
type RewriteChange struct {
	Category    string `json:"category"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Reason      string `json:"reason"`
}

// RewriteAnalysis is the decoded rewrite-prompt response.
type RewriteAnalysis struct {
	RewrittenText    string          `json:"rewrittenText"`
	Changes          []RewriteChange `json:"changes"`
	ImprovementScore int             `json:"improvementScore"`
}

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences. The content group
// uses `.*?` (not `.+?`) to allow empty bodies inside fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line. Used to strip orphaned
// opening fences from truncated responses.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// stripMarkdownFences removes leading/trailing markdown code fences that
// models sometimes wrap around JSON output (e.g., "```json\n...\n```").
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by any character that is
// not a valid JSON string escape character ("\/bfnrtu). Models sometimes emit
// regex patterns (e.g. \d+) unescaped inside JSON strings; this converts them
// to properly double-escaped sequences so the parser accepts the response.
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

// trailingCommaRe matches a comma immediately preceding a closing brace or
// bracket, another malformation models produce.
var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// normalizeJSON applies the single best-effort normalization pass: fence
// stripping, invalid escape repair, trailing comma removal. Anything beyond
// this is treated as an unparseable response, not repaired further.
func normalizeJSON(s string) string {
	s = stripMarkdownFences(s)
	s = invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

// decode unmarshals raw into v, trying the text as-is first and the
// normalized form second. Returns false when neither parses.
func decode(raw string, v any) bool {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return true
	}
	return json.Unmarshal([]byte(normalizeJSON(raw)), v) == nil
}

// DecodeTone parses a tone-prompt response. Returns nil when the response is
// not valid JSON of the expected shape.
func DecodeTone(raw string) *ToneAnalysis {
	var a ToneAnalysis
	if !decode(raw, &a) {
		return nil
	}
	clampFindings(a.Findings, schema.CategoryTone)
	return &a
}

// DecodeClaims parses a claims-prompt response. Returns nil on parse failure.
func DecodeClaims(raw string) *ClaimsAnalysis {
	var a ClaimsAnalysis
	if !decode(raw, &a) {
		return nil
	}
	clampFindings(a.Findings, schema.CategoryClaim)
	return &a
}

// DecodeRewrite parses a rewrite-prompt response. Returns nil on parse
// failure or when no rewritten text was produced.
func DecodeRewrite(raw string) *RewriteAnalysis {
	var a RewriteAnalysis
	if !decode(raw, &a) {
		return nil
	}
	if a.RewrittenText == "" {
		return nil
	}
	return &a
}

// clampFindings forces model findings into valid enum values: an unknown
// severity degrades to info, an unknown category is replaced with the one the
// prompt asked for. Model output is advisory; it never widens the schema.
func clampFindings(findings []schema.Finding, category schema.Category) {
	for i := range findings {
		switch findings[i].Severity {
		case schema.SeverityInfo, schema.SeverityWarn, schema.SeverityBlock:
		default:
			findings[i].Severity = schema.SeverityInfo
		}
		switch findings[i].Category {
		case schema.CategoryTone, schema.CategoryLexicon, schema.CategoryClaim,
			schema.CategoryFormat, schema.CategoryCompliance:
		default:
			findings[i].Category = category
		}
	}
}
