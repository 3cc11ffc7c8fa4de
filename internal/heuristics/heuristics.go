// Package heuristics provides deterministic local analysis of text against a
// brand policy. No network access, no randomness: identical (text, policy)
// input always yields byte-identical findings.
package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/brandguard/internal/schema"
)

// Weights maps finding severities to score deductions. Keeping this as a
// named table lets policy tuning happen without code changes.
type Weights struct {
	Block int
	Warn  int
	Info  int
}

// DefaultWeights are the standard deductions per severity.
var DefaultWeights = Weights{Block: 20, Warn: 10, Info: 5}

// Score starts at 100, subtracts the weighted deduction for each finding, and
// clamps the result to [0, 100].
func Score(findings []schema.Finding, w Weights) int {
	score := 100
	for _, f := range findings {
		switch f.Severity {
		case schema.SeverityBlock:
			score -= w.Block
		case schema.SeverityWarn:
			score -= w.Warn
		case schema.SeverityInfo:
			score -= w.Info
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

var (
	exclamationRunRe = regexp.MustCompile(`!{2,}`)

	// emojiRe covers the emoticon, symbol/pictograph, transport, regional
	// indicator, miscellaneous symbol, and dingbat blocks.
	emojiRe = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]`)

	linkRe = regexp.MustCompile(`https?://[^\s]+`)

	spaceRunRe = regexp.MustCompile(`\s+`)
)

// AnalyzeFormat checks exclamation usage, emoji usage, and link policy.
func AnalyzeFormat(text string, policy schema.BrandPolicy) []schema.Finding {
	var findings []schema.Finding

	if max := policy.Style.MaxExclamations; max != nil {
		count := strings.Count(text, "!")
		if count > *max {
			findings = append(findings, schema.Finding{
				Category:   schema.CategoryFormat,
				Severity:   schema.SeverityWarn,
				Message:    fmt.Sprintf("too many exclamation marks (%d/%d)", count, *max),
				Suggestion: exclamationRunRe.ReplaceAllString(text, "!"),
			})
		}
	}

	if !policy.Style.AllowEmoji {
		if matches := emojiRe.FindAllString(text, -1); len(matches) > 0 {
			stripped := emojiRe.ReplaceAllString(text, "")
			stripped = strings.TrimSpace(spaceRunRe.ReplaceAllString(stripped, " "))
			findings = append(findings, schema.Finding{
				Category:   schema.CategoryFormat,
				Severity:   schema.SeverityWarn,
				Message:    fmt.Sprintf("emoji not allowed by brand guidelines (%d found)", len(matches)),
				Suggestion: stripped,
			})
		}
	}

	if links := linkRe.FindAllString(text, -1); len(links) > 0 {
		switch policy.Style.LinksPolicy {
		case schema.LinksForbidden:
			findings = append(findings, schema.Finding{
				Category:   schema.CategoryFormat,
				Severity:   schema.SeverityWarn,
				Message:    fmt.Sprintf("links not allowed by brand policy (%d found)", len(links)),
				Suggestion: linkRe.ReplaceAllString(text, "[link removed]"),
			})
		case schema.LinksNeedsDisclaimer:
			findings = append(findings, schema.Finding{
				Category:   schema.CategoryFormat,
				Severity:   schema.SeverityInfo,
				Message:    "links require a disclaimer per brand policy",
				Suggestion: text + "\n\n*External links are provided for reference only.*",
			})
		}
	}

	return findings
}

// termRe compiles a case-insensitive word-boundary matcher for a literal
// term, so "fake" does not match inside "fakeout".
func termRe(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// firstSpan returns the byte span of the first case-insensitive occurrence of
// term in text, or nil when absent.
func firstSpan(text, term string) *schema.Span {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if idx < 0 {
		return nil
	}
	return &schema.Span{idx, idx + len(term)}
}

// AnalyzeLexicon flags banned terms, discouraged terms, and synonyms of
// preferred terms.
//
// Banned terms are reported at warn, not block. The source system made the
// same downgrade as a product decision (never hard-block user content), and
// that behavior is preserved here.
func AnalyzeLexicon(text string, policy schema.BrandPolicy) []schema.Finding {
	var findings []schema.Finding

	for _, banned := range policy.Lexicon.Banned {
		if !termRe(banned).MatchString(text) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:   schema.CategoryLexicon,
			Severity:   schema.SeverityWarn,
			Message:    fmt.Sprintf("banned term: %q", banned),
			Span:       firstSpan(text, banned),
			Suggestion: fmt.Sprintf("consider replacing %q with a more appropriate alternative", banned),
		})
	}

	for _, avoid := range policy.Lexicon.Avoid {
		if !termRe(avoid).MatchString(text) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:   schema.CategoryLexicon,
			Severity:   schema.SeverityWarn,
			Message:    fmt.Sprintf("discouraged term: %q", avoid),
			Span:       firstSpan(text, avoid),
			Suggestion: suggestPreferred(avoid, policy.Lexicon.Preferred),
		})
	}

	for _, preferred := range policy.Lexicon.Preferred {
		for _, synonym := range commonSynonyms[strings.ToLower(preferred)] {
			re := termRe(synonym)
			if !re.MatchString(text) {
				continue
			}
			findings = append(findings, schema.Finding{
				Category:   schema.CategoryLexicon,
				Severity:   schema.SeverityInfo,
				Message:    fmt.Sprintf("consider the preferred term %q instead of %q", preferred, synonym),
				Span:       firstSpan(text, synonym),
				Suggestion: re.ReplaceAllString(text, preferred),
			})
		}
	}

	return findings
}

// suggestPreferred picks a preferred alternative for a discouraged term by
// crude three-character prefix similarity. Crude is fine: the suggestion is
// advisory text, and the model rewrite path handles the nuanced cases.
func suggestPreferred(avoid string, preferred []string) string {
	prefix := strings.ToLower(avoid)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for _, p := range preferred {
		lp := strings.ToLower(p)
		short := lp
		if len(short) > 3 {
			short = short[:3]
		}
		if strings.Contains(lp, prefix) || strings.Contains(strings.ToLower(avoid), short) {
			return fmt.Sprintf("consider using: %s", p)
		}
	}
	return "consult the brand's preferred term list"
}

// claimRe compiles a claim pattern as a case-insensitive regular expression.
// Policy authors write claim patterns as regexes; a pattern that fails to
// compile is matched as a quoted literal instead of failing the analysis.
func claimRe(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(pattern))
	}
	return re
}

// AnalyzeClaims flags forbidden claim patterns and patterns that require a
// disclaimer.
func AnalyzeClaims(text string, policy schema.BrandPolicy) []schema.Finding {
	var findings []schema.Finding

	for _, forbidden := range policy.Claims.Forbidden {
		if !claimRe(forbidden).MatchString(text) {
			continue
		}
		suggestion := "remove or soften the claim"
		if len(policy.Claims.Allowed) > 0 {
			n := len(policy.Claims.Allowed)
			if n > 2 {
				n = 2
			}
			suggestion = fmt.Sprintf("consider one of the allowed claims: %s",
				strings.Join(policy.Claims.Allowed[:n], ", "))
		}
		findings = append(findings, schema.Finding{
			Category:   schema.CategoryClaim,
			Severity:   schema.SeverityWarn,
			Message:    fmt.Sprintf("forbidden claim detected: %q", forbidden),
			Suggestion: suggestion,
		})
	}

	for _, claim := range policy.Claims.NeedsDisclaimer {
		if !claimRe(claim).MatchString(text) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:   schema.CategoryClaim,
			Severity:   schema.SeverityInfo,
			Message:    fmt.Sprintf("claim requires a disclaimer: %q", claim),
			Suggestion: "a disclaimer will be attached automatically",
		})
	}

	return findings
}

// NeedsDisclaimer reports whether any of the policy's disclaimer-requiring
// claim patterns matches the text.
func NeedsDisclaimer(text string, policy schema.BrandPolicy) bool {
	for _, claim := range policy.Claims.NeedsDisclaimer {
		if claimRe(claim).MatchString(text) {
			return true
		}
	}
	return false
}

// Analyze runs all heuristic analyzers in their fixed order: format, lexicon,
// claims. The result is never nil so a clean report serializes its findings
// as an empty list.
func Analyze(text string, policy schema.BrandPolicy) []schema.Finding {
	findings := []schema.Finding{}
	findings = append(findings, AnalyzeFormat(text, policy)...)
	findings = append(findings, AnalyzeLexicon(text, policy)...)
	findings = append(findings, AnalyzeClaims(text, policy)...)
	return findings
}

// commonSynonyms maps a preferred term to generic words it should replace.
// Deliberately small; broader synonym coverage belongs to the model analysis.
var commonSynonyms = map[string][]string{
	"excellent":    {"good", "great", "fantastic"},
	"innovative":   {"new", "modern", "advanced"},
	"professional": {"expert", "qualified", "competent"},
	"quality":      {"good", "excellent", "superior"},
	"service":      {"support", "assistance", "help"},
	"solution":     {"answer", "alternative", "option"},
}
