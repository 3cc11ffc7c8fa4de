// Package prompt renders analysis requests into chat-completion prompts.
// Pure string templating: no I/O, no state. Each builder documents the JSON
// shape the model is instructed to return; the llm package validates against
// those shapes.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/brandguard/internal/schema"
)

// System is the fixed system instruction sent with every guard prompt.
const System = "You are a brand communication analyst. " +
	"Always respond with valid JSON in exactly the requested format. " +
	"No prose, no markdown, no explanation outside the JSON."

// toneSchema is the JSON shape the tone analysis must return.
const toneSchema = `Respond with JSON only:
{
  "toneScore": 0-100,
  "findings": [
    {
      "category": "tone",
      "severity": "info|warn|block",
      "message": "specific description of the tone problem",
      "suggestion": "specific improvement"
    }
  ],
  "suggestedRewrite": "improved version keeping the message but adjusting tone (only if needed)"
}`

// claimsSchema is the JSON shape the claims analysis must return.
const claimsSchema = `Respond with JSON only:
{
  "claimsScore": 0-100,
  "findings": [
    {
      "category": "claim",
      "severity": "info|warn|block",
      "message": "description of the problematic claim",
      "suggestion": "suggested alternative"
    }
  ],
  "disclaimerNeeded": true|false,
  "disclaimerType": "standard|legal"
}`

// rewriteSchema is the JSON shape the comprehensive rewrite must return.
const rewriteSchema = `Respond with JSON only:
{
  "rewrittenText": "improved version of the text",
  "changes": [
    {
      "category": "tone|lexicon|format",
      "original": "problematic original text",
      "replacement": "corrected text",
      "reason": "why it changed"
    }
  ],
  "improvementScore": 0-100
}`

// Tone builds the tone-alignment analysis prompt.
func Tone(input schema.AnalysisInput) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following text for alignment with the brand tone guidelines.\n\n")

	fmt.Fprintf(&sb, "TEXT TO ANALYZE:\n%q\n\n", input.Text)

	sb.WriteString("BRAND GUIDELINES:\n")
	fmt.Fprintf(&sb, "- Desired tone: %s\n", joinOr(input.Policy.Tone.Encouraged, "not specified"))
	fmt.Fprintf(&sb, "- Tone to avoid: %s\n", joinOr(input.Policy.Tone.Discouraged, "not specified"))
	fmt.Fprintf(&sb, "- Reading level: %s\n", orDefault(string(input.Policy.Tone.ReadingLevel), "not specified"))
	if input.Context != nil {
		if input.Context.Objective != "" {
			fmt.Fprintf(&sb, "- Message objective: %s\n", input.Context.Objective)
		}
		if input.Context.Audience != "" {
			fmt.Fprintf(&sb, "- Audience: %s\n", input.Context.Audience)
		}
	}

	sb.WriteString("\nEVALUATE:\n")
	sb.WriteString("1. Does the text keep the desired tone?\n")
	sb.WriteString("2. Does it avoid the discouraged tones?\n")
	sb.WriteString("3. Is it appropriate for the specified reading level?\n")
	sb.WriteString("4. What aspects of the tone could improve?\n\n")

	sb.WriteString(toneSchema)
	return sb.String()
}

// Claims builds the claims-validation analysis prompt.
func Claims(input schema.AnalysisInput) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following text for claims that may require validation or a disclaimer.\n\n")

	fmt.Fprintf(&sb, "TEXT TO ANALYZE:\n%q\n\n", input.Text)

	sb.WriteString("ALLOWED CLAIMS:\n")
	sb.WriteString(listOr(input.Policy.Claims.Allowed, "none specified"))
	sb.WriteString("\nFORBIDDEN CLAIMS:\n")
	sb.WriteString(listOr(input.Policy.Claims.Forbidden, "none specified"))
	sb.WriteString("\nCLAIMS REQUIRING A DISCLAIMER:\n")
	sb.WriteString(listOr(input.Policy.Claims.NeedsDisclaimer, "none specified"))

	sb.WriteString("\nEVALUATE:\n")
	sb.WriteString("1. Does the text contain forbidden claims?\n")
	sb.WriteString("2. Does it contain claims that require a disclaimer?\n")
	sb.WriteString("3. Are the claims aligned with the allowed ones?\n")
	sb.WriteString("4. Is there legal or compliance risk?\n\n")

	sb.WriteString(claimsSchema)
	return sb.String()
}

// Rewrite builds the comprehensive-rewrite prompt, embedding the problems the
// heuristic pass already detected.
func Rewrite(input schema.AnalysisInput, findings []schema.Finding) string {
	var sb strings.Builder

	subject := "assistant response"
	if input.Role == schema.RoleUser {
		subject = "user message"
	}
	fmt.Fprintf(&sb, "Rewrite the following %s to fully align with the brand guidelines.\n\n", subject)

	fmt.Fprintf(&sb, "ORIGINAL TEXT:\n%q\n\n", input.Text)

	sb.WriteString("BRAND GUIDELINES:\n")
	fmt.Fprintf(&sb, "- Desired tone: %s\n", joinOr(input.Policy.Tone.Encouraged, "not specified"))
	fmt.Fprintf(&sb, "- Tone to avoid: %s\n", joinOr(input.Policy.Tone.Discouraged, "not specified"))
	fmt.Fprintf(&sb, "- Preferred terms: %s\n", joinOr(head(input.Policy.Lexicon.Preferred, 5), "none"))
	fmt.Fprintf(&sb, "- Terms to avoid: %s\n", joinOr(head(input.Policy.Lexicon.Avoid, 5), "none"))
	fmt.Fprintf(&sb, "- Emoji: %s\n", allowed(input.Policy.Style.AllowEmoji))
	if input.Policy.Style.MaxExclamations != nil {
		fmt.Fprintf(&sb, "- Max exclamation marks: %d\n", *input.Policy.Style.MaxExclamations)
	} else {
		sb.WriteString("- Max exclamation marks: no limit\n")
	}

	sb.WriteString("\nPROBLEMS DETECTED AUTOMATICALLY:\n")
	for _, f := range findings {
		fmt.Fprintf(&sb, "- %s\n", f.Message)
	}

	sb.WriteString("\nINSTRUCTIONS:\n")
	sb.WriteString("1. Keep the original message and purpose\n")
	sb.WriteString("2. Adjust the tone to the guidelines\n")
	sb.WriteString("3. Replace problematic terms with brand alternatives\n")
	sb.WriteString("4. Ensure format compliance (emoji, exclamations)\n")
	fmt.Fprintf(&sb, "5. Keep the conversational style appropriate for a %s\n\n", subject)

	sb.WriteString(rewriteSchema)
	return sb.String()
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func listOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback + "\n"
	}
	return strings.Join(items, "\n") + "\n"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func allowed(b bool) string {
	if b {
		return "allowed"
	}
	return "not allowed"
}
