// Package render produces output from a compliance report.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/brandguard/internal/schema"
)

// JSON produces a pretty-printed JSON representation of the report.
// The output round-trips through json.Unmarshal back to an equal Report.
func JSON(report *schema.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("render: nil report")
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// Markdown produces a GitHub-flavoured Markdown summary of the report,
// suitable for terminal output or PR comments. Every finding in the report
// appears in the output.
func Markdown(report *schema.Report) string {
	if report == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString("## Brand Guard Report\n\n")
	fmt.Fprintf(&sb, "**Score:** %d/100  \n", report.Score)
	fmt.Fprintf(&sb, "**Findings:** %d\n\n", len(report.Findings))

	if len(report.Findings) > 0 {
		sb.WriteString("| Category | Severity | Message | Suggestion |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, f := range report.Findings {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				f.Category, f.Severity, mdEscape(f.Message), mdEscape(f.Suggestion))
		}
		sb.WriteString("\n")
	}

	if report.SuggestedText != "" {
		sb.WriteString("## Suggested Rewrite\n\n")
		sb.WriteString("> ")
		sb.WriteString(strings.ReplaceAll(report.SuggestedText, "\n", "\n> "))
		sb.WriteString("\n\n")
	}

	if report.DisclaimerNeeded {
		sb.WriteString("## Disclaimer\n\n")
		fmt.Fprintf(&sb, "%s\n", report.DisclaimerText)
	}

	return sb.String()
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
