package render

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/brandguard/internal/schema"
)

func sampleReport() *schema.Report {
	return &schema.Report{
		Score: 60,
		Findings: []schema.Finding{
			{Category: schema.CategoryLexicon, Severity: schema.SeverityWarn,
				Message: `banned term: "scam"`, Span: &schema.Span{14, 18},
				Suggestion: "replace it"},
			{Category: schema.CategoryTone, Severity: schema.SeverityInfo,
				Message: "slightly flat | needs energy"},
		},
		SuggestedText:    "a better version\nwith two lines",
		DisclaimerNeeded: true,
		DisclaimerText:   "For information only.",
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	report := sampleReport()
	b, err := JSON(report)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var back schema.Report
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal rendered JSON: %v", err)
	}
	if !reflect.DeepEqual(*report, back) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", *report, back)
	}
}

func TestJSON_NilReport(t *testing.T) {
	if _, err := JSON(nil); err == nil {
		t.Error("JSON(nil) should fail")
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleReport())

	for _, want := range []string{
		"**Score:** 60/100",
		`banned term: "scam"`,
		"a better version",
		"For information only.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	// Pipes inside messages must not break table cells.
	if !strings.Contains(out, `slightly flat \| needs energy`) {
		t.Error("pipe in message was not escaped")
	}
}

func TestMarkdown_CleanReport(t *testing.T) {
	out := Markdown(&schema.Report{Score: 100, Findings: []schema.Finding{}})
	if strings.Contains(out, "Suggested Rewrite") || strings.Contains(out, "Disclaimer") {
		t.Error("clean report rendered optional sections")
	}
	if !strings.Contains(out, "**Score:** 100/100") {
		t.Error("score line missing")
	}
}

func TestMarkdown_NilReport(t *testing.T) {
	if out := Markdown(nil); out != "" {
		t.Errorf("Markdown(nil) = %q, want empty", out)
	}
}
