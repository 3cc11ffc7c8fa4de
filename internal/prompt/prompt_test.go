package prompt

import (
	"strings"
	"testing"

	"github.com/dshills/brandguard/internal/schema"
)

func sampleInput() schema.AnalysisInput {
	return schema.AnalysisInput{
		Text: "Buy now!",
		Role: schema.RoleAssistant,
		Policy: schema.BrandPolicy{
			Tone: schema.Tone{
				Encouraged:   []string{"warm", "confident"},
				Discouraged:  []string{"aggressive"},
				ReadingLevel: schema.ReadingNeutral,
			},
			Lexicon: schema.Lexicon{
				Preferred: []string{"accessible"},
				Avoid:     []string{"cheap"},
			},
			Claims: schema.Claims{
				Allowed:         []string{"saves time"},
				Forbidden:       []string{"guaranteed results"},
				NeedsDisclaimer: []string{"financial advice"},
			},
		},
	}
}

func TestTone_EmbedsPolicyAndSchema(t *testing.T) {
	input := sampleInput()
	input.Context = &schema.Context{Objective: "drive signups", Audience: "developers"}

	p := Tone(input)
	for _, want := range []string{
		`"Buy now!"`,
		"warm, confident",
		"aggressive",
		"neutral",
		"drive signups",
		"developers",
		`"toneScore"`,
		`"suggestedRewrite"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("tone prompt missing %q", want)
		}
	}
}

func TestTone_OmitsEmptyContext(t *testing.T) {
	p := Tone(sampleInput())
	if strings.Contains(p, "Message objective") || strings.Contains(p, "Audience:") {
		t.Error("tone prompt includes context lines without a context")
	}
}

func TestClaims_EmbedsClaimLists(t *testing.T) {
	p := Claims(sampleInput())
	for _, want := range []string{
		"saves time",
		"guaranteed results",
		"financial advice",
		`"claimsScore"`,
		`"disclaimerNeeded"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("claims prompt missing %q", want)
		}
	}
}

func TestClaims_EmptyListsFallback(t *testing.T) {
	input := sampleInput()
	input.Policy.Claims = schema.Claims{}
	if p := Claims(input); !strings.Contains(p, "none specified") {
		t.Error("claims prompt missing fallback for empty claim lists")
	}
}

func TestRewrite_EmbedsFindingsAndRole(t *testing.T) {
	findings := []schema.Finding{
		{Message: "too many exclamation marks (3/1)"},
		{Message: `banned term: "scam"`},
	}

	p := Rewrite(sampleInput(), findings)
	for _, want := range []string{
		"assistant response",
		"too many exclamation marks (3/1)",
		`banned term: "scam"`,
		`"rewrittenText"`,
		`"improvementScore"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("rewrite prompt missing %q", want)
		}
	}

	input := sampleInput()
	input.Role = schema.RoleUser
	if !strings.Contains(Rewrite(input, findings), "user message") {
		t.Error("rewrite prompt does not adapt to the user role")
	}
}

func TestRewrite_TruncatesTermLists(t *testing.T) {
	input := sampleInput()
	input.Policy.Lexicon.Preferred = []string{"a", "b", "c", "d", "e", "sixth"}
	if strings.Contains(Rewrite(input, nil), "sixth") {
		t.Error("rewrite prompt should list at most five preferred terms")
	}
}

func TestPrompts_Deterministic(t *testing.T) {
	input := sampleInput()
	if Tone(input) != Tone(input) || Claims(input) != Claims(input) {
		t.Error("prompt builders are not deterministic")
	}
}
