package llm

import (
	"testing"

	"github.com/dshills/brandguard/internal/schema"
)

func TestStripMarkdownFences(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"backtick fences", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"tilde fences", "~~~\n{\"a\":1}\n~~~", `{"a":1}`},
		{"truncated opening fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, c := range cases {
		if got := stripMarkdownFences(c.in); got != c.want {
			t.Errorf("%s: stripMarkdownFences = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestNormalizeJSON(t *testing.T) {
	in := "```json\n{\"pattern\": \"\\d+\", \"xs\": [1, 2,]}\n```"
	want := `{"pattern": "\\d+", "xs": [1, 2]}`
	if got := normalizeJSON(in); got != want {
		t.Errorf("normalizeJSON = %q, want %q", got, want)
	}
}

func TestDecodeTone(t *testing.T) {
	raw := `{"toneScore": 85, "findings": [{"category": "tone", "severity": "warn", "message": "too pushy"}], "suggestedRewrite": "softer"}`
	a := DecodeTone(raw)
	if a == nil {
		t.Fatal("DecodeTone returned nil for valid input")
	}
	if a.ToneScore != 85 || len(a.Findings) != 1 || a.SuggestedRewrite != "softer" {
		t.Errorf("unexpected decode: %+v", a)
	}
}

func TestDecodeTone_Fenced(t *testing.T) {
	raw := "```json\n{\"toneScore\": 70, \"findings\": []}\n```"
	a := DecodeTone(raw)
	if a == nil || a.ToneScore != 70 {
		t.Fatalf("DecodeTone on fenced input = %+v, want toneScore 70", a)
	}
}

func TestDecodeTone_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not json", "I could not analyze that."} {
		if a := DecodeTone(raw); a != nil {
			t.Errorf("DecodeTone(%q) = %+v, want nil", raw, a)
		}
	}
}

func TestDecodeTone_ClampsInvalidEnums(t *testing.T) {
	raw := `{"toneScore": 50, "findings": [{"category": "vibes", "severity": "catastrophic", "message": "m"}]}`
	a := DecodeTone(raw)
	if a == nil {
		t.Fatal("DecodeTone returned nil")
	}
	f := a.Findings[0]
	if f.Severity != schema.SeverityInfo {
		t.Errorf("invalid severity clamped to %q, want info", f.Severity)
	}
	if f.Category != schema.CategoryTone {
		t.Errorf("invalid category clamped to %q, want tone", f.Category)
	}
}

func TestDecodeClaims(t *testing.T) {
	raw := `{"claimsScore": 60, "findings": [], "disclaimerNeeded": true, "disclaimerType": "legal"}`
	a := DecodeClaims(raw)
	if a == nil {
		t.Fatal("DecodeClaims returned nil for valid input")
	}
	if a.ClaimsScore != 60 || !a.DisclaimerNeeded || a.DisclaimerType != "legal" {
		t.Errorf("unexpected decode: %+v", a)
	}
}

func TestDecodeRewrite(t *testing.T) {
	raw := `{"rewrittenText": "better text", "changes": [{"category": "tone", "original": "a", "replacement": "b", "reason": "r"}], "improvementScore": 90}`
	a := DecodeRewrite(raw)
	if a == nil {
		t.Fatal("DecodeRewrite returned nil for valid input")
	}
	if a.RewrittenText != "better text" || a.ImprovementScore != 90 || len(a.Changes) != 1 {
		t.Errorf("unexpected decode: %+v", a)
	}
}

func TestDecodeRewrite_EmptyTextIsAbsent(t *testing.T) {
	if a := DecodeRewrite(`{"rewrittenText": "", "improvementScore": 90}`); a != nil {
		t.Errorf("DecodeRewrite with empty text = %+v, want nil", a)
	}
}

func TestDecode_InvalidEscapes(t *testing.T) {
	// Models emit regex patterns unescaped inside JSON strings.
	raw := `{"toneScore": 40, "findings": [{"category": "tone", "severity": "info", "message": "matches \d+ pattern"}]}`
	a := DecodeTone(raw)
	if a == nil {
		t.Fatal("DecodeTone did not recover from invalid escapes")
	}
	if a.ToneScore != 40 {
		t.Errorf("toneScore = %d, want 40", a.ToneScore)
	}
}

func TestNewProvider_NoAPIKey(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("NewProvider with empty API key should fail")
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "delphi", APIKey: "k"}); err == nil {
		t.Error("NewProvider with unknown provider should fail")
	}
}

func TestNewProvider_KnownProviders(t *testing.T) {
	for _, name := range []string{"", "openai", "anthropic", "google", "OpenAI"} {
		p, err := NewProvider(Config{Provider: name, APIKey: "k", Model: "m"})
		if err != nil {
			t.Errorf("NewProvider(%q) error: %v", name, err)
			continue
		}
		if p == nil {
			t.Errorf("NewProvider(%q) returned nil provider", name)
		}
	}
}
