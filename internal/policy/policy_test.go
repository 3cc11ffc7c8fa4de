package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/brandguard/internal/schema"
)

func TestNormalize_NoNilSlices(t *testing.T) {
	p := Normalize(&schema.BrandPolicy{})

	for name, list := range map[string][]string{
		"tone.encouraged":        p.Tone.Encouraged,
		"tone.discouraged":       p.Tone.Discouraged,
		"lexicon.preferred":      p.Lexicon.Preferred,
		"lexicon.avoid":          p.Lexicon.Avoid,
		"lexicon.banned":         p.Lexicon.Banned,
		"claims.allowed":         p.Claims.Allowed,
		"claims.forbidden":       p.Claims.Forbidden,
		"claims.needsDisclaimer": p.Claims.NeedsDisclaimer,
	} {
		if list == nil {
			t.Errorf("%s is nil after Normalize", name)
		}
	}
}

func TestNormalize_KeepsExisting(t *testing.T) {
	p := &schema.BrandPolicy{Lexicon: schema.Lexicon{Banned: []string{"scam"}}}
	Normalize(p)
	if len(p.Lexicon.Banned) != 1 || p.Lexicon.Banned[0] != "scam" {
		t.Errorf("Normalize altered existing list: %v", p.Lexicon.Banned)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		policy  schema.BrandPolicy
		wantErr bool
	}{
		{"zero value", schema.BrandPolicy{}, false},
		{"valid enums", schema.BrandPolicy{
			Tone:  schema.Tone{ReadingLevel: schema.ReadingFormal},
			Style: schema.Style{LinksPolicy: schema.LinksForbidden},
		}, false},
		{"bad reading level", schema.BrandPolicy{
			Tone: schema.Tone{ReadingLevel: "academic"},
		}, true},
		{"bad links policy", schema.BrandPolicy{
			Style: schema.Style{LinksPolicy: "maybe"},
		}, true},
	}
	for _, c := range cases {
		err := Validate(&c.policy)
		if (err != nil) != c.wantErr {
			t.Errorf("%s: Validate error = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestValidateInput(t *testing.T) {
	valid := schema.AnalysisInput{Text: "hello", Role: schema.RoleUser}
	if err := ValidateInput(&valid); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	missing := schema.AnalysisInput{Role: schema.RoleUser}
	if err := ValidateInput(&missing); err == nil {
		t.Error("input without text accepted")
	}

	badRole := schema.AnalysisInput{Text: "hello", Role: "bot"}
	if err := ValidateInput(&badRole); err == nil {
		t.Error("input with invalid role accepted")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.yaml")
	data := `
tone:
  encouraged: [warm, clear]
  readingLevel: neutral
lexicon:
  banned: [scam]
style:
  allowEmoji: false
  maxExclamations: 1
  linksPolicy: forbidden
disclaimers:
  standard: For information only.
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(p.Tone.Encouraged) != 2 || p.Tone.ReadingLevel != schema.ReadingNeutral {
		t.Errorf("tone = %+v", p.Tone)
	}
	if p.Style.MaxExclamations == nil || *p.Style.MaxExclamations != 1 {
		t.Errorf("maxExclamations = %v, want 1", p.Style.MaxExclamations)
	}
	// Lists absent from the file must still be iterable.
	if p.Claims.Forbidden == nil || p.Lexicon.Avoid == nil {
		t.Error("loaded policy has nil list fields")
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.json")
	data := `{"lexicon": {"banned": ["scam"]}, "style": {"allowEmoji": true}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(p.Lexicon.Banned) != 1 || !p.Style.AllowEmoji {
		t.Errorf("policy = %+v", p)
	}
}

func TestLoadFile_InvalidEnumRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `{"style": {"linksPolicy": "sometimes"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("policy with invalid enum accepted")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestRedact(t *testing.T) {
	cases := []struct {
		name, in, masked string
	}{
		{"email", "contact bob@example.com today", "[EMAIL]"},
		{"ssn", "ssn is 123-45-6789 ok", "[SSN]"},
		{"card", "card 4111 1111 1111 1111 on file", "[CARD]"},
		{"phone", "call 555-123-4567 now", "[PHONE]"},
	}
	for _, c := range cases {
		got := Redact(c.in)
		if !strings.Contains(got, c.masked) {
			t.Errorf("%s: Redact(%q) = %q, missing %s", c.name, c.in, got, c.masked)
		}
	}
}

func TestRedact_CardBeforePhone(t *testing.T) {
	got := Redact("pay with 4111-1111-1111-1111 please")
	if strings.Contains(got, "[PHONE]") || !strings.Contains(got, "[CARD]") {
		t.Errorf("Redact = %q, card number must mask as [CARD]", got)
	}
}

func TestRedact_NoPII(t *testing.T) {
	in := "a perfectly ordinary sentence"
	if got := Redact(in); got != in {
		t.Errorf("Redact altered clean text: %q", got)
	}
}
