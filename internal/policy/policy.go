// Package policy loads, normalizes, and validates brand policy documents,
// and provides the PII redaction applied before any analyzed text is logged.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dshills/brandguard/internal/schema"
)

var validate = validator.New()

// Normalize replaces nil list fields with empty slices so evaluators can
// iterate unconditionally. Mutates p in place and returns it for chaining.
func Normalize(p *schema.BrandPolicy) *schema.BrandPolicy {
	if p.Tone.Encouraged == nil {
		p.Tone.Encouraged = []string{}
	}
	if p.Tone.Discouraged == nil {
		p.Tone.Discouraged = []string{}
	}
	if p.Lexicon.Preferred == nil {
		p.Lexicon.Preferred = []string{}
	}
	if p.Lexicon.Avoid == nil {
		p.Lexicon.Avoid = []string{}
	}
	if p.Lexicon.Banned == nil {
		p.Lexicon.Banned = []string{}
	}
	if p.Claims.Allowed == nil {
		p.Claims.Allowed = []string{}
	}
	if p.Claims.Forbidden == nil {
		p.Claims.Forbidden = []string{}
	}
	if p.Claims.NeedsDisclaimer == nil {
		p.Claims.NeedsDisclaimer = []string{}
	}
	return p
}

// Validate checks the enum-valued fields of a policy. List contents are free
// text (or regex patterns) and are not validated here.
func Validate(p *schema.BrandPolicy) error {
	switch p.Tone.ReadingLevel {
	case "", schema.ReadingSimple, schema.ReadingNeutral, schema.ReadingFormal:
	default:
		return fmt.Errorf("policy: invalid reading level %q", p.Tone.ReadingLevel)
	}
	switch p.Style.LinksPolicy {
	case "", schema.LinksAllowed, schema.LinksNeedsDisclaimer, schema.LinksForbidden:
	default:
		return fmt.Errorf("policy: invalid links policy %q", p.Style.LinksPolicy)
	}
	return nil
}

// ValidateInput checks an analysis input at the API boundary: required
// fields, role enum, and the embedded policy.
func ValidateInput(input *schema.AnalysisInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("policy: invalid input: %w", err)
	}
	return Validate(&input.Policy)
}

// LoadFile reads a policy document from a YAML or JSON file, normalizes it,
// and validates it. The format is chosen by file extension; anything that is
// not .yaml/.yml is parsed as JSON.
func LoadFile(path string) (schema.BrandPolicy, error) {
	var p schema.BrandPolicy
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("policy: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("policy: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("policy: parse %s: %w", path, err)
		}
	}
	Normalize(&p)
	if err := Validate(&p); err != nil {
		return p, err
	}
	return p, nil
}

var (
	emailRe = regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardRe  = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	phoneRe = regexp.MustCompile(`\b\d{3}[\s.-]?\d{3}[\s.-]?\d{4}\b`)
)

// Redact masks emails, SSNs, card numbers, and phone numbers so text excerpts
// can be logged. Order matters: card numbers must be masked before the
// shorter phone pattern can match inside them.
func Redact(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = ssnRe.ReplaceAllString(text, "[SSN]")
	text = cardRe.ReplaceAllString(text, "[CARD]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")
	return text
}
