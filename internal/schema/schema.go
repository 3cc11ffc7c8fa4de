// Package schema defines the canonical data types exchanged by the brand
// guard pipeline: the brand policy document, the analysis input, and the
// compliance report with its findings.
package schema

// Category classifies a finding by the policy area it concerns.
type Category string

const (
	CategoryTone       Category = "tone"
	CategoryLexicon    Category = "lexicon"
	CategoryClaim      Category = "claim"
	CategoryFormat     Category = "format"
	CategoryCompliance Category = "compliance"
)

// Severity represents how serious a finding is.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// ReadingLevel is the target reading complexity declared in a policy.
type ReadingLevel string

const (
	ReadingSimple  ReadingLevel = "simple"
	ReadingNeutral ReadingLevel = "neutral"
	ReadingFormal  ReadingLevel = "formal"
)

// LinksPolicy governs how URLs in analyzed content are treated.
type LinksPolicy string

const (
	LinksAllowed         LinksPolicy = "allowed"
	LinksNeedsDisclaimer LinksPolicy = "needs-disclaimer"
	LinksForbidden       LinksPolicy = "forbidden"
)

// Role identifies who authored the text under analysis.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Tone holds the voice guidelines of a brand policy.
type Tone struct {
	Encouraged   []string     `json:"encouraged" yaml:"encouraged"`
	Discouraged  []string     `json:"discouraged" yaml:"discouraged"`
	ReadingLevel ReadingLevel `json:"readingLevel,omitempty" yaml:"readingLevel,omitempty"`
}

// Lexicon holds the vocabulary rules of a brand policy.
type Lexicon struct {
	Preferred []string `json:"preferred" yaml:"preferred"`
	Avoid     []string `json:"avoid" yaml:"avoid"`
	Banned    []string `json:"banned" yaml:"banned"`
}

// Style holds the formatting rules of a brand policy.
// MaxExclamations is a pointer so "no limit" and "limit of zero" are distinct.
type Style struct {
	AllowEmoji      bool        `json:"allowEmoji" yaml:"allowEmoji"`
	MaxExclamations *int        `json:"maxExclamations,omitempty" yaml:"maxExclamations,omitempty"`
	LinksPolicy     LinksPolicy `json:"linksPolicy,omitempty" yaml:"linksPolicy,omitempty"`
}

// Claims holds the claim patterns a brand allows, forbids, or qualifies.
// Forbidden and NeedsDisclaimer entries are matched as case-insensitive
// regular expressions against the analyzed text.
type Claims struct {
	Allowed         []string `json:"allowed" yaml:"allowed"`
	Forbidden       []string `json:"forbidden" yaml:"forbidden"`
	NeedsDisclaimer []string `json:"needsDisclaimer" yaml:"needsDisclaimer"`
}

// Disclaimers holds the disclaimer texts a brand attaches to qualified claims.
type Disclaimers struct {
	Standard string `json:"standard" yaml:"standard"`
	Legal    string `json:"legal,omitempty" yaml:"legal,omitempty"`
}

// BrandPolicy is the immutable rule document one analysis evaluates against.
// A normalized policy has no nil list fields; see policy.Normalize.
type BrandPolicy struct {
	Tone        Tone        `json:"tone" yaml:"tone"`
	Lexicon     Lexicon     `json:"lexicon" yaml:"lexicon"`
	Style       Style       `json:"style" yaml:"style"`
	Claims      Claims      `json:"claims" yaml:"claims"`
	Disclaimers Disclaimers `json:"disclaimers" yaml:"disclaimers"`
	Locales     []string    `json:"locales,omitempty" yaml:"locales,omitempty"`
}

// Context carries optional hints about the message being analyzed.
type Context struct {
	Objective string `json:"objective,omitempty"`
	Audience  string `json:"audience,omitempty"`
}

// AnalysisInput is the single argument to Engine.Analyze.
type AnalysisInput struct {
	Text    string      `json:"text" validate:"required"`
	Role    Role        `json:"role" validate:"required,oneof=user assistant"`
	Locale  string      `json:"locale,omitempty"`
	Policy  BrandPolicy `json:"policy"`
	Context *Context    `json:"context,omitempty"`
}

// Span marks a half-open [start, end) byte range in the analyzed text.
type Span [2]int

// Finding is one flagged issue from either the heuristic analyzers or the
// completion-model analysis. Findings are append-only: once constructed they
// are never mutated, and report order is insertion order with heuristic
// findings preceding model findings.
type Finding struct {
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Span       *Span    `json:"span,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Report is the immutable result of one analysis.
type Report struct {
	Score            int       `json:"score"`
	Findings         []Finding `json:"findings"`
	SuggestedText    string    `json:"suggestedText,omitempty"`
	DisclaimerNeeded bool      `json:"disclaimerNeeded"`
	DisclaimerText   string    `json:"disclaimerText,omitempty"`
}

// AnalysisRecord is one persisted metrics row describing a served analysis.
type AnalysisRecord struct {
	ID         string `json:"id"`
	Brand      string `json:"brand,omitempty"`
	Role       Role   `json:"role"`
	Score      int    `json:"score"`
	Findings   int    `json:"findings"`
	TextLength int    `json:"text_length"`
	CreatedAt  int64  `json:"created_at"`
}
