// Package engine orchestrates one brand guard analysis: heuristic evaluation,
// optional model enrichment under a time budget, and the merge into a single
// compliance report. Analyze never returns an error; every failure mode
// degrades to a valid report.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/brandguard/internal/heuristics"
	"github.com/dshills/brandguard/internal/llm"
	"github.com/dshills/brandguard/internal/prompt"
	"github.com/dshills/brandguard/internal/schema"
)

const (
	defaultMaxChars    = 6000
	defaultBudget      = 3 * time.Second
	defaultMaxTokens   = 1000
	defaultTemperature = 0.3

	// acceptableScore is the threshold below which a validated rewrite is
	// allowed to raise the final score.
	acceptableScore = 80

	fallbackDisclaimer = "This information is provided for informational purposes only."
)

// Config configures an Engine. The zero value disables model analysis and
// uses the default limits and weights.
type Config struct {
	LLM      llm.Config
	Weights  heuristics.Weights
	MaxChars int
	Budget   time.Duration
	Logger   *zap.Logger
}

// Engine evaluates text against a brand policy. Engines are stateless and
// safe for concurrent use; each Analyze call is independent.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	// now is replaceable in tests to exercise budget exhaustion.
	now func() time.Time
}

// New creates an Engine, applying defaults for unset config fields.
func New(cfg Config) *Engine {
	if cfg.MaxChars == 0 {
		cfg.MaxChars = defaultMaxChars
	}
	if cfg.Budget == 0 {
		cfg.Budget = defaultBudget
	}
	if cfg.Weights == (heuristics.Weights{}) {
		cfg.Weights = heuristics.DefaultWeights
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = defaultMaxTokens
	}
	if cfg.LLM.Temperature == nil {
		t := defaultTemperature
		cfg.LLM.Temperature = &t
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger, now: time.Now}
}

// modelResult aggregates the decoded responses of the up-to-three model
// calls. Any field may be nil.
type modelResult struct {
	tone    *llm.ToneAnalysis
	claims  *llm.ClaimsAnalysis
	rewrite *llm.RewriteAnalysis
}

// Analyze produces a compliance report for the input. It always returns a
// structurally valid report: length overruns, provider failures, and even
// internal panics all degrade to defined fallback reports.
func (e *Engine) Analyze(ctx context.Context, input schema.AnalysisInput) (report schema.Report) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("analysis panicked", zap.Any("panic", r))
			report = schema.Report{
				Score: 75,
				Findings: []schema.Finding{{
					Category:   schema.CategoryCompliance,
					Severity:   schema.SeverityInfo,
					Message:    "brand analysis temporarily unavailable",
					Suggestion: "review manually against brand guidelines",
				}},
			}
		}
	}()

	start := e.now()

	if len(input.Text) > e.cfg.MaxChars {
		return schema.Report{
			Score: 50,
			Findings: []schema.Finding{{
				Category:   schema.CategoryFormat,
				Severity:   schema.SeverityWarn,
				Message:    fmt.Sprintf("text too long (%d/%d characters)", len(input.Text), e.cfg.MaxChars),
				Suggestion: "consider splitting into shorter messages",
			}},
		}
	}

	heuristicFindings := heuristics.Analyze(input.Text, input.Policy)

	// Model calls only run while at least half the budget remains.
	if e.now().Sub(start) > e.cfg.Budget/2 {
		e.logger.Debug("budget exhausted after heuristics, skipping model analysis")
		return e.heuristicsOnlyReport(input, heuristicFindings)
	}

	model := e.runModelAnalysis(ctx, start, input, heuristicFindings)
	return e.merge(input, heuristicFindings, model)
}

// runModelAnalysis performs the sequential tone, claims, and rewrite calls.
// Each call is gated on remaining budget and carries a deadline at the budget
// boundary; any failure leaves the corresponding result nil.
func (e *Engine) runModelAnalysis(ctx context.Context, start time.Time, input schema.AnalysisInput, heuristicFindings []schema.Finding) modelResult {
	var result modelResult

	provider, err := llm.NewProvider(e.cfg.LLM)
	if err != nil {
		e.logger.Debug("model analysis unavailable", zap.Error(err))
		return result
	}

	deadline := start.Add(e.cfg.Budget)
	call := func(userPrompt string) (string, bool) {
		if !e.now().Before(deadline) {
			e.logger.Debug("budget exhausted, skipping remaining model calls")
			return "", false
		}
		cctx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()
		raw, err := provider.Complete(cctx, prompt.System, userPrompt,
			e.cfg.LLM.MaxTokens, *e.cfg.LLM.Temperature)
		if err != nil {
			e.logger.Warn("model call failed", zap.Error(err))
			return "", false
		}
		return raw, true
	}

	if raw, ok := call(prompt.Tone(input)); ok {
		result.tone = llm.DecodeTone(raw)
	}

	if len(input.Policy.Claims.Forbidden) > 0 || len(input.Policy.Claims.NeedsDisclaimer) > 0 {
		if raw, ok := call(prompt.Claims(input)); ok {
			result.claims = llm.DecodeClaims(raw)
		}
	}

	// A clean text needs no rewrite.
	if len(heuristicFindings) > 0 {
		if raw, ok := call(prompt.Rewrite(input, heuristicFindings)); ok {
			result.rewrite = llm.DecodeRewrite(raw)
		}
	}

	return result
}

// heuristicsOnlyReport builds a report from heuristic findings alone.
func (e *Engine) heuristicsOnlyReport(input schema.AnalysisInput, findings []schema.Finding) schema.Report {
	report := schema.Report{
		Score:    heuristics.Score(findings, e.cfg.Weights),
		Findings: findings,
	}
	e.applyDisclaimer(&report, input, false)
	return report
}

// merge combines heuristic findings with any model results. Model findings
// are appended after heuristic findings without deduplication: the same issue
// flagged by both analyzers appearing twice is a known characteristic, not a
// defect. The final score is the minimum of the heuristic score and all model
// sub-scores, except that a validated rewrite may raise a sub-threshold score
// to its improvement score.
func (e *Engine) merge(input schema.AnalysisInput, heuristicFindings []schema.Finding, model modelResult) schema.Report {
	findings := heuristicFindings
	score := heuristics.Score(heuristicFindings, e.cfg.Weights)

	if model.tone != nil {
		findings = append(findings, model.tone.Findings...)
		score = minScore(score, model.tone.ToneScore)
	}
	if model.claims != nil {
		findings = append(findings, model.claims.Findings...)
		score = minScore(score, model.claims.ClaimsScore)
	}

	var suggestedText string
	if model.rewrite != nil && score < acceptableScore {
		suggestedText = model.rewrite.RewrittenText
		// A validated improvement is reflected in the score rather than
		// re-penalized.
		if model.rewrite.ImprovementScore > score {
			score = model.rewrite.ImprovementScore
		}
	}

	report := schema.Report{
		Score:         clamp(score),
		Findings:      findings,
		SuggestedText: suggestedText,
	}
	llmFlagged := model.claims != nil && model.claims.DisclaimerNeeded
	e.applyDisclaimer(&report, input, llmFlagged)
	return report
}

// applyDisclaimer sets the disclaimer fields. The decision is independent of
// scoring: a disclaimer is needed when any needsDisclaimer pattern matches
// the text or the model claims analysis flagged it.
func (e *Engine) applyDisclaimer(report *schema.Report, input schema.AnalysisInput, llmFlagged bool) {
	needed := llmFlagged || heuristics.NeedsDisclaimer(input.Text, input.Policy)
	if !needed {
		return
	}
	report.DisclaimerNeeded = true
	switch {
	case input.Policy.Disclaimers.Legal != "":
		report.DisclaimerText = input.Policy.Disclaimers.Legal
	case input.Policy.Disclaimers.Standard != "":
		report.DisclaimerText = input.Policy.Disclaimers.Standard
	default:
		report.DisclaimerText = fallbackDisclaimer
	}
}

// minScore treats a zero sub-score as absent: models that omit the score
// field must not drag the result to zero.
func minScore(current, sub int) int {
	if sub <= 0 {
		return current
	}
	if sub < current {
		return sub
	}
	return current
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
