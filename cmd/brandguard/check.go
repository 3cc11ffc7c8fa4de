package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/brandguard/internal/engine"
	"github.com/dshills/brandguard/internal/llm"
	"github.com/dshills/brandguard/internal/policy"
	"github.com/dshills/brandguard/internal/render"
	"github.com/dshills/brandguard/internal/schema"
)

func newCheckCmd() *cobra.Command {
	var (
		policyPath string
		textFile   string
		role       string
		format     string
		provider   string
		model      string
		noLLM      bool
	)

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Analyze text against a brand policy",
		Long: `Analyze text against a brand policy and print a compliance report.
Text is taken from the argument, from --file, or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync failure is uninteresting

			text, err := readText(args, textFile)
			if err != nil {
				return err
			}

			pol, err := policy.LoadFile(policyPath)
			if err != nil {
				return err
			}

			cfg := engine.Config{Logger: logger}
			if !noLLM {
				cfg.LLM = llm.Config{
					Provider: provider,
					APIKey:   apiKeyFor(provider),
					Model:    model,
				}
			}

			input := schema.AnalysisInput{
				Text:   text,
				Role:   schema.Role(role),
				Policy: pol,
			}
			if err := policy.ValidateInput(&input); err != nil {
				return err
			}

			report := engine.New(cfg).Analyze(cmd.Context(), input)

			switch format {
			case "markdown":
				fmt.Fprint(cmd.OutOrStdout(), render.Markdown(&report))
			case "json":
				b, err := render.JSON(&report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			default:
				return fmt.Errorf("unknown format %q (expected json or markdown)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&policyPath, "policy", "p", "", "Path to the brand policy file (YAML or JSON)")
	cmd.Flags().StringVarP(&textFile, "file", "f", "", "Read the text to analyze from a file ('-' for stdin)")
	cmd.Flags().StringVar(&role, "role", "assistant", "Author role of the text (user or assistant)")
	cmd.Flags().StringVarP(&format, "format", "o", "markdown", "Output format (json or markdown)")
	cmd.Flags().StringVar(&provider, "provider", "openai", "Completion provider (openai, anthropic, google)")
	cmd.Flags().StringVar(&model, "model", "gpt-4o-mini", "Completion model")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Skip model analysis, heuristics only")
	_ = cmd.MarkFlagRequired("policy")

	return cmd
}

// readText resolves the text to analyze from the positional argument, a file,
// or stdin.
func readText(args []string, textFile string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	switch textFile {
	case "":
		return "", fmt.Errorf("no text given: pass it as an argument or with --file")
	case "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(textFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", textFile, err)
		}
		return string(b), nil
	}
}
