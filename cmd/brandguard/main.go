package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var debugFlag bool

func main() {
	// A missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "brandguard",
		Short: "Brand compliance analysis for content pipelines",
	}
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newPolicyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Debug mode lowers the level and keeps
// console-friendly output.
func newLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debugFlag {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// apiKeyFor returns the credential environment variable for a provider name.
// An empty result disables model analysis rather than failing: the engine
// degrades to heuristics-only.
func apiKeyFor(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "google":
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}
