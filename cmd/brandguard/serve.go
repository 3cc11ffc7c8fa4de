package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/brandguard/internal/engine"
	"github.com/dshills/brandguard/internal/llm"
	"github.com/dshills/brandguard/internal/server"
	"github.com/dshills/brandguard/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		dbPath    string
		policyDir string
		provider  string
		model     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the brand guard HTTP API",
		Long: `Start an HTTP server exposing the check endpoint, policy storage,
health, and Prometheus metrics. Policies in --policy-dir are loaded into the
store and reloaded when their files change.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync failure is uninteresting

			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			eng := engine.New(engine.Config{
				LLM: llm.Config{
					Provider: provider,
					APIKey:   apiKeyFor(provider),
					Model:    model,
				},
				Logger: logger,
			})

			srv, err := server.New(server.Config{
				Port:      port,
				Engine:    eng,
				Store:     st,
				Logger:    logger,
				PolicyDir: policyDir,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&dbPath, "db", "brandguard.db", "Path to the SQLite database")
	cmd.Flags().StringVar(&policyDir, "policy-dir", "", "Directory of policy files to load and watch")
	cmd.Flags().StringVar(&provider, "provider", "openai", "Completion provider (openai, anthropic, google)")
	cmd.Flags().StringVar(&model, "model", "gpt-4o-mini", "Completion model")

	return cmd
}
