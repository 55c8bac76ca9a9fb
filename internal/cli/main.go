package cli

import (
	"fmt"
	"os"

	"viralclip/internal/config"
	"viralclip/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Main runs clipctl, the operator CLI.
func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := NewRootCommand(logger.New())
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(log zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "clipctl",
		Short:         "Operate the viral clip service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	env := &cliEnv{logger: log}
	root.AddCommand(
		newMigrateCommand(env),
		newTierCommand(env),
		newRenderCommand(env),
		newDLQCommand(env),
		newTokenCommand(env),
	)
	return root
}

type cliEnv struct {
	logger zerolog.Logger
	cfg    *config.Config
}

func (e *cliEnv) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	e.cfg = cfg
	return cfg, nil
}
