// Package commands implements the regcalc subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/regcalc/internal/cli/config"
	"github.com/leapstack-labs/regcalc/internal/cli/output"
	"github.com/leapstack-labs/regcalc/internal/engine"
	"github.com/leapstack-labs/regcalc/internal/session"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a fresh engine and renderer.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   engine.New(engine.Config{Logger: logger}),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// NewSession creates a session over the context's engine writing to the
// command's output streams.
func (c *CommandContext) NewSession(cmd *cobra.Command) *session.Session {
	return session.New(c.Engine, cmd.OutOrStdout(), cmd.ErrOrStderr(), session.Options{
		Lowercase: c.Cfg.Lowercase,
		OnCycle:   session.CyclePolicy(c.Cfg.OnCycle),
		Logger:    c.Logger,
	})
}

// openInput returns the named file, or the command's stdin when args is
// empty or names "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input: %w", err)
	}
	return f, args[0], nil
}
