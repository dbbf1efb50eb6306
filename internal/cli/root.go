// Package cli provides the command-line interface for regcalc.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/regcalc/internal/cli/commands"
	"github.com/leapstack-labs/regcalc/internal/cli/config"
	"github.com/leapstack-labs/regcalc/internal/engine"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitCycle means a run was aborted because a register depended on itself.
	ExitCycle = 2
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "regcalc [file]",
		Short: "regcalc - lazy register calculator",
		Long: `regcalc is a line-oriented register calculator.

Commands add, subtract or multiply a named register by a number or by the
value of another register. Operations are queued and only evaluated when a
register is printed, pulling in every register it depends on. Circular
dependencies are detected and reported.

Without a subcommand, regcalc reads commands from the given file or stdin.`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg, cmd.ErrOrStderr()).With("session", uuid.NewString())
			if used := config.GetConfigFileUsed(); used != "" {
				logger.Debug("using config file", "path", used)
			}

			ctx := context.WithValue(cmd.Context(), config.ConfigKey(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewRunCommand().RunE(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./regcalc.yaml)")
	rootCmd.PersistentFlags().String("on-cycle", "", "What to do when a print hits a circular dependency (abort|continue)")
	rootCmd.PersistentFlags().Bool("lowercase", true, "Fold input lines to lower case")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("on-cycle", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OnCycleValues, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputValues, cobra.ShellCompDirectiveNoFileComp
	})

	replCmd := commands.NewREPLCommand()
	replCmd.Flags().String("prompt", "", "REPL prompt")
	replCmd.Flags().String("history-file", "", "REPL history file")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(commands.NewGraphCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with the given streams and returns the
// process exit code.
func Execute(in io.Reader, out, errOut io.Writer, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitCode(err)
	}
	return ExitOK
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, engine.ErrCycleDetected):
		return ExitCycle
	default:
		return ExitError
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for regcalc.

To load completions:

Bash:
  $ source <(regcalc completion bash)

Zsh:
  $ regcalc completion zsh > "${fpath[1]}/_regcalc"

Fish:
  $ regcalc completion fish | source

PowerShell:
  PS> regcalc completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
