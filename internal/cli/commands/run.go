package commands

import (
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Execute commands from a file or stdin",
		Long: `Read calculator commands line by line and execute them.

Each line is one of:
  <register> add|subtract|multiply <value|register>
  print <register>
  quit

Operations are evaluated lazily: a register's pending operations are only
applied when the register is printed. Input ends at "quit" or end of file.`,
		Example: `  # Run commands from a file
  regcalc run commands.txt

  # Read commands from stdin
  printf 'a add 2\nprint a\n' | regcalc run

  # Keep going when a print hits a circular dependency
  regcalc run commands.txt --on-cycle continue`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)

	in, name, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	cmdCtx.Logger.Debug("running commands", "input", name, "on_cycle", cmdCtx.Cfg.OnCycle)
	return cmdCtx.NewSession(cmd).Run(cmd.Context(), in)
}
