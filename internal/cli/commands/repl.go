package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/regcalc/internal/register"
)

// lineReader is the part of *readline.Instance the REPL loop uses.
type lineReader interface {
	Readline() (string, error)
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive calculator session",
		Long: `Start an interactive session with line editing, history and tab
completion of verbs and register names.

Besides calculator commands the session understands:
  .registers   Show known registers and their pending operations
  .help        Show help
  .quit        Leave the session (same as quit or Ctrl-D)`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	replCfg := cmdCtx.Cfg.GetREPLConfig()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replCfg.Prompt,
		HistoryFile:     replCfg.HistoryFile,
		AutoComplete:    newCompleter(cmdCtx),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "regcalc interactive session")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, quit to exit")

	return replLoop(cmd, cmdCtx, rl)
}

func replLoop(cmd *cobra.Command, cmdCtx *CommandContext, rl lineReader) error {
	sess := cmdCtx.NewSession(cmd)
	for !sess.Done() {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, cmdCtx, line); quit {
				break
			}
			continue
		}
		if err := sess.Exec(line); err != nil {
			return err
		}
	}
	return nil
}

// handleDotCommand runs a REPL meta command and reports whether the session
// should end.
func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(cmd.OutOrStdout())
	case ".registers":
		renderRegisters(cmd.OutOrStdout(), cmdCtx.Engine.Registers(), false)
	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", line)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  <register> add|subtract|multiply <value|register>
  print <register>
  quit

  .registers      Show registers and pending operation counts
  .help           Show this help message
  .quit / .exit   Exit the session

Tips:
  - Operations are only evaluated when a register is printed
  - Use arrow keys to navigate history
  - Tab completion works for verbs and known register names
`
	_, _ = fmt.Fprintln(w, help)
}

// newCompleter completes commands, verbs and the registers known so far.
func newCompleter(cmdCtx *CommandContext) *readline.PrefixCompleter {
	registers := func(string) []string {
		snaps := cmdCtx.Engine.Registers()
		names := make([]string, len(snaps))
		for i, s := range snaps {
			names[i] = s.Name.String()
		}
		return names
	}

	verbs := make([]readline.PrefixCompleterInterface, 0, len(register.Verbs()))
	for _, v := range register.Verbs() {
		verbs = append(verbs, readline.PcItem(v, readline.PcItemDynamic(registers)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("print", readline.PcItemDynamic(registers)),
		readline.PcItem("quit"),
		readline.PcItem(".registers"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItemDynamic(registers, verbs...),
	)
}

var _ lineReader = (*readline.Instance)(nil)
