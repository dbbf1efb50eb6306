package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/regcalc/internal/cli/config"
	"github.com/leapstack-labs/regcalc/internal/cli/testutil"
	"github.com/leapstack-labs/regcalc/internal/engine"
)

type captured struct {
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// executeWith runs cmd with the given config stored in its context.
func executeWith(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) (captured, error) {
	t.Helper()
	c := captured{out: new(bytes.Buffer), errOut: new(bytes.Buffer)}
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)
	cmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	ctx := context.Background()
	if cfg != nil {
		ctx = context.WithValue(ctx, config.ConfigKey(), cfg)
	}
	return c, cmd.ExecuteContext(ctx)
}

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run [file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestRun_Stdin(t *testing.T) {
	c, err := executeWith(t, NewRunCommand(), nil, "a add 5\na add b\nb add 3\nprint a\nquit\n")
	require.NoError(t, err)
	assert.Equal(t, "8\n", c.out.String())
	assert.Empty(t, c.errOut.String())
}

func TestRun_File(t *testing.T) {
	path := testutil.WriteCommandFile(t, "a add 1", "a multiply 10", "print a")

	c, err := executeWith(t, NewRunCommand(), nil, "", path)
	require.NoError(t, err)
	assert.Equal(t, "10\n", c.out.String())
}

func TestRun_MissingFile(t *testing.T) {
	_, err := executeWith(t, NewRunCommand(), nil, "", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input")
}

func TestRun_CyclePolicies(t *testing.T) {
	input := "a add b\nb add a\nc add 2\nprint a\nprint c\n"

	c, err := executeWith(t, NewRunCommand(), nil, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrCycleDetected)
	assert.Empty(t, c.out.String())

	cfg := config.Default()
	cfg.OnCycle = "continue"
	c, err = executeWith(t, NewRunCommand(), cfg, input)
	require.NoError(t, err)
	assert.Equal(t, "2\n", c.out.String())
	assert.Contains(t, c.errOut.String(), "cycle detected")
}

func TestGraph_Markdown(t *testing.T) {
	input := "a add b\na add c\nb multiply c\nprint a\nd add 1\n"

	c, err := executeWith(t, NewGraphCommand(), nil, input)
	require.NoError(t, err)

	out := c.out.String()
	assert.Contains(t, out, "# Dependency Graph")
	assert.Contains(t, out, "## Level 0")
	assert.Contains(t, out, "- `c`")
	assert.Contains(t, out, "- `b` depends on: c")
	assert.Contains(t, out, "## Level 2")
	assert.Contains(t, out, "Total: 4 registers, 3 dependencies")
	assert.Contains(t, out, "| Register |")
	assert.Contains(t, out, "pending")
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
}

func TestGraph_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "json"

	c, err := executeWith(t, NewGraphCommand(), cfg, "a add b\nb add 1\n")
	require.NoError(t, err)

	var levels []graphLevel
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &levels))
	require.Len(t, levels, 2)
	assert.Equal(t, "b", levels[0].Registers[0].Name)
	assert.Equal(t, []string{"b add 1"}, levels[0].Registers[0].Pending)
	assert.Equal(t, []string{"a"}, levels[0].Registers[0].UsedBy)
	assert.Equal(t, "a", levels[1].Registers[0].Name)
	assert.Equal(t, []string{"b"}, levels[1].Registers[0].DependsOn)
}

func TestGraph_Cycle(t *testing.T) {
	c, err := executeWith(t, NewGraphCommand(), nil, "a add b\nb add a\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrCycleDetected)
	assert.Contains(t, c.errOut.String(), "circular dependency: a -> b -> a")
}

func TestGraph_SkipsMalformedLines(t *testing.T) {
	c, err := executeWith(t, NewGraphCommand(), nil, "a add 1\n1 add 2\nquit\nb add a\n")
	require.NoError(t, err)
	assert.Contains(t, c.errOut.String(), "line 2")
	assert.Contains(t, c.out.String(), "Total: 1 registers, 0 dependencies")
}

func TestGraph_RegisterFocus(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "json"
	input := "a add b\nb multiply c\nd add a\nx add y\ny add x\n"

	c, err := executeWith(t, NewGraphCommand(), cfg, input, "--register", "B")
	require.NoError(t, err)

	var levels []graphLevel
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &levels))
	require.Len(t, levels, 2)
	require.Len(t, levels[0].Registers, 1)
	assert.Equal(t, "c", levels[0].Registers[0].Name)
	assert.Equal(t, []string{"b"}, levels[0].Registers[0].UsedBy)
	require.Len(t, levels[1].Registers, 1)
	assert.Equal(t, "b", levels[1].Registers[0].Name)
	assert.Empty(t, levels[1].Registers[0].UsedBy)
}

func TestGraph_RegisterFocusText(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "markdown"

	c, err := executeWith(t, NewGraphCommand(), cfg, "a add b\nb add 1\nz add 2\n", "--register", "a")
	require.NoError(t, err)
	out := c.out.String()
	assert.Contains(t, out, "Total: 2 registers, 1 dependencies")
	assert.NotContains(t, out, "`z`")
	assert.NotContains(t, out, "| z ")
}

func TestGraph_RegisterFocusErrors(t *testing.T) {
	_, err := executeWith(t, NewGraphCommand(), nil, "a add 1\n", "--register", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register "nope"`)

	_, err = executeWith(t, NewGraphCommand(), nil, "a add 1\n", "--register", "12")
	require.Error(t, err)

	_, err = executeWith(t, NewGraphCommand(), nil, "a add b\nb add a\n", "--register", "a")
	assert.ErrorIs(t, err, engine.ErrCycleDetected)
}

func TestGraph_LongLine(t *testing.T) {
	input := strings.Repeat("q", 100*1024) + "\na add b\n"

	c, err := executeWith(t, NewGraphCommand(), nil, input)
	require.NoError(t, err)
	assert.Contains(t, c.errOut.String(), "line 1")
	assert.Contains(t, c.out.String(), "Total: 2 registers, 1 dependencies")
}

type fakeReader struct {
	lines []string
}

func (f *fakeReader) Readline() (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func newREPLHarness(t *testing.T, cfg *config.Config) (*cobra.Command, *CommandContext, captured) {
	t.Helper()
	c := captured{out: new(bytes.Buffer), errOut: new(bytes.Buffer)}
	cmd := NewREPLCommand()
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)
	ctx := context.Background()
	if cfg != nil {
		ctx = context.WithValue(ctx, config.ConfigKey(), cfg)
	}
	cmd.SetContext(ctx)
	return cmd, NewCommandContext(cmd), c
}

func TestREPLLoop(t *testing.T) {
	cmd, cmdCtx, c := newREPLHarness(t, nil)
	rl := &fakeReader{lines: []string{
		"a add 5",
		"^C",
		"print a",
		".registers",
		".bogus",
		"b add a",
		"print b",
		"quit",
		"print never",
	}}

	require.NoError(t, replLoop(cmd, cmdCtx, rl))

	out := c.out.String()
	assert.True(t, strings.HasPrefix(out, "5\n"), "got %q", out)
	assert.Contains(t, out, "Register")
	assert.Contains(t, out, "5\n")
	assert.NotContains(t, out, "never")
	assert.Contains(t, c.errOut.String(), "Unknown command: .bogus")
	assert.Equal(t, []string{"print never"}, rl.lines)
}

func TestREPLLoop_DotQuitAndEOF(t *testing.T) {
	cmd, cmdCtx, _ := newREPLHarness(t, nil)
	rl := &fakeReader{lines: []string{"a add 1", ".quit", "print a"}}
	require.NoError(t, replLoop(cmd, cmdCtx, rl))
	assert.Len(t, rl.lines, 1)

	cmd, cmdCtx, c := newREPLHarness(t, nil)
	require.NoError(t, replLoop(cmd, cmdCtx, &fakeReader{lines: []string{"a add 2", "print a"}}))
	assert.Equal(t, "2\n", c.out.String())
}

func TestREPLLoop_Cycle(t *testing.T) {
	cmd, cmdCtx, _ := newREPLHarness(t, nil)
	err := replLoop(cmd, cmdCtx, &fakeReader{lines: []string{"a add a", "print a"}})
	assert.ErrorIs(t, err, engine.ErrCycleDetected)

	cfg := config.Default()
	cfg.OnCycle = "continue"
	cmd, cmdCtx, c := newREPLHarness(t, cfg)
	require.NoError(t, replLoop(cmd, cmdCtx, &fakeReader{lines: []string{"a add a", "print a", "b add 3", "print b"}}))
	assert.Equal(t, "3\n", c.out.String())
}

func TestREPLHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	printREPLHelp(buf)
	assert.Contains(t, buf.String(), ".registers")
	assert.Contains(t, buf.String(), "print <register>")
}

func TestCompleter(t *testing.T) {
	_, cmdCtx, _ := newREPLHarness(t, nil)
	completer := newCompleter(cmdCtx)

	candidates, _ := completer.Do([]rune("pri"), 3)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "nt ", string(candidates[0]))
}

func TestGraphText(t *testing.T) {
	cmdCtx := &CommandContext{Engine: engine.New(engine.Config{})}
	tr := testutil.NewTestRenderer("text", false)
	cmdCtx.Renderer = tr.Renderer
	cmdCtx.Cfg = config.Default()

	require.NoError(t, queueOperations(cmdCtx, strings.NewReader("total add part\npart add 2\n")))
	graph := cmdCtx.Engine.Graph()
	levels, err := graph.GetExecutionLevels()
	require.NoError(t, err)

	graphText(tr.Renderer, graph, levels)
	out := tr.Out.String()
	assert.Contains(t, out, "Level 0:")
	assert.Contains(t, out, "  part\n    used by: total")
	assert.Contains(t, out, "  total\n    depends on: part")
	assert.Contains(t, out, "Total: 2 registers, 1 dependencies")
	testutil.AssertNoANSI(t, out)
}
