package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/regcalc/internal/cli/output"
	"github.com/leapstack-labs/regcalc/internal/dag"
	"github.com/leapstack-labs/regcalc/internal/engine"
	"github.com/leapstack-labs/regcalc/internal/register"
	"github.com/leapstack-labs/regcalc/internal/session"
)

// GraphQuerier provides read-only access to the dependency graph.
type GraphQuerier interface {
	GetParents(string) []string
	GetChildren(string) []string
	GetNode(string) (*dag.Node, bool)
	NodeCount() int
	EdgeCount() int
}

type graphLevel struct {
	Level     int             `json:"level"`
	Registers []graphRegister `json:"registers"`
}

type graphRegister struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on"`
	UsedBy    []string `json:"used_by"`
	Pending   []string `json:"pending"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Show the dependency graph of pending operations",
		Long: `Read calculator commands, queue their operations without evaluating
anything, and display which registers depend on which.

Registers are grouped by level: a register only depends on registers at
lower levels. Print commands are ignored. Circular dependencies are reported
instead of levels.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format`,
		Example: `  # Show the graph for a command file
  regcalc graph commands.txt

  # Output as JSON
  regcalc graph commands.txt --output json

  # Only show what register a depends on
  regcalc graph commands.txt --register a`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGraph,
	}
	cmd.Flags().String("register", "", "Only show this register and the registers it depends on")
	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	in, _, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := queueOperations(cmdCtx, in); err != nil {
		return err
	}

	graph := cmdCtx.Engine.Graph()
	snaps := cmdCtx.Engine.Registers()
	if target, _ := cmd.Flags().GetString("register"); target != "" {
		graph, snaps, err = focusGraph(cmdCtx, graph, snaps, target)
		if err != nil {
			return err
		}
	}

	if hasCycle, path := graph.HasCycle(); hasCycle {
		r.Warn("circular dependency: " + strings.Join(path, " -> "))
		return fmt.Errorf("%w: %s", engine.ErrCycleDetected, strings.Join(path, " -> "))
	}

	levels, err := graph.GetExecutionLevels()
	if err != nil {
		return fmt.Errorf("failed to get levels: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(buildGraphLevels(graph, levels))
	case output.ModeMarkdown:
		graphMarkdown(r, graph, levels)
	default:
		graphText(r, graph, levels)
	}
	renderRegisters(r.Writer(), snaps, r.EffectiveMode() == output.ModeMarkdown)
	return nil
}

// focusGraph narrows graph and snaps to target and its upstream registers.
func focusGraph(cmdCtx *CommandContext, graph *dag.Graph, snaps []engine.Snapshot, target string) (*dag.Graph, []engine.Snapshot, error) {
	if cmdCtx.Cfg.Lowercase {
		target = strings.ToLower(target)
	}
	name, err := register.ParseName(target)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := graph.GetNode(name.String()); !ok {
		return nil, nil, fmt.Errorf("register %q has no pending operations and is not referenced", name)
	}

	keep := append(graph.GetUpstreamNodes(name.String()), name.String())
	sub := dag.NewGraph()
	for _, id := range keep {
		node, _ := graph.GetNode(id)
		sub.AddNode(id, node.Data)
	}
	for _, id := range keep {
		for _, parent := range graph.GetParents(id) {
			if err := sub.AddEdge(parent, id); err != nil {
				return nil, nil, fmt.Errorf("failed to build register graph: %w", err)
			}
		}
	}

	filtered := make([]engine.Snapshot, 0, len(keep))
	for _, snap := range snaps {
		if _, ok := sub.GetNode(snap.Name.String()); ok {
			filtered = append(filtered, snap)
		}
	}
	return sub, filtered, nil
}

// queueOperations applies every operation line of in to the engine and
// skips everything else. Malformed lines are reported and skipped.
func queueOperations(cmdCtx *CommandContext, in io.Reader) error {
	scanner := session.NewLineScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		c, err := session.ParseLine(scanner.Text(), cmdCtx.Cfg.Lowercase)
		if err != nil {
			cmdCtx.Renderer.Warn(fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		if c.Kind == session.KindQuit {
			break
		}
		if c.Kind == session.KindApply {
			cmdCtx.Engine.Apply(c.Op)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func pendingOps(graph GraphQuerier, id string) []string {
	if node, ok := graph.GetNode(id); ok {
		if ops, ok := node.Data.([]string); ok {
			return ops
		}
	}
	return []string{}
}

func buildGraphLevels(graph GraphQuerier, levels [][]string) []graphLevel {
	out := make([]graphLevel, 0, len(levels))
	for i, level := range levels {
		gl := graphLevel{Level: i, Registers: make([]graphRegister, 0, len(level))}
		for _, id := range level {
			gl.Registers = append(gl.Registers, graphRegister{
				Name:      id,
				DependsOn: graph.GetParents(id),
				UsedBy:    graph.GetChildren(id),
				Pending:   pendingOps(graph, id),
			})
		}
		out = append(out, gl)
	}
	return out
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, graph GraphQuerier, levels [][]string) {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, id := range level {
			r.Printf("  %s\n", styles.Register.Render(id))
			if deps := graph.GetParents(id); len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if children := graph.GetChildren(id); len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d registers, %d dependencies", graph.NodeCount(), graph.EdgeCount())))
	r.Println("")
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, graph GraphQuerier, levels [][]string) {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Level %d", i)))
		r.Println("")
		for _, id := range level {
			line := "- `" + id + "`"
			if deps := graph.GetParents(id); len(deps) > 0 {
				line += " depends on: " + strings.Join(deps, ", ")
			}
			r.Println(line)
		}
		r.Println("")
	}

	r.Printf("Total: %d registers, %d dependencies\n\n", graph.NodeCount(), graph.EdgeCount())
}
