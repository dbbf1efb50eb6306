package commands

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/regcalc/internal/engine"
)

// renderRegisters writes a table of register snapshots. Values of registers
// with pending operations are not final and are shown as pending.
func renderRegisters(w io.Writer, snaps []engine.Snapshot, markdown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Register", "Value", "Pending"})
	for _, s := range snaps {
		value := strconv.FormatInt(int64(s.Value), 10)
		if s.Pending > 0 {
			value = "pending"
		}
		t.AppendRow(table.Row{s.Name.String(), value, s.Pending})
	}
	if markdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
