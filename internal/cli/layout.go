package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/cortex-bridge/abi"
)

// LayoutEntry is one row of the layout command's output.
type LayoutEntry struct {
	Name          string `json:"name"`
	CName         string `json:"c_name"`
	Size          uint32 `json:"size"`
	Align         uint32 `json:"align"`
	PayloadOffset uint32 `json:"payload_offset"`
}

// NewLayoutCommand creates the layout command.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print size and alignment of every boundary type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(rootOpts, cmd)
		},
	}
}

// Layouts computes the layout of every schema definition.
func Layouts() []LayoutEntry {
	calc := abi.NewLayoutCalculator()
	defs := abi.NewSchema().Definitions()

	entries := make([]LayoutEntry, 0, len(defs))
	for _, d := range defs {
		info := calc.Calculate(d.Type)
		entries = append(entries, LayoutEntry{
			Name:          d.Name,
			CName:         d.CName,
			Size:          info.Size,
			Align:         info.Align,
			PayloadOffset: info.PayloadOffset,
		})
	}
	return entries
}

func runLayout(opts *RootOptions, cmd *cobra.Command) error {
	entries := Layouts()
	out := cmd.OutOrStdout()

	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	var table bytes.Buffer
	tw := tabwriter.NewWriter(&table, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tC TYPE\tSIZE\tALIGN\tPAYLOAD")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", e.Name, e.CName, e.Size, e.Align, e.PayloadOffset)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	header, rows, _ := strings.Cut(table.String(), "\n")
	if isTerminal(out) {
		header = headerStyle.Render(header)
	}
	_, err := io.WriteString(out, header+"\n"+rows)
	return err
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4"))

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
