package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/wsorg/internal/platform"
	"github.com/1broseidon/wsorg/internal/state"
)

const defaultListWidth = 100

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	columnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

func newListCmd(d *deps) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show desktops, monitors and windows as wsorg sees them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, _ := d.newRunner(timeout)
			backend := platform.NewWmctrlBackend(runner)
			out, err := renderList(cmd.Context(), backend, listWidth(d))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "command-timeout", 0, "kill wmctrl/xrandr after this long (0 disables)")
	return cmd
}

// listWidth is the terminal width when stdout is a terminal.
func listWidth(d *deps) int {
	f, ok := d.stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultListWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultListWidth
	}
	return w
}

// renderList reads the current topology and window list. Monitor failures
// are shown inline since monitors are informational.
func renderList(ctx context.Context, backend *platform.WmctrlBackend, width int) (string, error) {
	desktops, err := state.LoadDesktops(ctx, backend)
	if err != nil {
		return "", err
	}
	windows, err := backend.Windows(ctx)
	if err != nil {
		return "", err
	}
	monitors, monErr := backend.Monitors(ctx)

	var b strings.Builder

	b.WriteString(headingStyle.Render("Desktops") + "\n")
	rows := [][]string{{"#", "NAME", "SIZE"}}
	for _, dt := range desktops.Sorted() {
		rows = append(rows, []string{strconv.Itoa(dt.Index), dt.Name, fmt.Sprintf("%dx%d", dt.Width, dt.Height)})
	}
	writeTable(&b, rows, width)

	b.WriteString("\n" + headingStyle.Render("Monitors") + "\n")
	switch {
	case monErr != nil:
		b.WriteString(dimStyle.Render("unavailable: "+monErr.Error()) + "\n")
	case len(monitors) == 0:
		b.WriteString(dimStyle.Render("none connected") + "\n")
	default:
		rows = [][]string{{"OUTPUT", "HARDWARE", "GEOMETRY"}}
		for _, m := range monitors {
			rows = append(rows, []string{m.Connector, m.HardwareID,
				fmt.Sprintf("%dx%d+%d+%d", m.Width, m.Height, m.OffsetX, m.OffsetY)})
		}
		writeTable(&b, rows, width)
	}

	b.WriteString("\n" + headingStyle.Render("Windows") + "\n")
	rows = [][]string{{"HANDLE", "DESKTOP", "GEOMETRY", "TYPE", "TITLE"}}
	for _, w := range windows {
		desk := strconv.Itoa(w.Desktop)
		if dt, ok := desktops[w.Desktop]; ok {
			desk += " " + dt.Name
		}
		rows = append(rows, []string{string(w.Handle), desk, w.Geometry.String(), w.Type, w.Title})
	}
	writeTable(&b, rows, width)

	return b.String(), nil
}

// writeTable renders rows as left-aligned columns. The last column is cut
// to fit width.
func writeTable(b *strings.Builder, rows [][]string, width int) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	used := 0
	for i := 0; i < cols-1; i++ {
		used += widths[i] + 2
	}
	last := max(width-used, 8)

	for r, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == cols-1 {
				line.WriteString(truncate(cell, last))
				break
			}
			line.WriteString(lipgloss.NewStyle().Width(widths[i] + 2).Render(cell))
		}
		text := strings.TrimRight(line.String(), " ")
		if r == 0 {
			text = columnStyle.Render(text)
		}
		b.WriteString(text + "\n")
	}
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 1 || len(runes) <= n {
		return string(runes[:min(n, len(runes))])
	}
	return string(runes[:n-1]) + "…"
}
