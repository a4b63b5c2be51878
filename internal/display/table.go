// Package display renders probe results as a console table.
package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/jy02140251/deploy-watcher/internal/probe"
)

var (
	healthyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	downStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unknownStyle  = lipgloss.NewStyle().Faint(true)
)

// Renderer prints per-cycle results. Status coloring is enabled only when
// the output is a terminal.
type Renderer struct {
	out   io.Writer
	color bool
}

// New creates a Renderer writing to out.
func New(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Renderer{out: out, color: color}
}

// Render prints one cycle's results as a table, in the order given.
func (r *Renderer) Render(results []probe.Result) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SERVICE", "STATUS", "RESPONSE TIME", "CODE", "ERROR")

	for _, res := range results {
		code := "-"
		if res.StatusCode != 0 {
			code = strconv.Itoa(res.StatusCode)
		}
		errText := res.Err
		if errText == "" {
			errText = "-"
		}
		t.Row(
			res.Service,
			r.statusLabel(res.Status),
			fmt.Sprintf("%.1fms", res.ResponseTime),
			code,
			errText,
		)
	}

	fmt.Fprintln(r.out, t)
}

func (r *Renderer) statusLabel(s probe.Status) string {
	label := strings.ToUpper(string(s))
	if !r.color {
		return label
	}
	switch s {
	case probe.StatusHealthy:
		return healthyStyle.Render(label)
	case probe.StatusDegraded:
		return degradedStyle.Render(label)
	case probe.StatusDown:
		return downStyle.Render(label)
	case probe.StatusUnknown:
		return unknownStyle.Render(label)
	}
	return unknownStyle.Render(label)
}
