// Package tableview renders record tables for text output and hosts the
// interactive browser.
package tableview

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	cmdpkg "github.com/rbacctl/rbacctl/internal/cmd"
	cmdCommon "github.com/rbacctl/rbacctl/internal/cmd/common"
	jqoutput "github.com/rbacctl/rbacctl/internal/cmd/output/jq"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/iostreams"
	"github.com/rbacctl/rbacctl/internal/theme"
	"github.com/segmentio/cli"
	"golang.org/x/term"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 48
)

type fdProvider interface {
	Fd() uintptr
}

type config struct {
	title   string
	footer  string
	palette theme.Palette
}

type Option func(*config)

func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithFooter sets the line printed under the table, e.g. the display info.
func WithFooter(msg string) Option {
	return func(c *config) {
		c.footer = msg
	}
}

func WithPalette(p theme.Palette) Option {
	return func(c *config) {
		c.palette = p
	}
}

// Render writes t as a bordered static table.
func Render(streams *iostreams.IOStreams, t export.Table, opts ...Option) error {
	if streams == nil || streams.Out == nil {
		return errors.New("tableview: output stream is not available")
	}

	cfg := config{palette: theme.FromContext(nil)}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(t.Rows) == 0 {
		return writeStaticMessage(streams.Out, cfg.title, "No records found.", cfg.footer)
	}

	termWidth, _, _ := resolveTerminal(streams.Out)
	tbl := newTable(t.Headers, t.Rows, termWidth, cfg.palette)
	tbl.SetHeight(len(t.Rows) + 1)
	tbl.Blur()

	var sections []string
	if cfg.title != "" {
		sections = append(sections, cfg.title)
	}
	sections = append(sections, newTableBoxStyle(cfg.palette).Render(tbl.View()))
	if cfg.footer != "" {
		sections = append(sections, cfg.footer)
	}
	_, err := fmt.Fprintln(streams.Out, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

// RenderForFormat prints display as a table for text output and raw through
// printer for json and yaml, applying any --jq filter first.
func RenderForFormat(
	helper cmdpkg.Helper,
	outType cmdCommon.OutputFormat,
	printer cli.PrintFlusher,
	streams *iostreams.IOStreams,
	display export.Table,
	raw any,
	opts ...Option,
) error {
	if helper != nil {
		cfg, err := helper.GetConfig()
		if err != nil {
			return err
		}
		settings, err := jqoutput.ResolveSettings(helper.GetCmd(), cfg)
		if err != nil {
			return err
		}
		if err := jqoutput.ValidateOutputFormat(outType, settings); err != nil {
			return err
		}
		if jqoutput.HasFilter(settings) {
			filtered, handled, err := jqoutput.ApplyToRaw(raw, outType, settings, streams.Out)
			if err != nil {
				return cmdpkg.PrepareExecutionErrorWithHelper(helper, "jq filter failed", err)
			}
			if handled {
				return nil
			}
			raw = filtered
		}
		opts = append([]Option{WithPalette(theme.FromContext(helper.GetContext()))}, opts...)
	}

	switch outType {
	case cmdCommon.TEXT:
		return Render(streams, display, opts...)
	case cmdCommon.JSON, cmdCommon.YAML:
		if printer != nil {
			printer.Print(raw)
		}
		return nil
	default:
		return fmt.Errorf("tableview: unsupported output format %s", outType.String())
	}
}

// RenderPairs writes a two column field/value table for a single record.
func RenderPairs(streams *iostreams.IOStreams, pairs [][2]string, opts ...Option) error {
	t := export.Table{Headers: []string{"Field", "Value"}}
	for _, p := range pairs {
		t.Rows = append(t.Rows, []string{p[0], p[1]})
	}
	return Render(streams, t, opts...)
}

func newTable(headers []string, rows [][]string, termWidth int, palette theme.Palette) table.Model {
	paddingWidth := 2 * palette.Padding
	frameWidth, _ := newTableBoxStyle(palette).GetFrameSize()
	widthLimit := 0
	if termWidth > 0 {
		widthLimit = termWidth - frameWidth - paddingWidth*len(headers)
	}
	widths, _ := calculateColumnWidths(headers, rows, widthLimit)

	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(convertRows(rows, widths)),
		table.WithStyles(paletteTableStyles(palette)),
	)
	tbl.SetWidth(sum(widths) + paddingWidth*len(widths))
	return tbl
}

func paletteTableStyles(palette theme.Palette) table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(lipgloss.Color(palette.Color(theme.ColorTextPrimary))).
		BorderForeground(lipgloss.Color(palette.Color(theme.ColorBorder))).
		Padding(0, palette.Padding)
	styles.Cell = styles.Cell.
		Foreground(lipgloss.Color(palette.Color(theme.ColorTextPrimary))).
		Padding(0, palette.Padding)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(palette.Color(theme.ColorPrimaryText))).
		Background(lipgloss.Color(palette.Color(theme.ColorPrimary)))
	return styles
}

// convertRows truncates every cell to its column width.
func convertRows(rows [][]string, widths []int) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		r := make(table.Row, len(widths))
		for i := range widths {
			if i < len(row) {
				r[i] = truncateWithEllipsis(row[i], widths[i])
			}
		}
		out = append(out, r)
	}
	return out
}

func truncateWithEllipsis(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	return truncate.StringWithTail(s, uint(maxLen), "…")
}

func newTableBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(p.Color(theme.ColorBorder)))
}

func newDetailBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Color(theme.ColorPrimary))).
		Padding(0, 1)
}

func writeStaticMessage(out io.Writer, parts ...string) error {
	var lines []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			lines = append(lines, p)
		}
	}
	_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))
	return err
}

func resolveTerminal(out io.Writer) (width int, height int, isTTY bool) {
	const defaultWidth = 120
	const defaultHeight = 24

	width, height = defaultWidth, defaultHeight

	fd, ok := getFD(out)
	if !ok {
		return width, height, false
	}

	isTTY = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if w, h, err := term.GetSize(int(fd)); err == nil {
		width, height = w, h
	}
	return width, height, isTTY
}

func getFD(w io.Writer) (uintptr, bool) {
	if fp, ok := w.(fdProvider); ok {
		fd := fp.Fd()
		if fd == ^uintptr(0) {
			return 0, false
		}
		return fd, true
	}
	return 0, false
}

// calculateColumnWidths sizes every column to its widest cell within
// [minColumnWidth, maxColumnWidth], then shrinks the widest columns until the
// total fits widthLimit. A widthLimit of zero disables shrinking.
func calculateColumnWidths(headers []string, rows [][]string, widthLimit int) ([]int, []int) {
	widths := make([]int, len(headers))
	minWidths := make([]int, len(headers))
	for i, header := range headers {
		headerWidth := runewidth.StringWidth(header)
		minWidths[i] = clamp(headerWidth, minColumnWidth, maxColumnWidth)

		maxWidth := headerWidth
		for _, row := range rows {
			if i < len(row) {
				if w := runewidth.StringWidth(row[i]); w > maxWidth {
					maxWidth = w
				}
			}
		}
		widths[i] = max(clamp(maxWidth, minColumnWidth, maxColumnWidth), minWidths[i])
	}

	if widthLimit <= 0 {
		return widths, minWidths
	}

	total := sum(widths)
	for total > widthLimit {
		idx := widestColumnAboveMin(widths, minWidths)
		if idx == -1 {
			break
		}
		widths[idx]--
		total--
	}
	return widths, minWidths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func widestColumnAboveMin(widths, minWidths []int) int {
	idx := -1
	maxWidth := math.MinInt
	for i, width := range widths {
		if width > maxWidth && width > minWidths[i] {
			maxWidth = width
			idx = i
		}
	}
	return idx
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
