package tableview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"github.com/rbacctl/rbacctl/internal/theme"
)

// detailMarkdown renders the fields of one record as a markdown table.
func detailMarkdown(title string, pairs [][2]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s\n\n", escapeMarkdown(title))
	sb.WriteString("| Field | Value |\n|---|---|\n")
	for _, p := range pairs {
		fmt.Fprintf(&sb, "| %s | %s |\n", escapeMarkdown(p[0]), escapeMarkdown(p[1]))
	}
	return sb.String()
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderDetail renders pairs through glamour in the palette's style. When
// glamour fails the plain field list is word wrapped instead.
func renderDetail(title string, pairs [][2]string, width int, p theme.Palette) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(p.GlamourStyle()),
		glamour.WithColorProfile(termenv.TrueColor),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if out, err := r.Render(detailMarkdown(title, pairs)); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}

	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for _, pair := range pairs {
		fmt.Fprintf(&sb, "%s: %s\n", pair[0], pair[1])
	}
	return wordwrap.String(strings.TrimRight(sb.String(), "\n"), width)
}
