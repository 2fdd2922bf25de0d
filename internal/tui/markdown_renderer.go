package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/evanschultz/minik/internal/domain"
)

// markdownRenderer renders card details and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(24, width)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}

// itemMarkdown describes one card as markdown.
func itemMarkdown(item domain.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", item.Title)
	if item.URL != "" {
		fmt.Fprintf(&b, "%s\n\n", item.URL)
	}
	if len(item.Assignees) > 0 {
		logins := make([]string, 0, len(item.Assignees))
		for _, login := range item.Assignees {
			logins = append(logins, "@"+login)
		}
		fmt.Fprintf(&b, "**Assignees:** %s\n\n", strings.Join(logins, ", "))
	}
	if len(item.Labels) > 0 {
		labels := make([]string, 0, len(item.Labels))
		for _, label := range item.Labels {
			labels = append(labels, "`"+label+"`")
		}
		fmt.Fprintf(&b, "**Labels:** %s\n\n", strings.Join(labels, " "))
	}
	if body := strings.TrimSpace(item.Body); body != "" {
		b.WriteString("---\n\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}
