// Package cli renders feed lists, subscriptions and import reports for the terminal.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/feedlist/internal/application/settings"
	"github.com/tesso57/feedlist/internal/application/usecase"
	"github.com/tesso57/feedlist/internal/domain/subscription"
)

const timeLayout = "2006-01-02 15:04"

// Renderer formats output lines. Width 0 disables truncation.
type Renderer struct {
	Width int
	title lipgloss.Style
	name  lipgloss.Style
	faint lipgloss.Style
}

// NewRenderer builds a Renderer using the configured theme colors.
func NewRenderer(theme settings.ThemeConfig, width int) Renderer {
	return Renderer{
		Width: width,
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Title)),
		name:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.FeedName)),
		faint: lipgloss.NewStyle().Faint(true),
	}
}

func (r Renderer) line(text string) string {
	return Truncate(SingleLine(text), r.Width)
}

// FeedList renders a parsed document.
func (r Renderer) FeedList(list *subscription.FeedList) string {
	var b strings.Builder
	title := "(untitled)"
	if list.Title != nil {
		title = *list.Title
	}
	b.WriteString(r.title.Render(r.line(title)))
	b.WriteString("\n")

	if len(list.Entries) == 0 {
		b.WriteString(r.faint.Render("no feeds"))
		b.WriteString("\n")
		return b.String()
	}
	for i, entry := range list.Entries {
		label := entry.LabelText()
		if label == "" {
			label = "(no label)"
		}
		if entry.Category != nil {
			label = entry.CategoryText() + " / " + label
		}
		feedURL := entry.URLText()
		if entry.FeedURL == nil {
			feedURL = "(no url)"
		}
		fmt.Fprintf(&b, "%3d. %s\n     %s\n", i+1, r.name.Render(r.line(label)), r.faint.Render(r.line(feedURL)))
	}
	return b.String()
}

// Subscriptions renders groups followed by numbered ungrouped feeds.
func (r Renderer) Subscriptions(groups []subscription.FeedGroup, ungrouped []string) string {
	var b strings.Builder
	if len(groups) == 0 && len(ungrouped) == 0 {
		b.WriteString(r.faint.Render("no subscriptions"))
		b.WriteString("\n")
		return b.String()
	}
	for _, group := range groups {
		b.WriteString(r.title.Render(r.line(group.Name)))
		b.WriteString("\n")
		for _, feed := range group.Feeds {
			fmt.Fprintf(&b, "   - %s\n", r.name.Render(r.line(feed)))
		}
	}
	if len(ungrouped) > 0 {
		b.WriteString(r.title.Render("Ungrouped"))
		b.WriteString("\n")
		for i, feed := range ungrouped {
			fmt.Fprintf(&b, "%3d. %s\n", i+1, r.name.Render(r.line(feed)))
		}
	}
	return b.String()
}

// ImportResult renders the outcome of an import.
func (r Renderer) ImportResult(res usecase.ImportResult) string {
	var b strings.Builder
	heading := "Imported"
	if res.Run.DryRun {
		heading = "Would import"
	}
	fmt.Fprintf(&b, "%s\n", r.title.Render(r.line(fmt.Sprintf("%s %d of %d feeds from %s", heading, len(res.Added), res.Run.Entries, res.Source))))

	for _, sub := range res.Added {
		text := sub.URL
		if sub.Group != "" {
			text = sub.Group + " / " + sub.URL
		}
		fmt.Fprintf(&b, "   + %s\n", r.name.Render(r.line(text)))
	}
	for _, dup := range res.Duplicates {
		fmt.Fprintf(&b, "   = %s\n", r.faint.Render(r.line(dup+" (already subscribed)")))
	}
	for _, entry := range res.Invalid {
		label := entry.LabelText()
		if label == "" {
			label = "(no label)"
		}
		fmt.Fprintf(&b, "   ! %s\n", r.faint.Render(r.line(label+" (missing or invalid url)")))
	}
	for _, probe := range res.Unreachable {
		fmt.Fprintf(&b, "   x %s\n", r.faint.Render(r.line(fmt.Sprintf("%s (%v)", probe.URL, probe.Err))))
	}
	return b.String()
}

// History renders import runs.
func (r Renderer) History(runs []subscription.ImportRun) string {
	var b strings.Builder
	if len(runs) == 0 {
		b.WriteString(r.faint.Render("no imports yet"))
		b.WriteString("\n")
		return b.String()
	}
	for _, run := range runs {
		title := run.Title
		if title == "" {
			title = run.Source
		}
		if run.DryRun {
			title += " (dry run)"
		}
		fmt.Fprintf(&b, "%s  %s\n", r.faint.Render(run.ImportedAt.Local().Format(timeLayout)), r.name.Render(r.line(title)))
		fmt.Fprintf(&b, "   %s\n", r.faint.Render(fmt.Sprintf(
			"added %d, duplicates %d, invalid %d, unreachable %d of %d",
			run.Added, run.Duplicates, run.Invalid, run.Unreachable, run.Entries,
		)))
	}
	return b.String()
}
