package tui

import (
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/minik/internal/app"
)

// bannerKind identifies why a banner is shown.
type bannerKind int

// bannerNone and friends enumerate banner kinds.
const (
	bannerNone bannerKind = iota
	bannerAuth
	bannerFetch
	bannerMutation
)

// banner is the single transient error line.
type banner struct {
	kind    bannerKind
	message string
	token   int
}

// visible reports whether a banner is showing.
func (b banner) visible() bool {
	return b.kind != bannerNone
}

// bannerExpiredMsg hides the banner it was scheduled for.
type bannerExpiredMsg struct {
	token int
}

// showBanner replaces the current banner and schedules auto-hide for transient kinds.
func (m *Model) showBanner(kind bannerKind, message string) tea.Cmd {
	m.bannerSeq++
	m.banner = banner{kind: kind, message: message, token: m.bannerSeq}
	if kind == bannerAuth {
		return nil
	}
	return m.tick(m.cfg.BannerTimeout, bannerExpiredMsg{token: m.bannerSeq})
}

// showFailure maps an error to the banner matching its failure class.
func (m *Model) showFailure(err error) tea.Cmd {
	switch app.Classify(err) {
	case app.FailureAuth:
		message := "GitHub sign-in required. Run `gh auth login` and restart."
		if errors.Is(err, app.ErrPermission) {
			message = "GitHub token lacks access. Run `gh auth refresh -s project,read:org`."
		}
		m.logger.Warn("github auth failure", "err", err)
		return m.showBanner(bannerAuth, message)
	case app.FailureMutation:
		m.logger.Error("move failed", "err", err)
		return m.showBanner(bannerMutation, "Couldn't move card. Reloading board.")
	default:
		m.logger.Warn("fetch failed", "err", err)
		message := "Couldn't refresh board. Showing last data."
		if errors.Is(err, app.ErrStatusFieldMissing) {
			message = "This project has no Status field."
		}
		return m.showBanner(bannerFetch, message)
	}
}

// renderBanner renders the banner line padded to at least width.
func renderBanner(b banner, width int) string {
	if !b.visible() {
		return ""
	}
	bg := lipgloss.Color("#b45309")
	if b.kind == bannerAuth || b.kind == bannerMutation {
		bg = lipgloss.Color("#b91c1c")
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(bg).
		Render(padRight(" "+b.message+"  x ", width))
}
