package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// palette is the colour theme for terminal output.
type palette struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	High    lipgloss.Color
	Medium  lipgloss.Color
	Low     lipgloss.Color
	Good    lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		High:    lipgloss.Color("#F38BA8"), // Red
		Medium:  lipgloss.Color("#F9E2AF"), // Yellow
		Low:     lipgloss.Color("#06B6D4"), // Cyan
		Good:    lipgloss.Color("#A6E3A1"), // Green
	}
}

// styles renders text for a writer. Output that is not a terminal stays plain.
type styles struct {
	plain  bool
	title  lipgloss.Style
	muted  lipgloss.Style
	high   lipgloss.Style
	medium lipgloss.Style
	low    lipgloss.Style
	good   lipgloss.Style
}

func stylesFor(w io.Writer) *styles {
	p := defaultPalette()
	return &styles{
		plain:  !isTerminal(w),
		title:  lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		muted:  lipgloss.NewStyle().Foreground(p.Muted),
		high:   lipgloss.NewStyle().Bold(true).Foreground(p.High),
		medium: lipgloss.NewStyle().Foreground(p.Medium),
		low:    lipgloss.NewStyle().Foreground(p.Low),
		good:   lipgloss.NewStyle().Foreground(p.Good),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

// Title renders a heading followed by an underline.
func (s *styles) Title(text string) string {
	return s.render(s.title, text) + "\n" + s.render(s.muted, strings.Repeat("=", len(text)))
}

func (s *styles) Muted(text string) string { return s.render(s.muted, text) }

// Tier colours text by priority tier.
func (s *styles) Tier(tier domain.PriorityTier, text string) string {
	switch tier {
	case domain.TierHigh:
		return s.render(s.high, text)
	case domain.TierMedium:
		return s.render(s.medium, text)
	default:
		return s.render(s.low, text)
	}
}

// Score colours a score by the tier it falls in.
func (s *styles) Score(score float64, text string) string {
	return s.Tier(domain.TierForScore(score), text)
}

// Trend colours competitor movement.
func (s *styles) Trend(t domain.Trend) string {
	switch t {
	case domain.TrendRising, domain.TrendNew:
		return s.render(s.high, string(t))
	case domain.TrendFalling, domain.TrendGone:
		return s.render(s.good, string(t))
	default:
		return s.render(s.muted, string(t))
	}
}
