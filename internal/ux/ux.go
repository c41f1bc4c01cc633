// Package ux renders analysis results for the terminal. Colour is applied
// only when the destination is a terminal and NO_COLOR is unset; otherwise
// the same layout is written as plain text.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/bitops"
	"github.com/RowanDark/xorsift/internal/ranker"
	"github.com/RowanDark/xorsift/internal/search"
)

var (
	ColorStrong = lipgloss.Color("#2CD7C7")
	ColorFair   = lipgloss.Color("#F4D03F")
	ColorWeak   = lipgloss.Color("#E74C3C")
	ColorMuted  = lipgloss.Color("#5C7A84")
	ColorTitle  = lipgloss.Color("#20B9B4")
)

// Styles holds the pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Strong    lipgloss.Style
	Fair      lipgloss.Style
	Weak      lipgloss.Style
	Highlight lipgloss.Style
	Warning   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTitle),
	Header:    lipgloss.NewStyle().Bold(true).Underline(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Strong:    lipgloss.NewStyle().Foreground(ColorStrong),
	Fair:      lipgloss.NewStyle().Foreground(ColorFair),
	Weak:      lipgloss.NewStyle().Foreground(ColorWeak),
	Highlight: lipgloss.NewStyle().Bold(true).Foreground(ColorStrong),
	Warning:   lipgloss.NewStyle().Foreground(ColorFair),
}

// PercentStyle picks the colour for a match percentage: above 20 is strong,
// above 10 is fair, anything else is weak.
func PercentStyle(pct float64) lipgloss.Style {
	switch {
	case pct > 20:
		return Styles.Strong
	case pct > 10:
		return Styles.Fair
	default:
		return Styles.Weak
	}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes rendered output to a destination.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter styles output only when w is a terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &Printer{w: w, styled: IsTerminal(w) && !noColor}
}

// NewPlainPrinter never styles output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Styled reports whether the printer emits styling.
func (p *Printer) Styled() bool {
	return p.styled
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *Printer) println(line string) {
	fmt.Fprintln(p.w, line)
}

// Title writes a styled heading.
func (p *Printer) Title(text string) {
	p.println(p.render(Styles.Title, text))
}

// Warning writes a warning line.
func (p *Printer) Warning(text string) {
	p.println(p.render(Styles.Warning, "warning: "+text))
}

// RenderSingle writes both scenario tables of a single run. Rows above
// highMatch are marked with '*'.
func (p *Printer) RenderSingle(r *search.SingleReport, highMatch float64) {
	p.Title("Run " + r.RunID)
	p.println(fmt.Sprintf("Matrix: %s | Mode: %s", r.Matrix, r.Mode))
	if r.MatrixError != "" {
		p.Warning(r.MatrixError + "; analysed without the matrix")
	}
	p.println(p.render(Styles.Muted, fmt.Sprintf("key bytes map to %d unique XOR result sets", r.Summary.UniqueSets)))
	if r.Summary.Collisions > 0 {
		p.Warning(fmt.Sprintf("%d XOR results are reachable from more than one alphabet character", r.Summary.Collisions))
	}

	for _, scenario := range []struct {
		title   string
		results [analysis.Rotations]analysis.Result
	}{
		{analysis.RotateThenXor.Title(), r.Scenario1},
		{analysis.XorThenRotate.Title(), r.Scenario2},
	} {
		p.println("")
		p.println(p.render(Styles.Header, scenario.title))
		p.println(fmt.Sprintf("  %-9s %-9s %8s", "ROTATION", "MATCHES", "PERCENT"))
		for _, res := range scenario.results {
			marker := " "
			if res.MatchPercentage > highMatch {
				marker = "*"
			}
			row := fmt.Sprintf("%s %-9d %-9s %7s%%", marker, res.Rotation,
				fmt.Sprintf("%d/%d", res.MatchCount, res.TotalBytes), res.PercentageString())
			style := PercentStyle(res.MatchPercentage)
			if marker == "*" {
				style = style.Bold(true)
			}
			p.println(p.render(style, row))
		}
	}
}

// RenderRanked writes the leading top rows of a ranking. top <= 0 writes
// every row.
func (p *Printer) RenderRanked(ranked []ranker.RankedResult, top int) {
	shown := ranker.Top(ranked, top)
	p.Title(fmt.Sprintf("Top %d of %d combinations", len(shown), len(ranked)))
	p.println(fmt.Sprintf("%5s  %8s  %-9s  %s", "RANK", "PERCENT", "MATCHES", "COMBINATION"))
	for _, r := range shown {
		row := fmt.Sprintf("%5d  %7s%%  %-9s  %s", r.Rank, r.PercentageString(),
			fmt.Sprintf("%d/%d", r.MatchCount, r.TotalBytes), r.Label)
		style := PercentStyle(r.MatchPercentage)
		if r.High {
			style = style.Bold(true)
		}
		p.println(p.render(style, row))
	}
}

// RenderBytes writes every final byte of a result as eight binary digits.
// Matching bytes are highlighted and followed by the alphabet characters
// that produce them, written as "A (65)".
func (p *Printer) RenderBytes(r analysis.Result) {
	p.println(p.render(Styles.Header, r.Label()))
	candidates := make(map[int][]byte, len(r.MatchingBytes))
	for _, m := range r.MatchingBytes {
		candidates[m.Index] = m.Candidates
	}
	for i, b := range r.Bytes {
		line := fmt.Sprintf("%4d  %s", i, bitops.ByteString(b))
		if i >= len(r.Matches) || !r.Matches[i] {
			p.println(p.render(Styles.Muted, line))
			continue
		}
		p.println(p.render(Styles.Highlight, line) + "  " + CandidateList(candidates[i]))
	}
}

// CandidateList formats candidate characters as "A (65), q (113)".
func CandidateList(chars []byte) string {
	parts := make([]string, len(chars))
	for i, c := range chars {
		parts[i] = fmt.Sprintf("%c (%d)", c, c)
	}
	return strings.Join(parts, ", ")
}

// RenderMatrixOptions lists the matrix shapes available for a ciphertext.
func (p *Printer) RenderMatrixOptions(bitCount int, dims []bitops.Dimension) {
	p.Title(fmt.Sprintf("%d bits, %d matrix shapes", bitCount, len(dims)))
	for _, d := range dims {
		p.println("  " + d.String())
	}
}
