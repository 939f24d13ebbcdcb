// Package render lays out parsed Gerrit reviews as a width-aware text
// table. It is a pure data-to-string transformation with no dependency on
// any UI toolkit, so any presentation layer can embed it.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/joescharf/grt/internal/gerrit"
)

// Label describes one configured review dimension and the score thresholds
// at which its cell collapses to a glyph. The order of a []Label fixes the
// score-column order in rendered output.
type Label struct {
	Name     string // full Gerrit label name, e.g. "Code-Review"
	Short    string // column header abbreviation, at most 2 cells wide
	Approved int    // score at or above which the label counts as approved
	Rejected int    // score at or below which the label counts as rejected
}

// DefaultLabels returns the standard Gerrit label set in display order.
func DefaultLabels() []Label {
	return []Label{
		{Name: "Code-Review", Short: "CR", Approved: 2, Rejected: -2},
		{Name: "Verified", Short: "V", Approved: 1, Rejected: -1},
	}
}

// DefaultWidth is used when the terminal width cannot be detected.
const DefaultWidth = 110

// Fixed column widths in display cells. The subject column absorbs
// whatever the current width leaves over.
const (
	numberWidth   = 8
	patchsetWidth = 5
	scoreWidth    = 2
	sizeWidth     = 7
	ageWidth      = 12
	branchWidth   = 20
	ownerWidth    = 10
)

// Width tiers: columns are dropped as the viewport narrows. A column
// appears only when the width strictly exceeds its threshold.
const (
	scoresOver = 80  // score columns
	sizesOver  = 94  // +ins/-del pair
	ageOver    = 108 // relative age
	branchOver = 128 // target branch
)

const (
	approvedGlyph = "✔" // ✔
	rejectedGlyph = "✘" // ✘
	ellipsis      = "…"
)

// Options controls one render pass.
type Options struct {
	Width    int    // terminal width in cells; <=0 means DefaultWidth
	Title    string // optional section title emitted above the header
	Colorize bool   // apply terminal colors (after padding, widths hold)
	Now      int64  // epoch second ages are measured against; 0 means wall clock
}

var (
	paintNumber   = color.New(color.FgHiCyan).SprintFunc()
	paintDraft    = color.New(color.FgHiYellow).SprintFunc()
	paintApproved = color.New(color.FgHiGreen).SprintFunc()
	paintRejected = color.New(color.FgHiRed).SprintFunc()
	paintHeader   = color.New(color.Bold).SprintFunc()
)

// column is one layout slot for the current width tier. Paint receives the
// already-padded cell so coloring never disturbs alignment.
type column struct {
	header string
	width  int
	cell   func(r *gerrit.Review) string
	paint  func(r *gerrit.Review, padded string) string
}

// columns returns the layout for one width tier, subject excluded. now is
// the epoch second ages are measured against.
func columns(labels []Label, width int, now int64) []column {
	cols := []column{
		{
			header: "number",
			width:  numberWidth,
			cell:   func(r *gerrit.Review) string { return strconv.Itoa(int(r.Number)) },
			paint:  func(r *gerrit.Review, s string) string { return paintNumber(s) },
		},
		{
			header: "ps",
			width:  patchsetWidth,
			cell:   patchsetTag,
			paint: func(r *gerrit.Review, s string) string {
				if r.CurrentPatchSet.IsDraft {
					return paintDraft(s)
				}
				return s
			},
		},
	}

	if width > scoresOver {
		for _, l := range labels {
			l := l
			cols = append(cols, column{
				header: l.Short,
				width:  scoreWidth,
				cell:   func(r *gerrit.Review) string { return ScoreCell(l, r.CurrentPatchSet.Approvals) },
				paint: func(r *gerrit.Review, s string) string {
					return paintScore(l, r.CurrentPatchSet.Approvals, s)
				},
			})
		}
	}

	if width > sizesOver {
		cols = append(cols,
			column{
				header: "added",
				width:  sizeWidth,
				cell: func(r *gerrit.Review) string {
					return fmt.Sprintf("+%d", r.CurrentPatchSet.SizeInsertions)
				},
			},
			column{
				header: "deleted",
				width:  sizeWidth,
				cell: func(r *gerrit.Review) string {
					// Gerrit reports deletions as a negative count.
					return fmt.Sprintf("-%d", abs(r.CurrentPatchSet.SizeDeletions))
				},
			},
		)
	}

	if width > ageOver {
		cols = append(cols, column{
			header: "updated",
			width:  ageWidth,
			cell:   func(r *gerrit.Review) string { return Age(now - r.LastUpdated) },
		})
	}

	if width > branchOver {
		cols = append(cols, column{
			header: "branch",
			width:  branchWidth,
			cell:   func(r *gerrit.Review) string { return r.Branch },
		})
	}

	cols = append(cols, column{
		header: "owner",
		width:  ownerWidth,
		cell:   func(r *gerrit.Review) string { return r.OwnerName() },
	})

	return cols
}

// Table renders the header and one row per review for the given width tier.
// Reviews keep their source order; the renderer never re-sorts.
func Table(reviews []gerrit.Review, labels []Label, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	now := opts.Now
	if now == 0 {
		now = time.Now().Unix()
	}
	cols := columns(labels, width, now)

	var b strings.Builder
	if opts.Title != "" {
		title := opts.Title
		if opts.Colorize {
			title = paintHeader(title)
		}
		b.WriteString(title)
		b.WriteByte('\n')
	}

	b.WriteString(headerRow(cols, width, opts.Colorize))
	b.WriteByte('\n')
	for i := range reviews {
		b.WriteString(row(&reviews[i], cols, width, opts.Colorize))
		b.WriteByte('\n')
	}
	if opts.Title != "" {
		b.WriteByte('\n')
	}
	return b.String()
}

// subjectWidth returns the cells left for the subject column: the full
// width minus every fixed column with its separator, minus one margin cell.
func subjectWidth(cols []column, width int) int {
	consumed := 0
	for _, c := range cols {
		consumed += c.width + 1
	}
	w := width - consumed - 1
	if w < 1 {
		w = 1
	}
	return w
}

func headerRow(cols []column, width int, colorize bool) string {
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(pad(c.header, c.width))
		b.WriteByte(' ')
	}
	b.WriteString(runewidth.Truncate("subject", subjectWidth(cols, width), ellipsis))
	s := b.String()
	if colorize {
		s = paintHeader(s)
	}
	return s
}

func row(r *gerrit.Review, cols []column, width int, colorize bool) string {
	var b strings.Builder
	for _, c := range cols {
		cell := pad(c.cell(r), c.width)
		if colorize && c.paint != nil {
			cell = c.paint(r, cell)
		}
		b.WriteString(cell)
		b.WriteByte(' ')
	}
	b.WriteString(runewidth.Truncate(r.Subject, subjectWidth(cols, width), ellipsis))
	return b.String()
}

// pad truncates s to w display cells (appending an ellipsis when it was
// longer) and fills the remainder with spaces. Multi-cell runes count by
// their rendered width.
func pad(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, ellipsis), w)
}

// patchsetTag renders the bracketed patchset number; drafts carry a star.
func patchsetTag(r *gerrit.Review) string {
	if r.CurrentPatchSet.IsDraft {
		return fmt.Sprintf("[%d*]", int(r.CurrentPatchSet.Number))
	}
	return fmt.Sprintf("[%d]", int(r.CurrentPatchSet.Number))
}

// ScoreCell reduces all approvals of one label on one review to its display
// cell. The most negative score dominates: a score at or past the rejection
// threshold always wins, even when another reviewer cleared the approval
// bar (one veto blocks). With no rejection, a score at or past the approval
// threshold renders the approved glyph. Otherwise the minimum is shown as a
// signed integer. No approvals for the label renders a single space.
func ScoreCell(l Label, approvals []gerrit.Approval) string {
	min, max, found := reduceScores(l, approvals)
	switch {
	case !found:
		return " "
	case min <= l.Rejected:
		return rejectedGlyph
	case max >= l.Approved:
		return approvedGlyph
	case min > 0:
		return "+" + strconv.Itoa(min)
	default:
		return strconv.Itoa(min)
	}
}

func reduceScores(l Label, approvals []gerrit.Approval) (min, max int, found bool) {
	for _, a := range approvals {
		if a.Type != l.Name {
			continue
		}
		v := int(a.Value)
		if !found {
			min, max, found = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, found
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func paintScore(l Label, approvals []gerrit.Approval, padded string) string {
	min, max, found := reduceScores(l, approvals)
	switch {
	case !found:
		return padded
	case min <= l.Rejected:
		return paintRejected(padded)
	case max >= l.Approved:
		return paintApproved(padded)
	case min < 0:
		return paintRejected(padded)
	default:
		return padded
	}
}
