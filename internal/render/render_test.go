package render

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/grt/internal/gerrit"
)

func makeReview(number int, subject, owner string, approvals ...gerrit.Approval) gerrit.Review {
	return gerrit.Review{
		Number:      gerrit.FlexInt(number),
		Subject:     subject,
		Branch:      "master",
		Owner:       gerrit.Account{Name: owner},
		LastUpdated: 1600000000,
		CurrentPatchSet: gerrit.PatchSet{
			Number:         3,
			Revision:       "f30ab31a",
			Ref:            "refs/changes/17/4217/3",
			Approvals:      approvals,
			SizeInsertions: 10,
			SizeDeletions:  -3,
		},
	}
}

func renderOne(r gerrit.Review, width int) []string {
	out := Table([]gerrit.Review{r}, DefaultLabels(), Options{
		Width: width,
		Now:   r.LastUpdated + 3*daySeconds,
	})
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

func TestTable_WidestTierShowsAllColumns(t *testing.T) {
	lines := renderOne(makeReview(4217, "Fix parser", "jane", gerrit.Approval{Type: "Code-Review", Value: 2}), 129)
	require.Len(t, lines, 2)

	header := strings.Fields(lines[0])
	assert.Equal(t, []string{"number", "ps", "CR", "V", "added", "deleted", "updated", "branch", "owner", "subject"}, header)

	row := lines[1]
	assert.Contains(t, row, "4217")
	assert.Contains(t, row, "[3]")
	assert.Contains(t, row, "✔")
	assert.Contains(t, row, "+10")
	assert.Contains(t, row, "-3")
	assert.Contains(t, row, "3 days")
	assert.Contains(t, row, "master")
	assert.Contains(t, row, "jane")
	assert.Contains(t, row, "Fix parser")
}

func TestTable_TierColumnDrops(t *testing.T) {
	r := makeReview(4217, "Fix parser", "jane")

	tests := []struct {
		width  int
		header []string
	}{
		{129, []string{"number", "ps", "CR", "V", "added", "deleted", "updated", "branch", "owner", "subject"}},
		{128, []string{"number", "ps", "CR", "V", "added", "deleted", "updated", "owner", "subject"}},
		{109, []string{"number", "ps", "CR", "V", "added", "deleted", "updated", "owner", "subject"}},
		{108, []string{"number", "ps", "CR", "V", "added", "deleted", "owner", "subject"}},
		{95, []string{"number", "ps", "CR", "V", "added", "deleted", "owner", "subject"}},
		{94, []string{"number", "ps", "CR", "V", "owner", "subject"}},
		{81, []string{"number", "ps", "CR", "V", "owner", "subject"}},
		{80, []string{"number", "ps", "owner", "subject"}},
	}
	for _, tt := range tests {
		lines := renderOne(r, tt.width)
		assert.Equal(t, tt.header, strings.Fields(lines[0]), "width %d", tt.width)
	}
}

func TestTable_LinesFitWidth(t *testing.T) {
	long := strings.Repeat("a very long subject that will not fit ", 4)
	r := makeReview(4217, long, "someone-with-a-long-name")

	for _, width := range []int{80, 81, 95, 109, 129, 200} {
		for _, line := range renderOne(r, width) {
			assert.LessOrEqual(t, runewidth.StringWidth(line), width, "width %d", width)
		}
	}
}

func TestTable_SubjectTruncationIdempotent(t *testing.T) {
	lines := renderOne(makeReview(1, "short subject", "jane"), 129)
	assert.Contains(t, lines[1], "short subject")
	assert.NotContains(t, lines[1], "…")
}

func TestTable_SubjectTruncatedWithEllipsis(t *testing.T) {
	long := strings.Repeat("x", 200)
	lines := renderOne(makeReview(1, long, "jane"), 100)
	assert.Contains(t, lines[1], "…")
	assert.NotContains(t, lines[1], strings.Repeat("x", 100))
}

func TestTable_WideRunesCountDouble(t *testing.T) {
	r := makeReview(1, strings.Repeat("日本語", 40), "jane")
	for _, line := range renderOne(r, 100) {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 100)
	}
}

func TestTable_OwnerTruncated(t *testing.T) {
	lines := renderOne(makeReview(1, "s", "extraordinarily-long-owner"), 129)
	assert.Contains(t, lines[1], "extraordin"[:9]+"…")
	assert.NotContains(t, lines[1], "extraordinarily")
}

func TestTable_DraftTag(t *testing.T) {
	r := makeReview(1, "draft change", "jane")
	r.CurrentPatchSet.IsDraft = true
	lines := renderOne(r, 129)
	assert.Contains(t, lines[1], "[3*]")
}

func TestTable_EmptyResultStillRendersHeader(t *testing.T) {
	out := Table(nil, DefaultLabels(), Options{Width: 129, Now: 1})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "number")
}

func TestTable_TitleFraming(t *testing.T) {
	out := Table(nil, DefaultLabels(), Options{Width: 100, Title: "Reviews: tools/grt", Now: 1})
	assert.True(t, strings.HasPrefix(out, "Reviews: tools/grt\n"))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}

func TestScoreCell_NoApprovals(t *testing.T) {
	cr := DefaultLabels()[0]
	assert.Equal(t, " ", ScoreCell(cr, nil))
	assert.Equal(t, " ", ScoreCell(cr, []gerrit.Approval{{Type: "Verified", Value: 1}}))
}

func TestScoreCell_Reduction(t *testing.T) {
	cr := DefaultLabels()[0]
	v := DefaultLabels()[1]

	tests := []struct {
		name   string
		label  Label
		values []int
		want   string
	}{
		{"approved at threshold", cr, []int{2}, "✔"},
		{"approved despite minor objection", cr, []int{2, -1}, "✔"},
		{"rejected at threshold", cr, []int{-2}, "✘"},
		{"veto beats approval", cr, []int{-2, 2}, "✘"},
		{"positive minimum", cr, []int{1}, "+1"},
		{"mixed positive", cr, []int{1, 1}, "+1"},
		{"negative minimum", cr, []int{-1, 1}, "-1"},
		{"zero", cr, []int{0}, "0"},
		{"verified approved", v, []int{1}, "✔"},
		{"verified rejected", v, []int{-1}, "✘"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var approvals []gerrit.Approval
			for _, val := range tt.values {
				approvals = append(approvals, gerrit.Approval{Type: tt.label.Name, Value: gerrit.FlexInt(val)})
			}
			assert.Equal(t, tt.want, ScoreCell(tt.label, approvals))
		})
	}
}

func TestScoreCell_CommutativeOverOrder(t *testing.T) {
	cr := DefaultLabels()[0]
	perms := [][]int{
		{-2, 1, 2},
		{2, -2, 1},
		{1, 2, -2},
	}
	var cells []string
	for _, p := range perms {
		var approvals []gerrit.Approval
		for _, val := range p {
			approvals = append(approvals, gerrit.Approval{Type: cr.Name, Value: gerrit.FlexInt(val)})
		}
		cells = append(cells, ScoreCell(cr, approvals))
	}
	assert.Equal(t, cells[0], cells[1])
	assert.Equal(t, cells[0], cells[2])
}

func TestTable_LabelOrderFixesColumnOrder(t *testing.T) {
	labels := []Label{
		{Name: "Verified", Short: "V", Approved: 1, Rejected: -1},
		{Name: "Code-Review", Short: "CR", Approved: 2, Rejected: -2},
	}
	out := Table(nil, labels, Options{Width: 100, Now: 1})
	header := strings.Fields(strings.Split(out, "\n")[0])
	assert.Equal(t, []string{"number", "ps", "V", "CR", "added", "deleted", "owner", "subject"}, header)
}
