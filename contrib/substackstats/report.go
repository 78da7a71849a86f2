package substackstats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	substack "github.com/ma2za/substack.go"
)

const (
	accent = "#FF6719"
	muted  = "#7D7D7D"
)

// Report is what the tool prints for one publication.
type Report struct {
	Publication substack.Publication
	Subscribers int64
	Drafts      []substack.Draft
	Posts       []substack.Draft
	// TotalPosts is the number of published posts, including the ones not listed.
	TotalPosts int
}

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		label:  r.NewStyle().Foreground(lipgloss.Color(muted)),
		value:  r.NewStyle().Bold(true),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
	}
}

// Render writes the report to w. Colors are used only when w is a terminal.
func Render(w io.Writer, report Report) error {
	r := lipgloss.NewRenderer(w)
	st := newStyles(r)

	pub := report.Publication
	host := strings.TrimPrefix(pub.URL(), "https://")
	blocks := []string{
		st.title.Render(pub.Name) + " " + st.label.Render(host),
		st.label.Render("Subscribers: ") + st.value.Render(groupDigits(report.Subscribers)),
	}
	if report.Posts != nil {
		blocks = append(blocks,
			"",
			st.label.Render("Published posts: ")+st.value.Render(strconv.Itoa(report.TotalPosts)),
			draftTable(st, report.Posts),
		)
	}
	if report.Drafts != nil {
		blocks = append(blocks,
			"",
			st.label.Render("Drafts: ")+st.value.Render(strconv.Itoa(len(report.Drafts))),
			draftTable(st, report.Drafts),
		)
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}

func draftTable(st styles, drafts []substack.Draft) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "AUDIENCE", "DATE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return st.cell
		})
	for _, d := range drafts {
		t.Row(d.ID.String(), d.DisplayTitle(), string(d.Audience), draftDate(d))
	}
	return t.String()
}

func draftDate(d substack.Draft) string {
	switch {
	case d.PostDate != nil:
		return d.PostDate.Format("2006-01-02")
	case d.DraftUpdatedAt != nil:
		return d.DraftUpdatedAt.Format("2006-01-02")
	case d.DraftCreatedAt != nil:
		return d.DraftCreatedAt.Format("2006-01-02")
	}
	return "-"
}

var printer = message.NewPrinter(language.English)

// groupDigits formats n with thousands separators.
func groupDigits(n int64) string {
	return printer.Sprintf("%d", n)
}
