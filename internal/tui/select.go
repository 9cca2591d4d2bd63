// Package tui holds the terminal picker used when a search returns several
// candidate movies.
package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/tmdb"
)

const (
	pickerWidth  = 76
	pickerHeight = 16
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction is what the user did in the picker.
type SelectionAction int

const (
	ActionNone SelectionAction = iota
	ActionSelected
	ActionSkipped
	// ActionStopped aborts the whole batch, not just the current row.
	ActionStopped
)

// SelectionResult carries the picked candidate when Action is ActionSelected.
type SelectionResult struct {
	Action    SelectionAction
	Selection *tmdb.SearchResult
}

type candidate struct {
	movie tmdb.SearchResult
	n     int
}

func (c candidate) FilterValue() string { return c.movie.Title }

var (
	numberStyle  = lipgloss.NewStyle().Width(4).Foreground(lipgloss.Color("110"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("254"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	detailStyle  = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("245"))
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).MarginBottom(1)
	keyHintStyle = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("244"))
)

type candidateDelegate struct{}

func (candidateDelegate) Height() int                         { return 2 }
func (candidateDelegate) Spacing() int                        { return 1 }
func (candidateDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (candidateDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	c, ok := item.(candidate)
	if !ok {
		return
	}

	label := labelStyle
	if idx == m.Index() {
		label = cursorStyle
	}
	first := numberStyle.Render(strconv.Itoa(c.n)+".") + label.Render(c.movie.Label())
	second := detailStyle.Render(shorten(details(c.movie), m.Width()-4))
	_, _ = fmt.Fprint(w, first+"\n"+second)
}

type picker struct {
	list   list.Model
	query  string
	result SelectionResult
}

func newPicker(query string, results []tmdb.SearchResult) *picker {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = candidate{movie: r, n: i + 1}
	}

	l := list.New(items, candidateDelegate{}, pickerWidth, pickerHeight)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return &picker{list: l, query: query}
}

func (p *picker) Init() tea.Cmd { return nil }

func (p *picker) choose(c candidate) (tea.Model, tea.Cmd) {
	movie := c.movie
	p.result = SelectionResult{Action: ActionSelected, Selection: &movie}
	return p, tea.Quit
}

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "enter":
			if c, ok := p.list.SelectedItem().(candidate); ok {
				return p.choose(c)
			}
		case "s", "esc":
			p.result = SelectionResult{Action: ActionSkipped}
			return p, tea.Quit
		case "q", "ctrl+c":
			p.result = SelectionResult{Action: ActionStopped}
			return p, tea.Quit
		}
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(p.list.Items()) {
			return p.choose(p.list.Items()[n-1].(candidate))
		}
	case tea.WindowSizeMsg:
		p.list.SetSize(fit(msg.Width-2, pickerWidth, 40), fit(msg.Height-5, pickerHeight, 6))
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *picker) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		promptStyle.Render(fmt.Sprintf("Which movie is %q?", p.query)),
		p.list.View(),
		keyHintStyle.Render("up/down move | enter or 1-9 pick | s skip | q stop import"),
	)
}

// Select shows results in API order and waits for a pick. No results counts
// as a skip without opening the terminal UI.
func Select(query string, results []tmdb.SearchResult) (SelectionResult, error) {
	if len(results) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	final, err := runProgram(newPicker(query, results))
	if err != nil {
		return SelectionResult{}, eris.Wrap(err, "run movie picker")
	}
	p, ok := final.(*picker)
	if !ok {
		return SelectionResult{}, eris.Errorf("movie picker returned %T", final)
	}
	return p.result, nil
}

// details is the second line of a candidate: rating, votes and language.
func details(r tmdb.SearchResult) string {
	var parts []string
	if r.VoteCount > 0 {
		parts = append(parts, fmt.Sprintf("TMDB %.1f (%s)", r.VoteAverage, votes(r.VoteCount)))
	}
	if r.OriginalLang != "" {
		parts = append(parts, strings.ToUpper(r.OriginalLang))
	}
	if r.Overview != "" {
		parts = append(parts, r.Overview)
	}
	if len(parts) == 0 {
		return "no details"
	}
	return strings.Join(parts, " - ")
}

func votes(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk votes", float64(n)/1000)
	}
	return fmt.Sprintf("%d votes", n)
}

func shorten(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// fit returns available capped at preferred, but never below floor.
func fit(available, preferred, floor int) int {
	size := preferred
	if available > 0 && available < preferred {
		size = available
	}
	return max(size, floor)
}
