package picker

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/api"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/ui/layout"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

// DefaultPageSize is the number of tests per page.
const DefaultPageSize = 10

// Lister pages through the test catalog. *api.Client implements it.
type Lister interface {
	ListTests(ctx context.Context, q api.SearchQuery) (*api.TestPage, error)
}

// Options configures the picker.
type Options struct {
	Lister Lister

	// Open builds the screen pushed when a test is chosen.
	Open func(quiz.TestInfo) screen.Screen

	// History builds the history screen. Optional.
	History func() screen.Screen

	PageSize int

	// Status, when set, restricts the listing to one test status.
	Status *int
}

type pageLoadedMsg struct {
	seq  int
	page *api.TestPage
	err  error
}

// PickerScreen lists tests page by page with an optional search term.
type PickerScreen struct {
	opts Options

	search    textinput.Model
	searching bool
	term      string

	spin    spinner.Model
	loading bool
	seq     int

	page     int
	tests    []quiz.TestInfo
	total    int
	selected int
	errMsg   string
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)
var _ screen.StatusProvider = (*PickerScreen)(nil)

// New creates a PickerScreen.
func New(opts Options) *PickerScreen {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	search := textinput.New()
	search.Placeholder = "search tests"
	search.CharLimit = 80

	return &PickerScreen{
		opts:   opts,
		search: search,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		page:   1,
	}
}

func (s *PickerScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.load())
}

func (s *PickerScreen) Title() string {
	return "Tests"
}

func (s *PickerScreen) Status() string {
	if s.total == 0 {
		return ""
	}
	return fmt.Sprintf("page %d of %d", s.page, s.pages())
}

func (s *PickerScreen) KeyHints() []layout.KeyHint {
	if s.searching {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Search"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "/", Description: "Search"},
		{Key: "←→", Description: "Page"},
		{Key: "r", Description: "Reload"},
	}
	if s.opts.History != nil {
		hints = append(hints, layout.KeyHint{Key: "h", Description: "History"})
	}
	return hints
}

// load requests the current page. Responses to earlier requests are
// dropped.
func (s *PickerScreen) load() tea.Cmd {
	s.seq++
	s.loading = true
	s.errMsg = ""
	seq, lister := s.seq, s.opts.Lister
	q := api.SearchQuery{Page: s.page, PageSize: s.opts.PageSize, Search: s.term, Status: s.opts.Status}
	return func() tea.Msg {
		page, err := lister.ListTests(context.Background(), q)
		return pageLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (s *PickerScreen) pages() int {
	return max((s.total+s.opts.PageSize-1)/s.opts.PageSize, 1)
}

func (s *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.tests = msg.page.Tests
		s.total = msg.page.Total
		s.selected = 0
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.searching {
			return s.handleSearchKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.searching {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PickerScreen) handleSearchKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		s.searching = false
		s.search.Blur()
		s.term = strings.TrimSpace(s.search.Value())
		s.page = 1
		return s, s.load()
	case "esc":
		s.searching = false
		s.search.Blur()
		s.search.SetValue(s.term)
		return s, nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return s, cmd
}

func (s *PickerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.tests)-1 {
			s.selected++
		}
	case "right", "pgdown", "n":
		if !s.loading && s.page < s.pages() {
			s.page++
			return s, s.load()
		}
	case "left", "pgup", "p":
		if !s.loading && s.page > 1 {
			s.page--
			return s, s.load()
		}
	case "r":
		return s, s.load()
	case "/":
		s.searching = true
		return s, s.search.Focus()
	case "esc":
		if s.term != "" {
			s.term = ""
			s.search.SetValue("")
			s.page = 1
			return s, s.load()
		}
	case "h":
		if s.opts.History != nil {
			history := s.opts.History()
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: history} }
		}
	case "enter":
		if s.selected < len(s.tests) && s.opts.Open != nil {
			next := s.opts.Open(s.tests[s.selected])
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *PickerScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case s.searching:
		b.WriteString("  / " + s.search.View())
	case s.term != "":
		b.WriteString(theme.Dim.Render(fmt.Sprintf("  Results for %q  (esc clears)", s.term)))
	default:
		b.WriteString(theme.Dim.Render("  Press / to search"))
	}
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("  Error: " + s.errMsg))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("  Press r to retry."))
		return b.String()
	case s.loading:
		b.WriteString("  " + s.spin.View() + theme.Dim.Render(" Loading tests..."))
		return b.String()
	case len(s.tests) == 0:
		b.WriteString(theme.Hint.Render("  No tests found."))
		return b.String()
	}

	nameWidth := max(min(width-24, 60), 10)
	for i, t := range s.tests {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		count := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%3d questions", t.QuestionCount))
		b.WriteString(style.Render(fmt.Sprintf("%s%-*s", prefix, nameWidth, truncate(t.Name, nameWidth))) + "  " + count)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render(fmt.Sprintf("  %d tests", s.total)))
	return b.String()
}

// Selected returns the highlighted test.
func (s *PickerScreen) Selected() (quiz.TestInfo, bool) {
	if s.selected >= len(s.tests) {
		return quiz.TestInfo{}, false
	}
	return s.tests[s.selected], true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
