package picker

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/api"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/ui/layout"
)

type fakeLister struct {
	tests   []quiz.TestInfo
	err     error
	queries []api.SearchQuery
}

func (f *fakeLister) ListTests(_ context.Context, q api.SearchQuery) (*api.TestPage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var matched []quiz.TestInfo
	for _, t := range f.tests {
		if q.Search == "" || strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Search)) {
			matched = append(matched, t)
		}
	}
	start := min((q.Page-1)*q.PageSize, len(matched))
	end := min(start+q.PageSize, len(matched))
	return &api.TestPage{Tests: matched[start:end], Total: len(matched)}, nil
}

type stubScreen struct{ name string }

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return s.name }
func (s *stubScreen) Title() string                          { return s.name }

func catalog(n int) []quiz.TestInfo {
	names := []string{"Algebra", "Biology", "Chemistry", "Drama", "Economics"}
	out := make([]quiz.TestInfo, n)
	for i := range out {
		out[i] = quiz.TestInfo{ID: names[i%len(names)] + "-id", Name: names[i%len(names)], Status: 1, QuestionCount: i + 1}
	}
	return out
}

func key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

// run feeds msg to s and resolves the page load it started, if any.
func run(t *testing.T, s *PickerScreen, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := s.Update(msg)
	if cmd == nil || !s.loading {
		return cmd
	}
	page, ok := cmd().(pageLoadedMsg)
	require.True(t, ok)
	s.Update(page)
	return nil
}

func loaded(t *testing.T, opts Options) *PickerScreen {
	t.Helper()
	s := New(opts)
	s.Update(s.load()())
	return s
}

func TestPicker_LoadsFirstPage(t *testing.T) {
	lister := &fakeLister{tests: catalog(3)}
	s := loaded(t, Options{Lister: lister})

	require.Len(t, lister.queries, 1)
	assert.Equal(t, api.SearchQuery{Page: 1, PageSize: DefaultPageSize}, lister.queries[0])
	assert.Len(t, s.tests, 3)
	assert.Equal(t, 3, s.total)

	view := s.View(100, 30)
	assert.Contains(t, view, "Algebra")
	assert.Contains(t, view, "3 tests")
	assert.Equal(t, "page 1 of 1", s.Status())
}

func TestPicker_StaleResponseDropped(t *testing.T) {
	lister := &fakeLister{tests: catalog(3)}
	s := New(Options{Lister: lister})

	stale := s.load()
	fresh := s.load()
	s.Update(fresh())
	lister.tests = nil
	s.Update(stale())

	assert.Len(t, s.tests, 3)
}

func TestPicker_Paging(t *testing.T) {
	lister := &fakeLister{tests: catalog(12)}
	s := loaded(t, Options{Lister: lister, PageSize: 5})

	assert.Equal(t, "page 1 of 3", s.Status())

	run(t, s, key("right"))
	assert.Equal(t, 2, s.page)
	assert.Equal(t, 2, lister.queries[len(lister.queries)-1].Page)

	run(t, s, key("right"))
	run(t, s, key("right"))
	assert.Equal(t, 3, s.page, "paging stops at the last page")
	assert.Len(t, s.tests, 2)

	run(t, s, key("left"))
	assert.Equal(t, 2, s.page)
}

func TestPicker_Search(t *testing.T) {
	lister := &fakeLister{tests: catalog(5)}
	s := loaded(t, Options{Lister: lister})

	run(t, s, key("/"))
	require.True(t, s.searching)
	for _, r := range "bio" {
		run(t, s, key(string(r)))
	}
	run(t, s, key("enter"))

	assert.False(t, s.searching)
	assert.Equal(t, "bio", s.term)
	assert.Equal(t, "bio", lister.queries[len(lister.queries)-1].Search)
	require.Len(t, s.tests, 1)
	assert.Equal(t, "Biology", s.tests[0].Name)

	// Esc outside search mode clears the term.
	run(t, s, key("esc"))
	assert.Empty(t, s.term)
	assert.Len(t, s.tests, 5)
}

func TestPicker_SearchCancel(t *testing.T) {
	lister := &fakeLister{tests: catalog(5)}
	s := loaded(t, Options{Lister: lister})

	run(t, s, key("/"))
	run(t, s, key("x"))
	run(t, s, key("esc"))

	assert.False(t, s.searching)
	assert.Empty(t, s.term)
	assert.Len(t, lister.queries, 1, "cancel does not reload")
}

func TestPicker_OpenSelected(t *testing.T) {
	var opened quiz.TestInfo
	lister := &fakeLister{tests: catalog(3)}
	s := loaded(t, Options{
		Lister: lister,
		Open: func(info quiz.TestInfo) screen.Screen {
			opened = info
			return &stubScreen{name: info.Name}
		},
	})

	run(t, s, key("down"))
	info, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "Biology", info.Name)

	cmd := run(t, s, key("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Biology", msg.Screen.Title())
	assert.Equal(t, "Biology-id", opened.ID)
}

func TestPicker_History(t *testing.T) {
	s := loaded(t, Options{Lister: &fakeLister{}})
	assert.Nil(t, run(t, s, key("h")), "no history configured")

	s = loaded(t, Options{
		Lister:  &fakeLister{},
		History: func() screen.Screen { return &stubScreen{name: "History"} },
	})
	cmd := run(t, s, key("h"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "History", msg.Screen.Title())
	assert.Contains(t, s.KeyHints(), layout.KeyHint{Key: "h", Description: "History"})
}

func TestPicker_ErrorAndReload(t *testing.T) {
	lister := &fakeLister{err: errors.New("Unauthorized (HTTP 401)")}
	s := loaded(t, Options{Lister: lister})

	view := s.View(100, 30)
	assert.Contains(t, view, "Unauthorized (HTTP 401)")
	assert.Contains(t, view, "Press r to retry.")

	lister.err = nil
	lister.tests = catalog(2)
	run(t, s, key("r"))

	assert.Empty(t, s.errMsg)
	assert.Len(t, s.tests, 2)
}

func TestPicker_Empty(t *testing.T) {
	s := loaded(t, Options{Lister: &fakeLister{}})

	assert.Contains(t, s.View(100, 30), "No tests found.")
	assert.Empty(t, s.Status())
	assert.Nil(t, run(t, s, key("enter")))
}

func TestPicker_StatusFilter(t *testing.T) {
	published := 1
	lister := &fakeLister{}
	loaded(t, Options{Lister: lister, Status: &published})

	require.Len(t, lister.queries, 1)
	require.NotNil(t, lister.queries[0].Status)
	assert.Equal(t, 1, *lister.queries[0].Status)
}
