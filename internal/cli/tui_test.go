package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/piemenu/pkg/session"
)

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func press(t *testing.T, m BrowseModel, msgs ...tea.Msg) (BrowseModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(BrowseModel)
	}
	return m, cmd
}

func newBrowse(t *testing.T, steps ...session.Step) (BrowseModel, *ranActions) {
	t.Helper()
	sched := &programScheduler{send: func(msg tea.Msg) { msg.(runMsg)() }}
	sess, ran := newTestSession(t, sched)
	return NewBrowseModel(context.Background(), sess, steps...), ran
}

func TestBrowseHoverWraps(t *testing.T) {
	m, _ := newBrowse(t)
	s := m.sess.Stack

	m, _ = press(t, m, key(tea.KeyLeft))
	if r, _ := s.Ring(0); r.Hovered != 1 {
		t.Fatalf("left from nothing should hover the last item, got %d", r.Hovered)
	}
	m, _ = press(t, m, key(tea.KeyRight))
	if r, _ := s.Ring(0); r.Hovered != 0 {
		t.Errorf("right should wrap to 0, got %d", r.Hovered)
	}
}

func TestBrowseExpandAndExecute(t *testing.T) {
	m, ran := newBrowse(t)
	s := m.sess.Stack

	m, cmd := press(t, m, key(tea.KeyLeft), key(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("expanding should not quit")
	}
	if s.Len() != 2 || s.ActiveLevel() != 1 {
		t.Fatalf("demo ring should be open: Len=%d", s.Len())
	}
	if !strings.Contains(m.View(), "Ring 1") {
		t.Error("view should list the active ring")
	}

	m, cmd = press(t, m, key(tea.KeyRight), key(tea.KeyRight), key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("executing should quit")
	}
	if m.Outcome == nil || m.Outcome.Executed != "demo.run" || !m.Outcome.Dismiss {
		t.Errorf("outcome = %+v", m.Outcome)
	}
	if diff := cmp.Diff([]string{"b"}, ran.list()); diff != "" {
		t.Errorf("ran (-want +got):\n%s", diff)
	}
}

func TestBrowseBack(t *testing.T) {
	m, _ := newBrowse(t, session.Step{Level: 0, Index: 1})
	s := m.sess.Stack

	m, _ = press(t, m, stepMsg{})
	if s.Len() != 2 {
		t.Fatalf("pending step should open ring 1, Len=%d", s.Len())
	}
	m, _ = press(t, m, key(tea.KeyBackspace))
	if s.ActiveLevel() != 0 || s.Len() != 1 {
		t.Errorf("backspace should return to ring 0: Len=%d", s.Len())
	}
	m, _ = press(t, m, key(tea.KeyBackspace))
	if !strings.Contains(m.status, "root ring") {
		t.Errorf("status = %q", m.status)
	}
}

func TestBrowseNothingHovered(t *testing.T) {
	m, ran := newBrowse(t)
	m, cmd := press(t, m, key(tea.KeyEnter))
	if cmd != nil || m.status != "nothing hovered" {
		t.Errorf("enter without hover: cmd=%v status=%q", cmd != nil, m.status)
	}
	if len(ran.list()) != 0 {
		t.Error("nothing should run")
	}
}

func TestBrowseQuitDismisses(t *testing.T) {
	m, _ := newBrowse(t)
	m, cmd := press(t, m, key(tea.KeyEsc))
	if cmd == nil || m.Outcome == nil || !m.Outcome.Dismiss {
		t.Fatalf("esc should dismiss: %+v", m.Outcome)
	}
	if m.sess.Stack.Len() != 0 {
		t.Error("dismiss resets the stack")
	}
	if !strings.Contains(m.View(), "menu closed") {
		t.Error("view should show the closed menu")
	}
}
