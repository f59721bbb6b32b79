package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/session"
)

// =============================================================================
// Program Scheduler
// =============================================================================

// runMsg carries work scheduled onto the bubbletea update loop.
type runMsg func()

// programScheduler makes the bubbletea update loop the owner of a stack.
// Scheduled functions arrive as runMsg and run inside Update.
type programScheduler struct {
	send func(tea.Msg)
}

// Schedule implements menu.Scheduler. It must not be called from Update,
// since Send blocks until the update loop receives the message.
func (s *programScheduler) Schedule(fn func()) { s.send(runMsg(fn)) }

// =============================================================================
// BrowseModel - Interactive menu navigation
// =============================================================================

// BrowseModel is the bubbletea model for walking a menu with the keyboard.
// Every key becomes a pointer event at the center of the hovered item, so
// the menu behaves as it would under a mouse.
type BrowseModel struct {
	ctx    context.Context
	sess   *session.Session
	status string
	height int

	// pending holds --open steps not yet applied. They run one at a time,
	// each waiting for the previous folder load.
	pending []session.Step

	// Outcome is the last outcome that dismissed the menu, if any.
	Outcome *menu.Outcome
	// Err is the error of the last action.
	Err error
}

// NewBrowseModel creates a browse model over sess that first opens steps.
// The session must be owned by the program's update loop.
func NewBrowseModel(ctx context.Context, sess *session.Session, steps ...session.Step) BrowseModel {
	return BrowseModel{ctx: ctx, sess: sess, height: 15, pending: steps}
}

// stepMsg asks the model to apply its next pending step.
type stepMsg struct{}

func (m BrowseModel) Init() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	return func() tea.Msg { return stepMsg{} }
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.nextStep()
	case runMsg:
		msg()
		m.nextStep()
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m BrowseModel) handleKey(key string) (tea.Model, tea.Cmd) {
	s := m.sess.Stack
	m.status = ""
	switch key {
	case "q", "ctrl+c", "esc":
		out := m.sess.Controller.Dismiss()
		m.Outcome = &out
		return m, tea.Quit
	case "left", "h":
		m.moveHover(-1)
	case "right", "l", "tab":
		m.moveHover(1)
	case "backspace", "up", "k":
		if !s.Back() {
			m.status = "already at the root ring"
		}
	case "home":
		s.CollapseToRing(0)
	case "ctrl+r":
		s.Load(m.ctx)
		m.status = "reloaded"
	case "enter", "down", "j":
		return m.click(node.LeftClick, node.ModNone)
	case " ":
		return m.click(node.LeftClick, node.ModShift)
	case "r":
		return m.click(node.RightClick, node.ModNone)
	case "m":
		return m.click(node.MiddleClick, node.ModNone)
	}
	return m, nil
}

// nextStep applies pending steps until one starts a folder load, which
// resumes stepping once its result arrives as a runMsg.
func (m *BrowseModel) nextStep() {
	for len(m.pending) > 0 && !m.sess.Stack.Navigating() {
		st := m.pending[0]
		m.pending = m.pending[1:]
		opened, async := m.sess.OpenStep(m.ctx, st)
		if !opened {
			m.status = StyleWarning.Render(fmt.Sprintf("step %s opens nothing", st))
			m.pending = nil
			return
		}
		if async {
			return
		}
	}
}

// moveHover moves the hover in the active ring by delta, wrapping around.
func (m *BrowseModel) moveHover(delta int) {
	s := m.sess.Stack
	level := s.ActiveLevel()
	r, ok := s.Ring(level)
	if !ok || len(r.Nodes) == 0 {
		return
	}
	i := r.Hovered
	if i == menu.None {
		i = 0
		if delta < 0 {
			i = len(r.Nodes) - 1
		}
	} else {
		i = (i + delta + len(r.Nodes)) % len(r.Nodes)
	}
	s.SetHovered(level, i)
}

// click fires ch at the hovered item of the active ring.
func (m BrowseModel) click(ch node.Channel, mods node.Modifier) (tea.Model, tea.Cmd) {
	s := m.sess.Stack
	level := s.ActiveLevel()
	r, ok := s.Ring(level)
	if !ok {
		return m, nil
	}
	if r.Hovered == menu.None {
		m.status = "nothing hovered"
		return m, nil
	}
	pos, ok := itemPosition(s, level, r.Hovered, m.sess.Controller.Center())
	if !ok {
		return m, nil
	}

	out, err := m.sess.Controller.Click(m.ctx, ch, pos, mods)
	m.Err = err
	switch {
	case err != nil:
		m.status = StyleWarning.Render(err.Error())
	case out.Executed != "":
		m.status = "ran " + string(out.Executed)
	case s.Navigating():
		m.status = "loading..."
	}
	if out.Dismiss {
		m.Outcome = &out
		return m, tea.Quit
	}
	return m, nil
}

// itemPosition returns the screen point in the middle of the item at
// (level, index).
func itemPosition(s *menu.Stack, level, index int, center hittest.Point) (hittest.Point, bool) {
	configs := s.Configurations()
	if level >= len(configs) || index >= len(configs[level].Nodes) {
		return hittest.Point{}, false
	}
	rc := configs[level]
	return hittest.At(center, rc.Slice.ItemCenter(index), rc.StartRadius+rc.Thickness/2), true
}

func (m BrowseModel) View() string {
	var b strings.Builder
	s := m.sess.Stack

	b.WriteString(StyleTitle.Render("piemenu"))
	var crumbs []string
	for _, n := range s.Breadcrumb() {
		crumbs = append(crumbs, n.Name)
	}
	if len(crumbs) > 0 {
		b.WriteString(listDimStyle.Render("  " + strings.Join(crumbs, " › ")))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ hover  ⏎ open/run  space keep open  r right  m middle  ⌫ back  q quit"))
	b.WriteString("\n\n")

	rings := s.Rings()
	if len(rings) == 0 {
		b.WriteString(listDimStyle.Render("  (menu closed)"))
		return b.String()
	}

	for level := 0; level < s.ActiveLevel() && level < len(rings); level++ {
		b.WriteString(ringSummary(level, rings[level]))
		b.WriteString("\n")
	}

	configs := s.Configurations()
	active := s.ActiveLevel()
	if active < len(configs) {
		b.WriteString(m.ringTable(active, rings[active], configs[active].Slice))
		b.WriteString("\n")
	}

	if s.Navigating() {
		b.WriteString(styleLoading.Render("  " + iconLoading + "..."))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("  " + m.status + "\n")
	}
	return b.String()
}

// ringSummary renders an inactive ring on one line with its selection
// highlighted.
func ringSummary(level int, r menu.RingState) string {
	parts := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		if i == r.Selected {
			parts[i] = listSelectedStyle.Render(n.Name)
		} else {
			parts[i] = listDimStyle.Render(n.Name)
		}
	}
	return listDimStyle.Render(fmt.Sprintf("  %d ", level)) + strings.Join(parts, listDimStyle.Render(" · "))
}

type angleRanger interface {
	ItemRange(i int) (start, end float64)
}

func (m BrowseModel) ringTable(level int, r menu.RingState, slice angleRanger) string {
	offset := 0
	if r.Hovered >= m.height {
		offset = r.Hovered - m.height + 1
	}
	end := min(offset+m.height, len(r.Nodes))

	rows := [][]string{}
	for i := offset; i < end; i++ {
		n := r.Nodes[i]
		cursor := "  "
		if i == r.Hovered {
			cursor = iconHover + " "
		}
		branch := ""
		if !n.ActsAsLeaf() {
			branch = "›"
		}
		start, stop := slice.ItemRange(i)
		rows = append(rows, []string{cursor, kindGlyph(n.Kind) + " " + n.Name, string(n.Kind), branch, fmt.Sprintf("%5.1f° to %5.1f°", start, stop)})
	}

	headers := []string{"", fmt.Sprintf("Ring %d", level), "Kind", "", "Angles"}
	t := newTable(headers, rows, func(row, col int) lipgloss.Style {
		idx := offset + row
		switch {
		case idx == r.Hovered:
			return listSelectedStyle
		case idx < len(r.Nodes) && r.Nodes[idx].ActsAsLeaf():
			return listNormalStyle
		case col == 4:
			return listDimStyle
		}
		return styleBranch
	})

	return t.Render() + "\n" + listDimStyle.Render(fmt.Sprintf("  [%d items]", len(r.Nodes)))
}

// =============================================================================
// Command
// =============================================================================

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var open string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Walk the menu interactively",
		Long: `Walk the menu interactively.

The active ring is listed with the hovered item highlighted. Keys are
translated into clicks at the hovered item, so categories expand, folders
load and actions run just as they would with a pointer. Provider updates
(for example files changing in an open folder) refresh the rings live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), open)
		},
	}
	walkFlag(cmd, &open)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, open string) error {
	sched := &programScheduler{}
	sess, err := c.openSession(ctx, sched)
	if err != nil {
		return err
	}
	defer sess.Close()

	steps, err := session.ParseSteps(open)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewBrowseModel(ctx, sess, steps...), tea.WithContext(ctx), tea.WithAltScreen())
	sched.send = p.Send

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := sess.Run(ctx); err != nil {
			c.Logger.Warn("session stopped", "err", err)
		}
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	m := final.(BrowseModel)
	if m.Outcome != nil {
		switch {
		case m.Outcome.Executed != "":
			printSuccess("Ran %s", m.Outcome.Executed)
		case len(m.Outcome.Drag) > 0:
			printSuccess("Drag %s", strings.Join(m.Outcome.Drag, ", "))
		}
	}
	return m.Err
}
