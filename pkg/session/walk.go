package session

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/piemenu/pkg/errors"
)

// Step opens the item at (Level, Index).
type Step struct {
	Level int
	Index int
}

func (s Step) String() string { return strconv.Itoa(s.Level) + ":" + strconv.Itoa(s.Index) }

// ParseSteps parses "level:index" pairs separated by commas, e.g. "0:2,1:0".
// A bare index opens that item in the ring opened by the previous step.
func ParseSteps(list string) ([]Step, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var steps []Step
	for i, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		level := i
		idx := part
		if l, r, ok := strings.Cut(part, ":"); ok {
			n, err := strconv.Atoi(l)
			if err != nil || n < 0 {
				return nil, errors.New(errors.ErrCodeInvalidLevel, "bad level in step %q", part)
			}
			level, idx = n, r
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return nil, errors.New(errors.ErrCodeInvalidIndex, "bad index in step %q", part)
		}
		steps = append(steps, Step{Level: level, Index: n})
	}
	return steps, nil
}

// navigationPoll is how often Walk checks whether a folder finished loading.
const navigationPoll = 10 * time.Millisecond

// Walk opens each step in turn: categories expand, folders are navigated
// into and waited for. It needs a running owner loop for folders.
func (s *Session) Walk(ctx context.Context, steps []Step) error {
	for _, st := range steps {
		var opened, async bool
		err := s.Do(ctx, func() { opened, async = s.OpenStep(ctx, st) })
		if err != nil {
			return err
		}
		if !opened {
			return errors.New(errors.ErrCodeNotBranch, "step %s opens nothing", st)
		}
		if async {
			if err := s.waitNavigation(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// OpenStep opens the item named by st and must run on the stack's owner.
// It reports whether anything opened and whether a folder load is still in
// flight.
func (s *Session) OpenStep(ctx context.Context, st Step) (opened, async bool) {
	r, ok := s.Stack.Ring(st.Level)
	if !ok || st.Index >= len(r.Nodes) {
		return false, false
	}
	n := r.Nodes[st.Index]
	if n.NeedsDynamicLoading && len(n.Children) == 0 {
		opened = s.Stack.NavigateIntoFolder(ctx, st.Level, st.Index)
		return opened, opened
	}
	return s.Stack.ExpandCategory(st.Level, st.Index, true), false
}

func (s *Session) waitNavigation(ctx context.Context) error {
	t := time.NewTicker(navigationPoll)
	defer t.Stop()
	for {
		var busy bool
		if err := s.Do(ctx, func() { busy = s.Stack.Navigating() }); err != nil {
			return err
		}
		if !busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
