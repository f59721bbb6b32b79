package menu

import (
	"context"
	"testing"
	"time"
)

func TestLoopRunsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLoop(nil)
	go l.Run(ctx)

	var got []int
	for i := range 5 {
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Do(ctx, func() {}); err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got %v, want ascending", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("ran %d tasks", len(got))
	}
}

func TestLoopSurvivesPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLoop(nil)
	go l.Run(ctx)

	if err := l.Do(ctx, func() { panic("boom") }); err != nil {
		t.Fatalf("Do after panic = %v", err)
	}
	ran := false
	if err := l.Do(ctx, func() { ran = true }); err != nil || !ran {
		t.Fatalf("loop stopped after panic: %v", err)
	}
}

func TestLoopStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(nil)
	go l.Run(ctx)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	if err := l.Do(context.Background(), func() {}); err != ErrStopped {
		t.Errorf("Do after stop = %v, want ErrStopped", err)
	}
}
