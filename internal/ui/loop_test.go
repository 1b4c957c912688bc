package ui

import (
	"context"
	"testing"
	"time"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Dispatch(func() { got = append(got, i) })
	}
	// 在 loop 內再次投遞不會阻塞
	l.Dispatch(func() { l.Dispatch(func() { got = append(got, 99) }) })
	if !l.Sync(func() {}) {
		t.Fatal("loop stopped unexpectedly")
	}
	l.Sync(func() {})

	want := []int{0, 1, 2, 3, 4, 99}
	if len(got) != len(want) {
		t.Fatalf("got=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v want %v", got, want)
		}
	}
}

func TestLoopStopDropsWork(t *testing.T) {
	l := NewLoop()
	errc := make(chan error, 1)
	go func() { errc <- l.Run(context.Background()) }()

	l.Stop()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if l.Sync(func() { t.Error("must not run after Stop") }) {
		t.Fatal("Sync must report a stopped loop")
	}
}
