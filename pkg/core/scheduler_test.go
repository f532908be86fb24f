package core

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/go-drift/renderkit/pkg/errors"
)

func TestScheduler_RunQueuesReentrantWork(t *testing.T) {
	s := NewScheduler(nil)
	var got []string
	commits := 0
	s.OnCommit(func() { commits++ })

	err := s.Run(func() error {
		got = append(got, "outer-start")
		if err := s.Run(func() error {
			got = append(got, "inner")
			return stderrors.New("inner failed")
		}); err != nil {
			t.Errorf("nested Run returned %v, want nil", err)
		}
		got = append(got, "outer-end")
		return nil
	})

	if want := []string{"outer-start", "outer-end", "inner"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if err == nil || err.Error() != "inner failed" {
		t.Errorf("err = %v", err)
	}
	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
	if s.Busy() {
		t.Error("scheduler still busy")
	}
}

func TestScheduler_EnqueueRaisesFatal(t *testing.T) {
	s := NewScheduler(nil)
	var fatal error
	s.OnFatal(func(err error) { fatal = err })
	boom := stderrors.New("boom")
	s.Enqueue(func() error { return boom })
	if !stderrors.Is(fatal, boom) {
		t.Errorf("fatal = %v", fatal)
	}
}

func TestScheduler_DispatchAndDrain(t *testing.T) {
	s := NewScheduler(nil)
	var got []int
	s.Dispatch(func() {
		got = append(got, 1)
		s.Dispatch(func() { got = append(got, 3) })
	})
	s.Dispatch(func() { got = append(got, 2) })
	s.Dispatch(nil)

	select {
	case <-s.Wake():
	default:
		t.Fatal("Dispatch did not signal Wake")
	}
	if err := s.Drain(); err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d", s.Pending())
	}
}

func TestScheduler_DrainRecoversPanic(t *testing.T) {
	s := NewScheduler(nil)
	ran := false
	s.Dispatch(func() { panic("bad callback") })
	s.Dispatch(func() { ran = true })

	err := s.Drain()
	var pe *errors.PanicError
	if !stderrors.As(err, &pe) || pe.Value != "bad callback" {
		t.Fatalf("Drain err = %v", err)
	}
	if !ran {
		t.Error("callback after the panic did not run")
	}
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t)
	var log []string
	h.mustMount(H(trackerType, Props{"name": "p", "log": &log, "key": "k1"},
		H(tagLabel, Props{"name": "a"}),
	))

	n := Snapshot(h.top)
	if n.Type != "Tracker" || n.Kind != "custom" || n.Key != "k1" || n.Status != "mounted" {
		t.Errorf("root node = %+v", n)
	}
	if want := []string{"key", "log", "name"}; !slices.Equal(n.Props, want) {
		t.Errorf("props = %v", n.Props)
	}
	if len(n.Children) != 1 || n.Children[0].Kind != "primitive" || n.Children[0].Depth != 1 {
		t.Errorf("children = %+v", n.Children)
	}
}
