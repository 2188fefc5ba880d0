// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim_test

import (
	"testing"
	"time"

	hw "github.com/db47h/pinsim"
	"github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func settle(t *testing.T, c *hw.Circuit) int {
	t.Helper()
	n, err := c.Settle()
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return n
}

// Test a basic clock built from a process and a timed event.
//
func Test_clock(t *testing.T) {
	c := hw.NewCircuit()
	clk := c.NewSignal("clk", false)
	tick := c.NewEvent("tick")
	p := c.Spawn("clock", func() {
		clk.Write(!clk.Read())
		tick.NotifyAfter(5 * time.Nanosecond)
	})
	tick.Watch(p)

	first := true
	edges := 0
	counter := c.Spawn("counter", func() {
		if first {
			first = false
			return
		}
		edges++
	})
	clk.WatchPosedge(counter)

	if err := c.Run(100 * time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	// toggles at 0, 5, ..., 100ns. Rising edges at 0, 10, ..., 100ns.
	if edges != 11 {
		t.Errorf("expected 11 rising edges, got %d", edges)
	}
	if c.Now() != 100*time.Nanosecond {
		t.Errorf("expected simulated time 100ns, got %v", c.Now())
	}
	if c.Size() != 2 {
		t.Errorf("expected 2 processes, got %d", c.Size())
	}
}

func TestCircuit_snapshot(t *testing.T) {
	c := hw.NewCircuit()
	s := c.NewSignal("s", false)
	u := c.NewSignal("u", false)
	var seen []bool

	p := c.Spawn("copy", func() { u.Write(s.Read()) })
	q := c.Spawn("observe", func() { seen = append(seen, u.Read()) })
	s.Watch(p)
	s.Watch(q)
	settle(t, c)
	seen = seen[:0]

	s.Write(true)
	settle(t, c)
	// q ran in the same delta as p and must have seen the former value of u.
	if len(seen) != 1 || seen[0] {
		t.Fatalf("expected observe to run once and see u=0, got %v", seen)
	}
	if !u.Read() {
		t.Fatal("expected u=1 once settled")
	}
}

func TestCircuit_deltaLimit(t *testing.T) {
	c := hw.NewCircuit(hw.WithDeltaLimit(50))
	s := c.NewSignal("s", false)
	p := c.Spawn("inverter", func() { s.Write(!s.Read()) })
	s.Watch(p)

	n, err := c.Settle()
	if errors.Cause(err) != hw.ErrDeltaLimit {
		t.Fatalf("expected ErrDeltaLimit, got %v", err)
	}
	if n != 50 {
		t.Errorf("expected 50 delta cycles, got %d", n)
	}
}

func TestCircuit_Schedule(t *testing.T) {
	c := hw.NewCircuit()
	s := c.NewSignal("s", false)
	c.Schedule(10*time.Nanosecond, func() { s.Write(true) })

	if err := c.Run(5 * time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if s.Read() {
		t.Fatal("s changed before its scheduled time")
	}
	if err := c.Run(5 * time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if !s.Read() {
		t.Fatal("s did not change at its scheduled time")
	}
}

func TestEvent_merge(t *testing.T) {
	c := hw.NewCircuit()
	e := c.NewEvent("e")
	runs := 0
	p := c.Spawn("p", func() { runs++ })
	e.Watch(p)
	settle(t, c)

	e.Notify()
	e.Notify()
	settle(t, c)
	if runs != 2 {
		t.Errorf("expected 2 runs (init + one notification), got %d", runs)
	}

	e.Unwatch(p)
	e.Notify()
	settle(t, c)
	if runs != 2 {
		t.Errorf("unwatched process ran, runs = %d", runs)
	}
}

func TestSignal_Changed(t *testing.T) {
	c := hw.NewCircuit()
	s := c.NewSignal("s", true)
	changes := 0
	p := c.Spawn("p", func() { changes++ })
	s.Changed().Watch(p)
	settle(t, c)

	s.Write(true)
	settle(t, c)
	s.Write(false)
	s.Write(true)
	settle(t, c)
	if changes != 1 {
		t.Errorf("expected no change notification, got %d runs", changes)
	}
	s.Write(false)
	settle(t, c)
	if changes != 2 || s.Read() {
		t.Errorf("expected one change notification, got %d runs, s = %v", changes, s)
	}
}

func TestSignal_WatchNegedge(t *testing.T) {
	c := hw.NewCircuit()
	s := c.NewSignal("s", false)
	var rising, falling int
	pos := c.Spawn("pos", func() { rising++ })
	neg := c.Spawn("neg", func() { falling++ })
	s.WatchPosedge(pos)
	s.WatchNegedge(neg)
	settle(t, c)
	rising, falling = 0, 0

	for _, v := range []bool{true, true, false, false, true, false} {
		s.Write(v)
		settle(t, c)
	}
	if rising != 2 || falling != 2 {
		t.Errorf("expected 2 rising and 2 falling edges, got %d and %d", rising, falling)
	}
}

func TestCircuit_Run_negative(t *testing.T) {
	c := hw.NewCircuit()
	if err := c.Run(10 * time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(-5 * time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if c.Now() != 10*time.Nanosecond {
		t.Errorf("time moved back to %v", c.Now())
	}
}
