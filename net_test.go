// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim_test

import (
	"testing"

	hw "github.com/db47h/pinsim"
)

func TestNet_floating(t *testing.T) {
	c := hw.NewCircuit()
	n := c.NewNet("n")
	if n.Value() != hw.Z {
		t.Fatalf("new net = %v, expected Z", n.Value())
	}
	if n.Bool() {
		t.Fatal("floating net reads true")
	}
}

func TestNet_buffered(t *testing.T) {
	c := hw.NewCircuit()
	n := c.NewNet("n")
	n.Drive("a", hw.D1)
	if n.Value() != hw.Z {
		t.Fatalf("drive applied before update: %v", n.Value())
	}
	settle(t, c)
	if n.Value() != hw.D1 || !n.Bool() {
		t.Fatalf("n = %v, expected 1", n.Value())
	}
}

func TestNet_drivers(t *testing.T) {
	c := hw.NewCircuit()
	n := c.NewNet("n")
	n.Drive("pull", hw.W1)
	n.Drive("out", hw.D0)
	settle(t, c)
	if n.Value() != hw.D0 {
		t.Fatalf("n = %v, expected 0", n.Value())
	}
	ds := n.Drivers()
	if len(ds) != 2 || ds[0].ID != "pull" || ds[1].ID != "out" {
		t.Fatalf("unexpected drivers %v", ds)
	}

	n.Drive("other", hw.D1)
	settle(t, c)
	if n.Value() != hw.X {
		t.Fatalf("n = %v, expected X", n.Value())
	}

	n.Release("out")
	n.Release("other")
	settle(t, c)
	if n.Value() != hw.W1 {
		t.Fatalf("n = %v, expected H", n.Value())
	}
	if v, ok := n.Contribution("pull"); !ok || v != hw.W1 {
		t.Errorf("pull contribution = %v, %v", v, ok)
	}
	if _, ok := n.Contribution("out"); ok {
		t.Error("released driver still contributes")
	}
	// releasing an unknown driver is harmless
	n.Release("nobody")
	settle(t, c)
	if len(n.Drivers()) != 1 {
		t.Errorf("unexpected drivers %v", n.Drivers())
	}
}

func TestNet_lastWriteWins(t *testing.T) {
	c := hw.NewCircuit()
	n := c.NewNet("n")
	n.Drive("a", hw.D1)
	n.Drive("a", hw.D0)
	settle(t, c)
	if n.Value() != hw.D0 || len(n.Drivers()) != 1 {
		t.Fatalf("n = %v, drivers %v", n.Value(), n.Drivers())
	}
}

func TestNet_watchOnChange(t *testing.T) {
	c := hw.NewCircuit()
	n := c.NewNet("n")
	runs := 0
	p := c.Spawn("p", func() { runs++ })
	n.Watch(p)
	settle(t, c)

	n.Drive("a", hw.D1)
	settle(t, c)
	n.Drive("b", hw.W0) // still resolves to 1
	settle(t, c)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
	n.Drive("c", hw.AnalogValue(1.5))
	settle(t, c)
	if runs != 3 || n.Value() != hw.X {
		t.Errorf("expected 3 runs and X, got %d and %v", runs, n.Value())
	}
}

func TestNet_Changed(t *testing.T) {
	c := hw.NewCircuit()
	n := c.NewNet("n")
	runs := 0
	p := c.Spawn("p", func() { runs++ })
	n.Changed().Watch(p)
	settle(t, c)
	runs = 0

	n.Drive("pull", hw.W1)
	settle(t, c)
	if runs != 1 {
		t.Fatalf("expected 1 notification, got %d", runs)
	}
	// new drivers, same resolved value
	n.Drive("out", hw.W1)
	n.Drive("pull", hw.W1)
	settle(t, c)
	n.Release("out")
	settle(t, c)
	if runs != 1 {
		t.Errorf("notified without a change of value, runs = %d", runs)
	}
	n.Drive("out", hw.D0)
	settle(t, c)
	if runs != 2 || n.Value() != hw.D0 {
		t.Errorf("expected 2 notifications and 0, got %d and %v", runs, n.Value())
	}
}
