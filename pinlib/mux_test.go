// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinlib_test

import (
	"testing"

	hw "github.com/db47h/pinsim"
	pl "github.com/db47h/pinsim/pinlib"
	"github.com/db47h/pinsim/pintest"
)

func TestInMux(t *testing.T) {
	c := pintest.NewCircuit(t)
	a := c.NewSignal("a", false)
	dest := c.NewSignal("dest", true)
	m := pl.NewInMux(c, "rx", dest, []hw.Source{a, nil, hw.Const(true)})
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, dest, false)
	if m.Selected() != -1 {
		t.Fatalf("initial selection %d", m.Selected())
	}

	if !m.Select(0) {
		t.Fatal("Select(0) failed")
	}
	a.Write(true)
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, dest, true)

	for _, code := range []int{1, 3, -1} {
		pintest.ExpectAnomalies(t, c.Diag(), hw.KindSelector, 1, func() {
			if m.Select(code) {
				t.Errorf("Select(%d) succeeded", code)
			}
		})
		if m.Selected() != 0 {
			t.Errorf("Select(%d) changed the selection to %d", code, m.Selected())
		}
	}
	// routing is kept
	a.Write(false)
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, dest, false)

	m.SetInvert(true)
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, dest, true)
	m.SetInvert(false)

	m.Select(2)
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, dest, true)
	if m.Selected() != 2 || m.Len() != 3 {
		t.Errorf("selected %d of %d", m.Selected(), m.Len())
	}
}

func TestInMux_sameDelta(t *testing.T) {
	c := pintest.NewCircuit(t)
	p := pl.NewPin(c, "P5", 5, pl.DigitalMulti, pl.CapDigital)
	rx := c.NewSignal("rx", false)
	m := pl.NewInMux(c, "rx", rx, []hw.Source{p.Net()})
	m.Select(0)
	pintest.Settle(t, c)
	start := c.Now()

	pl.Attach(p, "ext").DriveValue(hw.D1)
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, rx, true)
	if c.Now() != start {
		t.Errorf("simulated time advanced to %v", c.Now())
	}
}

func TestInMuxBank(t *testing.T) {
	c := pintest.NewCircuit(t)
	a := c.NewSignal("a", true)
	dests := []*hw.Signal{c.NewSignal("ch0", false), c.NewSignal("ch1", false)}
	b := pl.NewInMuxBank(c, "pcnt0", dests, []hw.Source{hw.Const(false), a})
	if b.Len() != 2 || b.Mux(2) != nil || b.Mux(-1) != nil {
		t.Fatalf("unexpected bank size %d", b.Len())
	}
	if b.Mux(1).Name() != "pcnt0.ch1" {
		t.Errorf("mux name %q", b.Mux(1).Name())
	}
	b.Select(0, 0)
	b.Select(1, 1)
	pintest.Settle(t, c)
	pintest.ExpectSignal(t, dests[0], false)
	pintest.ExpectSignal(t, dests[1], true)

	pintest.ExpectAnomalies(t, c.Diag(), hw.KindSelector, 2, func() {
		if b.Select(2, 0) {
			t.Error("Select on channel 2 succeeded")
		}
		if b.Select(0, 5) {
			t.Error("Select(0, 5) succeeded")
		}
	})
}

func TestOutMux(t *testing.T) {
	c := pintest.NewCircuit(t)
	f0 := pl.NewFuncOut(c, "f0")
	f1 := &pl.FuncOut{Value: c.NewSignal("f1", true)}
	out := c.NewSignal("out", false)
	oe := c.NewSignal("oe", false)
	m := pl.NewOutMux(c, "mux", out, oe, []*pl.FuncOut{f0, f1, nil})
	if m.ForceLow() != 3 || m.ForceHigh() != 4 || m.Float() != 5 || m.Selected() != m.Float() {
		t.Fatalf("unexpected synthetic codes %d %d %d, selected %d", m.ForceLow(), m.ForceHigh(), m.Float(), m.Selected())
	}

	check := func(v, e bool) {
		t.Helper()
		pintest.Settle(t, c)
		pintest.ExpectSignal(t, out, v)
		pintest.ExpectSignal(t, oe, e)
	}

	check(false, false)
	m.Select(0)
	check(false, false)
	f0.Value.Write(true)
	f0.OE.Write(true)
	check(true, true)
	m.Select(1) // no OE line: always enabled
	check(true, true)
	m.Select(m.ForceLow())
	check(false, true)
	m.Select(m.ForceHigh())
	check(true, true)

	// holes and unknown codes float regardless of the former selection
	for _, code := range []int{2, 6, 1000, -1} {
		m.Select(m.ForceHigh())
		check(true, true)
		m.Select(code)
		check(false, false)
	}

	m.Select(0)
	m.SetInvert(true)
	check(false, true)
	f0.Value.Write(false)
	check(true, true)
	m.SetInvert(false)

	en := c.NewSignal("en", false)
	m.SetOEOverride(pl.OEOverride{Source: en})
	check(false, false)
	en.Write(true)
	check(false, true)
	m.SetOEOverride(pl.OEOverride{Source: en, Invert: true})
	check(false, false)
	m.SetOEOverride(pl.OEOverride{})
	check(false, true)
	// the override is no longer watched
	en.Write(false)
	check(false, true)
}

func TestOutMux_driveThroughPin(t *testing.T) {
	c := pintest.NewCircuit(t)
	p := pl.NewPin(c, "P1", 1, pl.DigitalMulti, pl.CapDigital)
	tx := pl.NewFuncOut(c, "U0TXD")
	m := pl.NewOutMux(c, "P1.out", c.NewSignal("P1.o", false), c.NewSignal("P1.oe", false), []*pl.FuncOut{tx})
	if err := p.RegisterFunction(2, pl.FuncPort{Out: m.Out(), OE: m.OE()}); err != nil {
		t.Fatal(err)
	}
	p.SetDirection(pl.DirInout)
	p.SetFunction(pl.Alt(2))
	m.Select(0)
	tx.OE.Write(true)
	pintest.Settle(t, c)
	pintest.ExpectValue(t, p.Net(), hw.D0)

	m.Select(m.ForceHigh())
	pintest.Settle(t, c)
	pintest.ExpectValue(t, p.Net(), hw.D1)

	m.Select(42)
	pintest.Settle(t, c)
	pintest.ExpectValue(t, p.Net(), hw.Z)
}
