// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinlib

import hw "github.com/db47h/pinsim"

// FuncOut is the output side of a peripheral function: its intended output
// level and its output enable.
//
type FuncOut struct {
	Value *hw.Signal
	// OE may be nil for functions that are always enabled.
	OE *hw.Signal
}

// NewFuncOut returns a FuncOut with two new signals named name and name.oe,
// both initially low.
//
func NewFuncOut(c *hw.Circuit, name string) *FuncOut {
	return &FuncOut{
		Value: c.NewSignal(name, false),
		OE:    c.NewSignal(name+".oe", false),
	}
}

// Name returns the name of the value signal.
//
func (f *FuncOut) Name() string { return f.Value.Name() }

// OEOverride replaces the output enable of the selected function.
//
type OEOverride struct {
	// Source provides the output enable. If nil, the selected function's own
	// output enable is used.
	Source hw.Source
	// Invert inverts the output enable, overridden or not.
	Invert bool
}

// OutMux is an output multiplexer: it mirrors the value and output enable of
// one peripheral function onto a pin's output lines.
//
// Codes 0 to len(menu)-1 select menu entries. The three following codes are
// synthetic sources: force low, force high and float. Any other code, or a
// nil menu entry, floats.
//
//	Inputs: menu[code].Value, menu[code].OE
//	Outputs: out, oe
//	Function: out = menu[sel].Value != invert; oe = menu[sel].OE
//
type OutMux struct {
	c        *hw.Circuit
	name     string
	out      *hw.Signal
	oe       *hw.Signal
	menu     []*FuncOut
	code     int
	invert   bool
	override OEOverride
	proc     *hw.Process
}

// NewOutMux returns a new output multiplexer. It initially floats.
//
func NewOutMux(c *hw.Circuit, name string, out, oe *hw.Signal, menu []*FuncOut) *OutMux {
	m := &OutMux{c: c, name: name, out: out, oe: oe, menu: menu}
	m.code = m.Float()
	m.proc = c.Spawn(name+".mux", m.transfer)
	return m
}

// Name returns the mux name.
//
func (m *OutMux) Name() string { return m.name }

// Out returns the output value line.
//
func (m *OutMux) Out() *hw.Signal { return m.out }

// OE returns the output enable line.
//
func (m *OutMux) OE() *hw.Signal { return m.oe }

// ForceLow returns the code of the synthetic force low source.
//
func (m *OutMux) ForceLow() int { return len(m.menu) }

// ForceHigh returns the code of the synthetic force high source.
//
func (m *OutMux) ForceHigh() int { return len(m.menu) + 1 }

// Float returns the code of the synthetic float source.
//
func (m *OutMux) Float() int { return len(m.menu) + 2 }

// Selected returns the selected code.
//
func (m *OutMux) Selected() int { return m.code }

// Inverted returns true if the output value is inverted.
//
func (m *OutMux) Inverted() bool { return m.invert }

// OEOverride returns the current output enable override.
//
func (m *OutMux) OEOverride() OEOverride { return m.override }

func (m *OutMux) source() *FuncOut {
	if m.code >= 0 && m.code < len(m.menu) {
		return m.menu[m.code]
	}
	return nil
}

func (m *OutMux) watchSource(watch bool) {
	f := m.source()
	if f == nil {
		return
	}
	if watch {
		f.Value.Watch(m.proc)
		if f.OE != nil {
			f.OE.Watch(m.proc)
		}
		return
	}
	f.Value.Unwatch(m.proc)
	if f.OE != nil {
		f.OE.Unwatch(m.proc)
	}
}

// Select selects the source at code. Any code is accepted.
//
func (m *OutMux) Select(code int) {
	if code == m.code {
		return
	}
	m.watchSource(false)
	m.code = code
	m.watchSource(true)
	m.proc.Trigger()
}

// SetInvert enables or disables output value inversion. Inversion does not
// apply when floating.
//
func (m *OutMux) SetInvert(invert bool) {
	if invert != m.invert {
		m.invert = invert
		m.proc.Trigger()
	}
}

// SetOEOverride sets the output enable override. It does not apply when
// floating.
//
func (m *OutMux) SetOEOverride(o OEOverride) {
	if o == m.override {
		return
	}
	if m.override.Source != nil {
		m.override.Source.Unwatch(m.proc)
	}
	m.override = o
	if o.Source != nil {
		o.Source.Watch(m.proc)
	}
	m.proc.Trigger()
}

func (m *OutMux) transfer() {
	var v, oe bool
	switch f := m.source(); {
	case f != nil:
		v = f.Value.Read()
		oe = f.OE == nil || f.OE.Read()
	case m.code == m.ForceLow():
		oe = true
	case m.code == m.ForceHigh():
		v, oe = true, true
	default:
		m.out.Write(false)
		m.oe.Write(false)
		return
	}
	if m.override.Source != nil {
		oe = m.override.Source.Bool()
	}
	m.out.Write(v != m.invert)
	m.oe.Write(oe != m.override.Invert)
}
