// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinlib

import hw "github.com/db47h/pinsim"

// InMux is an input multiplexer: it mirrors one of a fixed menu of sources
// onto a destination signal.
//
//	Inputs: menu[code]
//	Outputs: dest
//	Function: dest = menu[sel] != invert
//
type InMux struct {
	c      *hw.Circuit
	name   string
	dest   *hw.Signal
	menu   []hw.Source
	sel    int
	invert bool
	proc   *hw.Process
}

// NewInMux returns a new input multiplexer. nil entries in menu are holes
// that cannot be selected. The mux starts with no selection and holds dest
// low until Select is called.
//
func NewInMux(c *hw.Circuit, name string, dest *hw.Signal, menu []hw.Source) *InMux {
	m := &InMux{c: c, name: name, dest: dest, menu: menu, sel: -1}
	m.proc = c.Spawn(name+".mux", m.transfer)
	return m
}

// Name returns the mux name.
//
func (m *InMux) Name() string { return m.name }

// Dest returns the destination signal.
//
func (m *InMux) Dest() *hw.Signal { return m.dest }

// Len returns the menu size.
//
func (m *InMux) Len() int { return len(m.menu) }

// Selected returns the selected code, or -1 if nothing has been selected yet.
//
func (m *InMux) Selected() int { return m.sel }

// Inverted returns true if the mux inverts its output.
//
func (m *InMux) Inverted() bool { return m.invert }

// Select selects the source at index code. Out of range codes and holes are
// rejected with a selector anomaly and the current selection is kept.
//
func (m *InMux) Select(code int) bool {
	if code < 0 || code >= len(m.menu) || m.menu[code] == nil {
		m.c.Diag().Warn(hw.KindSelector, m.name, "invalid input selection %d", code)
		return false
	}
	if code == m.sel {
		return true
	}
	if m.sel >= 0 {
		m.menu[m.sel].Unwatch(m.proc)
	}
	m.sel = code
	m.menu[code].Watch(m.proc)
	m.proc.Trigger()
	return true
}

// SetInvert enables or disables output inversion.
//
func (m *InMux) SetInvert(invert bool) {
	if invert != m.invert {
		m.invert = invert
		m.proc.Trigger()
	}
}

func (m *InMux) transfer() {
	v := false
	if m.sel >= 0 {
		v = m.menu[m.sel].Bool()
	}
	m.dest.Write(v != m.invert)
}

// InMuxBank is a named group of input multiplexers sharing the same menu, like
// the channel inputs of a pulse counter unit.
//
type InMuxBank struct {
	c     *hw.Circuit
	name  string
	muxes []*InMux
}

// NewInMuxBank returns a bank with one mux per destination signal. Muxes are
// named after the bank and the destination signal.
//
func NewInMuxBank(c *hw.Circuit, name string, dests []*hw.Signal, menu []hw.Source) *InMuxBank {
	b := &InMuxBank{c: c, name: name, muxes: make([]*InMux, len(dests))}
	for i, d := range dests {
		b.muxes[i] = NewInMux(c, name+"."+d.Name(), d, menu)
	}
	return b
}

// Name returns the bank name.
//
func (b *InMuxBank) Name() string { return b.name }

// Len returns the number of muxes in the bank.
//
func (b *InMuxBank) Len() int { return len(b.muxes) }

// Mux returns the i-th mux of the bank, or nil if i is out of range.
//
func (b *InMuxBank) Mux(i int) *InMux {
	if i < 0 || i >= len(b.muxes) {
		return nil
	}
	return b.muxes[i]
}

// Select selects code on the i-th mux of the bank.
//
func (b *InMuxBank) Select(i, code int) bool {
	m := b.Mux(i)
	if m == nil {
		b.c.Diag().Warn(hw.KindSelector, b.name, "invalid channel %d", i)
		return false
	}
	return m.Select(code)
}
