// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package esp32 models the GPIO matrix and IO_MUX of an ESP32: the crossbar
// routing 40 pads to peripheral signals.
//
// Peripheral models drive the output side of their signals through
// Matrix.Output and read their inputs through Matrix.Input. Firmware models
// configure routing through the register accessors: SetFuncOutSel,
// SetFuncInSel, ApplyOutputBits and ApplyEnableBits.
//
package esp32

import (
	"strconv"

	hw "github.com/db47h/pinsim"
	pl "github.com/db47h/pinsim/pinlib"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const allPins = 1<<NumPins - 1

var reroutesTotal = hw.MustRegisterCounter("matrix",
	"reroutes_total",
	"Total number of GPIO matrix re-evaluations")

// Matrix is the GPIO crossbar. It owns all pads and multiplexers.
//
// Each pad has an output multiplexer selecting one peripheral output signal
// (or the GPIO registers) and each peripheral input signal has an input
// multiplexer selecting one pad, a constant, or the IO_MUX bypass line.
// Register writes are decoded by a routing process that runs in the delta
// cycle following the write.
//
type Matrix struct {
	c    *hw.Circuit
	cfg  Config
	log  zerolog.Logger
	diag *hw.Diag

	pins   [NumPins]*pl.Pin
	outMux [NumPins]*pl.OutMux
	enLine [NumPins]*hw.Signal
	outSel [NumPins]FuncOutSel

	outputs [NumSignals]*pl.FuncOut
	inputs  [NumSignals]*hw.Signal
	direct  [NumSignals]*hw.Signal
	inMux   [NumSignals]*pl.InMux
	inSel   [NumSignals]FuncInSel
	pcnt    [NumPCNT]*pl.InMuxBank

	output  Reg64
	enable  Reg64
	dirty   uint64
	reroute *hw.Event
	router  *hw.Process
}

// NewMatrix builds a new matrix in circuit c.
//
// Pads start as bidirectional if possible, input only otherwise, with their
// configured IO_MUX function. All pads select the GPIO output function with
// output and enable registers cleared, so they float. Input signals select
// their IO_MUX bypass line.
//
func NewMatrix(c *hw.Circuit, cfg Config) (*Matrix, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid matrix configuration")
	}
	m := &Matrix{
		c:    c,
		cfg:  cfg,
		log:  c.Logger().With().Str("component", "matrix").Logger(),
		diag: c.Diag(),
	}

	outMenu := make([]*pl.FuncOut, NumSignals)
	for i := range outMenu {
		if n := OutputName(i); n != "" {
			m.outputs[i] = pl.NewFuncOut(c, n)
			outMenu[i] = m.outputs[i]
		}
	}

	for n := range m.pins {
		pad := cfg.pad(n)
		name := PadName(n)
		m.pins[n] = pl.NewPin(c, name, n, pad.Variant, pad.Caps)
		m.enLine[n] = c.NewSignal(name+".enable", false)
		m.outMux[n] = pl.NewOutMux(c, name+".out",
			c.NewSignal(name+".o", false), c.NewSignal(name+".oe", false), outMenu)
		m.outSel[n] = NewFuncOutSel(GPIOCode, false, false, false)
	}

	if err := m.buildInputs(); err != nil {
		return nil, err
	}
	if err := m.buildPads(); err != nil {
		return nil, err
	}

	m.reroute = c.NewEvent("matrix.reroute")
	m.router = c.Spawn("matrix.route", m.route)
	m.reroute.Watch(m.router)
	m.dirty = allPins
	m.log.Debug().Int("processes", c.Size()).Msg("Matrix ready")
	return m, nil
}

func (m *Matrix) inputMenu(direct hw.Source) []hw.Source {
	menu := make([]hw.Source, DirectCode+1)
	for n, p := range m.pins {
		menu[n] = p.Net()
	}
	menu[ConstLow] = hw.Const(false)
	menu[ConstHigh] = hw.Const(true)
	menu[DirectCode] = direct
	return menu
}

func (m *Matrix) buildInputs() error {
	// pulse counter inputs have no IO_MUX function: their bypass line is
	// tied low.
	pcntMenu := m.inputMenu(hw.Const(false))
	for u := range m.pcnt {
		dests := make([]*hw.Signal, len(pcntSignals))
		for k := range dests {
			sig := PCNTSignal(u, k)
			m.inputs[sig] = m.c.NewSignal(InputName(sig), false)
			dests[k] = m.inputs[sig]
		}
		m.pcnt[u] = pl.NewInMuxBank(m.c, "PCNT"+strconv.Itoa(u), dests, pcntMenu)
		for k := range dests {
			m.inMux[PCNTSignal(u, k)] = m.pcnt[u].Mux(k)
		}
	}

	for sig := range m.inputs {
		name := InputName(sig)
		if name == "" || m.inputs[sig] != nil {
			continue
		}
		m.inputs[sig] = m.c.NewSignal(name, false)
		m.direct[sig] = m.c.NewSignal(name+".direct", false)
		m.inMux[sig] = pl.NewInMux(m.c, name+".in", m.inputs[sig], m.inputMenu(m.direct[sig]))
	}

	for sig, mux := range m.inMux {
		if mux != nil && !mux.Select(DirectCode) {
			return errors.Errorf("input signal %d: cannot select bypass line", sig)
		}
	}
	return nil
}

func (m *Matrix) buildPads() error {
	for n, p := range m.pins {
		if p.Variant().Multi() {
			mux := m.outMux[n]
			if err := p.RegisterFunction(MatrixFunc, pl.FuncPort{Out: mux.Out(), OE: mux.OE()}); err != nil {
				return err
			}
			for fn, pf := range ioMuxTable[n] {
				var port pl.FuncPort
				if pf.out {
					o := m.outputs[pf.sig]
					port.Out, port.OE = o.Value, o.OE
				}
				if pf.in {
					port.In = m.direct[pf.sig]
				}
				if err := p.RegisterFunction(fn, port); err != nil {
					return err
				}
			}
		}

		switch caps := p.Caps(); {
		case caps.Has(pl.CapInout):
			p.SetDirection(pl.DirInout)
		case caps.Has(pl.CapInput):
			p.SetDirection(pl.DirInput)
		}
		if p.Variant().Multi() && !m.SetPadFunction(n, m.cfg.padFunction(n)) {
			return errors.Errorf("pad %d: cannot select function %d", n, m.cfg.padFunction(n))
		}
	}
	return nil
}

// badPin reports an invalid pad number.
func (m *Matrix) badPin(n int) bool {
	if n < 0 || n >= NumPins {
		m.diag.Warn(hw.KindSelector, "matrix", "invalid pin %d", n)
		return true
	}
	return false
}

// Circuit returns the circuit the matrix belongs to.
//
func (m *Matrix) Circuit() *hw.Circuit { return m.c }

// Pin returns pad n, or nil if there is no such pad.
//
func (m *Matrix) Pin(n int) *pl.Pin {
	if n < 0 || n >= NumPins {
		return nil
	}
	return m.pins[n]
}

// Pins returns all pads.
//
func (m *Matrix) Pins() []*pl.Pin {
	ps := make([]*pl.Pin, NumPins)
	copy(ps, m.pins[:])
	return ps
}

// Output returns the output lines of peripheral output signal sig, or nil if
// there is no such signal.
//
func (m *Matrix) Output(sig int) *pl.FuncOut {
	if sig < 0 || sig >= NumSignals {
		return nil
	}
	return m.outputs[sig]
}

// Input returns the line feeding peripheral input signal sig, or nil if there
// is no such signal.
//
func (m *Matrix) Input(sig int) *hw.Signal {
	if sig < 0 || sig >= NumSignals {
		return nil
	}
	return m.inputs[sig]
}

// Direct returns the IO_MUX bypass line of input signal sig, or nil if there
// is none.
//
func (m *Matrix) Direct(sig int) *hw.Signal {
	if sig < 0 || sig >= NumSignals {
		return nil
	}
	return m.direct[sig]
}

// InMux returns the input multiplexer of input signal sig, or nil if there is
// no such signal.
//
func (m *Matrix) InMux(sig int) *pl.InMux {
	if sig < 0 || sig >= NumSignals {
		return nil
	}
	return m.inMux[sig]
}

// OutMux returns the output multiplexer of pad n, or nil if there is no such
// pad.
//
func (m *Matrix) OutMux(n int) *pl.OutMux {
	if n < 0 || n >= NumPins {
		return nil
	}
	return m.outMux[n]
}

// PCNT returns the input multiplexers of pulse counter unit u, in PCNTSignal
// order, or nil if there is no such unit.
//
func (m *Matrix) PCNT(u int) *pl.InMuxBank {
	if u < 0 || u >= NumPCNT {
		return nil
	}
	return m.pcnt[u]
}

// OutputReg returns the GPIO_OUT register image.
//
func (m *Matrix) OutputReg() *Reg64 { return &m.output }

// EnableReg returns the GPIO_ENABLE register image.
//
func (m *Matrix) EnableReg() *Reg64 { return &m.enable }

// ApplyOutputBits updates the GPIO_OUT image with bits, folding in pending
// set and clear masks, and requests a re-route of the pads whose bit changed.
//
func (m *Matrix) ApplyOutputBits(bits uint64) {
	m.touch(m.output.update(bits))
}

// ApplyEnableBits updates the GPIO_ENABLE image with bits, folding in pending
// set and clear masks, and requests a re-route of the pads whose bit changed.
//
func (m *Matrix) ApplyEnableBits(bits uint64) {
	m.touch(m.enable.update(bits))
}

func (m *Matrix) touch(pins uint64) {
	pins &= allPins
	if pins == 0 {
		return
	}
	m.dirty |= pins
	m.reroute.Notify()
}

// SetFuncOutSel writes the output function register of pad n.
//
func (m *Matrix) SetFuncOutSel(n int, r FuncOutSel) bool {
	if m.badPin(n) {
		return false
	}
	m.outSel[n] = r
	m.touch(1 << uint(n))
	return true
}

// FuncOutSel returns the output function register of pad n.
//
func (m *Matrix) FuncOutSel(n int) FuncOutSel {
	if m.badPin(n) {
		return 0
	}
	return m.outSel[n]
}

// SetFuncInSel writes the input function register of input signal sig. If
// the selection is invalid, the register and the routing are left unchanged.
//
func (m *Matrix) SetFuncInSel(sig int, r FuncInSel) bool {
	mux := m.InMux(sig)
	if mux == nil {
		m.diag.Warn(hw.KindSelector, "matrix", "invalid input signal %d", sig)
		return false
	}
	if !mux.Select(r.code()) {
		return false
	}
	mux.SetInvert(r.InvSel())
	m.inSel[sig] = r
	return true
}

// SelectOutput writes the output function register of pad n from its
// unpacked fields. Codes above MaxOutSel are rejected with a selector warning
// instead of being truncated.
//
func (m *Matrix) SelectOutput(n, code int, inv, oenSel, oenInv bool) bool {
	if code < 0 || code > MaxOutSel {
		m.diag.Warn(hw.KindSelector, PadName(n), "invalid output function %d", code)
		return false
	}
	return m.SetFuncOutSel(n, NewFuncOutSel(code, inv, oenSel, oenInv))
}

// SelectInput routes input signal sig through the GPIO matrix from sel, a pad
// number, ConstLow or ConstHigh. Selections above MaxInSel are rejected with a
// selector warning instead of being truncated.
//
func (m *Matrix) SelectInput(sig, sel int, inv bool) bool {
	if sel < 0 || sel > MaxInSel {
		m.diag.Warn(hw.KindSelector, "matrix", "invalid input selection %d for signal %d", sel, sig)
		return false
	}
	return m.SetFuncInSel(sig, NewFuncInSel(sel, inv, true))
}

// FuncInSel returns the input function register of input signal sig.
//
func (m *Matrix) FuncInSel(sig int) FuncInSel {
	if sig < 0 || sig >= NumSignals {
		return 0
	}
	return m.inSel[sig]
}

// route decodes the registers of all pads marked for re-routing.
func (m *Matrix) route() {
	for n := range m.pins {
		if m.dirty&(1<<uint(n)) != 0 {
			m.routePin(n)
		}
	}
	m.dirty = 0
	reroutesTotal.Inc()
}

func (m *Matrix) routePin(n int) {
	r := m.outSel[n]
	mux := m.outMux[n]
	en := m.enable.Bit(n)
	m.enLine[n].Write(en)

	code := r.OutSel()
	if code == GPIOCode {
		mux.SetInvert(false)
		mux.SetOEOverride(pl.OEOverride{})
		switch {
		case !en:
			mux.Select(mux.Float())
		case m.output.Bit(n):
			mux.Select(mux.ForceHigh())
		default:
			mux.Select(mux.ForceLow())
		}
		return
	}

	mux.SetInvert(r.InvSel())
	o := pl.OEOverride{Invert: r.OENInvSel()}
	if r.OENSel() {
		o.Source = m.enLine[n]
	}
	mux.SetOEOverride(o)
	if m.cfg.Strict && (code > FloatCode || code < NumSignals && m.outputs[code] == nil) {
		m.diag.Warn(hw.KindSelector, PadName(n), "output function %d is not mapped", code)
	}
	mux.Select(code)
}
