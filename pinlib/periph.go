// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinlib

import (
	"strconv"
	"time"

	hw "github.com/db47h/pinsim"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// External is a board level driver attached to a net. It implements
// gpio.PinIO so that periph.io device drivers can be used as test benches.
//
// Out drives the net strongly, In releases the drive and applies the
// requested pull as a weak driver. External is not safe for concurrent use:
// like the rest of the circuit, it must only be used from the goroutine
// running the simulation.
//
type External struct {
	c     *hw.Circuit
	name  string
	num   int
	net   *hw.Net
	pull  gpio.Pull
	edge  gpio.Edge
	out   bool
	level bool
	edges int
	proc  *hw.Process
}

var (
	_ gpio.PinIO  = (*External)(nil)
	_ pin.PinFunc = (*External)(nil)
)

// NewExternal returns a new external driver attached to net. It starts as a
// floating input.
//
func NewExternal(c *hw.Circuit, name string, num int, net *hw.Net) *External {
	e := &External{c: c, name: name, num: num, net: net, pull: gpio.Float}
	e.proc = c.Spawn(name+".edges", e.sample)
	net.Watch(e.proc)
	return e
}

// Attach returns a new external driver attached to the net of pin p.
//
func Attach(p *Pin, name string) *External {
	return NewExternal(p.c, name, p.Number(), p.Net())
}

func (e *External) sample() {
	b, _ := e.net.Value().Bool()
	if b == e.level {
		return
	}
	e.level = b
	switch {
	case e.edge == gpio.BothEdges,
		e.edge == gpio.RisingEdge && b,
		e.edge == gpio.FallingEdge && !b:
		e.edges++
	}
}

// String implements conn.Resource.
//
func (e *External) String() string {
	return e.name + "(" + strconv.Itoa(e.num) + ")"
}

// Halt implements conn.Resource. It releases the net.
//
func (e *External) Halt() error {
	e.out = false
	e.pull = gpio.Float
	e.net.Release(e)
	return nil
}

// Name implements pin.Pin.
//
func (e *External) Name() string { return e.name }

// Number implements pin.Pin.
//
func (e *External) Number() int { return e.num }

// Function implements pin.Pin.
//
func (e *External) Function() string { return string(e.Func()) }

// Func implements pin.PinFunc.
//
func (e *External) Func() pin.Func {
	if e.out {
		return gpio.OUT
	}
	if e.pull == gpio.Float {
		return gpio.FLOAT
	}
	return gpio.IN
}

// SupportedFuncs implements pin.PinFunc.
//
func (e *External) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT, gpio.FLOAT}
}

// SetFunc implements pin.PinFunc.
//
func (e *External) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return e.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT:
		return e.Out(gpio.Low)
	case gpio.FLOAT:
		return e.In(gpio.Float, gpio.NoEdge)
	}
	return errors.Errorf("%s: function %s not supported", e, f)
}

// In implements gpio.PinIn. It releases any strong drive, applies the
// requested pull and flushes pending edges.
//
func (e *External) In(pull gpio.Pull, edge gpio.Edge) error {
	switch pull {
	case gpio.PullNoChange:
	case gpio.Float, gpio.PullUp, gpio.PullDown:
		e.pull = pull
	default:
		return errors.Errorf("%s: invalid pull %v", e, pull)
	}
	e.out = false
	switch e.pull {
	case gpio.PullUp:
		e.net.Drive(e, hw.W1)
	case gpio.PullDown:
		e.net.Drive(e, hw.W0)
	default:
		e.net.Release(e)
	}
	e.edge = edge
	e.edges = 0
	return nil
}

// Read implements gpio.PinIn. Levels with no digital meaning read as Low and
// are reported as sampling anomalies.
//
func (e *External) Read() gpio.Level {
	v := e.net.Value()
	b, ok := v.Bool()
	if !ok {
		e.c.Diag().Warn(hw.KindSampling, e.name, "external read of %v", v)
	}
	return gpio.Level(b)
}

// WaitForEdge implements gpio.PinIn.
//
// Simulated time only advances when the circuit runs, so WaitForEdge never
// blocks: it returns true if edges were detected since the last call and
// ignores timeout.
//
func (e *External) WaitForEdge(timeout time.Duration) bool {
	if e.edges == 0 {
		return false
	}
	e.edges = 0
	return true
}

// Pull implements gpio.PinIn.
//
func (e *External) Pull() gpio.Pull { return e.pull }

// DefaultPull implements gpio.PinIn.
//
func (e *External) DefaultPull() gpio.Pull { return gpio.Float }

// Out implements gpio.PinOut.
//
func (e *External) Out(l gpio.Level) error {
	e.out = true
	e.net.Drive(e, hw.Drive(bool(l)))
	return nil
}

// PWM implements gpio.PinOut. It is not supported.
//
func (e *External) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.Errorf("%s: PWM not supported", e)
}

// DriveValue drives an arbitrary value onto the net, including weak levels,
// undefined or analog values.
//
func (e *External) DriveValue(v hw.Value) {
	e.out = v.Level != hw.HighZ
	e.net.Drive(e, v)
}
