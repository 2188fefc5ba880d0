// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package pinlib provides the pin models and signal multiplexers of a
// microcontroller pin fabric, built on top of pinsim.
//
// A Pin drives its own net according to its direction, pull, open drain and
// function settings. Output multiplexers select which peripheral output feeds
// a pin, input multiplexers select which pin (or constant) feeds a peripheral
// input. External adapts a net to the periph.io gpio.PinIO interface for board
// level drivers.
//
package pinlib

import (
	"strconv"

	hw "github.com/db47h/pinsim"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FuncPort is the set of lines an alternate function exposes to a pin.
//
type FuncPort struct {
	// Out is the function's intended output level. Input only functions
	// leave it nil.
	Out *hw.Signal
	// OE is the function's output enable. If nil, the output is enabled as
	// long as Out is set.
	OE *hw.Signal
	// In receives the level observed on the pin while the function is
	// selected. Output only functions leave it nil.
	In *hw.Signal
}

// Pin is a physical pin model.
//
// All four variants share the same implementation: the variant only decides
// whether alternate functions and analog mode are available. Configuration
// methods check the pin's capability mask. On violation they report a
// capability anomaly to the circuit's diagnostics channel, leave the pin
// unchanged and return false.
//
type Pin struct {
	c       *hw.Circuit
	name    string
	num     int
	variant Variant
	caps    Caps
	net     *hw.Net
	log     zerolog.Logger
	diag    *hw.Diag

	dir       Direction
	pullUp    bool
	pullDown  bool
	openDrain bool
	fn        Function
	value     bool
	funcs     map[int]FuncPort

	drive    *hw.Process
	feedback *hw.Process
}

// NewPin returns a new pin connected to a new net of the same name.
//
// The pin starts with function GPIO, pulls and open drain cleared, and
// direction DirNone.
//
func NewPin(c *hw.Circuit, name string, num int, v Variant, caps Caps) *Pin {
	p := &Pin{
		c:       c,
		name:    name,
		num:     num,
		variant: v,
		caps:    caps,
		net:     c.NewNet(name),
		log:     c.Logger().With().Str("pin", name).Logger(),
		diag:    c.Diag(),
		fn:      GPIO,
		funcs:   make(map[int]FuncPort),
	}
	p.drive = c.Spawn(name+".drive", p.evalDrive)
	if v.Multi() {
		p.feedback = c.Spawn(name+".feedback", p.evalFeedback)
		p.net.Watch(p.feedback)
	}
	return p
}

// Name returns the pin name.
//
func (p *Pin) Name() string { return p.name }

// Number returns the pin number.
//
func (p *Pin) Number() int { return p.num }

// Net returns the net the pin drives.
//
func (p *Pin) Net() *hw.Net { return p.net }

// Direction returns the pin direction.
//
func (p *Pin) Direction() Direction { return p.dir }

// Function returns the selected function.
//
func (p *Pin) Function() Function { return p.fn }

// Caps returns the capability mask.
//
func (p *Pin) Caps() Caps { return p.caps }

// Variant returns the pin variant.
//
func (p *Pin) Variant() Variant { return p.variant }

// PullUp returns true if the weak pull-up is enabled.
//
func (p *Pin) PullUp() bool { return p.pullUp }

// PullDown returns true if the weak pull-down is enabled.
//
func (p *Pin) PullDown() bool { return p.pullDown }

// OpenDrain returns true if the pin is in open drain mode.
//
func (p *Pin) OpenDrain() bool { return p.openDrain }

func (p *Pin) String() string {
	return p.name + "(" + strconv.Itoa(p.num) + ")"
}

func (p *Pin) reject(format string, args ...interface{}) bool {
	p.diag.Warn(hw.KindCapability, p.name, format, args...)
	return false
}

// SetDirection sets the pin direction.
//
func (p *Pin) SetDirection(d Direction) bool {
	if !p.caps.Has(dirCaps(d)) {
		return p.reject("direction %v not supported (caps %v)", d, p.caps)
	}
	p.dir = d
	p.log.Debug().Str("direction", d.String()).Msg("Set direction")
	p.drive.Trigger()
	return true
}

func (p *Pin) setFlag(flag *bool, v bool, c Caps, name string) bool {
	if !p.caps.Has(c) {
		if v {
			return p.reject("%s not supported", name)
		}
		return p.reject("cannot clear %s: not supported", name)
	}
	*flag = v
	p.log.Debug().Bool(name, v).Msg("Set pad flag")
	p.drive.Trigger()
	return true
}

// SetWeakPullUp enables the weak pull-up.
//
func (p *Pin) SetWeakPullUp() bool { return p.setFlag(&p.pullUp, true, CapPullUp, "pull-up") }

// SetWeakPullDown enables the weak pull-down.
//
func (p *Pin) SetWeakPullDown() bool { return p.setFlag(&p.pullDown, true, CapPullDown, "pull-down") }

// ClearWeakPullUp disables the weak pull-up.
//
func (p *Pin) ClearWeakPullUp() bool { return p.setFlag(&p.pullUp, false, CapPullUp, "pull-up") }

// ClearWeakPullDown disables the weak pull-down.
//
func (p *Pin) ClearWeakPullDown() bool {
	return p.setFlag(&p.pullDown, false, CapPullDown, "pull-down")
}

// SetOpenDrain enables open drain mode: the pin only actively drives low.
//
func (p *Pin) SetOpenDrain() bool { return p.setFlag(&p.openDrain, true, CapOpenDrain, "open-drain") }

// ClearOpenDrain selects push-pull mode.
//
func (p *Pin) ClearOpenDrain() bool {
	return p.setFlag(&p.openDrain, false, CapOpenDrain, "open-drain")
}

// RegisterFunction attaches the lines of alternate function n. Registering a
// function again replaces its lines.
//
func (p *Pin) RegisterFunction(n int, port FuncPort) error {
	if n < 0 {
		return errors.Errorf("pin %s: invalid function number %d", p.name, n)
	}
	sel, ok := p.fn.Alt()
	if ok && sel == n {
		p.unwatch(p.funcs[n])
	}
	p.funcs[n] = port
	if ok && sel == n {
		p.watch(port)
		p.drive.Trigger()
	}
	if p.feedback != nil {
		p.feedback.Trigger()
	}
	return nil
}

func (p *Pin) watch(port FuncPort) {
	if port.Out != nil {
		port.Out.Watch(p.drive)
	}
	if port.OE != nil {
		port.OE.Watch(p.drive)
	}
}

func (p *Pin) unwatch(port FuncPort) {
	if port.Out != nil {
		port.Out.Unwatch(p.drive)
	}
	if port.OE != nil {
		port.OE.Unwatch(p.drive)
	}
}

// SetFunction selects the pin function.
//
// Single function variants only accept GPIO. Multi function variants also
// accept Analog, if the pad is analog capable and can be disconnected
// (CapNone), and any alternate function with lines registered. Selecting
// Analog forces the direction to DirNone.
//
func (p *Pin) SetFunction(f Function) bool {
	n, alt := f.Alt()
	switch {
	case f == GPIO:
	case !p.variant.Multi():
		return p.reject("function %v on single function pin", f)
	case f == Analog:
		if !p.variant.Analog() || !p.caps.Has(CapAnalog|CapNone) {
			return p.reject("analog function not supported (caps %v)", p.caps)
		}
	case alt:
		if port, ok := p.funcs[n]; !ok || (port.Out == nil && port.In == nil) {
			return p.reject("function %v not registered", f)
		}
	default:
		return p.reject("invalid function %v", f)
	}

	if n, ok := p.fn.Alt(); ok {
		p.unwatch(p.funcs[n])
	}
	p.fn = f
	if alt {
		p.watch(p.funcs[n])
	}
	if f == Analog {
		p.dir = DirNone
	}
	p.log.Debug().Str("function", f.String()).Msg("Set function")
	p.drive.Trigger()
	if p.feedback != nil {
		p.feedback.Trigger()
	}
	return true
}

// SetValue sets the value the pin drives in GPIO mode.
//
func (p *Pin) SetValue(v bool) {
	p.value = v
	p.drive.Trigger()
}

// GetValue samples the pin.
//
// It returns false if the function is Analog or if the direction has no input
// path. Otherwise, strong and weak levels map to their digital value. A
// floating net reads as the configured pull, or as false with a sampling
// anomaly. Undefined and analog levels read as false with a sampling anomaly.
//
func (p *Pin) GetValue() bool {
	if p.fn == Analog || p.dir == DirOutput || p.dir == DirNone {
		return false
	}
	v := p.net.Value()
	if b, ok := v.Bool(); ok {
		return b
	}
	if v.Level == hw.HighZ {
		switch {
		case p.pullUp:
			return true
		case p.pullDown:
			return false
		}
	}
	p.diag.Warn(hw.KindSampling, p.name, "digital read of %v", v)
	return false
}

// ReadAnalog returns the analog magnitude on the pin's net. ok is false if
// the net does not carry an analog value.
//
func (p *Pin) ReadAnalog() (v float64, ok bool) {
	if !p.variant.Analog() || !p.caps.Has(CapAnalog) {
		return 0, p.reject("analog read not supported")
	}
	nv := p.net.Value()
	if nv.Level != hw.Analog {
		return 0, false
	}
	return nv.Mag, true
}

// driving returns true if the selected function actively drives the pin.
func (p *Pin) driving() bool {
	if p.dir != DirOutput && p.dir != DirInout {
		return false
	}
	if p.fn == GPIO {
		return true
	}
	n, ok := p.fn.Alt()
	if !ok {
		return false
	}
	port := p.funcs[n]
	if port.Out == nil {
		return false
	}
	return port.OE == nil || port.OE.Read()
}

func (p *Pin) intended() bool {
	if p.fn == GPIO {
		return p.value
	}
	if n, ok := p.fn.Alt(); ok {
		out := p.funcs[n].Out
		return out != nil && out.Read()
	}
	return false
}

// Contribution returns the value the pin currently intends to drive onto its
// net.
//
func (p *Pin) Contribution() hw.Value {
	if p.fn == Analog {
		return hw.Z
	}
	return driveValue(driveInputs{
		driving:   p.driving(),
		openDrain: p.openDrain,
		intended:  p.intended(),
		pullUp:    p.pullUp,
		pullDown:  p.pullDown,
	}, p.variant.Analog())
}

func (p *Pin) evalDrive() {
	p.net.Drive(p, p.Contribution())
}

// evalFeedback mirrors the observed level onto the selected function's input
// line. All other input lines are held low.
func (p *Pin) evalFeedback() {
	sel, alt := p.fn.Alt()
	level := false
	if alt && p.funcs[sel].In != nil {
		v := p.net.Value()
		if b, ok := v.Bool(); ok {
			level = b
		} else {
			p.diag.Warn(hw.KindSampling, p.name, "function %v sampled %v", p.fn, v)
		}
	}
	for n, port := range p.funcs {
		if port.In != nil {
			port.In.Write(alt && n == sel && level)
		}
	}
}

// State is a snapshot of a pin's configuration and electrical state.
//
type State struct {
	Name      string `json:"name"`
	Number    int    `json:"number"`
	Variant   string `json:"variant"`
	Caps      string `json:"caps"`
	Direction string `json:"direction"`
	Function  string `json:"function"`
	PullUp    bool   `json:"pullUp"`
	PullDown  bool   `json:"pullDown"`
	OpenDrain bool   `json:"openDrain"`
	Drive     string `json:"drive"`
	Value     string `json:"value"`
	Drivers   int    `json:"drivers"`
}

// State returns a snapshot of the pin state.
//
func (p *Pin) State() State {
	return State{
		Name:      p.name,
		Number:    p.num,
		Variant:   p.variant.String(),
		Caps:      p.caps.String(),
		Direction: p.dir.String(),
		Function:  p.fn.String(),
		PullUp:    p.pullUp,
		PullDown:  p.pullDown,
		OpenDrain: p.openDrain,
		Drive:     p.Contribution().String(),
		Value:     p.net.Value().String(),
		Drivers:   len(p.net.Drivers()),
	}
}
