// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"strings"

	"github.com/pkg/errors"

	hw "github.com/db47h/pinsim"
	"github.com/db47h/pinsim/esp32"
	"github.com/db47h/pinsim/internal/assign"
	pl "github.com/db47h/pinsim/pinlib"
)

func parsePadFunctions(s string) (map[int]int, error) {
	ps, err := assign.Parse(s)
	if err != nil {
		return nil, errors.Wrap(err, "--pad-func")
	}
	if len(ps) == 0 {
		return nil, nil
	}
	r := make(map[int]int)
	for _, p := range ps {
		n, err := assign.Int(p.Key)
		if err != nil {
			return nil, errors.Wrap(err, "--pad-func")
		}
		fn, err := assign.Int(p.Value)
		if err != nil {
			var ok bool
			if fn, ok = esp32.LookupPadFunction(n, p.Value); !ok {
				return nil, errors.Errorf("--pad-func: pad %d has no function %s", n, p.Value)
			}
		}
		r[n] = fn
	}
	return r, nil
}

// parsePads parses a pad=variant list into pad overrides. The overridden pads
// keep their default capabilities, minus analog for digital variants.
func parsePads(s string) ([]esp32.PadOverride, error) {
	ps, err := assign.Parse(s)
	if err != nil {
		return nil, errors.Wrap(err, "--pad")
	}
	var r []esp32.PadOverride
	for _, p := range ps {
		n, err := assign.Int(p.Key)
		if err != nil {
			return nil, errors.Wrap(err, "--pad")
		}
		v, ok := pl.ParseVariant(strings.ToLower(p.Value))
		if !ok {
			return nil, errors.Errorf("--pad: unknown variant %s", p.Value)
		}
		caps := esp32.DefaultPad(n).Caps
		if !v.Analog() {
			caps &^= pl.CapAnalog
		}
		r = append(r, esp32.PadOverride{Pin: n, Variant: v, Caps: caps})
	}
	return r, nil
}

func inverted(s string) (string, bool) {
	if strings.HasPrefix(s, "!") {
		return s[1:], true
	}
	return s, false
}

func outputCode(s string) (int, error) {
	switch strings.ToLower(s) {
	case "gpio":
		return esp32.GPIOCode, nil
	case "high":
		return esp32.ForceHighCode, nil
	case "float":
		return esp32.FloatCode, nil
	}
	if n, err := assign.Int(s); err == nil {
		if n < 0 || n > esp32.MaxOutSel {
			return 0, errors.Errorf("invalid output function %d", n)
		}
		return n, nil
	}
	if sig, ok := esp32.LookupOutput(s); ok {
		return sig, nil
	}
	return 0, errors.Errorf("unknown output signal %s", s)
}

func inputSignal(s string) (int, error) {
	if n, err := assign.Int(s); err == nil {
		return n, nil
	}
	if sig, ok := esp32.LookupInput(s); ok {
		return sig, nil
	}
	return 0, errors.Errorf("unknown input signal %s", s)
}

func inputSel(s string, inv bool) (esp32.FuncInSel, error) {
	switch strings.ToLower(s) {
	case "low":
		return esp32.NewFuncInSel(esp32.ConstLow, inv, true), nil
	case "high":
		return esp32.NewFuncInSel(esp32.ConstHigh, inv, true), nil
	case "direct":
		return esp32.NewFuncInSel(0, inv, false), nil
	}
	n, err := assign.Int(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > esp32.MaxInSel {
		return 0, errors.Errorf("invalid input selection %d", n)
	}
	return esp32.NewFuncInSel(n, inv, true), nil
}

var driveValues = map[string]hw.Value{
	"0": hw.D0, "1": hw.D1, "L": hw.W0, "H": hw.W1, "Z": hw.Z, "X": hw.X,
}

// bits parses a pad=0|1 list into a register value.
func bits(s string) (uint64, error) {
	ps, err := assign.Parse(s)
	if err != nil {
		return 0, err
	}
	var r uint64
	for _, p := range ps {
		n, err := assign.Int(p.Key)
		if err != nil {
			return 0, err
		}
		if n < 0 || n >= esp32.NumPins {
			return 0, errors.Errorf("invalid pad %d", n)
		}
		b, err := assign.Bool(p.Value)
		if err != nil {
			return 0, err
		}
		if b {
			r |= 1 << uint(n)
		}
	}
	return r, nil
}

// configure applies register writes and external drives. Rejected writes are
// reported as anomalies and do not stop the simulation.
func (s *simulation) configure(opts options) error {
	m := s.m

	ps, err := assign.Parse(opts.fsel)
	if err != nil {
		return errors.Wrap(err, "--fsel")
	}
	for _, p := range ps {
		n, err := assign.Int(p.Key)
		if err != nil {
			return errors.Wrap(err, "--fsel")
		}
		v, inv := inverted(p.Value)
		code, err := outputCode(v)
		if err != nil {
			return errors.Wrap(err, "--fsel")
		}
		m.SelectOutput(n, code, inv, false, false)
	}

	out, err := bits(opts.out)
	if err != nil {
		return errors.Wrap(err, "--out")
	}
	en, err := bits(opts.enable)
	if err != nil {
		return errors.Wrap(err, "--enable")
	}
	m.ApplyOutputBits(out)
	m.ApplyEnableBits(en)

	if ps, err = assign.Parse(opts.insel); err != nil {
		return errors.Wrap(err, "--insel")
	}
	for _, p := range ps {
		sig, err := inputSignal(p.Key)
		if err != nil {
			return errors.Wrap(err, "--insel")
		}
		v, inv := inverted(p.Value)
		r, err := inputSel(v, inv)
		if err != nil {
			return errors.Wrap(err, "--insel")
		}
		m.SetFuncInSel(sig, r)
	}

	if ps, err = assign.Parse(opts.drive); err != nil {
		return errors.Wrap(err, "--drive")
	}
	for _, p := range ps {
		n, err := assign.Int(p.Key)
		if err != nil {
			return errors.Wrap(err, "--drive")
		}
		pin := m.Pin(n)
		if pin == nil {
			return errors.Errorf("--drive: invalid pad %d", n)
		}
		v, ok := driveValues[strings.ToUpper(p.Value)]
		if !ok {
			return errors.Errorf("--drive: invalid value %s", p.Value)
		}
		pl.Attach(pin, pin.Name()+".ext").DriveValue(v)
	}
	return nil
}
