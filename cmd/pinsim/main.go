// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command pinsim configures an ESP32 GPIO matrix from the command line, runs
// the simulation and prints the resulting pad states.
//
// Assignment lists are comma separated key=value pairs where keys and values
// may be ranges like 4..7:
//
//	pinsim --enable 2..4=1 --out 2=1 --fsel 4=HSPID --insel U0RXD=2 --run 1us
//
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	hw "github.com/db47h/pinsim"
	"github.com/db47h/pinsim/esp32"
	pl "github.com/db47h/pinsim/pinlib"
)

var maskAny = errors.WithStack

type options struct {
	level    string
	fsel     string
	out      string
	enable   string
	insel    string
	drive    string
	padFunc  string
	pads     string
	run      time.Duration
	httpAddr string
	strict   bool
	all      bool
}

func main() {
	var opts options
	pflag.StringVarP(&opts.level, "level", "l", "info", "Set log level")
	pflag.StringVar(&opts.fsel, "fsel", "", "Output function selection per pad (pad=signal|code|gpio|high|float, prefix ! to invert)")
	pflag.StringVar(&opts.out, "out", "", "GPIO_OUT bits per pad (pad=0|1)")
	pflag.StringVar(&opts.enable, "enable", "", "GPIO_ENABLE bits per pad (pad=0|1)")
	pflag.StringVar(&opts.insel, "insel", "", "Input selection per signal (signal=pad|low|high|direct, prefix ! to invert)")
	pflag.StringVar(&opts.drive, "drive", "", "External drive per pad (pad=0|1|L|H|Z|X)")
	pflag.StringVar(&opts.padFunc, "pad-func", "", "IO_MUX function per pad (pad=function|signal)")
	pflag.StringVar(&opts.pads, "pad", "", "Pad hardware override (pad=digital|digital-multi|analog|analog-multi)")
	pflag.DurationVar(&opts.run, "run", 0, "Simulated time to run after settling")
	pflag.StringVar(&opts.httpAddr, "http", "", "Serve pad states and metrics on this address")
	pflag.BoolVar(&opts.strict, "strict", false, "Report unmapped output functions")
	pflag.BoolVarP(&opts.all, "all", "a", false, "Print floating pads too")
	pflag.Parse()

	level, err := zerolog.ParseLevel(opts.level)
	if err != nil {
		Exitf("Invalid log level '%s': %v\n", opts.level, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	sim, err := newSimulation(opts, logger)
	if err != nil {
		Exitf("Failed to configure simulation: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sim.Run(opts.run); err != nil {
			return err
		}
		sim.Print(os.Stdout, opts.all)
		if opts.httpAddr == "" {
			cancel()
		}
		return nil
	})
	if opts.httpAddr != "" {
		srv := &server{addr: opts.httpAddr, sim: sim, log: logger}
		g.Go(func() error { return srv.Run(ctx) })
	}
	if err := g.Wait(); err != nil {
		Exitf("Simulation failed: %+v\n", err)
	}
}

// simulation is a configured matrix. All accesses go through mu.
type simulation struct {
	mu  sync.Mutex
	c   *hw.Circuit
	m   *esp32.Matrix
	log zerolog.Logger
}

func newSimulation(opts options, log zerolog.Logger) (*simulation, error) {
	cfg := esp32.Config{Strict: opts.strict}
	var err error
	if cfg.PadFunctions, err = parsePadFunctions(opts.padFunc); err != nil {
		return nil, err
	}
	if cfg.Pads, err = parsePads(opts.pads); err != nil {
		return nil, err
	}
	c := hw.NewCircuit(hw.WithLogger(log))
	m, err := esp32.NewMatrix(c, cfg)
	if err != nil {
		return nil, maskAny(err)
	}
	s := &simulation{c: c, m: m, log: log}
	if err := s.configure(opts); err != nil {
		return nil, err
	}
	return s, nil
}

// Run settles the circuit then runs it for d.
func (s *simulation) Run(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	if _, err := s.c.Settle(); err != nil {
		return maskAny(err)
	}
	if d > 0 {
		if err := s.c.Run(d); err != nil {
			return maskAny(err)
		}
	}
	s.log.Info().
		Str("deltas", humanize.Comma(int64(s.c.Steps()))).
		Str("processes", humanize.Comma(int64(s.c.Size()))).
		Dur("simulated", s.c.Now()).
		Int("anomalies", s.c.Diag().Total()).
		Msgf("Simulation done in %s", time.Since(start))
	return nil
}

func (s *simulation) Print(w io.Writer, all bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.m.Pins() {
		v := p.Net().Value()
		if v == hw.Z && !all {
			continue
		}
		fmt.Fprintf(w, "%-7s %-6v %-7v %v\n", p.Name(), p.Function(), p.Direction(), v)
	}
	for sig := 0; sig < esp32.NumSignals; sig++ {
		in := s.m.Input(sig)
		if in == nil {
			continue
		}
		if r := s.m.FuncInSel(sig); r.SigInSel() || all {
			name := in.Name()
			if s.m.InMux(sig).Inverted() {
				name = "!" + name
			}
			fmt.Fprintf(w, "%-14s %-5v %v\n", name, in.Read(), r)
		}
	}
}

func (s *simulation) states() []pl.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.m.Pins()
	r := make([]pl.State, len(ps))
	for i, p := range ps {
		r[i] = p.State()
	}
	return r
}

// pinDetail is the state of a pad along with its routing.
type pinDetail struct {
	pl.State
	Functions  map[int]string `json:"functions,omitempty"`
	OutSel     string         `json:"outSel"`
	Inverted   bool           `json:"inverted"`
	OEOverride bool           `json:"oeOverride"`
}

func (s *simulation) detail(n int) (pinDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.m.Pin(n)
	if p == nil {
		return pinDetail{}, false
	}
	mux := s.m.OutMux(n)
	return pinDetail{
		State:      p.State(),
		Functions:  esp32.PadFunctions(n),
		OutSel:     s.m.FuncOutSel(n).String(),
		Inverted:   mux.Inverted(),
		OEOverride: mux.OEOverride().Source != nil,
	}, true
}

// Exitf prints the given error message and exits with code 1.
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
