// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package pintest provides utility functions for testing pin fabrics.
//
package pintest

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	hw "github.com/db47h/pinsim"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// testWriter sends log output to a testing.TB.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Logger returns a logger writing to t at the given level.
//
func Logger(t testing.TB, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: testWriter{t}, NoColor: true}).
		Level(level).With().Timestamp().Logger()
}

// NewCircuit returns a new circuit logging warnings and errors to t.
//
func NewCircuit(t testing.TB, opts ...hw.Option) *hw.Circuit {
	return hw.NewCircuit(append([]hw.Option{hw.WithLogger(Logger(t, zerolog.WarnLevel))}, opts...)...)
}

// Trace logs the stack trace of err, if any.
//
func Trace(t testing.TB, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

// Settle settles c and fails t if it does not settle.
//
func Settle(t testing.TB, c *hw.Circuit) int {
	t.Helper()
	n, err := c.Settle()
	if err != nil {
		Trace(t, err)
		t.Fatal(err)
	}
	return n
}

// ExpectValue fails t if the resolved value of n is not v.
//
func ExpectValue(t testing.TB, n *hw.Net, v hw.Value) {
	t.Helper()
	if got := n.Value(); got != v {
		t.Errorf("%s: expected %v, got %v (drivers: %v)", n.Name(), v, got, n.Drivers())
	}
}

// ExpectSignal fails t if s does not read v.
//
func ExpectSignal(t testing.TB, s *hw.Signal, v bool) {
	t.Helper()
	if s.Read() != v {
		t.Errorf("%s: expected %v, got %v", s.Name(), v, s.Read())
	}
}

// ExpectAnomalies runs fn and fails t unless fn reported exactly n anomalies
// of the given kind on d.
//
func ExpectAnomalies(t testing.TB, d *hw.Diag, kind hw.Kind, n int, fn func()) {
	t.Helper()
	before := d.Count(kind)
	fn()
	if got := d.Count(kind) - before; got != n {
		t.Errorf("expected %d %s anomalies, got %d", n, kind, got)
	}
}

func randBits(r *rand.Rand, n int) uint64 {
	return r.Uint64() & (1<<uint(n) - 1)
}

// Sweep drives a circuit through combinations of n input bits. For each
// combination, set is called to apply the inputs, the circuit is settled, then
// check is called to verify the outputs.
//
// Up to 12 bits, all combinations are tried. Beyond that, all zeros, all ones
// and 4096 random combinations are tried.
//
func Sweep(t testing.TB, c *hw.Circuit, n int, set func(bits uint64), check func(bits uint64)) {
	t.Helper()
	if n <= 0 || n > 64 {
		t.Fatalf("invalid bit count %d", n)
	}
	run := func(bits uint64) {
		t.Helper()
		set(bits)
		Settle(t, c)
		check(bits)
	}

	start := time.Now()
	steps := c.Steps()
	iter := uint64(1) << 12
	if n <= 12 {
		for bits := uint64(0); bits < 1<<uint(n); bits++ {
			run(bits)
		}
		iter = 1 << uint(n)
	} else {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		run(0)
		run(^uint64(0) >> uint(64-n))
		for i := uint64(0); i < iter; i++ {
			run(randBits(r, n))
		}
	}
	t.Logf("%d processes. %d combinations, %d delta cycles in %v", c.Size(), iter, c.Steps()-steps, time.Since(start))
}
