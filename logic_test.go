// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim_test

import (
	"math/rand"
	"testing"
	"testing/quick"

	hw "github.com/db47h/pinsim"
	"github.com/pkg/errors"
)

var allValues = []hw.Value{hw.D0, hw.D1, hw.W0, hw.W1, hw.Z, hw.X, hw.AnalogValue(1.25)}

func mustResolve(t *testing.T, vs ...hw.Value) hw.Value {
	t.Helper()
	v, err := hw.Resolve(vs...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestResolve_empty(t *testing.T) {
	_, err := hw.Resolve()
	if errors.Cause(err) != hw.ErrNoDrivers {
		t.Fatalf("expected ErrNoDrivers, got %v", err)
	}
}

func TestResolve_invalid(t *testing.T) {
	_, err := hw.Resolve(hw.D0, hw.Value{Level: 42})
	if err == nil {
		t.Fatal("expected an error for an invalid level")
	}
}

func TestResolve_single(t *testing.T) {
	for _, v := range allValues {
		if r := mustResolve(t, v); r != v {
			t.Errorf("Resolve(%v) = %v", v, r)
		}
	}
}

func TestResolve_rules(t *testing.T) {
	a := hw.AnalogValue(0.5)
	td := []struct {
		name string
		in   []hw.Value
		out  hw.Value
	}{
		{"strong_beats_weak", []hw.Value{hw.D1, hw.W0}, hw.D1},
		{"strong_beats_z", []hw.Value{hw.D0, hw.Z}, hw.D0},
		{"strong_conflict", []hw.Value{hw.D0, hw.D1}, hw.X},
		{"weak_conflict", []hw.Value{hw.W0, hw.W1}, hw.X},
		{"equal_weak", []hw.Value{hw.W1, hw.W1}, hw.W1},
		{"equal_strong", []hw.Value{hw.D0, hw.D0}, hw.D0},
		{"floating", []hw.Value{hw.Z, hw.Z}, hw.Z},
		{"z_yields", []hw.Value{hw.Z, hw.W0}, hw.W0},
		{"analog_z", []hw.Value{a, hw.Z}, a},
		{"analog_digital", []hw.Value{a, hw.W1}, hw.X},
		{"analog_analog", []hw.Value{a, hw.AnalogValue(0.5)}, hw.X},
		{"undefined_absorbs", []hw.Value{hw.X, hw.Z}, hw.X},
		{"strong_over_weak_conflict", []hw.Value{hw.W0, hw.W1, hw.D1}, hw.D1},
		{"strong_over_weak_conflict_2", []hw.Value{hw.W1, hw.D0, hw.W0}, hw.D0},
		{"weak_conflict_z", []hw.Value{hw.W0, hw.Z, hw.W1}, hw.X},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			if r := mustResolve(t, d.in...); r != d.out {
				t.Errorf("Resolve(%v) = %v, expected %v", d.in, r, d.out)
			}
		})
	}
}

func TestCombine_commutative(t *testing.T) {
	for _, a := range allValues {
		for _, b := range allValues {
			if ab, ba := hw.Combine(a, b), hw.Combine(b, a); ab != ba {
				t.Errorf("Combine(%v, %v) = %v, Combine(%v, %v) = %v", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestCombine_matchesResolve(t *testing.T) {
	for _, a := range allValues {
		for _, b := range allValues {
			if c, r := hw.Combine(a, b), mustResolve(t, a, b); c != r {
				t.Errorf("Combine(%v, %v) = %v, Resolve = %v", a, b, c, r)
			}
		}
	}
}

// permute calls f with every permutation of vs.
func permute(vs []hw.Value, k int, f func([]hw.Value)) {
	if k == len(vs) {
		f(vs)
		return
	}
	for i := k; i < len(vs); i++ {
		vs[k], vs[i] = vs[i], vs[k]
		permute(vs, k+1, f)
		vs[k], vs[i] = vs[i], vs[k]
	}
}

// multisets calls f with every multiset of size n drawn from allValues.
func multisets(n int, start int, cur []hw.Value, f func([]hw.Value)) {
	if len(cur) == n {
		f(cur)
		return
	}
	for i := start; i < len(allValues); i++ {
		multisets(n, i, append(cur, allValues[i]), f)
	}
}

func TestResolve_orderIndependent(t *testing.T) {
	for n := 2; n <= 4; n++ {
		multisets(n, 0, nil, func(set []hw.Value) {
			vs := append([]hw.Value(nil), set...)
			want := mustResolve(t, vs...)
			permute(vs, 0, func(p []hw.Value) {
				if got := mustResolve(t, p...); got != want {
					t.Errorf("Resolve(%v) = %v, Resolve(%v) = %v", set, want, p, got)
				}
			})
		})
	}
}

func TestResolve_quick(t *testing.T) {
	f := func(seed int64, idx []uint8) bool {
		if len(idx) == 0 {
			return true
		}
		vs := make([]hw.Value, len(idx))
		for i, x := range idx {
			vs[i] = allValues[int(x)%len(allValues)]
		}
		want, err := hw.Resolve(vs...)
		if err != nil {
			return false
		}
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(vs), func(i, j int) { vs[i], vs[j] = vs[j], vs[i] })
		got, err := hw.Resolve(vs...)
		return err == nil && got == want
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestValue_Bool(t *testing.T) {
	td := []struct {
		v     hw.Value
		b, ok bool
	}{
		{hw.D0, false, true},
		{hw.D1, true, true},
		{hw.W0, false, true},
		{hw.W1, true, true},
		{hw.Z, false, false},
		{hw.X, false, false},
		{hw.AnalogValue(3.3), false, false},
	}
	for _, d := range td {
		b, ok := d.v.Bool()
		if b != d.b || ok != d.ok {
			t.Errorf("%v.Bool() = %v, %v; expected %v, %v", d.v, b, ok, d.b, d.ok)
		}
	}
}
