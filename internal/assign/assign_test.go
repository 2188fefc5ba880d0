// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package assign

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	td := []struct {
		in   string
		want []Pair
		err  bool
	}{
		{"", nil, false},
		{"4=HSPID", []Pair{{"4", "HSPID"}}, false},
		{" 4 = HSPID , U0RXD=5", []Pair{{"4", "HSPID"}, {"U0RXD", "5"}}, false},
		{"5..7=256", []Pair{{"5", "256"}, {"6", "256"}, {"7", "256"}}, false},
		{"8..9=0x3e..0x3f", []Pair{{"8", "62"}, {"9", "63"}}, false},
		{"0x10..0x11=1", []Pair{{"16", "1"}, {"17", "1"}}, false},
		{"4=1..2", nil, true},
		{"1..3=4..5", nil, true},
		{"3..1=0", nil, true},
		{"a..2=0", nil, true},
		{"=1", nil, true},
		{"4=", nil, true},
		{"4", nil, true},
		{"0..2000000000=1", nil, true},
		{"0..256=1", nil, true},
	}
	for _, d := range td {
		got, err := Parse(d.in)
		if (err != nil) != d.err {
			t.Errorf("%q: unexpected error status: %v", d.in, err)
			continue
		}
		if !reflect.DeepEqual(got, d.want) {
			t.Errorf("%q: expected %v, got %v", d.in, d.want, got)
		}
	}
}

func TestBool(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "0": false, "true": true, "false": false, "0x2": true} {
		got, err := Bool(in)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := Bool("maybe"); err == nil {
		t.Error("no error for invalid boolean")
	}
}

func TestParse_maxRange(t *testing.T) {
	ps, err := Parse("0..255=1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != MaxRange || ps[MaxRange-1].Key != "255" {
		t.Errorf("got %d pairs", len(ps))
	}
}
