// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/db47h/pinsim/pintest"
	pl "github.com/db47h/pinsim/pinlib"
	"github.com/rs/zerolog"
)

func testSimulation(t *testing.T, opts options) *simulation {
	t.Helper()
	s, err := newSimulation(opts, pintest.Logger(t, zerolog.WarnLevel))
	if err != nil {
		pintest.Trace(t, err)
		t.Fatal(err)
	}
	if err := s.Run(opts.run); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSimulation(t *testing.T) {
	s := testSimulation(t, options{
		enable: "2..3=1",
		out:    "2=1",
		fsel:   "4=!high",
		insel:  "U0RXD=2, U1RXD=!3",
		drive:  "5=H",
	})
	for n, want := range map[int]string{2: "1", 3: "0", 4: "0", 5: "H", 6: "Z"} {
		if v := s.m.Pin(n).Net().Value().String(); v != want {
			t.Errorf("pad %d: expected %s, got %s", n, want, v)
		}
	}
	pintest.ExpectSignal(t, s.m.Input(14), true)
	pintest.ExpectSignal(t, s.m.Input(17), true)

	var b strings.Builder
	s.Print(&b, false)
	if !strings.Contains(b.String(), "GPIO2") || strings.Contains(b.String(), "GPIO6 ") ||
		!strings.Contains(b.String(), "!U1RXD") {
		t.Errorf("unexpected output:\n%s", b.String())
	}
}

func TestSimulation_badOptions(t *testing.T) {
	for _, opts := range []options{
		{fsel: "4=NOPE"},
		{insel: "NOPE=1"},
		{out: "40=1"},
		{drive: "3=Q"},
		{padFunc: "3=U0TXD"},
		{padFunc: "36=1"},
		{pads: "2=quantum"},
		{pads: "13=digital", padFunc: "13=1"},
		{insel: "U0RXD=66"},
		{fsel: "4=600"},
	} {
		if _, err := newSimulation(opts, pintest.Logger(t, zerolog.WarnLevel)); err == nil {
			t.Errorf("%+v: no error", opts)
		}
	}
}

func TestSimulation_pads(t *testing.T) {
	s := testSimulation(t, options{pads: "2=digital, 4=analog-multi"})
	st := s.m.Pin(2).State()
	if st.Variant != "digital" || strings.Contains(st.Caps, "ANALOG") {
		t.Errorf("pad 2: unexpected variant %s, caps %s", st.Variant, st.Caps)
	}
	if st := s.m.Pin(4).State(); st.Variant != "analog-multi" {
		t.Errorf("pad 4: unexpected variant %s", st.Variant)
	}
}

func TestServer(t *testing.T) {
	s := testSimulation(t, options{padFunc: "1=U0TXD", enable: "2=1", fsel: "4=!HSPID"})
	srv := &server{sim: s, log: pintest.Logger(t, zerolog.WarnLevel)}
	h := srv.handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pins", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /pins: %d", rec.Code)
	}
	var states []pl.State
	if err := json.Unmarshal(rec.Body.Bytes(), &states); err != nil {
		t.Fatal(err)
	}
	if len(states) != 40 || states[1].Function != "FUNC0" || states[2].Value != "0" {
		t.Errorf("unexpected states %+v %+v", states[1], states[2])
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pins/4", nil))
	var d pinDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.Number != 4 || !d.Inverted || d.OEOverride || !strings.Contains(d.OutSel, "INV_SEL=true") {
		t.Errorf("unexpected pad 4 detail %+v", d)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pins/1", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.Functions[0] != "OUT:U0TXD" {
		t.Errorf("unexpected pad 1 functions %v", d.Functions)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pins/40", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /pins/40: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "pinsim_kernel_delta_cycles_total") {
		t.Error("missing kernel metrics")
	}
}
