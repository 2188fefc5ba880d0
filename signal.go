// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim

// A Source is a digital value processes can read and wait on.
//
type Source interface {
	// Bool returns the current digital value.
	Bool() bool
	// Watch makes p sensitive to value changes.
	Watch(p *Process)
	// Unwatch removes p from the processes sensitive to value changes.
	Unwatch(p *Process)
}

// Const is a constant Source. Watching it has no effect.
//
type Const bool

// Bool implements Source.
//
func (c Const) Bool() bool { return bool(c) }

// Watch implements Source.
//
func (Const) Watch(*Process) {}

// Unwatch implements Source.
//
func (Const) Unwatch(*Process) {}

// A Signal is a plain digital line with a single logical writer at a time.
//
// Writes are buffered until the update phase of the current delta cycle. If
// several writes happen in the same cycle, the last one wins.
//
type Signal struct {
	c        *Circuit
	name     string
	cur      bool
	next     bool
	pending  bool
	watchers watchList
	posedge  watchList
	negedge  watchList
	changed  *Event
}

// NewSignal returns a new signal with the given initial value.
//
func (c *Circuit) NewSignal(name string, init bool) *Signal {
	return &Signal{c: c, name: name, cur: init, next: init}
}

// Name returns the signal name.
//
func (s *Signal) Name() string { return s.name }

// Read returns the committed value of s.
//
func (s *Signal) Read() bool { return s.cur }

// Bool implements Source.
//
func (s *Signal) Bool() bool { return s.cur }

// Write buffers a new value for s.
//
func (s *Signal) Write(v bool) {
	s.next = v
	if !s.pending {
		s.pending = true
		s.c.requestUpdate(s)
	}
}

// Watch implements Source.
//
func (s *Signal) Watch(p *Process) { s.watchers.add(p) }

// Unwatch implements Source.
//
func (s *Signal) Unwatch(p *Process) { s.watchers.remove(p) }

// WatchPosedge makes p sensitive to false to true transitions of s.
//
func (s *Signal) WatchPosedge(p *Process) { s.posedge.add(p) }

// WatchNegedge makes p sensitive to true to false transitions of s.
//
func (s *Signal) WatchNegedge(p *Process) { s.negedge.add(p) }

// Changed returns an event notified on every value change of s.
//
func (s *Signal) Changed() *Event {
	if s.changed == nil {
		s.changed = s.c.NewEvent(s.name + ".changed")
	}
	return s.changed
}

func (s *Signal) update() {
	s.pending = false
	if s.next == s.cur {
		return
	}
	s.cur = s.next
	s.watchers.trigger()
	if s.cur {
		s.posedge.trigger()
	} else {
		s.negedge.trigger()
	}
	if s.changed != nil {
		s.changed.waiters.trigger()
	}
}

func (s *Signal) String() string {
	if s.cur {
		return s.name + "=1"
	}
	return s.name + "=0"
}
