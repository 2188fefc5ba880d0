// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim

// A Driver is a single contribution to a Net.
//
type Driver struct {
	// ID identifies the driver. Any comparable value will do; pins use
	// themselves.
	ID    interface{}
	Value Value
}

type netOp struct {
	id      interface{}
	v       Value
	release bool
}

// A Net is a shared wire with any number of drivers.
//
// The observed value is the resolution of all driver contributions together
// with an implicit floating (HighZ) default. Contributions are buffered until
// the update phase of the current delta cycle and watchers are triggered only
// when the resolved value changes.
//
type Net struct {
	c        *Circuit
	name     string
	drivers  []Driver
	index    map[interface{}]int
	ops      []netOp
	value    Value
	watchers watchList
	changed  *Event
	scratch  []Value
}

// NewNet returns a new floating net.
//
func (c *Circuit) NewNet(name string) *Net {
	return &Net{
		c:     c,
		name:  name,
		index: make(map[interface{}]int),
		value: Z,
	}
}

// Name returns the net name.
//
func (n *Net) Name() string { return n.name }

// Value returns the resolved value of n.
//
func (n *Net) Value() Value { return n.value }

// Bool implements Source. Strong and weak high levels read as true, anything
// else reads as false.
//
func (n *Net) Bool() bool {
	b, _ := n.value.Bool()
	return b
}

// Drive buffers a contribution of driver id.
//
func (n *Net) Drive(id interface{}, v Value) {
	n.stage(netOp{id: id, v: v})
}

// Release buffers the removal of driver id.
//
func (n *Net) Release(id interface{}) {
	n.stage(netOp{id: id, release: true})
}

func (n *Net) stage(op netOp) {
	if len(n.ops) == 0 {
		n.c.requestUpdate(n)
	}
	n.ops = append(n.ops, op)
}

// Drivers returns a snapshot of the committed driver contributions in the
// order drivers first drove n.
//
func (n *Net) Drivers() []Driver {
	ds := make([]Driver, len(n.drivers))
	copy(ds, n.drivers)
	return ds
}

// Contribution returns the committed contribution of driver id.
//
func (n *Net) Contribution(id interface{}) (Value, bool) {
	i, ok := n.index[id]
	if !ok {
		return Z, false
	}
	return n.drivers[i].Value, true
}

// Watch implements Source.
//
func (n *Net) Watch(p *Process) { n.watchers.add(p) }

// Unwatch implements Source.
//
func (n *Net) Unwatch(p *Process) { n.watchers.remove(p) }

// Changed returns an event notified on every change of the resolved value.
//
func (n *Net) Changed() *Event {
	if n.changed == nil {
		n.changed = n.c.NewEvent(n.name + ".changed")
	}
	return n.changed
}

func (n *Net) apply(op netOp) {
	i, ok := n.index[op.id]
	switch {
	case op.release && ok:
		copy(n.drivers[i:], n.drivers[i+1:])
		n.drivers = n.drivers[:len(n.drivers)-1]
		delete(n.index, op.id)
		for j := i; j < len(n.drivers); j++ {
			n.index[n.drivers[j].ID] = j
		}
	case op.release:
	case ok:
		n.drivers[i].Value = op.v
	default:
		n.index[op.id] = len(n.drivers)
		n.drivers = append(n.drivers, Driver{op.id, op.v})
	}
}

func (n *Net) update() {
	for _, op := range n.ops {
		n.apply(op)
	}
	n.ops = n.ops[:0]

	vs := append(n.scratch[:0], Z)
	for _, d := range n.drivers {
		vs = append(vs, d.Value)
	}
	n.scratch = vs
	v, err := Resolve(vs...)
	if err != nil {
		// only reachable with a corrupted driver value.
		n.c.log.Error().Err(err).Str("net", n.name).Msg("Net resolution failed")
		v = X
	}
	netResolutionsTotal.Inc()
	if v.Level == Undefined && len(n.drivers) > 1 {
		contention := true
		for _, d := range n.drivers {
			if d.Value.Level == Undefined {
				contention = false
				break
			}
		}
		if contention {
			netContentionsTotal.Inc()
		}
	}
	if v == n.value {
		return
	}
	n.value = v
	n.watchers.trigger()
	if n.changed != nil {
		n.changed.waiters.trigger()
	}
}

func (n *Net) String() string {
	return n.name + "=" + n.value.String()
}
