// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim

import (
	"container/heap"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultDeltaLimit is the default maximum number of delta cycles Settle will
// run at a single point in simulated time.
//
const DefaultDeltaLimit = 10000

// ErrDeltaLimit is returned when a circuit does not settle within its delta
// cycle limit, usually because of a combinational loop.
//
var ErrDeltaLimit = errors.New("delta cycle limit exceeded")

// A Process is a named reaction to signal changes or events. Its function runs
// once during the first delta cycle after it is spawned, then once per delta
// cycle in which it has been triggered.
//
type Process struct {
	c      *Circuit
	name   string
	fn     func()
	queued bool
}

// Name returns the process name.
//
func (p *Process) Name() string { return p.name }

// Trigger schedules p to run during the next evaluation phase. Triggering an
// already queued process has no effect.
//
func (p *Process) Trigger() {
	if p.queued {
		return
	}
	p.queued = true
	p.c.runnable = append(p.c.runnable, p)
}

// watchList is a set of processes sensitive to a signal, net or event.
type watchList []*Process

func (w *watchList) add(p *Process) {
	for _, q := range *w {
		if q == p {
			return
		}
	}
	*w = append(*w, p)
}

func (w *watchList) remove(p *Process) {
	l := *w
	for i, q := range l {
		if q == p {
			copy(l[i:], l[i+1:])
			l[len(l)-1] = nil
			*w = l[:len(l)-1]
			return
		}
	}
}

func (w watchList) trigger() {
	for _, p := range w {
		p.Trigger()
	}
}

// An Event is a notification processes can wait on.
//
type Event struct {
	c       *Circuit
	name    string
	waiters watchList
	pending bool
}

// Name returns the event name.
//
func (e *Event) Name() string { return e.name }

// Watch makes p sensitive to e.
//
func (e *Event) Watch(p *Process) { e.waiters.add(p) }

// Unwatch removes p from the processes sensitive to e.
//
func (e *Event) Unwatch(p *Process) { e.waiters.remove(p) }

// Notify issues a delta notification: processes waiting on e run in the next
// delta cycle. Several notifications within the same delta cycle are merged.
//
func (e *Event) Notify() {
	if e.pending {
		return
	}
	e.pending = true
	e.c.notified = append(e.c.notified, e)
}

// NotifyAfter issues a timed notification d after the current simulated time.
//
func (e *Event) NotifyAfter(d time.Duration) {
	e.c.schedule(d, e.Notify)
}

// updater is implemented by channels with buffered writes (signals and nets).
type updater interface {
	update()
}

type timed struct {
	at  time.Duration
	seq uint64
	fn  func()
}

type timedQueue []*timed

func (q timedQueue) Len() int { return len(q) }
func (q timedQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}
func (q timedQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *timedQueue) Push(x interface{}) { *q = append(*q, x.(*timed)) }
func (q *timedQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Circuit is a runnable discrete event simulation.
//
// Processes run in delta cycles: all runnable processes are evaluated first
// while their writes to signals and nets are buffered, then pending writes are
// committed, then processes sensitive to changed values or notified events are
// queued for the next delta cycle. Simulated time only advances once no delta
// cycle is pending.
//
// A Circuit is not safe for concurrent use.
//
type Circuit struct {
	r0       []*Process // runnable processes for the current delta
	runnable []*Process // processes triggered for the next delta
	updates  []updater
	notified []*Event
	timed    timedQueue
	seq      uint64

	procs int
	now   time.Duration
	steps uint64
	limit int

	log  zerolog.Logger
	diag *Diag
}

// An Option configures a Circuit.
//
type Option func(c *Circuit)

// WithLogger sets the circuit's logger.
//
func WithLogger(log zerolog.Logger) Option {
	return func(c *Circuit) { c.log = log }
}

// WithDeltaLimit sets the maximum number of delta cycles per point in
// simulated time. Values <= 0 select DefaultDeltaLimit.
//
func WithDeltaLimit(n int) Option {
	return func(c *Circuit) { c.limit = n }
}

// WithDiag sets the diagnostics channel used by the circuit's components.
//
func WithDiag(d *Diag) Option {
	return func(c *Circuit) { c.diag = d }
}

// NewCircuit returns a new, empty circuit.
//
// Unless a logger is provided, the circuit does not log anything. Unless a
// diagnostics channel is provided, a new one is created that reports to the
// circuit's logger.
//
func NewCircuit(opts ...Option) *Circuit {
	c := &Circuit{log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	if c.limit <= 0 {
		c.limit = DefaultDeltaLimit
	}
	if c.diag == nil {
		c.diag = NewDiag(c.log)
	}
	return c
}

// Logger returns the circuit's logger.
//
func (c *Circuit) Logger() zerolog.Logger { return c.log }

// Diag returns the circuit's diagnostics channel.
//
func (c *Circuit) Diag() *Diag { return c.diag }

// Spawn creates a new process. fn will run during the next delta cycle, then
// whenever the process is triggered.
//
func (c *Circuit) Spawn(name string, fn func()) *Process {
	p := &Process{c: c, name: name, fn: fn}
	c.procs++
	p.Trigger()
	return p
}

// NewEvent returns a new event.
//
func (c *Circuit) NewEvent(name string) *Event {
	return &Event{c: c, name: name}
}

// Schedule arranges for fn to be called d after the current simulated time,
// before the delta cycles of that time point are run. Writes made by fn are
// buffered like any process write.
//
func (c *Circuit) Schedule(d time.Duration, fn func()) {
	c.schedule(d, fn)
}

func (c *Circuit) schedule(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	c.seq++
	heap.Push(&c.timed, &timed{at: c.now + d, seq: c.seq, fn: fn})
}

func (c *Circuit) requestUpdate(u updater) {
	c.updates = append(c.updates, u)
}

// Now returns the current simulated time.
//
func (c *Circuit) Now() time.Duration { return c.now }

// Steps returns the number of delta cycles run so far.
//
func (c *Circuit) Steps() uint64 { return c.steps }

// Size returns the number of processes in the circuit.
//
func (c *Circuit) Size() int { return c.procs }

// Pending returns true if a delta cycle is pending.
//
func (c *Circuit) Pending() bool {
	return len(c.runnable) > 0 || len(c.updates) > 0 || len(c.notified) > 0
}

// Step runs a single delta cycle.
//
func (c *Circuit) Step() {
	// evaluate
	c.r0, c.runnable = c.runnable, c.r0[:0]
	for _, p := range c.r0 {
		p.queued = false
	}
	for i, p := range c.r0 {
		p.fn()
		c.r0[i] = nil
	}

	// update
	ups := c.updates
	c.updates = nil
	for _, u := range ups {
		u.update()
	}

	// delta notifications
	evs := c.notified
	c.notified = nil
	for _, e := range evs {
		e.pending = false
		e.waiters.trigger()
	}

	c.steps++
	deltaCyclesTotal.Inc()
}

// Settle runs delta cycles until the circuit is stable and returns the number
// of cycles run. It fails with ErrDeltaLimit if the circuit is still unstable
// after the configured limit.
//
func (c *Circuit) Settle() (int, error) {
	n := 0
	for c.Pending() {
		if n >= c.limit {
			return n, errors.Wrapf(ErrDeltaLimit, "at %v after %d cycles", c.now, n)
		}
		c.Step()
		n++
	}
	return n, nil
}

// Run settles the circuit then advances simulated time by d, settling the
// circuit at every intermediate time point with scheduled work. A negative d
// is treated as zero.
//
func (c *Circuit) Run(d time.Duration) error {
	if d < 0 {
		d = 0
	}
	end := c.now + d
	if _, err := c.Settle(); err != nil {
		return err
	}
	for len(c.timed) > 0 && c.timed[0].at <= end {
		c.now = c.timed[0].at
		timeAdvancesTotal.Inc()
		for len(c.timed) > 0 && c.timed[0].at == c.now {
			t := heap.Pop(&c.timed).(*timed)
			t.fn()
		}
		if _, err := c.Settle(); err != nil {
			return err
		}
	}
	c.now = end
	return nil
}
