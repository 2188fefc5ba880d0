// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim

import (
	"fmt"
	"sync"

	"github.com/mattn/go-pubsub"
	"github.com/rs/zerolog"
)

// Kind classifies recoverable anomalies.
//
type Kind string

// Anomaly kinds.
//
const (
	// KindCapability is a request the pad hardware does not support.
	KindCapability Kind = "capability"
	// KindSelector is an illegal multiplexer code or pin index.
	KindSelector Kind = "selector"
	// KindSampling is a digital read of a value with no digital meaning.
	KindSampling Kind = "sampling"
)

// An Anomaly is a recoverable condition reported through a Diag.
//
type Anomaly struct {
	Kind    Kind
	Source  string
	Message string
}

// Diag is the out of band diagnostics channel of a circuit.
//
// Anomalies never change the control flow of the component reporting them:
// the component returns a safe default and the anomaly is logged, counted and
// published to subscribers. Subscribers are called asynchronously.
//
type Diag struct {
	log    zerolog.Logger
	mu     sync.Mutex
	counts map[Kind]int
	ps     *pubsub.PubSub
}

// NewDiag returns a new diagnostics channel logging to log.
//
func NewDiag(log zerolog.Logger) *Diag {
	return &Diag{
		log:    log.With().Str("component", "diag").Logger(),
		counts: make(map[Kind]int),
	}
}

// Warn reports an anomaly of the given kind raised by source.
//
func (d *Diag) Warn(kind Kind, source string, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.log.Warn().Str("kind", string(kind)).Str("source", source).Msg(msg)
	anomaliesTotal.WithLabelValues(string(kind)).Inc()

	d.mu.Lock()
	d.counts[kind]++
	ps := d.ps
	d.mu.Unlock()

	if ps != nil {
		ps.Pub(Anomaly{Kind: kind, Source: source, Message: msg})
	}
}

// Count returns the number of anomalies of the given kind reported so far.
//
func (d *Diag) Count(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[kind]
}

// Total returns the number of anomalies reported so far.
//
func (d *Diag) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.counts {
		n += c
	}
	return n
}

// Subscribe registers fn to be called for every future anomaly. fn is called
// from another goroutine. The returned function cancels the subscription.
//
func (d *Diag) Subscribe(fn func(Anomaly)) func() {
	d.mu.Lock()
	if d.ps == nil {
		d.ps = pubsub.New()
	}
	ps := d.ps
	d.mu.Unlock()

	ps.Sub(fn)
	return func() {
		ps.Leave(fn)
	}
}
