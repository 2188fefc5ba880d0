// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pinsim

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "pinsim"
	subSystem = "kernel"
)

// MustRegisterCounter creates and registers a counter in the pinsim namespace.
//
func MustRegisterCounter(subsystem, name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(c)
	return c
}

// MustRegisterCounterVec creates and registers a counter vector in the pinsim
// namespace.
//
func MustRegisterCounterVec(subsystem, name, help string, labelNames ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
	prometheus.MustRegister(c)
	return c
}

var (
	// Total number of delta cycles run
	deltaCyclesTotal = MustRegisterCounter(subSystem,
		"delta_cycles_total",
		"Total number of delta cycles run")
	// Total number of simulated time advances
	timeAdvancesTotal = MustRegisterCounter(subSystem,
		"time_advances_total",
		"Total number of simulated time advances")
	// Total number of net resolutions
	netResolutionsTotal = MustRegisterCounter(subSystem,
		"net_resolutions_total",
		"Total number of net resolutions")
	// Total number of resolutions ending Undefined with several drivers
	netContentionsTotal = MustRegisterCounter(subSystem,
		"net_contentions_total",
		"Total number of net resolutions ending Undefined with more than one driver")
	// Total number of anomalies reported per kind
	anomaliesTotal = MustRegisterCounterVec("diag",
		"anomalies_total",
		"Total number of anomalies reported per kind",
		"kind")
)
