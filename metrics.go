// Copyright 2025 The MIDIFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package midiflux

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the dispatcher's performance telemetry (§4.8 "Performance
// telemetry"). It is implemented unconditionally rather than gated behind
// a diagnostic build tag; a cmd/midifluxd host decides whether to expose
// it on an HTTP /metrics endpoint.
type Metrics struct {
	dispatchLatency prometheus.Histogram
	eventsDropped   prometheus.Counter
	eventsUnmatched prometheus.Counter
}

// NewMetrics constructs a Metrics and registers it with reg. Pass
// prometheus.NewRegistry() for an isolated registry (e.g. in tests) or
// prometheus.DefaultRegisterer to expose it process-wide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "midiflux",
			Subsystem: "dispatcher",
			Name:      "dispatch_latency_seconds",
			Help:      "Per-event dispatch latency, from dequeue to completion of all sync-path actions.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 16), // 50us .. ~1.6s
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "midiflux",
			Subsystem: "dispatcher",
			Name:      "events_dropped_total",
			Help:      "Events dropped because the dispatcher's event queue was full.",
		}),
		eventsUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "midiflux",
			Subsystem: "dispatcher",
			Name:      "events_unmatched_total",
			Help:      "Events for which the registry lookup returned no mappings.",
		}),
	}
	reg.MustRegister(m.dispatchLatency, m.eventsDropped, m.eventsUnmatched)
	return m
}
