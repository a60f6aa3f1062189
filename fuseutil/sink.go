// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fuseutil

import (
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/unix"

	"github.com/jacobsa/fusereply"
	"github.com/jacobsa/fusereply/fuseops"
)

////////////////////////////////////////////////////////////////////////
// Logging
////////////////////////////////////////////////////////////////////////

// Wrap the supplied sink so that every outcome is logged at debug level
// before being passed on. Errors from the wrapped sink are logged at error
// level and returned unchanged.
func NewLoggingSink(wrapped fusereply.Sink, l log.Logger) fusereply.Sink {
	return &loggingSink{
		wrapped: wrapped,
		l:       l,
	}
}

type loggingSink struct {
	wrapped fusereply.Sink
	l       log.Logger
}

func (s *loggingSink) Send(unique uint64, out fuseops.Outcome) (err error) {
	level.Debug(s.l).Log("msg", "replying", "unique", unique, "out", out)

	err = s.wrapped.Send(unique, out)
	if err != nil {
		level.Error(s.l).Log(
			"msg", "failed to send reply",
			"unique", unique,
			"kind", out.Kind(),
			"err", err)
	}

	return
}

////////////////////////////////////////////////////////////////////////
// Metrics
////////////////////////////////////////////////////////////////////////

// A sink that counts the outcomes passing through it.
type MetricsSink struct {
	wrapped fusereply.Sink

	replies *prometheus.CounterVec
	errors  *prometheus.CounterVec
	failed  prometheus.Counter
}

var _ fusereply.Sink = &MetricsSink{}

// Wrap the supplied sink, counting replies by kind and error replies by
// error number. If reg is non-nil the counters are registered with it; the
// sink also implements prometheus.Collector for callers that register it
// themselves.
func NewMetricsSink(
	wrapped fusereply.Sink,
	reg prometheus.Registerer) (s *MetricsSink) {
	s = &MetricsSink{
		wrapped: wrapped,

		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuse",
				Name:      "replies_total",
				Help:      "Replies sent, by kind.",
			},
			[]string{"kind"}),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuse",
				Name:      "reply_errors_total",
				Help:      "Error replies sent, by error number.",
			},
			[]string{"errno"}),

		failed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "fuse",
				Name:      "reply_send_failures_total",
				Help:      "Replies the underlying sink failed to send.",
			}),
	}

	if reg != nil {
		reg.MustRegister(s)
	}

	return
}

func (s *MetricsSink) Send(unique uint64, out fuseops.Outcome) (err error) {
	s.replies.WithLabelValues(out.Kind()).Inc()

	if e, ok := out.(*fuseops.ErrorOut); ok {
		s.errors.WithLabelValues(errnoLabel(e)).Inc()
	}

	err = s.wrapped.Send(unique, out)
	if err != nil {
		s.failed.Inc()
	}

	return
}

func (s *MetricsSink) Describe(ch chan<- *prometheus.Desc) {
	s.replies.Describe(ch)
	s.errors.Describe(ch)
	s.failed.Describe(ch)
}

func (s *MetricsSink) Collect(ch chan<- prometheus.Metric) {
	s.replies.Collect(ch)
	s.errors.Collect(ch)
	s.failed.Collect(ch)
}

// Label error numbers by their symbolic name where x/sys knows it, e.g.
// "ENOENT", and by number otherwise.
func errnoLabel(e *fuseops.ErrorOut) string {
	if name := unix.ErrnoName(e.Errno); name != "" {
		return name
	}

	return strconv.Itoa(int(e.Errno))
}
