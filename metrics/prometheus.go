// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchbook"

const (
	Gauge instrument = iota
	Counter
	Histogram
)

var (
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	engineTime     *prometheus.CounterVec
	orderCounter   *prometheus.CounterVec
	tradeCounter   *prometheus.CounterVec
	orderGauge     *prometheus.GaugeVec
	apiRequestCall *prometheus.CounterVec
	apiRequestTime *prometheus.CounterVec
)

// abstract prometheus types
type instrument int

// combine the prometheus options plus a way to differentiate between
// regular and vector instruments
type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface,
// slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument.
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace.
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Buckets - specific to histogram type.
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configures and registers a new metrics instrument.
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := opt.gauge()
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := opt.counter()
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (i instrumentOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts(i.opts)
}

func (i instrumentOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts(i.opts)
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) Histogram() (prometheus.Histogram, error) {
	if m.histogram == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogram, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

func setupMetrics() error {
	h, err := AddInstrument(
		Counter,
		"engine_seconds_total",
		Namespace(namespace),
		Vectors("instrument", "fn"),
		Help("Time spent in engine calls"),
	)
	if err != nil {
		return err
	}
	est, err := h.CounterVec()
	if err != nil {
		return err
	}
	engineTime = est

	h, err = AddInstrument(
		Counter,
		"orders_total",
		Namespace(namespace),
		Vectors("instrument", "valid"),
		Help("Number of orders processed"),
	)
	if err != nil {
		return err
	}
	ot, err := h.CounterVec()
	if err != nil {
		return err
	}
	orderCounter = ot

	h, err = AddInstrument(
		Counter,
		"trades_total",
		Namespace(namespace),
		Vectors("instrument"),
		Help("Number of trades generated"),
	)
	if err != nil {
		return err
	}
	tt, err := h.CounterVec()
	if err != nil {
		return err
	}
	tradeCounter = tt

	h, err = AddInstrument(
		Gauge,
		"orders",
		Namespace(namespace),
		Vectors("instrument"),
		Help("Number of orders currently resting on the book"),
	)
	if err != nil {
		return err
	}
	g, err := h.GaugeVec()
	if err != nil {
		return err
	}
	orderGauge = g

	h, err = AddInstrument(
		Counter,
		"request_count_total",
		Namespace(namespace),
		Vectors("request"),
		Help("Count of API requests"),
	)
	if err != nil {
		return err
	}
	rc, err := h.CounterVec()
	if err != nil {
		return err
	}
	apiRequestCall = rc

	h, err = AddInstrument(
		Counter,
		"request_time_total",
		Namespace(namespace),
		Vectors("request"),
		Help("Total time spent serving API requests"),
	)
	if err != nil {
		return err
	}
	rt, err := h.CounterVec()
	if err != nil {
		return err
	}
	apiRequestTime = rt

	return nil
}

// Start enables metrics given the config, exposing the prometheus handler
// on its own listener.
func Start(conf Config) error {
	if !conf.Enabled {
		return nil
	}
	if err := setupMetrics(); err != nil {
		return errors.Wrap(err, "could not set up metrics")
	}
	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	go func() {
		http.ListenAndServe(fmt.Sprintf(":%d", conf.Port), mux)
	}()
	return nil
}

// EngineTimeCounterAdd is used to time a function. Call it, using defer, at
// the start of the function to be timed.
//
// e.g.
//
//	defer metrics.EngineTimeCounterAdd("BTC/USD", "SubmitOrder")()
//
// Note the extra "()" at the end of the above line - the returned function
// must be called.
func EngineTimeCounterAdd(labelValues ...string) func() {
	start := time.Now()
	return func() {
		// the metric may not be set up, tests do not enable metrics
		if engineTime == nil {
			return
		}
		engineTime.WithLabelValues(labelValues...).Add(time.Since(start).Seconds())
	}
}

func OrderCounterInc(labelValues ...string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(labelValues...).Inc()
}

func TradeCounterAdd(n int, labelValues ...string) {
	if tradeCounter == nil {
		return
	}
	tradeCounter.WithLabelValues(labelValues...).Add(float64(n))
}

func OrderGaugeSet(n int, labelValues ...string) {
	if orderGauge == nil {
		return
	}
	orderGauge.WithLabelValues(labelValues...).Set(float64(n))
}

// APIRequestAndTimeREST updates the metrics around REST API calls. Call it,
// using defer, at the start of the handler.
func APIRequestAndTimeREST(request string) func() {
	if apiRequestCall == nil || apiRequestTime == nil {
		return func() {}
	}
	start := time.Now()
	apiRequestCall.WithLabelValues(request).Inc()
	return func() {
		apiRequestTime.WithLabelValues(request).Add(time.Since(start).Seconds())
	}
}
