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

package execution

import (
	"sync"

	"code.matchbook.io/matchbook/core/matching"
	"code.matchbook.io/matchbook/logging"
	"code.matchbook.io/matchbook/metrics"
)

// Engine serialises access to the matching core. The book itself is a
// sequential state machine, every mutation goes through the write lock so
// submissions and cancellations apply in a total order, queries share the
// read lock. Orders returned to callers are detached copies taken while
// the lock is held, the book's own orders never leave the lock boundary.
type Engine struct {
	log *logging.Logger

	cfgMu sync.Mutex
	cfg   Config

	mu         sync.RWMutex
	book       *matching.OrderBook
	instrument string
}

// NewEngine creates an execution engine with an empty order book for the
// given instrument.
func NewEngine(log *logging.Logger, cfg Config, instrument string) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	return &Engine{
		log:        log,
		cfg:        cfg,
		book:       matching.NewOrderBook(log, cfg.Matching, instrument),
		instrument: instrument,
	}
}

// ReloadConf propagates an updated configuration to the engine and its book.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()))
		e.log.SetLevel(cfg.Level.Get())
	}
	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()

	e.mu.Lock()
	e.book.ReloadConf(cfg.Matching)
	e.mu.Unlock()
}

// Instrument returns the instrument this engine trades.
func (e *Engine) Instrument() string {
	return e.instrument
}

// SubmitOrder sends a new limit order through the matching core.
func (e *Engine) SubmitOrder(side matching.Side, price, quantity uint64) (*matching.OrderConfirmation, error) {
	timer := metrics.EngineTimeCounterAdd(e.instrument, "SubmitOrder")
	defer timer()

	e.mu.Lock()
	conf, err := e.book.SubmitOrder(side, price, quantity)
	resting := e.book.TotalOrders()
	if err == nil {
		conf.Order = conf.Order.Clone()
		for i, o := range conf.PassiveOrdersAffected {
			conf.PassiveOrdersAffected[i] = o.Clone()
		}
	}
	e.mu.Unlock()

	if err != nil {
		metrics.OrderCounterInc(e.instrument, "false")
		return nil, err
	}
	metrics.OrderCounterInc(e.instrument, "true")
	metrics.TradeCounterAdd(len(conf.Trades), e.instrument)
	metrics.OrderGaugeSet(resting, e.instrument)
	return conf, nil
}

// CancelOrder removes a resting order from the book.
func (e *Engine) CancelOrder(id uint64) (*matching.Order, error) {
	timer := metrics.EngineTimeCounterAdd(e.instrument, "CancelOrder")
	defer timer()

	e.mu.Lock()
	order, err := e.book.CancelOrder(id)
	resting := e.book.TotalOrders()
	if err == nil {
		order = order.Clone()
	}
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}
	metrics.OrderGaugeSet(resting, e.instrument)
	return order, nil
}

// GetOrder returns a snapshot of a resting order by id.
func (e *Engine) GetOrder(id uint64) (*matching.Order, error) {
	e.mu.RLock()
	order, err := e.book.GetOrder(id)
	if err == nil {
		order = order.Clone()
	}
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return order, nil
}

// BestBidPrice returns the highest resting bid.
func (e *Engine) BestBidPrice() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.GetBestBidPrice()
}

// BestAskPrice returns the lowest resting ask.
func (e *Engine) BestAskPrice() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.GetBestAskPrice()
}
