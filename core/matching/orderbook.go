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

package matching

import (
	"sync"

	"code.matchbook.io/matchbook/logging"
)

// OrderBook is the matching core for a single instrument. It is a plain
// sequential state machine: one mutation at a time, no locking here, callers
// serialise access. Prices are integer ticks, quantities integer units.
type OrderBook struct {
	log        *logging.Logger
	cfgMu      sync.Mutex
	cfg        Config
	instrument string

	buy        *OrderBookSide
	sell       *OrderBookSide
	ordersByID map[uint64]*Order
	seq        idSequence
}

// NewOrderBook creates an empty book for the given instrument.
func NewOrderBook(log *logging.Logger, cfg Config, instrument string) *OrderBook {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	return &OrderBook{
		log:        log,
		cfg:        cfg,
		instrument: instrument,
		buy:        newOrderBookSide(log, SideBuy),
		sell:       newOrderBookSide(log, SideSell),
		ordersByID: map[uint64]*Order{},
	}
}

// ReloadConf updates the book's configuration.
func (b *OrderBook) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()))
		b.log.SetLevel(cfg.Level.Get())
	}
	b.cfgMu.Lock()
	b.cfg = cfg
	b.cfgMu.Unlock()
}

// Instrument returns the instrument this book trades.
func (b *OrderBook) Instrument() string {
	return b.instrument
}

// SubmitOrder validates the parameters, assigns the next order id, matches
// the order against the opposite side as far as prices cross, and rests any
// remainder. Validation failures leave the book untouched.
func (b *OrderBook) SubmitOrder(side Side, price, quantity uint64) (*OrderConfirmation, error) {
	if err := validateOrderParams(side, price, quantity); err != nil {
		return nil, err
	}

	order := &Order{
		ID:        b.seq.next(),
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Remaining: quantity,
		Status:    OrderStatusOpen,
	}

	trades, affected := b.uncross(order)

	if order.Remaining > 0 {
		lvl := b.sameSide(side).getOrCreateLevel(price)
		lvl.addOrder(order)
		b.ordersByID[order.ID] = order
	} else {
		order.Status = OrderStatusCompleted
	}

	if b.log.GetLevel() <= logging.DebugLevel {
		b.log.Debug("order submitted",
			logging.OrderID(order.ID),
			logging.Side(side.String()),
			logging.Price(price),
			logging.Quantity(quantity),
			logging.Int("trades", len(trades)))
	}

	return &OrderConfirmation{
		Order:                 order,
		Trades:                trades,
		PassiveOrdersAffected: affected,
	}, nil
}

// uncross matches the aggressive order against the opposite side until the
// order is filled or the best opposing price no longer crosses. Resting
// orders fill strictly in price then time priority, always at their own
// resting price.
func (b *OrderBook) uncross(agg *Order) ([]*Trade, []*Order) {
	var (
		trades   []*Trade
		affected []*Order
		opposite = b.oppositeSide(agg.Side)
	)

	for agg.Remaining > 0 {
		lvl := opposite.bestLevel()
		if lvl == nil || !crosses(agg, lvl.price) {
			break
		}

		resting := lvl.firstOrder()
		size := agg.Remaining
		if resting.Remaining < size {
			size = resting.Remaining
		}

		if err := agg.decrease(size); err != nil {
			b.log.Panic("fill exceeds aggressive order remaining",
				logging.OrderID(agg.ID),
				logging.Quantity(size),
				logging.Error(err))
		}
		if err := resting.decrease(size); err != nil {
			b.log.Panic("fill exceeds resting order remaining",
				logging.OrderID(resting.ID),
				logging.Quantity(size),
				logging.Error(err))
		}

		trades = append(trades, newTrade(agg, resting, size))
		affected = append(affected, resting)

		// the resting order was already decreased, the level volume is
		// accounted for here rather than by popHead
		lvl.reduceVolume(size)
		if resting.Remaining == 0 {
			resting.Status = OrderStatusCompleted
			delete(b.ordersByID, resting.ID)
			lvl.popHead()
			if lvl.empty() {
				opposite.removeLevel(lvl)
			}
		}
	}

	return trades, affected
}

// crosses reports whether the aggressive order's limit allows it to trade
// at the given resting price.
func crosses(agg *Order, restingPrice uint64) bool {
	if agg.Side == SideBuy {
		return restingPrice <= agg.Price
	}
	return restingPrice >= agg.Price
}

// CancelOrder removes a resting order from the book wherever it sits in its
// level's queue. Unknown ids, completed orders and already cancelled orders
// all report ErrOrderNotFound.
func (b *OrderBook) CancelOrder(id uint64) (*Order, error) {
	order, ok := b.ordersByID[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	side := b.sameSide(order.Side)
	lvl, ok := side.getLevel(order.Price)
	if !ok {
		b.log.Panic("indexed order has no price level",
			logging.OrderID(id),
			logging.Price(order.Price),
			logging.Side(order.Side.String()))
	}

	lvl.removeOrder(order)
	if lvl.empty() {
		side.removeLevel(lvl)
	}
	delete(b.ordersByID, id)
	order.Status = OrderStatusCancelled

	b.cfgMu.Lock()
	logRemoved := bool(b.cfg.LogRemovedOrdersDebug)
	b.cfgMu.Unlock()
	if logRemoved && b.log.GetLevel() <= logging.DebugLevel {
		b.log.Debug("order cancelled",
			logging.OrderID(id),
			logging.Price(order.Price),
			logging.Side(order.Side.String()))
	}

	return order, nil
}

// GetOrder returns a resting order by id, ErrOrderNotFound for anything not
// currently on the book.
func (b *OrderBook) GetOrder(id uint64) (*Order, error) {
	order, ok := b.ordersByID[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetBestBidPrice returns the highest bid, ErrNoOrdersOnSide when no bids
// rest.
func (b *OrderBook) GetBestBidPrice() (uint64, error) {
	return b.buy.BestPrice()
}

// GetBestAskPrice returns the lowest ask, ErrNoOrdersOnSide when no asks
// rest.
func (b *OrderBook) GetBestAskPrice() (uint64, error) {
	return b.sell.BestPrice()
}

// TotalOrders returns how many orders currently rest on the book.
func (b *OrderBook) TotalOrders() int {
	return len(b.ordersByID)
}

// GetVolumeAtPrice returns the resting volume at an exact price on one
// side, zero when no level exists there.
func (b *OrderBook) GetVolumeAtPrice(side Side, price uint64) uint64 {
	s := b.sameSide(side)
	if s == nil {
		return 0
	}
	if lvl, ok := s.getLevel(price); ok {
		return lvl.Volume()
	}
	return 0
}

func (b *OrderBook) sameSide(side Side) *OrderBookSide {
	switch side {
	case SideBuy:
		return b.buy
	case SideSell:
		return b.sell
	}
	return nil
}

func (b *OrderBook) oppositeSide(side Side) *OrderBookSide {
	switch side {
	case SideBuy:
		return b.sell
	case SideSell:
		return b.buy
	}
	return nil
}
