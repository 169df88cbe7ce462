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

// PriceLevel holds the orders resting at one exact price, as a FIFO queue
// over the orders' own links. Arrival order is matching order. The level
// does not remove itself from the book when it empties, the owning side
// does that.
type PriceLevel struct {
	price     uint64
	head      *Order
	tail      *Order
	volume    uint64
	numOrders int
}

func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{price: price}
}

// Price returns the price all orders on this level rest at.
func (l *PriceLevel) Price() uint64 {
	return l.price
}

// Volume returns the total remaining quantity resting at this level.
func (l *PriceLevel) Volume() uint64 {
	return l.volume
}

// Len returns the number of orders queued at this level.
func (l *PriceLevel) Len() int {
	return l.numOrders
}

func (l *PriceLevel) empty() bool {
	return l.head == nil
}

// addOrder appends the order to the queue tail.
func (l *PriceLevel) addOrder(o *Order) {
	o.prev = l.tail
	o.next = nil
	if l.tail == nil {
		l.head = o
	} else {
		l.tail.next = o
	}
	l.tail = o
	l.volume += o.Remaining
	l.numOrders++
}

// firstOrder returns the order with time priority, nil when the level is
// empty.
func (l *PriceLevel) firstOrder() *Order {
	return l.head
}

// popHead detaches the current head and promotes its successor.
func (l *PriceLevel) popHead() *Order {
	o := l.head
	if o == nil {
		return nil
	}
	l.head = o.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	o.next = nil
	o.prev = nil
	l.volume -= o.Remaining
	l.numOrders--
	return o
}

// removeOrder splices the order out of the queue wherever it sits, in O(1)
// through its own links.
func (l *PriceLevel) removeOrder(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	l.volume -= o.Remaining
	l.numOrders--
}

// reduceVolume accounts for a partial fill of an order still queued on the
// level.
func (l *PriceLevel) reduceVolume(size uint64) {
	l.volume -= size
}
