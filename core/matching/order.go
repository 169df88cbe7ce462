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

// Side of the book an order belongs to.
type Side int

const (
	SideUnspecified Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNSPECIFIED"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderStatus is the lifecycle state of an order. Completed and cancelled
// are terminal, an order is never mutated once it reaches either.
type OrderStatus int

const (
	OrderStatusOpen OrderStatus = iota
	OrderStatusCompleted
	OrderStatusCancelled
	// OrderStatusExpired is reserved, the engine never sets it.
	OrderStatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "OPEN"
	case OrderStatusCompleted:
		return "COMPLETED"
	case OrderStatusCancelled:
		return "CANCELED"
	case OrderStatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Order is a single limit order. Price is expressed in integer ticks,
// Remaining decreases as the order fills and never goes below zero.
//
// The next/prev links are the order's position in its price level queue,
// they are owned and maintained by the PriceLevel holding the order.
type Order struct {
	ID        uint64
	Price     uint64
	Side      Side
	Quantity  uint64
	Remaining uint64
	Status    OrderStatus

	next *Order
	prev *Order
}

// Clone returns a detached copy of the order with its queue links cleared,
// safe to hand to callers that read it outside the book's serialization.
func (o *Order) Clone() *Order {
	cpy := *o
	cpy.next = nil
	cpy.prev = nil
	return &cpy
}

// decrease reduces the remaining quantity by the given fill size. The order
// is left untouched when the size exceeds what remains.
func (o *Order) decrease(size uint64) error {
	if size > o.Remaining {
		return ErrInvalidQuantity
	}
	o.Remaining -= size
	return nil
}
