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

// Trade is a single fill between an aggressive order and a resting order.
// It always executes at the resting order's price.
type Trade struct {
	Price       uint64
	Size        uint64
	BuyOrderID  uint64
	SellOrderID uint64
	Aggressor   Side
}

func newTrade(agg, resting *Order, size uint64) *Trade {
	t := &Trade{
		Price:     resting.Price,
		Size:      size,
		Aggressor: agg.Side,
	}
	if agg.Side == SideBuy {
		t.BuyOrderID = agg.ID
		t.SellOrderID = resting.ID
	} else {
		t.BuyOrderID = resting.ID
		t.SellOrderID = agg.ID
	}
	return t
}

// OrderConfirmation is the result of submitting an order: the order itself
// with its immediate outcome, the trades executed on arrival, and the
// resting orders those trades touched.
type OrderConfirmation struct {
	Order                 *Order
	Trades                []*Trade
	PassiveOrdersAffected []*Order
}
