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
	"code.matchbook.io/matchbook/logging"

	"github.com/google/btree"
)

const btreeDegree = 32

// OrderBookSide represents one side of the book. Levels are kept in a btree
// ordered best-first, with a price->level map for O(1) lookup and a cached
// reference to the best level. An empty side has no best level, there is no
// sentinel price.
type OrderBookSide struct {
	side          Side
	log           *logging.Logger
	levels        *btree.BTreeG[*PriceLevel]
	levelsByPrice map[uint64]*PriceLevel
	best          *PriceLevel
}

func newOrderBookSide(log *logging.Logger, side Side) *OrderBookSide {
	less := func(a, b *PriceLevel) bool { return a.price < b.price }
	if side == SideBuy {
		// bids sort best-first on the highest price
		less = func(a, b *PriceLevel) bool { return a.price > b.price }
	}
	return &OrderBookSide{
		side:          side,
		log:           log,
		levels:        btree.NewG(btreeDegree, less),
		levelsByPrice: map[uint64]*PriceLevel{},
	}
}

// BestPrice returns the price of the best level, or ErrNoOrdersOnSide when
// the side is empty.
func (s *OrderBookSide) BestPrice() (uint64, error) {
	if s.best == nil {
		return 0, ErrNoOrdersOnSide
	}
	return s.best.price, nil
}

func (s *OrderBookSide) bestLevel() *PriceLevel {
	return s.best
}

func (s *OrderBookSide) getLevel(price uint64) (*PriceLevel, bool) {
	lvl, ok := s.levelsByPrice[price]
	return lvl, ok
}

func (s *OrderBookSide) numLevels() int {
	return s.levels.Len()
}

// getOrCreateLevel returns the level at the given price, creating and
// indexing it when the price is not yet present on the side.
func (s *OrderBookSide) getOrCreateLevel(price uint64) *PriceLevel {
	if lvl, ok := s.levelsByPrice[price]; ok {
		return lvl
	}
	lvl := newPriceLevel(price)
	s.levelsByPrice[price] = lvl
	s.levels.ReplaceOrInsert(lvl)
	if s.improves(price) {
		s.best = lvl
	}
	return lvl
}

// improves reports whether a level at the given price would beat the
// current best.
func (s *OrderBookSide) improves(price uint64) bool {
	if s.best == nil {
		return true
	}
	if s.side == SideBuy {
		return price > s.best.price
	}
	return price < s.best.price
}

// removeLevel excises an emptied level from the sorted collection and the
// price map, and advances the best cache when the best level went away.
func (s *OrderBookSide) removeLevel(lvl *PriceLevel) {
	if !lvl.empty() {
		s.log.Panic("removing a price level which still has orders",
			logging.Price(lvl.price),
			logging.Side(s.side.String()))
	}
	delete(s.levelsByPrice, lvl.price)
	if _, ok := s.levels.Delete(lvl); !ok {
		s.log.Panic("price level missing from the sorted collection",
			logging.Price(lvl.price),
			logging.Side(s.side.String()))
	}
	if s.best == lvl {
		if next, ok := s.levels.Min(); ok {
			s.best = next
		} else {
			s.best = nil
		}
	}
}
