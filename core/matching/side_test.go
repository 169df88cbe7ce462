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
	"testing"

	"code.matchbook.io/matchbook/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuySideBestIsHighestPrice(t *testing.T) {
	s := newOrderBookSide(logging.NewTestLogger(), SideBuy)

	_, err := s.BestPrice()
	assert.ErrorIs(t, err, ErrNoOrdersOnSide)

	s.getOrCreateLevel(10010)
	s.getOrCreateLevel(10030)
	s.getOrCreateLevel(10020)

	price, err := s.BestPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10030), price)
}

func TestSellSideBestIsLowestPrice(t *testing.T) {
	s := newOrderBookSide(logging.NewTestLogger(), SideSell)

	s.getOrCreateLevel(10030)
	s.getOrCreateLevel(10010)
	s.getOrCreateLevel(10020)

	price, err := s.BestPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), price)
}

func TestGetOrCreateLevelReturnsExisting(t *testing.T) {
	s := newOrderBookSide(logging.NewTestLogger(), SideBuy)

	lvl := s.getOrCreateLevel(10010)
	again := s.getOrCreateLevel(10010)

	assert.Same(t, lvl, again)
	assert.Equal(t, 1, s.numLevels())
}

func TestRemoveLevelAdvancesBestCache(t *testing.T) {
	s := newOrderBookSide(logging.NewTestLogger(), SideSell)

	best := s.getOrCreateLevel(10010)
	s.getOrCreateLevel(10020)

	s.removeLevel(best)

	price, err := s.BestPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10020), price)

	_, ok := s.getLevel(10010)
	assert.False(t, ok)
}

func TestRemoveLastLevelEmptiesSide(t *testing.T) {
	s := newOrderBookSide(logging.NewTestLogger(), SideBuy)

	lvl := s.getOrCreateLevel(10010)
	s.removeLevel(lvl)

	_, err := s.BestPrice()
	assert.ErrorIs(t, err, ErrNoOrdersOnSide)
	assert.Equal(t, 0, s.numLevels())
}

func TestRemoveNonBestLevelKeepsBestCache(t *testing.T) {
	s := newOrderBookSide(logging.NewTestLogger(), SideBuy)

	s.getOrCreateLevel(10030)
	worse := s.getOrCreateLevel(10010)

	s.removeLevel(worse)

	price, err := s.BestPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10030), price)
}
