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

package matching_test

import (
	"testing"

	"code.matchbook.io/matchbook/core/matching"
	"code.matchbook.io/matchbook/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestOrderBook(t *testing.T) *matching.OrderBook {
	t.Helper()
	log := logging.NewTestLogger()
	return matching.NewOrderBook(log, matching.NewDefaultConfig(), "BTC/USD")
}

func TestSubmitOrderRestsWhenBookEmpty(t *testing.T) {
	book := getTestOrderBook(t)

	conf, err := book.SubmitOrder(matching.SideBuy, 10010, 5)
	require.NoError(t, err)
	require.NotNil(t, conf)

	assert.Equal(t, uint64(1), conf.Order.ID)
	assert.Equal(t, matching.OrderStatusOpen, conf.Order.Status)
	assert.Equal(t, uint64(5), conf.Order.Remaining)
	assert.Empty(t, conf.Trades)
	assert.Empty(t, conf.PassiveOrdersAffected)

	price, err := book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), price)

	_, err = book.GetBestAskPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
}

func TestSubmitOrderIDsAreSequentialPerBook(t *testing.T) {
	book := getTestOrderBook(t)
	other := getTestOrderBook(t)

	for want := uint64(1); want <= 3; want++ {
		conf, err := book.SubmitOrder(matching.SideBuy, 10000, 1)
		require.NoError(t, err)
		assert.Equal(t, want, conf.Order.ID)
	}

	// a second book keeps its own sequence
	conf, err := other.SubmitOrder(matching.SideSell, 10000, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), conf.Order.ID)
}

func TestSubmitOrderInvalidParams(t *testing.T) {
	book := getTestOrderBook(t)

	_, err := book.SubmitOrder(matching.SideBuy, 10000, 0)
	assert.ErrorIs(t, err, matching.ErrInvalidQuantity)

	_, err = book.SubmitOrder(matching.SideBuy, 0, 1)
	assert.ErrorIs(t, err, matching.ErrInvalidPrice)

	_, err = book.SubmitOrder(matching.SideUnspecified, 10000, 1)
	assert.ErrorIs(t, err, matching.ErrInvalidSide)

	// rejected submissions consume no ids and leave the book untouched
	assert.Equal(t, 0, book.TotalOrders())
	conf, err := book.SubmitOrder(matching.SideBuy, 10000, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), conf.Order.ID)
}

func TestPriceTimePriorityAtSameLevel(t *testing.T) {
	book := getTestOrderBook(t)

	first, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
	second, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
	third, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)

	conf, err := book.SubmitOrder(matching.SideSell, 10010, 2)
	require.NoError(t, err)

	require.Len(t, conf.Trades, 2)
	assert.Equal(t, first.Order.ID, conf.Trades[0].BuyOrderID)
	assert.Equal(t, second.Order.ID, conf.Trades[1].BuyOrderID)
	assert.Equal(t, matching.OrderStatusCompleted, first.Order.Status)
	assert.Equal(t, matching.OrderStatusCompleted, second.Order.Status)
	assert.Equal(t, matching.OrderStatusOpen, third.Order.Status)
	assert.Equal(t, uint64(1), book.GetVolumeAtPrice(matching.SideBuy, 10010))
}

func TestTradesExecuteAtRestingPrice(t *testing.T) {
	book := getTestOrderBook(t)

	_, err := book.SubmitOrder(matching.SideSell, 10020, 3)
	require.NoError(t, err)

	// an aggressive buy willing to pay more still trades at the ask
	conf, err := book.SubmitOrder(matching.SideBuy, 10050, 3)
	require.NoError(t, err)

	require.Len(t, conf.Trades, 1)
	assert.Equal(t, uint64(10020), conf.Trades[0].Price)
	assert.Equal(t, uint64(3), conf.Trades[0].Size)
	assert.Equal(t, matching.SideBuy, conf.Trades[0].Aggressor)
}

func TestPartialFillAcrossLevels(t *testing.T) {
	book := getTestOrderBook(t)

	_, err := book.SubmitOrder(matching.SideSell, 10010, 2)
	require.NoError(t, err)
	_, err = book.SubmitOrder(matching.SideSell, 10020, 2)
	require.NoError(t, err)
	_, err = book.SubmitOrder(matching.SideSell, 10030, 2)
	require.NoError(t, err)

	conf, err := book.SubmitOrder(matching.SideBuy, 10020, 5)
	require.NoError(t, err)

	// fills the two cheapest levels, then rests the single remaining unit
	require.Len(t, conf.Trades, 2)
	assert.Equal(t, uint64(10010), conf.Trades[0].Price)
	assert.Equal(t, uint64(10020), conf.Trades[1].Price)
	assert.Equal(t, matching.OrderStatusOpen, conf.Order.Status)
	assert.Equal(t, uint64(1), conf.Order.Remaining)

	bid, err := book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10020), bid)

	ask, err := book.GetBestAskPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10030), ask)
}

func TestQuantityConservation(t *testing.T) {
	book := getTestOrderBook(t)

	resting, err := book.SubmitOrder(matching.SideSell, 10000, 7)
	require.NoError(t, err)

	conf, err := book.SubmitOrder(matching.SideBuy, 10000, 3)
	require.NoError(t, err)

	require.Len(t, conf.Trades, 1)
	assert.Equal(t, uint64(3), conf.Trades[0].Size)
	assert.Equal(t, uint64(0), conf.Order.Remaining)
	assert.Equal(t, uint64(4), resting.Order.Remaining)
	assert.Equal(t, uint64(4), book.GetVolumeAtPrice(matching.SideSell, 10000))
}

func TestFullyMatchedOrderNeverRests(t *testing.T) {
	book := getTestOrderBook(t)

	_, err := book.SubmitOrder(matching.SideSell, 10000, 5)
	require.NoError(t, err)

	conf, err := book.SubmitOrder(matching.SideBuy, 10000, 5)
	require.NoError(t, err)

	assert.Equal(t, matching.OrderStatusCompleted, conf.Order.Status)
	_, err = book.GetOrder(conf.Order.ID)
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)

	// the filled resting order is evicted too
	assert.Equal(t, 0, book.TotalOrders())
}

func TestCancelOrder(t *testing.T) {
	book := getTestOrderBook(t)

	conf, err := book.SubmitOrder(matching.SideBuy, 10010, 4)
	require.NoError(t, err)

	cancelled, err := book.CancelOrder(conf.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, matching.OrderStatusCancelled, cancelled.Status)

	_, err = book.GetOrder(conf.Order.ID)
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)
	_, err = book.GetBestBidPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
}

func TestCancelMiddleOrderKeepsQueueOrder(t *testing.T) {
	book := getTestOrderBook(t)

	first, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
	second, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
	third, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)

	// cancel the order in the middle of the queue, not the head
	_, err = book.CancelOrder(second.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), book.GetVolumeAtPrice(matching.SideBuy, 10010))

	conf, err := book.SubmitOrder(matching.SideSell, 10010, 2)
	require.NoError(t, err)
	require.Len(t, conf.Trades, 2)
	assert.Equal(t, first.Order.ID, conf.Trades[0].BuyOrderID)
	assert.Equal(t, third.Order.ID, conf.Trades[1].BuyOrderID)
}

func TestCancelUnknownOrderIsIdempotent(t *testing.T) {
	book := getTestOrderBook(t)

	_, err := book.CancelOrder(42)
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)

	conf, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)

	_, err = book.CancelOrder(conf.Order.ID)
	require.NoError(t, err)

	// a second cancel of the same id reports absence and changes nothing
	_, err = book.CancelOrder(conf.Order.ID)
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)
	assert.Equal(t, 0, book.TotalOrders())
}

func TestLevelLifecycle(t *testing.T) {
	book := getTestOrderBook(t)

	a, err := book.SubmitOrder(matching.SideSell, 10020, 1)
	require.NoError(t, err)
	b, err := book.SubmitOrder(matching.SideSell, 10020, 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), book.GetVolumeAtPrice(matching.SideSell, 10020))

	_, err = book.CancelOrder(a.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), book.GetVolumeAtPrice(matching.SideSell, 10020))

	_, err = book.CancelOrder(b.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), book.GetVolumeAtPrice(matching.SideSell, 10020))
	_, err = book.GetBestAskPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
}

func TestNoSelfCrossAfterSubmit(t *testing.T) {
	book := getTestOrderBook(t)

	_, err := book.SubmitOrder(matching.SideBuy, 10010, 3)
	require.NoError(t, err)
	_, err = book.SubmitOrder(matching.SideSell, 10030, 3)
	require.NoError(t, err)

	// crosses partially, residual rests on the sell side
	conf, err := book.SubmitOrder(matching.SideSell, 10005, 5)
	require.NoError(t, err)
	require.Len(t, conf.Trades, 1)
	assert.Equal(t, uint64(2), conf.Order.Remaining)

	ask, err := book.GetBestAskPrice()
	require.NoError(t, err)
	_, err = book.GetBestBidPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
	assert.Equal(t, uint64(10005), ask)
}

func TestBestPriceTracksCancels(t *testing.T) {
	book := getTestOrderBook(t)

	best, err := book.SubmitOrder(matching.SideBuy, 10030, 1)
	require.NoError(t, err)
	_, err = book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)

	bid, err := book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10030), bid)

	_, err = book.CancelOrder(best.Order.ID)
	require.NoError(t, err)

	bid, err = book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), bid)
}

// Regression scenario covering matching, residual resting, level eviction
// and best-price maintenance in one pass. Prices are ticks at two decimals,
// so 10010 reads as 100.10.
func TestOrderBookScenario(t *testing.T) {
	book := getTestOrderBook(t)

	// 1. BUY 100.10 x1 rests
	o1, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
	bid, err := book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), bid)

	// 2. BUY 100.10 x1 queues behind the first
	o2, err := book.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), book.GetVolumeAtPrice(matching.SideBuy, 10010))

	// 3. BUY 100.30 x1 becomes the new best bid
	o3, err := book.SubmitOrder(matching.SideBuy, 10030, 1)
	require.NoError(t, err)
	bid, err = book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10030), bid)

	// 4. SELL 100.00 x1 crosses and fills the best bid at 100.30
	conf, err := book.SubmitOrder(matching.SideSell, 10000, 1)
	require.NoError(t, err)
	require.Len(t, conf.Trades, 1)
	assert.Equal(t, uint64(10030), conf.Trades[0].Price)
	assert.Equal(t, o3.Order.ID, conf.Trades[0].BuyOrderID)
	assert.Equal(t, matching.OrderStatusCompleted, o3.Order.Status)
	assert.Equal(t, matching.OrderStatusCompleted, conf.Order.Status)
	bid, err = book.GetBestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), bid)

	// 5. SELL 100.20 x2 does not cross, rests as best ask
	o5, err := book.SubmitOrder(matching.SideSell, 10020, 2)
	require.NoError(t, err)
	assert.Equal(t, matching.OrderStatusOpen, o5.Order.Status)
	ask, err := book.GetBestAskPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10020), ask)

	// 6. SELL 100.10 x2 sweeps the remaining bids in arrival order
	conf, err = book.SubmitOrder(matching.SideSell, 10010, 2)
	require.NoError(t, err)
	require.Len(t, conf.Trades, 2)
	assert.Equal(t, o1.Order.ID, conf.Trades[0].BuyOrderID)
	assert.Equal(t, o2.Order.ID, conf.Trades[1].BuyOrderID)
	assert.Equal(t, matching.OrderStatusCompleted, conf.Order.Status)

	_, err = book.GetBestBidPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
	ask, err = book.GetBestAskPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10020), ask)
	assert.Equal(t, 1, book.TotalOrders())
	assert.Equal(t, uint64(2), book.GetVolumeAtPrice(matching.SideSell, 10020))
}
