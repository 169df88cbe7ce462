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

package execution_test

import (
	"sync"
	"testing"

	"code.matchbook.io/matchbook/core/execution"
	"code.matchbook.io/matchbook/core/matching"
	"code.matchbook.io/matchbook/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestEngine(t *testing.T) *execution.Engine {
	t.Helper()
	log := logging.NewTestLogger()
	return execution.NewEngine(log, execution.NewDefaultConfig(), "BTC/USD")
}

func TestEngineSubmitAndQuery(t *testing.T) {
	e := getTestEngine(t)

	conf, err := e.SubmitOrder(matching.SideBuy, 10010, 3)
	require.NoError(t, err)
	require.NotNil(t, conf)

	order, err := e.GetOrder(conf.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), order.Price)

	bid, err := e.BestBidPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(10010), bid)

	_, err = e.BestAskPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
}

func TestEngineCancel(t *testing.T) {
	e := getTestEngine(t)

	conf, err := e.SubmitOrder(matching.SideSell, 10020, 2)
	require.NoError(t, err)

	order, err := e.CancelOrder(conf.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, matching.OrderStatusCancelled, order.Status)

	_, err = e.CancelOrder(conf.Order.ID)
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)
}

func TestEngineRejectsInvalidOrders(t *testing.T) {
	e := getTestEngine(t)

	_, err := e.SubmitOrder(matching.SideBuy, 0, 1)
	assert.ErrorIs(t, err, matching.ErrInvalidPrice)

	_, err = e.SubmitOrder(matching.SideBuy, 10010, 0)
	assert.ErrorIs(t, err, matching.ErrInvalidQuantity)
}

// Concurrent submissions on both sides must leave the book with conserved
// volume: crossing pairs net out, matching only ever reassigns quantity
// between an aggressor and a resting order.
func TestEngineConcurrentMutations(t *testing.T) {
	e := getTestEngine(t)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, err := e.SubmitOrder(matching.SideBuy, 10010, 1)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, err := e.SubmitOrder(matching.SideSell, 10010, 1)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	// every trade retires one buy and one sell, so equal one-lot flow on
	// both sides at a single price always nets the book to empty
	_, err := e.BestBidPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
	_, err = e.BestAskPrice()
	assert.ErrorIs(t, err, matching.ErrNoOrdersOnSide)
}

func TestQueriesReturnDetachedOrders(t *testing.T) {
	e := getTestEngine(t)

	conf, err := e.SubmitOrder(matching.SideBuy, 10010, 5)
	require.NoError(t, err)

	// mutating a returned order must not reach into the book
	order, err := e.GetOrder(conf.Order.ID)
	require.NoError(t, err)
	order.Remaining = 0

	again, err := e.GetOrder(conf.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), again.Remaining)
}

func TestConfirmationIsSnapshot(t *testing.T) {
	e := getTestEngine(t)

	resting, err := e.SubmitOrder(matching.SideSell, 10020, 5)
	require.NoError(t, err)

	conf, err := e.SubmitOrder(matching.SideBuy, 10020, 2)
	require.NoError(t, err)
	require.Len(t, conf.PassiveOrdersAffected, 1)
	assert.Equal(t, uint64(3), conf.PassiveOrdersAffected[0].Remaining)

	// later fills rewrite the book, not confirmations already handed out
	_, err = e.SubmitOrder(matching.SideBuy, 10020, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), conf.PassiveOrdersAffected[0].Remaining)
	assert.Equal(t, uint64(5), resting.Order.Remaining)
}

// Reads of a resting order must stay consistent while crossing submissions
// fill it on another goroutine, run with -race.
func TestConcurrentReadsDuringMatching(t *testing.T) {
	e := getTestEngine(t)

	conf, err := e.SubmitOrder(matching.SideBuy, 10010, 200)
	require.NoError(t, err)
	id := conf.Order.ID

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_, err := e.SubmitOrder(matching.SideSell, 10010, 1)
			assert.NoError(t, err)
		}
	}()

	// remaining quantity only ever decreases as the fills land
	last := uint64(200)
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		order, err := e.GetOrder(id)
		require.NoError(t, err)
		assert.LessOrEqual(t, order.Remaining, last)
		last = order.Remaining
	}

	order, err := e.GetOrder(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), order.Remaining)
}

func TestEngineReloadConf(t *testing.T) {
	e := getTestEngine(t)

	cfg := execution.NewDefaultConfig()
	cfg.Level.Level = logging.DebugLevel
	cfg.Matching.Level.Level = logging.DebugLevel
	e.ReloadConf(cfg)

	// the engine keeps serving after a reload
	_, err := e.SubmitOrder(matching.SideBuy, 10010, 1)
	require.NoError(t, err)
}
