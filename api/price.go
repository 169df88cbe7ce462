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

package api

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("price is not a positive multiple of one tick")

// parsePrice converts a decimal price string from the wire into integer
// ticks. The price must be positive and must not carry more decimal places
// than the instrument's tick allows.
func parsePrice(s string, decimals uint32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	ticks := d.Shift(int32(decimals))
	if !ticks.IsInteger() || !ticks.IsPositive() {
		return 0, ErrInvalidPrice
	}
	bi := ticks.BigInt()
	if !bi.IsUint64() {
		return 0, ErrInvalidPrice
	}
	return bi.Uint64(), nil
}

// formatPrice renders integer ticks back into the wire's decimal string.
func formatPrice(ticks uint64, decimals uint32) string {
	bi := new(big.Int).SetUint64(ticks)
	return decimal.NewFromBigInt(bi, -int32(decimals)).String()
}
