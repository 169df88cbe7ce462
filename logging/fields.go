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

package logging

import (
	"time"

	"go.uber.org/zap"
)

// String constructs a field with the given key and value.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Duration constructs a field with the given key and value.
func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// Error constructs a field carrying an error under the standard "error" key.
func Error(err error) zap.Field {
	return zap.Error(err)
}

// OrderID constructs a field carrying an order id.
func OrderID(id uint64) zap.Field {
	return zap.Uint64("order-id", id)
}

// Price constructs a field carrying a price expressed in ticks.
func Price(price uint64) zap.Field {
	return zap.Uint64("price", price)
}

// Quantity constructs a field carrying an order quantity.
func Quantity(qty uint64) zap.Field {
	return zap.Uint64("quantity", qty)
}

// Side constructs a field carrying a book side name.
func Side(side string) zap.Field {
	return zap.String("side", side)
}
