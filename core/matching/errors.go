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

import "github.com/pkg/errors"

var (
	// ErrInvalidQuantity signals a zero order quantity, or a fill that would
	// take an order's remaining quantity below zero.
	ErrInvalidQuantity = errors.New("invalid order quantity")
	// ErrInvalidPrice signals a zero order price.
	ErrInvalidPrice = errors.New("invalid order price")
	// ErrInvalidSide signals a side other than buy or sell.
	ErrInvalidSide = errors.New("invalid order side")
	// ErrOrderNotFound signals the order id is not resting on the book.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNoOrdersOnSide signals a best-price query against an empty side.
	ErrNoOrdersOnSide = errors.New("no orders on this side of the book")
)
