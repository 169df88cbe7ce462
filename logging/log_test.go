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

package logging_test

import (
	"testing"

	"code.matchbook.io/matchbook/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := logging.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, logging.DebugLevel, lvl)

	lvl, err = logging.ParseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, logging.ErrorLevel, lvl)

	_, err = logging.ParseLevel("not-a-level")
	assert.Error(t, err)
}

func TestNamedLoggerKeepsOwnLevel(t *testing.T) {
	log := logging.NewTestLogger()
	sub := log.Named("engine")

	assert.Equal(t, "engine", sub.GetName())

	sub.SetLevel(logging.ErrorLevel)
	assert.Equal(t, logging.ErrorLevel, sub.GetLevel())
	// the parent logger keeps its own level
	assert.Equal(t, logging.DebugLevel, log.GetLevel())
}

func TestNamedLoggerNesting(t *testing.T) {
	log := logging.NewTestLogger().Named("api")
	sub := log.Named("rest")
	assert.Equal(t, "api.rest", sub.GetName())
}
