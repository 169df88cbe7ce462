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
	"time"

	"code.matchbook.io/matchbook/config/encoding"
	"code.matchbook.io/matchbook/logging"
)

const namedLogger = "api"

// Config represents the configuration of the REST API server.
type Config struct {
	Level           encoding.LogLevel `long:"log-level"`
	IP              string            `long:"ip"`
	Port            int               `long:"port"`
	ShutdownTimeout encoding.Duration `long:"shutdown-timeout"`
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:           encoding.LogLevel{Level: logging.InfoLevel},
		IP:              "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: encoding.Duration{Duration: 5 * time.Second},
	}
}
