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

package config

import (
	"bytes"
	"os"
	"path/filepath"

	"code.matchbook.io/matchbook/api"
	"code.matchbook.io/matchbook/core/execution"
	"code.matchbook.io/matchbook/logging"
	"code.matchbook.io/matchbook/metrics"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const configFileName = "config.toml"

// InstrumentConfig describes the single instrument this node makes a market
// in. PriceDecimals is the number of decimal places carried by wire prices;
// the engine itself only ever sees integer ticks.
type InstrumentConfig struct {
	Name          string `long:"name" description:"Instrument code, informational only"`
	PriceDecimals uint32 `long:"price-decimals" description:"Decimal places of one price tick"`
}

// Config ties together all other application configuration types.
type Config struct {
	Instrument InstrumentConfig `group:"Instrument" namespace:"instrument"`
	API        api.Config       `group:"API" namespace:"api"`
	Execution  execution.Config `group:"Execution" namespace:"execution"`
	Metrics    metrics.Config   `group:"Metrics" namespace:"metrics"`
	Logging    logging.Config   `group:"Logging" namespace:"logging"`
}

// NewDefaultConfig returns a set of defaults for all packages, as specified
// at the per-package config level.
func NewDefaultConfig() Config {
	return Config{
		Instrument: InstrumentConfig{
			Name:          "BTC/USD",
			PriceDecimals: 2,
		},
		API:       api.NewDefaultConfig(),
		Execution: execution.NewDefaultConfig(),
		Metrics:   metrics.NewDefaultConfig(),
		Logging:   logging.NewDefaultConfig(),
	}
}

// Read loads the configuration file found under rootPath on top of the
// defaults, so a partial file is valid.
func Read(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, configFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read configuration file")
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode configuration file")
	}
	return &cfg, nil
}

// Write serialises the given configuration into rootPath/config.toml.
func Write(rootPath string, cfg Config) error {
	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "unable to encode configuration")
	}
	path := filepath.Join(rootPath, configFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "unable to write configuration file")
	}
	return nil
}
