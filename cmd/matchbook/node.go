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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"code.matchbook.io/matchbook/api"
	"code.matchbook.io/matchbook/config"
	"code.matchbook.io/matchbook/core/execution"
	"code.matchbook.io/matchbook/logging"
	"code.matchbook.io/matchbook/metrics"

	"github.com/jessevdk/go-flags"
)

type NodeCmd struct {
	config.RootPathFlag
}

var nodeCmd NodeCmd

func (opts *NodeCmd) Execute(_ []string) error {
	env := os.Getenv("MATCHBOOK_ENV")
	if env == "" {
		env = logging.NewDefaultConfig().Environment
	}
	log := logging.NewLoggerFromEnv(env)
	defer log.AtExit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	confWatcher, err := config.NewFromFile(ctx, log, opts.RootPath)
	if err != nil {
		return err
	}
	cfg := confWatcher.Get()

	if err := metrics.Start(cfg.Metrics); err != nil {
		return err
	}

	engine := execution.NewEngine(log, cfg.Execution, cfg.Instrument.Name)
	server := api.NewServer(log, cfg.API, engine, cfg.Instrument.PriceDecimals)

	confWatcher.OnConfigUpdate(func(cfg config.Config) {
		engine.ReloadConf(cfg.Execution)
		server.ReloadConf(cfg.API)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("node started",
		logging.String("instrument", cfg.Instrument.Name),
		logging.String("root-path", opts.RootPath))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("caught signal", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("api server error", logging.Error(err))
			return err
		}
	}

	return server.Stop()
}

func Node(_ context.Context, parser *flags.Parser) error {
	nodeCmd = NodeCmd{
		RootPathFlag: config.NewRootPathFlag(),
	}
	_, err := parser.AddCommand("node", "Runs a matchbook node", "Runs a matchbook node as defined by the config file", &nodeCmd)
	return err
}
