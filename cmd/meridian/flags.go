// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "path to a network config yaml file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8791",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables the prometheus metrics endpoint",
	}
	arbitratorFlag = cli.StringFlag{
		Name:  "arbitrator",
		Usage: "address allowed to resolve disputes",
	}
	selfFlag = cli.StringFlag{
		Name:  "self",
		Usage: "verifier identity disputes slash through",
	}
	minDisputeDepositFlag = cli.StringFlag{
		Name:  "min-dispute-deposit",
		Value: "10000000000000000000000",
		Usage: "minimum dispute deposit in wei",
	}
)
