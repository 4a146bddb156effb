// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meridian-index/meridian/api"
	"github.com/meridian-index/meridian/dispute"
	"github.com/meridian-index/meridian/health"
	"github.com/meridian-index/meridian/kv"
	"github.com/meridian-index/meridian/l1"
	"github.com/meridian-index/meridian/log"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/metrics"
	"github.com/meridian-index/meridian/migration"
	"github.com/meridian-index/meridian/staking"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

const headerCacheSize = 512

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Meridian",
		Usage:     "Indexing protocol ledger service",
		Copyright: "2026 The Meridian developers",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
			arbitratorFlag,
			selfFlag,
			minDisputeDepositFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	netConfig, err := loadNetConfig(ctx)
	if err != nil {
		return err
	}
	log.Info("network config loaded", "config", netConfig)

	mainDB, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	eventLog, err := openJournal(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing journal..."); eventLog.Close() }()

	ledger := staking.New(mainDB, nil, staking.Config{
		MaxThawingPeriod:   netConfig.MaxThawingPeriod,
		DelegationSlashing: netConfig.DelegationSlashing,
	})

	headers, err := l1.NewCodec(headerCacheSize)
	if err != nil {
		return err
	}
	coordinator, err := migration.New(mainDB, migration.NewLinearSignalPool(mainDB), headers, migration.Config{
		Gateway:             netConfig.Gateway,
		Governor:            netConfig.Governor,
		Counterpart:         netConfig.Counterpart,
		CuratorBalancesSlot: netConfig.CuratorBalancesSlot,
	})
	if err != nil {
		return err
	}

	manager, err := buildDisputeManager(ctx, mainDB, ledger)
	if err != nil {
		return err
	}

	handler := api.New(ledger, coordinator, manager, eventLog, health.New(mainDB), api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	apiSrv, apiURL, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	log.Info("API server started", "url", apiURL)

	exitCtx := handleExitSignal()
	var group errgroup.Group
	group.Go(func() error {
		<-exitCtx.Done()
		log.Info("stopping API server...")
		return apiSrv.Shutdown(context.Background())
	})
	return group.Wait()
}

// buildDisputeManager wires the dispute layer when an arbitrator is
// configured. Without one, disputes stay disabled.
func buildDisputeManager(ctx *cli.Context, store kv.Store, ledger *staking.Staking) (*dispute.Manager, error) {
	rawArbitrator := ctx.String(arbitratorFlag.Name)
	rawSelf := ctx.String(selfFlag.Name)
	if rawArbitrator == "" || rawSelf == "" {
		return nil, nil
	}
	arbitrator, err := meridian.ParseAddress(rawArbitrator)
	if err != nil {
		return nil, errors.WithMessage(err, "arbitrator")
	}
	self, err := meridian.ParseAddress(rawSelf)
	if err != nil {
		return nil, errors.WithMessage(err, "self")
	}
	minDeposit, err := uint256.FromDecimal(ctx.String(minDisputeDepositFlag.Name))
	if err != nil {
		return nil, errors.WithMessage(err, "min-dispute-deposit")
	}
	return dispute.New(store, ledger, dispute.Config{
		Self:                  self,
		Arbitrator:            arbitrator,
		DomainSeparator:       meridian.Keccak256([]byte("meridian-disputes"), self.Bytes()),
		MinDeposit:            minDeposit,
		FishermanRewardCutPPM: 100_000,
		CancelWindow:          netConfigCancelWindow,
	}), nil
}

// cancel window for unresolved disputes, 7 days.
const netConfigCancelWindow = 7 * 24 * 3600
