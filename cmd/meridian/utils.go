// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meridian-index/meridian/journal"
	"github.com/meridian-index/meridian/log"
	"github.com/meridian-index/meridian/lvldb"
	"github.com/meridian-index/meridian/meridian"
)

func initLogger(ctx *cli.Context) {
	logLevel := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	output := io.Writer(os.Stdout)
	useColor := isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb"
	var level slog.LevelVar
	level.Set(logLevel)
	handler := log.NewTerminalHandlerWithLevel(output, &level, useColor)
	log.SetDefault(log.NewLogger(handler))
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".meridian")
	}
	return ""
}

func loadNetConfig(ctx *cli.Context) (meridian.NetConfig, error) {
	path := ctx.String(networkFlag.Name)
	if path == "" {
		return meridian.DefaultNetConfig, nil
	}
	nc, err := meridian.LoadNetConfig(path)
	if err != nil {
		return meridian.NetConfig{}, errors.Wrap(err, "load network config")
	}
	return nc, nil
}

func openMainDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return lvldb.NewMem()
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	db, err := lvldb.New(filepath.Join(dataDir, "main.db"), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func openJournal(ctx *cli.Context) (*journal.Journal, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return journal.NewMem()
	}
	j, err := journal.New(filepath.Join(dataDir, "journal.db"))
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	return j, nil
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (*http.Server, string, error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		srv.Serve(listener)
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func handleExitSignal() context.Context {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
