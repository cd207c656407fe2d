// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/txhandler/ledger/handler"
)

type globalFlags struct {
	flagset *flag.FlagSet
	epochs  int
	txs     int
	seed    uint64
	keys    int
	debug   bool
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.IntVar(&f.epochs, "epochs", 10, "number of epochs to run")
	f.flagset.IntVar(
		&f.txs,
		"txs",
		20,
		"number of candidate transactions per epoch",
	)
	f.flagset.Uint64Var(
		&f.seed,
		"seed",
		1,
		"random seed used for keys, genesis outputs and candidates",
	)
	f.flagset.IntVar(
		&f.keys,
		"keys",
		4,
		"number of key pairs that own outputs",
	)
	f.flagset.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return f
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}
	if f.epochs < 0 || f.txs < 0 {
		fmt.Printf("-epochs and -txs must not be negative\n")
		os.Exit(1)
	}
	if f.keys < 1 {
		fmt.Printf("-keys must be at least 1\n")
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if f.debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewTextHandler(
			os.Stdout,
			&slog.HandlerOptions{
				Level: logLevel,
			},
		),
	)
	slog.SetDefault(logger)

	gen := newGenerator(f.seed, f.keys)
	genesis := gen.genesis()
	h := handler.New(genesis, handler.WithLogger(logger))
	logger.Info(
		"created genesis",
		"component", "epoch-sim",
		"keys", f.keys,
		"utxos", genesis.Len(),
		"value", genesis.TotalValue().String(),
	)

	var totalAccepted, totalRejected int
	for epoch := range f.epochs {
		candidates := gen.epoch(h.UtxoSet(), f.txs)
		result := h.HandleTxsWithResults(candidates)
		totalAccepted += len(result.Accepted)
		totalRejected += len(result.Rejected)
		utxoSet := h.UtxoSet()
		logger.Info(
			"epoch complete",
			"component", "epoch-sim",
			"epoch", epoch,
			"candidates", len(candidates),
			"accepted", len(result.Accepted),
			"rejected", len(result.Rejected),
			"utxos", utxoSet.Len(),
			"value", utxoSet.TotalValue().String(),
		)
	}

	utxoSet := h.UtxoSet()
	fmt.Printf(
		"epochs=%d accepted=%d rejected=%d utxos=%d value=%s\n",
		f.epochs,
		totalAccepted,
		totalRejected,
		utxoSet.Len(),
		utxoSet.TotalValue().String(),
	)
}
