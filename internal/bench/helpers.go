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


// Package bench provides benchmark fixtures for transaction validation and
// epoch processing.
package bench

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/blinklabs-io/txhandler/ledger/common"
	"github.com/blinklabs-io/txhandler/ledger/simple"
	"github.com/blinklabs-io/txhandler/ledger/utxo"
)

// EpochFixture contains a UTxO set and a batch of candidate transactions that
// are all valid when processed in order
type EpochFixture struct {
	Name    string
	UtxoSet *utxo.UtxoSet
	Txs     []common.Transaction
}

// BenchKey returns a deterministic key and its address
func BenchKey(seed uint32) (ed25519.PrivateKey, common.Address) {
	keySeed := make([]byte, ed25519.SeedSize)
	binary.BigEndian.PutUint32(keySeed, seed)
	key := ed25519.NewKeyFromSeed(keySeed)
	addr, err := common.NewAddress(key.Public().(ed25519.PublicKey))
	if err != nil {
		panic(fmt.Sprintf("unexpected error creating address: %s", err))
	}
	return key, addr
}

// NewEpochFixture builds a UTxO set with utxoCount outputs owned by a single key
// and txCount transactions. Each transaction spends inputsPerTx outputs that
// no other transaction in the batch spends
func NewEpochFixture(utxoCount, txCount, inputsPerTx int) (*EpochFixture, error) {
	if txCount*inputsPerTx > utxoCount {
		return nil, fmt.Errorf(
			"not enough UTxOs (%d) for %d transactions with %d inputs each",
			utxoCount,
			txCount,
			inputsPerTx,
		)
	}
	key, addr := BenchKey(1)
	_, payee := BenchKey(2)
	genesisTxId := common.Blake2b256Hash([]byte("bench genesis"))
	utxoSet := utxo.NewUtxoSet()
	for idx := range utxoCount {
		utxoSet.Insert(
			common.NewUtxoId(genesisTxId, uint32(idx)), //nolint:gosec
			common.UtxoOutput{
				OutputAddress: addr,
				OutputAmount:  1_000_000,
			},
		)
	}
	txs := make([]common.Transaction, 0, txCount)
	for txIdx := range txCount {
		tx := simple.NewSimpleTransaction()
		for inputIdx := range inputsPerTx {
			tx.AddInput(
				genesisTxId,
				uint32(txIdx*inputsPerTx+inputIdx), //nolint:gosec
			)
		}
		tx.AddOutput(payee, int64(inputsPerTx)*1_000_000-1_000)
		tx.AddOutput(addr, 1_000)
		for inputIdx := range inputsPerTx {
			if err := tx.Sign(inputIdx, key); err != nil {
				return nil, err
			}
		}
		txs = append(txs, tx)
	}
	return &EpochFixture{
		Name:    fmt.Sprintf("Utxos_%d_Txs_%d_Inputs_%d", utxoCount, txCount, inputsPerTx),
		UtxoSet: utxoSet,
		Txs:     txs,
	}, nil
}

// MustNewEpochFixture is like NewEpochFixture but panics on error
func MustNewEpochFixture(utxoCount, txCount, inputsPerTx int) *EpochFixture {
	fixture, err := NewEpochFixture(utxoCount, txCount, inputsPerTx)
	if err != nil {
		panic(fmt.Sprintf("failed to build epoch fixture: %v", err))
	}
	return fixture
}
