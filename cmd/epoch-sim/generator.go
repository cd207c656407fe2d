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
	"crypto/ed25519"
	"encoding/binary"
	"math/rand/v2"

	"github.com/blinklabs-io/txhandler/ledger/common"
	"github.com/blinklabs-io/txhandler/ledger/simple"
	"github.com/blinklabs-io/txhandler/ledger/utxo"
)

const (
	genesisOutputsPerKey = 2
	genesisMinAmount     = 100
	genesisMaxAmount     = 1000
)

// Candidate kinds
const (
	candidateValid = iota
	candidateConflict
	candidateOverspend
	candidateBadSignature
	candidateDuplicateInput
)

// generator builds a genesis UTxO set and candidate batches from a seeded RNG.
// The same seed always produces the same keys, genesis and candidates
type generator struct {
	rng   *rand.Rand
	keys  []ed25519.PrivateKey
	addrs []common.Address
	owner map[common.Address]int
}

func newGenerator(seed uint64, keyCount int) *generator {
	g := &generator{
		rng:   rand.New(rand.NewPCG(seed, ^seed)),
		owner: make(map[common.Address]int),
	}
	for i := range keyCount {
		keySeed := make([]byte, ed25519.SeedSize)
		for j := 0; j < ed25519.SeedSize; j += 8 {
			binary.LittleEndian.PutUint64(keySeed[j:], g.rng.Uint64())
		}
		key := ed25519.NewKeyFromSeed(keySeed)
		addr, err := common.NewAddress(key.Public().(ed25519.PublicKey))
		if err != nil {
			// An ed25519 public key is always a valid curve point
			panic("unexpected error creating address: " + err.Error())
		}
		g.keys = append(g.keys, key)
		g.addrs = append(g.addrs, addr)
		g.owner[addr] = i
	}
	return g
}

func (g *generator) genesis() *utxo.UtxoSet {
	ret := utxo.NewUtxoSet()
	for i, addr := range g.addrs {
		genesisTxId := common.Blake2b256Hash(
			binary.BigEndian.AppendUint32([]byte("genesis"), uint32(i)), //nolint:gosec
		)
		for idx := range genesisOutputsPerKey {
			ret.Insert(
				common.NewUtxoId(genesisTxId, uint32(idx)), //nolint:gosec
				common.UtxoOutput{
					OutputAddress: addr,
					OutputAmount:  genesisMinAmount + g.rng.Int64N(genesisMaxAmount-genesisMinAmount),
				},
			)
		}
	}
	return ret
}

// epoch returns up to count candidates that spend from utxoSet. Most are valid
// against the outputs they claim, some deliberately are not. Later candidates
// may chain off the outputs of earlier ones
func (g *generator) epoch(utxoSet *utxo.UtxoSet, count int) []common.Transaction {
	available := utxoSet.Utxos()
	claimed := make(map[common.UtxoId]common.Utxo)
	var claimedIds []common.UtxoId
	ret := make([]common.Transaction, 0, count)
	for range count {
		kind := g.candidateKind()
		var inputs []common.Utxo
		switch {
		case kind == candidateConflict && len(claimedIds) > 0:
			inputs = append(inputs, claimed[claimedIds[g.rng.IntN(len(claimedIds))]])
		default:
			if kind == candidateConflict {
				kind = candidateValid
			}
			for range 1 + g.rng.IntN(2) {
				if len(available) == 0 {
					break
				}
				pick := g.rng.IntN(len(available))
				inputs = append(inputs, available[pick])
				available = append(available[:pick], available[pick+1:]...)
			}
		}
		if len(inputs) == 0 {
			break
		}
		if kind == candidateDuplicateInput {
			inputs = append(inputs, inputs[0])
		}
		tx := g.buildTx(kind, inputs)
		for _, tmpUtxo := range inputs {
			if _, ok := claimed[tmpUtxo.Id]; !ok {
				claimed[tmpUtxo.Id] = tmpUtxo
				claimedIds = append(claimedIds, tmpUtxo.Id)
			}
		}
		txId := tx.Hash()
		for idx, tmpOutput := range tx.Outputs() {
			available = append(
				available,
				common.Utxo{
					Id:     common.NewUtxoId(txId, uint32(idx)), //nolint:gosec
					Output: tmpOutput,
				},
			)
		}
		ret = append(ret, tx)
	}
	return ret
}

func (g *generator) candidateKind() int {
	switch g.rng.IntN(10) {
	case 0:
		return candidateConflict
	case 1:
		return candidateOverspend
	case 2:
		return candidateBadSignature
	case 3:
		return candidateDuplicateInput
	default:
		return candidateValid
	}
}

func (g *generator) buildTx(kind int, inputs []common.Utxo) *simple.SimpleTransaction {
	tx := simple.NewSimpleTransaction()
	var consumed int64
	for _, tmpUtxo := range inputs {
		tx.AddInput(tmpUtxo.Id.TxId, tmpUtxo.Id.OutputIndex)
		consumed += tmpUtxo.Output.Amount()
	}
	produced := consumed
	switch kind {
	case candidateOverspend:
		produced += 1 + g.rng.Int64N(10)
	case candidateValid:
		// Occasionally burn a fee
		if g.rng.IntN(4) == 0 && produced > 0 {
			produced -= g.rng.Int64N(produced/10 + 1)
		}
	}
	if produced > 1 && g.rng.IntN(2) == 0 {
		change := g.rng.Int64N(produced)
		tx.AddOutput(g.randomAddr(), produced-change)
		tx.AddOutput(inputs[0].Output.Address(), change)
	} else {
		tx.AddOutput(g.randomAddr(), produced)
	}
	for idx, tmpUtxo := range inputs {
		signer := g.owner[tmpUtxo.Output.Address()]
		if kind == candidateBadSignature {
			// With a single key there is no wrong key to sign with, so leave it unsigned
			if len(g.keys) == 1 {
				continue
			}
			signer = (signer + 1 + g.rng.IntN(len(g.keys)-1)) % len(g.keys)
		}
		// Sign only fails for an out of range input or a malformed key
		_ = tx.Sign(idx, g.keys[signer])
	}
	return tx
}

func (g *generator) randomAddr() common.Address {
	return g.addrs[g.rng.IntN(len(g.addrs))]
}
