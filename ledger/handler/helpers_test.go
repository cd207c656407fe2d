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

package handler_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/txhandler/ledger/common"
	"github.com/blinklabs-io/txhandler/ledger/simple"
	"github.com/blinklabs-io/txhandler/ledger/utxo"
)

type testOutput struct {
	addr   common.Address
	amount int64
}

// newTestTx builds a transaction spending the specified outputs, with every input signed by key
func newTestTx(
	t *testing.T,
	key ed25519.PrivateKey,
	inputs []common.UtxoId,
	outputs ...testOutput,
) *simple.SimpleTransaction {
	t.Helper()
	tx := simple.NewSimpleTransaction()
	for _, input := range inputs {
		tx.AddInput(input.TxId, input.OutputIndex)
	}
	for _, output := range outputs {
		tx.AddOutput(output.addr, output.amount)
	}
	for idx := range inputs {
		require.NoError(t, tx.Sign(idx, key))
	}
	return tx
}

// utxoIds returns the IDs of all entries in the set
func utxoIds(s *utxo.UtxoSet) map[common.UtxoId]int64 {
	ret := make(map[common.UtxoId]int64)
	for _, tmpUtxo := range s.Utxos() {
		ret[tmpUtxo.Id] = tmpUtxo.Output.Amount()
	}
	return ret
}

func txList(txs ...common.Transaction) []common.Transaction {
	return txs
}
