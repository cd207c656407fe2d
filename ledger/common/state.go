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

package common

// Related files:
//   - tx.go: Transaction interface that validation rules operate on
//   - rules.go: Validation rule signature and runner
//   - ledger/utxo/utxo.go: UtxoSet, the in-memory UtxoState
//   - internal/test/ledger/ledger.go: MockUtxoState for testing

import "errors"

// ErrUtxoNotFound is returned by UtxoState implementations when the requested
// output is not (or no longer) unspent
var ErrUtxoNotFound = errors.New("utxo not found")

// UtxoState defines the interface for querying the UTxO state
type UtxoState interface {
	UtxoById(UtxoId) (Utxo, error)
}
