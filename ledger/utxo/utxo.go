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

// Package utxo implements the in-memory set of unspent transaction outputs.
package utxo

import (
	"maps"
	"math/big"
	"slices"

	"github.com/blinklabs-io/txhandler/ledger/common"
)

// Compile-time check that UtxoSet can back transaction validation
var _ common.UtxoState = (*UtxoSet)(nil)

// UtxoSet maps each unspent output's UtxoId to its owner and value.
//
// A UtxoSet is not safe for concurrent mutation. Concurrent readers are fine as
// long as no writer is active
type UtxoSet struct {
	utxos map[common.UtxoId]common.UtxoOutput
}

func NewUtxoSet() *UtxoSet {
	return &UtxoSet{
		utxos: make(map[common.UtxoId]common.UtxoOutput),
	}
}

// NewUtxoSetFromUtxos returns a UtxoSet populated with the provided UTxOs. Later
// entries overwrite earlier entries with the same ID
func NewUtxoSetFromUtxos(utxos []common.Utxo) *UtxoSet {
	s := NewUtxoSet()
	for _, tmpUtxo := range utxos {
		if tmpUtxo.Output == nil {
			continue
		}
		s.Insert(tmpUtxo.Id, tmpUtxo.Output)
	}
	return s
}

// Contains returns whether the ID currently refers to an unspent output
func (s *UtxoSet) Contains(id common.UtxoId) bool {
	_, ok := s.utxos[id]
	return ok
}

// Lookup returns the output recorded for the ID, if present
func (s *UtxoSet) Lookup(id common.UtxoId) (common.TransactionOutput, bool) {
	output, ok := s.utxos[id]
	if !ok {
		return nil, false
	}
	return output, true
}

// Insert adds or overwrites the output recorded for the ID. Only the owner and
// value are retained
func (s *UtxoSet) Insert(id common.UtxoId, output common.TransactionOutput) {
	if s.utxos == nil {
		s.utxos = make(map[common.UtxoId]common.UtxoOutput)
	}
	s.utxos[id] = common.NewUtxoOutput(output)
}

// Remove deletes the output recorded for the ID. Removing an ID that is not
// present does nothing
func (s *UtxoSet) Remove(id common.UtxoId) {
	delete(s.utxos, id)
}

// Clone returns an independent copy of the set
func (s *UtxoSet) Clone() *UtxoSet {
	if s == nil || s.utxos == nil {
		return NewUtxoSet()
	}
	return &UtxoSet{
		utxos: maps.Clone(s.utxos),
	}
}

// UtxoById implements common.UtxoState
func (s *UtxoSet) UtxoById(id common.UtxoId) (common.Utxo, error) {
	output, ok := s.Lookup(id)
	if !ok {
		return common.Utxo{}, common.ErrUtxoNotFound
	}
	return common.Utxo{
		Id:     id,
		Output: output,
	}, nil
}

func (s *UtxoSet) Len() int {
	return len(s.utxos)
}

// Utxos returns all unspent outputs ordered by ID
func (s *UtxoSet) Utxos() []common.Utxo {
	ids := slices.SortedFunc(
		maps.Keys(s.utxos),
		func(a, b common.UtxoId) int { return a.Compare(b) },
	)
	ret := make([]common.Utxo, 0, len(ids))
	for _, id := range ids {
		ret = append(
			ret,
			common.Utxo{
				Id:     id,
				Output: s.utxos[id],
			},
		)
	}
	return ret
}

// TotalValue returns the sum of the values of all unspent outputs
func (s *UtxoSet) TotalValue() *big.Int {
	total := new(big.Int)
	for _, output := range s.utxos {
		total.Add(total, big.NewInt(output.OutputAmount))
	}
	return total
}
