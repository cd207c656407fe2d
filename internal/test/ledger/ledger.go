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

package test_ledger

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/blinklabs-io/txhandler/ledger/common"
)

// Compile-time checks for the test doubles
var (
	_ common.UtxoState         = (*MockUtxoState)(nil)
	_ common.SignatureVerifier = FakeVerifier{}
)

// MockUtxoState is the canonical internal mock used by tests. Tests should
// construct &test_ledger.MockUtxoState{} and configure UtxoByIdFunc or Utxos to
// control behavior
type MockUtxoState struct {
	Utxos        []common.Utxo
	UtxoByIdFunc func(common.UtxoId) (common.Utxo, error)
}

func (m *MockUtxoState) UtxoById(id common.UtxoId) (common.Utxo, error) {
	if m.UtxoByIdFunc != nil {
		return m.UtxoByIdFunc(id)
	}
	for _, tmpUtxo := range m.Utxos {
		if tmpUtxo.Id == id {
			return tmpUtxo, nil
		}
	}
	return common.Utxo{}, common.ErrUtxoNotFound
}

// FakeVerifier is a deterministic stand-in for real signature verification. A
// signature is valid when it equals FakeSign(addr, msg)
type FakeVerifier struct{}

func (FakeVerifier) Verify(addr common.Address, msg []byte, sig []byte) bool {
	return bytes.Equal(sig, FakeSign(addr, msg))
}

// FakeSign returns the signature FakeVerifier accepts for the address and message
func FakeSign(addr common.Address, msg []byte) []byte {
	tmpData := append(addr.Bytes(), msg...)
	tmpHash := common.Blake2b256Hash(tmpData)
	return tmpHash.Bytes()
}

// AcceptAllVerifier accepts any signature
var AcceptAllVerifier = common.SignatureVerifierFunc(
	func(common.Address, []byte, []byte) bool { return true },
)

// RejectAllVerifier rejects every signature
var RejectAllVerifier = common.SignatureVerifierFunc(
	func(common.Address, []byte, []byte) bool { return false },
)

// NewTestKey returns a deterministic ed25519 key and its address for the given seed value
func NewTestKey(seed byte) (ed25519.PrivateKey, common.Address) {
	seedBytes := bytes.Repeat([]byte{seed}, ed25519.SeedSize)
	key := ed25519.NewKeyFromSeed(seedBytes)
	addr, err := common.NewAddress(key.Public().(ed25519.PublicKey))
	if err != nil {
		panic(fmt.Sprintf("unexpected error creating address: %s", err))
	}
	return key, addr
}

// NewTestTxId returns a deterministic transaction ID for the given seed value
func NewTestTxId(seed byte) common.Blake2b256 {
	return common.Blake2b256Hash([]byte{seed})
}

// NewTestUtxo returns a UTxO owned by addr
func NewTestUtxo(
	txId common.Blake2b256,
	idx uint32,
	addr common.Address,
	amount int64,
) common.Utxo {
	return common.Utxo{
		Id: common.NewUtxoId(txId, idx),
		Output: common.UtxoOutput{
			OutputAddress: addr,
			OutputAmount:  amount,
		},
	}
}
