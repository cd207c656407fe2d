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

// Package simple implements a minimal value-transfer transaction format.
//
// A transaction is encoded as the CBOR array [inputs, outputs], where each input
// is [tx id, output index, signature] and each output is [address, amount]. The
// transaction ID is the Blake2b-256 hash of the canonical form of that encoding.
package simple

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync/atomic"

	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"

	"github.com/blinklabs-io/txhandler/cbor"
	"github.com/blinklabs-io/txhandler/ledger/common"
)

// Compile-time check that SimpleTransaction can be validated
var _ common.Transaction = (*SimpleTransaction)(nil)

type SimpleTransaction struct {
	cbor.DecodeStoreCbor
	cbor.StructAsArray
	TxInputs  []SimpleTransactionInput
	TxOutputs []SimpleTransactionOutput
	hash      atomic.Pointer[common.Blake2b256]
}

// simpleTransactionBody mirrors SimpleTransaction without the custom CBOR
// handling so it can be encoded directly
type simpleTransactionBody struct {
	cbor.StructAsArray
	TxInputs  []SimpleTransactionInput
	TxOutputs []SimpleTransactionOutput
}

// signableContent is what the signature for a single input covers
type signableContent struct {
	cbor.StructAsArray
	TxId        common.Blake2b256
	OutputIndex uint32
	TxOutputs   []SimpleTransactionOutput
}

func NewSimpleTransaction() *SimpleTransaction {
	return &SimpleTransaction{}
}

// NewSimpleTransactionFromCbor decodes a transaction. The original CBOR is kept
// and returned by Cbor(). Data following the transaction is an error
func NewSimpleTransactionFromCbor(data []byte) (*SimpleTransaction, error) {
	var tx SimpleTransaction
	n, err := cbor.Decode(data, &tx)
	if err != nil {
		return nil, fmt.Errorf("decode simple transaction: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf(
			"decode simple transaction: %d trailing bytes",
			len(data)-n,
		)
	}
	return &tx, nil
}

func (t *SimpleTransaction) UnmarshalCBOR(cborData []byte) error {
	if err := t.UnmarshalCborGeneric(cborData, t); err != nil {
		return err
	}
	t.hash.Store(nil)
	return nil
}

func (t *SimpleTransaction) MarshalCBOR() ([]byte, error) {
	if cborData := t.DecodeStoreCbor.Cbor(); cborData != nil {
		return cborData, nil
	}
	return t.encode()
}

func (t *SimpleTransaction) encode() ([]byte, error) {
	// Always encode empty lists rather than nulls
	tmpBody := simpleTransactionBody{
		TxInputs:  []SimpleTransactionInput{},
		TxOutputs: []SimpleTransactionOutput{},
	}
	tmpBody.TxInputs = append(tmpBody.TxInputs, t.TxInputs...)
	tmpBody.TxOutputs = append(tmpBody.TxOutputs, t.TxOutputs...)
	return cbor.Encode(&tmpBody)
}

// Cbor returns the original CBOR for a decoded transaction, or the current
// encoding for a transaction built in memory
func (t *SimpleTransaction) Cbor() []byte {
	cborData, err := t.MarshalCBOR()
	if err != nil {
		return nil
	}
	return cborData
}

// Hash returns the transaction ID, the Blake2b-256 hash of the canonical
// encoding. Equivalent non-canonical encodings of a decoded transaction have the
// same ID
func (t *SimpleTransaction) Hash() common.Blake2b256 {
	if t == nil {
		return common.Blake2b256{}
	}
	if tmpHash := t.hash.Load(); tmpHash != nil {
		return *tmpHash
	}
	cborData, err := t.encode()
	if err != nil {
		return common.Blake2b256{}
	}
	tmpHash := common.Blake2b256Hash(cborData)
	t.hash.Store(&tmpHash)
	return tmpHash
}

func (t *SimpleTransaction) Inputs() []common.TransactionInput {
	if t == nil {
		return nil
	}
	ret := make([]common.TransactionInput, 0, len(t.TxInputs))
	for _, input := range t.TxInputs {
		ret = append(ret, input)
	}
	return ret
}

func (t *SimpleTransaction) Outputs() []common.TransactionOutput {
	if t == nil {
		return nil
	}
	ret := make([]common.TransactionOutput, 0, len(t.TxOutputs))
	for _, output := range t.TxOutputs {
		ret = append(ret, output)
	}
	return ret
}

// SignableBytes returns the CBOR encoding of [tx id, output index, outputs] for
// the input at the specified index
func (t *SimpleTransaction) SignableBytes(idx int) ([]byte, error) {
	if t == nil {
		return nil, errors.New("nil transaction")
	}
	if idx < 0 || idx >= len(t.TxInputs) {
		return nil, fmt.Errorf("input index out of range: %d", idx)
	}
	input := t.TxInputs[idx]
	tmpContent := signableContent{
		TxId:        input.TxId,
		OutputIndex: input.OutputIndex,
		TxOutputs:   []SimpleTransactionOutput{},
	}
	tmpContent.TxOutputs = append(tmpContent.TxOutputs, t.TxOutputs...)
	return cbor.Encode(&tmpContent)
}

// AddInput appends an unsigned input claiming the specified output
func (t *SimpleTransaction) AddInput(txId common.Blake2b256, outputIndex uint32) {
	t.TxInputs = append(
		t.TxInputs,
		SimpleTransactionInput{
			TxId:        txId,
			OutputIndex: outputIndex,
		},
	)
	t.modified()
}

func (t *SimpleTransaction) AddOutput(address common.Address, amount int64) {
	t.TxOutputs = append(
		t.TxOutputs,
		SimpleTransactionOutput{
			OutputAddress: address,
			OutputAmount:  amount,
		},
	)
	t.modified()
}

// SetSignature replaces the signature on the input at the specified index
func (t *SimpleTransaction) SetSignature(idx int, signature []byte) error {
	if idx < 0 || idx >= len(t.TxInputs) {
		return fmt.Errorf("input index out of range: %d", idx)
	}
	t.TxInputs[idx].InputSignature = append([]byte(nil), signature...)
	t.modified()
	return nil
}

// Sign signs the input at the specified index with the provided key
func (t *SimpleTransaction) Sign(idx int, key ed25519.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("invalid private key size: %d", len(key))
	}
	msg, err := t.SignableBytes(idx)
	if err != nil {
		return err
	}
	return t.SetSignature(idx, ed25519.Sign(key, msg))
}

// modified drops the stored CBOR and cached hash after a change
func (t *SimpleTransaction) modified() {
	t.SetCbor(nil)
	t.hash.Store(nil)
}

func (t *SimpleTransaction) Utxorpc() *utxorpc.Tx {
	txi := []*utxorpc.TxInput{}
	txo := []*utxorpc.TxOutput{}
	for _, i := range t.TxInputs {
		input := i.Utxorpc()
		txi = append(txi, input)
	}
	for _, o := range t.TxOutputs {
		output := o.Utxorpc()
		txo = append(txo, output)
	}
	tx := &utxorpc.Tx{
		Inputs:  txi,
		Outputs: txo,
		Hash:    t.Hash().Bytes(),
	}
	return tx
}

type SimpleTransactionInput struct {
	cbor.StructAsArray
	TxId           common.Blake2b256
	OutputIndex    uint32
	InputSignature []byte
}

func (i SimpleTransactionInput) Id() common.Blake2b256 {
	return i.TxId
}

func (i SimpleTransactionInput) Index() uint32 {
	return i.OutputIndex
}

func (i SimpleTransactionInput) Signature() []byte {
	return i.InputSignature
}

func (i SimpleTransactionInput) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      i.TxId.Bytes(),
		OutputIndex: i.OutputIndex,
	}
}

func (i SimpleTransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxId, i.OutputIndex)
}

type SimpleTransactionOutput struct {
	cbor.StructAsArray
	OutputAddress common.Address
	OutputAmount  int64
}

func (o SimpleTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o SimpleTransactionOutput) Amount() int64 {
	return o.OutputAmount
}

func (o SimpleTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	// utxorpc has no representation for negative amounts
	var coin uint64
	if o.OutputAmount > 0 {
		coin = uint64(o.OutputAmount)
	}
	return &utxorpc.TxOutput{
		Address: o.OutputAddress.Bytes(),
		Coin:    coin,
	}
}

func (o SimpleTransactionOutput) String() string {
	return fmt.Sprintf(
		"(SimpleTransactionOutput address=%s amount=%d)",
		o.OutputAddress.String(),
		o.OutputAmount,
	)
}
