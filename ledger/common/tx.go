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

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
)

type Transaction interface {
	// Hash returns the transaction identifier. It must be deterministic for the
	// transaction content
	Hash() Blake2b256
	Inputs() []TransactionInput
	Outputs() []TransactionOutput
	// SignableBytes returns the content that the signature of the input at the
	// given index must authenticate. It never includes that input's signature
	SignableBytes(int) ([]byte, error)
}

type TransactionInput interface {
	Id() Blake2b256
	Index() uint32
	Signature() []byte
	String() string
}

type TransactionOutput interface {
	Address() Address
	Amount() int64
	String() string
}

// UtxoId identifies a single output of a single transaction
type UtxoId struct {
	TxId        Blake2b256
	OutputIndex uint32
}

func NewUtxoId(txId Blake2b256, outputIndex uint32) UtxoId {
	return UtxoId{
		TxId:        txId,
		OutputIndex: outputIndex,
	}
}

// UtxoIdFromInput returns the UtxoId claimed by a transaction input
func UtxoIdFromInput(input TransactionInput) UtxoId {
	return NewUtxoId(input.Id(), input.Index())
}

func (u UtxoId) Id() Blake2b256 {
	return u.TxId
}

func (u UtxoId) Index() uint32 {
	return u.OutputIndex
}

func (u UtxoId) String() string {
	return fmt.Sprintf("%s#%d", u.TxId, u.OutputIndex)
}

// Compare orders UtxoIds by transaction ID and then by output index
func (u UtxoId) Compare(other UtxoId) int {
	if ret := bytes.Compare(u.TxId[:], other.TxId[:]); ret != 0 {
		return ret
	}
	return cmp.Compare(u.OutputIndex, other.OutputIndex)
}

// UtxoOutput is the owner and value recorded for an unspent output
type UtxoOutput struct {
	OutputAddress Address
	OutputAmount  int64
}

// NewUtxoOutput captures the owner and value of any TransactionOutput
func NewUtxoOutput(output TransactionOutput) UtxoOutput {
	return UtxoOutput{
		OutputAddress: output.Address(),
		OutputAmount:  output.Amount(),
	}
}

func (o UtxoOutput) Address() Address {
	return o.OutputAddress
}

func (o UtxoOutput) Amount() int64 {
	return o.OutputAmount
}

func (o UtxoOutput) String() string {
	return fmt.Sprintf(
		"(UtxoOutput address=%s amount=%d)",
		o.OutputAddress.String(),
		o.OutputAmount,
	)
}

type Utxo struct {
	Id     UtxoId
	Output TransactionOutput
}

// IsNilTransaction returns whether tx is nil, including a nil pointer stored in
// the interface
func IsNilTransaction(tx Transaction) bool {
	return isNil(tx)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
