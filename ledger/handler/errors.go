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

package handler

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/txhandler/ledger/common"
)

type BadInputsUtxoError struct {
	Inputs []common.UtxoId
}

func (e BadInputsUtxoError) Error() string {
	tmpInputs := make([]string, len(e.Inputs))
	for idx, tmpInput := range e.Inputs {
		tmpInputs[idx] = tmpInput.String()
	}
	return "bad input(s): " + strings.Join(tmpInputs, ", ")
}

type DuplicateInputsError struct {
	Inputs []common.UtxoId
}

func (e DuplicateInputsError) Error() string {
	tmpInputs := make([]string, len(e.Inputs))
	for idx, tmpInput := range e.Inputs {
		tmpInputs[idx] = tmpInput.String()
	}
	return "duplicate input(s): " + strings.Join(tmpInputs, ", ")
}

type InvalidSignatureError struct {
	InputIndex int
	Input      common.UtxoId
	Err        error
}

func (e InvalidSignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"invalid signature for input %d (%s): %v",
			e.InputIndex,
			e.Input.String(),
			e.Err,
		)
	}
	return fmt.Sprintf(
		"invalid signature for input %d (%s)",
		e.InputIndex,
		e.Input.String(),
	)
}

func (e InvalidSignatureError) Unwrap() error {
	return e.Err
}

type NegativeOutputError struct {
	OutputIndex int
	Amount      int64
}

func (e NegativeOutputError) Error() string {
	return fmt.Sprintf(
		"negative output: index %d, amount %d",
		e.OutputIndex,
		e.Amount,
	)
}

type ValueNotConservedUtxoError struct {
	Consumed *big.Int
	Produced *big.Int
}

func (e ValueNotConservedUtxoError) Error() string {
	return fmt.Sprintf(
		"value not conserved: consumed %s, produced %s",
		e.Consumed.String(),
		e.Produced.String(),
	)
}
