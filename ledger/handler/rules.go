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
	"math/big"

	"github.com/blinklabs-io/txhandler/ledger/common"
)

// UtxoValidationRules is the default rule set. A transaction is valid when every
// rule passes
var UtxoValidationRules = []common.UtxoValidationRuleFunc{
	UtxoValidateBadInputsUtxo,
	UtxoValidateDuplicateInputs,
	UtxoValidateSignatures,
	UtxoValidateOutputNegative,
	UtxoValidateValueNotConservedUtxo,
}

// UtxoValidateBadInputsUtxo ensures that all inputs are present in the ledger state (have not been spent)
func UtxoValidateBadInputsUtxo(
	tx common.Transaction,
	ls common.UtxoState,
	verifier common.SignatureVerifier,
) error {
	var badInputs []common.UtxoId
	for _, tmpInput := range tx.Inputs() {
		id := common.UtxoIdFromInput(tmpInput)
		if _, err := ls.UtxoById(id); err != nil {
			badInputs = append(badInputs, id)
		}
	}
	if len(badInputs) == 0 {
		return nil
	}
	return BadInputsUtxoError{
		Inputs: badInputs,
	}
}

// UtxoValidateDuplicateInputs ensures that no output is claimed more than once by the transaction
func UtxoValidateDuplicateInputs(
	tx common.Transaction,
	ls common.UtxoState,
	verifier common.SignatureVerifier,
) error {
	var dupInputs []common.UtxoId
	claimed := make(map[common.UtxoId]struct{})
	for _, tmpInput := range tx.Inputs() {
		id := common.UtxoIdFromInput(tmpInput)
		if _, ok := claimed[id]; ok {
			dupInputs = append(dupInputs, id)
			continue
		}
		claimed[id] = struct{}{}
	}
	if len(dupInputs) == 0 {
		return nil
	}
	return DuplicateInputsError{
		Inputs: dupInputs,
	}
}

// UtxoValidateSignatures ensures that each input is signed by the owner of the output it spends
func UtxoValidateSignatures(
	tx common.Transaction,
	ls common.UtxoState,
	verifier common.SignatureVerifier,
) error {
	for idx, tmpInput := range tx.Inputs() {
		id := common.UtxoIdFromInput(tmpInput)
		tmpUtxo, err := ls.UtxoById(id)
		// BadInputsUtxo will handle missing UTxOs
		if err != nil || tmpUtxo.Output == nil {
			continue
		}
		msg, err := tx.SignableBytes(idx)
		if err != nil {
			return InvalidSignatureError{
				InputIndex: idx,
				Input:      id,
				Err:        err,
			}
		}
		if !verifier.Verify(tmpUtxo.Output.Address(), msg, tmpInput.Signature()) {
			return InvalidSignatureError{
				InputIndex: idx,
				Input:      id,
			}
		}
	}
	return nil
}

// UtxoValidateOutputNegative ensures that no output has a negative value
func UtxoValidateOutputNegative(
	tx common.Transaction,
	ls common.UtxoState,
	verifier common.SignatureVerifier,
) error {
	for idx, tmpOutput := range tx.Outputs() {
		if tmpOutput.Amount() < 0 {
			return NegativeOutputError{
				OutputIndex: idx,
				Amount:      tmpOutput.Amount(),
			}
		}
	}
	return nil
}

// UtxoValidateValueNotConservedUtxo ensures that the consumed value is at least the produced value.
// Any difference is burned
func UtxoValidateValueNotConservedUtxo(
	tx common.Transaction,
	ls common.UtxoState,
	verifier common.SignatureVerifier,
) error {
	consumedValue := new(big.Int)
	for _, tmpInput := range tx.Inputs() {
		tmpUtxo, err := ls.UtxoById(common.UtxoIdFromInput(tmpInput))
		// Ignore errors fetching the UTxO and exclude it from calculations
		if err != nil || tmpUtxo.Output == nil {
			continue
		}
		consumedValue.Add(consumedValue, big.NewInt(tmpUtxo.Output.Amount()))
	}
	producedValue := new(big.Int)
	for _, tmpOutput := range tx.Outputs() {
		producedValue.Add(producedValue, big.NewInt(tmpOutput.Amount()))
	}
	if consumedValue.Cmp(producedValue) >= 0 {
		return nil
	}
	return ValueNotConservedUtxoError{
		Consumed: consumedValue,
		Produced: producedValue,
	}
}
