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

// UtxoValidationRuleFunc represents a function that validates a transaction
// against a specific UTXO validation rule. Rules must not modify the UTxO state
type UtxoValidationRuleFunc func(
	tx Transaction,
	ls UtxoState,
	verifier SignatureVerifier,
) error

// VerifyTransaction runs the provided validation rules in order and wraps
// the first error encountered into a ValidationError.
func VerifyTransaction(
	tx Transaction,
	ls UtxoState,
	verifier SignatureVerifier,
	validationRules []UtxoValidationRuleFunc,
) error {
	if IsNilTransaction(tx) {
		return NewValidationError(
			ValidationErrorTypeTransaction,
			"nil transaction",
			nil,
			nil,
		)
	}
	if isNil(ls) || isNil(verifier) {
		return NewValidationError(
			ValidationErrorTypeConfiguration,
			"UTxO state and signature verifier are required",
			nil,
			nil,
		)
	}
	for i, rule := range validationRules {
		if err := rule(tx, ls, verifier); err != nil {
			details := map[string]any{
				"rule_index": i,
				"tx_hash":    tx.Hash().String(),
			}
			return NewValidationError(
				ValidationErrorTypeTransaction,
				"transaction validation failed",
				details,
				err,
			)
		}
	}
	return nil
}
