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

// Package common provides shared ledger types and interfaces.
//
// # Key Files by Purpose
//
// Interfaces (start here to understand the API):
//   - state.go: UtxoState
//   - tx.go: Transaction, TransactionInput, TransactionOutput, UtxoId, Utxo
//   - verify.go: SignatureVerifier and the ed25519 implementation
//
// Core Types:
//   - common.go: Blake2b hash types
//   - address.go: Address (owner public key) parsing and encoding
//
// Validation:
//   - rules.go: UtxoValidationRuleFunc signature and VerifyTransaction
//   - errors.go: ValidationError
//
// # Common Patterns
//
// Validation rules have this signature:
//
//	func UtxoValidate{RuleName}(tx Transaction, ls UtxoState, verifier SignatureVerifier) error
//
// The concrete rule set lives in ledger/handler, the concrete transaction format
// in ledger/simple.
//
// # Testing
//
// Use MockUtxoState and FakeVerifier from internal/test/ledger for testing validation rules.
package common
