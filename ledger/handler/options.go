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
	"log/slog"

	"github.com/blinklabs-io/txhandler/ledger/common"
)

// TxHandlerOptionFunc is a type that represents functions that modify the TxHandler config
type TxHandlerOptionFunc func(*TxHandler)

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) TxHandlerOptionFunc {
	return func(h *TxHandler) {
		h.logger = logger
	}
}

// WithSignatureVerifier specifies the signature verifier used for inputs. The default
// verifies ed25519 signatures
func WithSignatureVerifier(verifier common.SignatureVerifier) TxHandlerOptionFunc {
	return func(h *TxHandler) {
		h.verifier = verifier
	}
}

// WithValidationRules specifies the validation rules to apply to each transaction, in order.
// This replaces the default UtxoValidationRules
func WithValidationRules(rules []common.UtxoValidationRuleFunc) TxHandlerOptionFunc {
	return func(h *TxHandler) {
		h.rules = rules
	}
}
