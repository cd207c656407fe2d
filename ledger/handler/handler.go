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

// Package handler validates transactions against a UTxO set and commits
// batches of them, one epoch at a time.
package handler

import (
	"log/slog"

	"github.com/blinklabs-io/txhandler/ledger/common"
	"github.com/blinklabs-io/txhandler/ledger/utxo"
)

// TxHandler owns a UTxO set and advances it by accepting transactions.
//
// IsValid and Validate do not modify the UTxO set and may be called concurrently
// with each other. HandleTxs modifies it and must not run concurrently with any
// other method
type TxHandler struct {
	utxoSet  *utxo.UtxoSet
	logger   *slog.Logger
	verifier common.SignatureVerifier
	rules    []common.UtxoValidationRuleFunc
}

// RejectedTx is a candidate transaction that was not accepted, along with the reason
type RejectedTx struct {
	Tx  common.Transaction
	Err error
}

// EpochResult describes the outcome of a single HandleTxsWithResults call
type EpochResult struct {
	// Accepted transactions in the order they were accepted
	Accepted []common.Transaction
	// Rejected transactions in the order they were provided
	Rejected []RejectedTx
}

// New returns a TxHandler for a copy of the provided UTxO set. Later changes to
// utxoSet do not affect the handler, and the handler never modifies utxoSet
func New(utxoSet *utxo.UtxoSet, opts ...TxHandlerOptionFunc) *TxHandler {
	h := &TxHandler{
		utxoSet:  utxoSet.Clone(),
		verifier: common.Ed25519Verifier{},
		rules:    UtxoValidationRules,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.verifier == nil {
		h.verifier = common.Ed25519Verifier{}
	}
	return h
}

// IsValid returns whether the transaction is valid against the current UTxO set
func (h *TxHandler) IsValid(tx common.Transaction) bool {
	return h.Validate(tx) == nil
}

// Validate checks the transaction against the current UTxO set and returns the
// first rule failure, wrapped in a common.ValidationError
func (h *TxHandler) Validate(tx common.Transaction) error {
	return common.VerifyTransaction(
		tx,
		h.utxoSet,
		h.verifier,
		h.rules,
	)
}

// HandleTxs processes one epoch of candidate transactions. Each candidate is
// checked in the order given, against the UTxO set as updated by the candidates
// accepted before it. Valid candidates are applied immediately and returned in
// acceptance order. Invalid candidates are dropped and not retried
func (h *TxHandler) HandleTxs(txs []common.Transaction) []common.Transaction {
	return h.HandleTxsWithResults(txs).Accepted
}

// HandleTxsWithResults behaves like HandleTxs and also reports why each rejected
// transaction was rejected
func (h *TxHandler) HandleTxsWithResults(txs []common.Transaction) EpochResult {
	ret := EpochResult{
		Accepted: []common.Transaction{},
	}
	for _, tx := range txs {
		if err := h.Validate(tx); err != nil {
			var txHash string
			if !common.IsNilTransaction(tx) {
				txHash = tx.Hash().String()
			}
			h.logger.Debug(
				"rejected transaction",
				"component", "ledger",
				"tx_hash", txHash,
				"reason", err.Error(),
			)
			ret.Rejected = append(
				ret.Rejected,
				RejectedTx{
					Tx:  tx,
					Err: err,
				},
			)
			continue
		}
		h.apply(tx)
		ret.Accepted = append(ret.Accepted, tx)
	}
	h.logger.Debug(
		"processed epoch",
		"component", "ledger",
		"candidates", len(txs),
		"accepted", len(ret.Accepted),
		"rejected", len(ret.Rejected),
		"utxos", h.utxoSet.Len(),
	)
	return ret
}

// apply consumes the transaction inputs and adds its outputs to the UTxO set
func (h *TxHandler) apply(tx common.Transaction) {
	for _, tmpInput := range tx.Inputs() {
		h.utxoSet.Remove(common.UtxoIdFromInput(tmpInput))
	}
	txId := tx.Hash()
	for idx, tmpOutput := range tx.Outputs() {
		h.utxoSet.Insert(
			common.NewUtxoId(txId, uint32(idx)), //nolint:gosec
			tmpOutput,
		)
	}
}

// UtxoSet returns a copy of the current UTxO set
func (h *TxHandler) UtxoSet() *utxo.UtxoSet {
	return h.utxoSet.Clone()
}
