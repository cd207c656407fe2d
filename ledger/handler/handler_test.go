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

package handler_test

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"log/slog"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	test_ledger "github.com/blinklabs-io/txhandler/internal/test/ledger"
	"github.com/blinklabs-io/txhandler/ledger/common"
	"github.com/blinklabs-io/txhandler/ledger/handler"
	"github.com/blinklabs-io/txhandler/ledger/simple"
	"github.com/blinklabs-io/txhandler/ledger/utxo"
)

// singleOutputFixture is a UTxO set holding one output O1 worth 10, owned by K
type singleOutputFixture struct {
	utxoSet  *utxo.UtxoSet
	o1       common.UtxoId
	ownerKey ed25519.PrivateKey
	owner    common.Address
	payee    common.Address
}

func newSingleOutputFixture() singleOutputFixture {
	ownerKey, owner := test_ledger.NewTestKey(1)
	_, payee := test_ledger.NewTestKey(2)
	o1 := common.NewUtxoId(test_ledger.NewTestTxId(100), 0)
	s := utxo.NewUtxoSet()
	s.Insert(o1, common.UtxoOutput{OutputAddress: owner, OutputAmount: 10})
	return singleOutputFixture{
		utxoSet:  s,
		o1:       o1,
		ownerKey: ownerKey,
		owner:    owner,
		payee:    payee,
	}
}

func TestHandleTxsExactSpend(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})

	assert.True(t, h.IsValid(t1))
	accepted := h.HandleTxs(txList(t1))
	require.Len(t, accepted, 1)
	assert.Same(t, t1, accepted[0])

	after := h.UtxoSet()
	assert.False(t, after.Contains(f.o1))
	newId := common.NewUtxoId(t1.Hash(), 0)
	output, ok := after.Lookup(newId)
	require.True(t, ok)
	assert.Equal(t, int64(10), output.Amount())
	assert.Equal(t, f.payee, output.Address())
	assert.Equal(t, 1, after.Len())
}

func TestHandleTxsOverspend(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 11})

	assert.False(t, h.IsValid(t1))
	err := h.Validate(t1)
	var valueErr handler.ValueNotConservedUtxoError
	require.True(t, errors.As(err, &valueErr), "got %v", err)
	assert.Equal(t, int64(10), valueErr.Consumed.Int64())
	assert.Equal(t, int64(11), valueErr.Produced.Int64())

	accepted := h.HandleTxs(txList(t1))
	assert.Empty(t, accepted)
	assert.NotNil(t, accepted)
	after := h.UtxoSet()
	assert.True(t, after.Contains(f.o1))
	assert.Equal(t, 1, after.Len())
}

func TestHandleTxsConflictingSpend(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	t2 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.owner, 9})

	// Both are individually valid
	assert.True(t, h.IsValid(t1))
	assert.True(t, h.IsValid(t2))

	accepted := h.HandleTxs(txList(t1, t2))
	require.Len(t, accepted, 1)
	assert.Same(t, t1, accepted[0])
	// The second spender now fails because O1 is gone
	var badInputsErr handler.BadInputsUtxoError
	require.True(t, errors.As(h.Validate(t2), &badInputsErr))
	assert.Equal(t, []common.UtxoId{f.o1}, badInputsErr.Inputs)
}

func TestHandleTxsOrderSensitivity(t *testing.T) {
	f := newSingleOutputFixture()
	txA := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	txB := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 5})

	hAB := handler.New(f.utxoSet)
	acceptedAB := hAB.HandleTxs(txList(txA, txB))
	require.Len(t, acceptedAB, 1)
	assert.Same(t, txA, acceptedAB[0])

	hBA := handler.New(f.utxoSet)
	acceptedBA := hBA.HandleTxs(txList(txB, txA))
	require.Len(t, acceptedBA, 1)
	assert.Same(t, txB, acceptedBA[0])

	// Fixture set is untouched by either handler
	assert.True(t, f.utxoSet.Contains(f.o1))
	assert.Equal(t, 1, f.utxoSet.Len())
}

func TestIsValidDuplicateInput(t *testing.T) {
	f := newSingleOutputFixture()
	t3 := newTestTx(
		t,
		f.ownerKey,
		[]common.UtxoId{f.o1, f.o1},
		testOutput{f.payee, 5},
	)

	// Rejected with real signatures
	h := handler.New(f.utxoSet)
	assert.False(t, h.IsValid(t3))
	var dupErr handler.DuplicateInputsError
	require.True(t, errors.As(h.Validate(t3), &dupErr))
	assert.Equal(t, []common.UtxoId{f.o1}, dupErr.Inputs)

	// And regardless of signature validity
	hAccept := handler.New(
		f.utxoSet,
		handler.WithSignatureVerifier(test_ledger.AcceptAllVerifier),
	)
	assert.False(t, hAccept.IsValid(t3))
	hReject := handler.New(
		f.utxoSet,
		handler.WithSignatureVerifier(test_ledger.RejectAllVerifier),
	)
	assert.False(t, hReject.IsValid(t3))
}

func TestIsValidBadSignature(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	wrongKey, _ := test_ledger.NewTestKey(7)

	testDefs := []struct {
		name  string
		build func(t *testing.T) common.Transaction
	}{
		{
			name: "signed by wrong key",
			build: func(t *testing.T) common.Transaction {
				return newTestTx(t, wrongKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
			},
		},
		{
			name: "unsigned",
			build: func(t *testing.T) common.Transaction {
				tx := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
				require.NoError(t, tx.SetSignature(0, nil))
				return tx
			},
		},
		{
			name: "outputs changed after signing",
			build: func(t *testing.T) common.Transaction {
				tx := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 6})
				tx.AddOutput(f.payee, 4)
				return tx
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			tx := testDef.build(t)
			assert.False(t, h.IsValid(tx))
			var sigErr handler.InvalidSignatureError
			require.True(t, errors.As(h.Validate(tx), &sigErr))
			assert.Equal(t, 0, sigErr.InputIndex)
			assert.Equal(t, f.o1, sigErr.Input)
		})
	}
}

func TestIsValidNegativeOutput(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	// Sum of outputs is within the input value, but one output is negative
	tx := newTestTx(
		t,
		f.ownerKey,
		[]common.UtxoId{f.o1},
		testOutput{f.payee, 15},
		testOutput{f.owner, -5},
	)
	assert.False(t, h.IsValid(tx))
	var negErr handler.NegativeOutputError
	require.True(t, errors.As(h.Validate(tx), &negErr))
	assert.Equal(t, 1, negErr.OutputIndex)
	assert.Equal(t, int64(-5), negErr.Amount)
}

func TestIsValidOutputSumOverflow(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	// The outputs sum to 2^64-2, which wraps negative as an int64
	tx := newTestTx(
		t,
		f.ownerKey,
		[]common.UtxoId{f.o1},
		testOutput{f.payee, math.MaxInt64},
		testOutput{f.owner, math.MaxInt64},
	)
	assert.False(t, h.IsValid(tx))
	var valueErr handler.ValueNotConservedUtxoError
	require.True(t, errors.As(h.Validate(tx), &valueErr))
	assert.Equal(t, int64(10), valueErr.Consumed.Int64())
	expectedProduced := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(2))
	assert.Equal(t, 0, expectedProduced.Cmp(valueErr.Produced))
	assert.Empty(t, h.HandleTxs(txList(tx)))
	assert.True(t, h.UtxoSet().Contains(f.o1))
}

func TestIsValidBurnAllowed(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	// Inputs exceeding outputs is fine, the difference is burned
	partial := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 3})
	assert.True(t, h.IsValid(partial))
	// Zero-value outputs are allowed
	zero := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 0})
	assert.True(t, h.IsValid(zero))
	// As is spending to no outputs at all
	none := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1})
	assert.True(t, h.IsValid(none))

	accepted := h.HandleTxs(txList(none))
	require.Len(t, accepted, 1)
	assert.Equal(t, 0, h.UtxoSet().Len())
}

func TestIsValidMissingInput(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	missing := common.NewUtxoId(test_ledger.NewTestTxId(100), 1)
	tx := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1, missing}, testOutput{f.payee, 1})
	var badInputsErr handler.BadInputsUtxoError
	require.True(t, errors.As(h.Validate(tx), &badInputsErr))
	assert.Equal(t, []common.UtxoId{missing}, badInputsErr.Inputs)
}

func TestIsValidNoSideEffects(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	valid := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	invalid := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 11})
	before := utxoIds(h.UtxoSet())
	for range 3 {
		assert.True(t, h.IsValid(valid))
		assert.False(t, h.IsValid(invalid))
	}
	assert.Equal(t, before, utxoIds(h.UtxoSet()))
}

func TestIsValidConcurrent(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	valid := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	invalid := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 11})
	var wg sync.WaitGroup
	results := make([][2]bool, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = [2]bool{h.IsValid(valid), h.IsValid(invalid)}
		}()
	}
	wg.Wait()
	for _, result := range results {
		assert.Equal(t, [2]bool{true, false}, result)
	}
}

func TestHandleTxsChainedWithinBatch(t *testing.T) {
	f := newSingleOutputFixture()
	payeeKey, _ := test_ledger.NewTestKey(2)
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	t2 := newTestTx(
		t,
		payeeKey,
		[]common.UtxoId{common.NewUtxoId(t1.Hash(), 0)},
		testOutput{f.owner, 8},
	)

	t.Run("parent first", func(t *testing.T) {
		h := handler.New(f.utxoSet)
		accepted := h.HandleTxs(txList(t1, t2))
		require.Len(t, accepted, 2)
		assert.Same(t, t1, accepted[0])
		assert.Same(t, t2, accepted[1])
		after := h.UtxoSet()
		assert.Equal(t, 1, after.Len())
		assert.True(t, after.Contains(common.NewUtxoId(t2.Hash(), 0)))
	})

	t.Run("child first is not retried", func(t *testing.T) {
		h := handler.New(f.utxoSet)
		accepted := h.HandleTxs(txList(t2, t1))
		require.Len(t, accepted, 1)
		assert.Same(t, t1, accepted[0])
		// The child is valid now, but only in a later epoch
		assert.True(t, h.IsValid(t2))
		accepted = h.HandleTxs(txList(t2))
		require.Len(t, accepted, 1)
		assert.Same(t, t2, accepted[0])
	})
}

func TestHandleTxsStateCarriesAcrossEpochs(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	require.Len(t, h.HandleTxs(txList(t1)), 1)
	// Replaying the same transaction in a later epoch fails
	assert.Empty(t, h.HandleTxs(txList(t1)))
	assert.Equal(t, 1, h.UtxoSet().Len())
}

func TestHandleTxsEmptyAndNil(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	accepted := h.HandleTxs(nil)
	assert.NotNil(t, accepted)
	assert.Empty(t, accepted)

	result := h.HandleTxsWithResults(txList(nil))
	assert.Empty(t, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Error(t, result.Rejected[0].Err)
	assert.Equal(t, 1, h.UtxoSet().Len())

	// A nil pointer inside the interface is rejected the same way
	var nilTx *simple.SimpleTransaction
	valid := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	assert.NotPanics(t, func() {
		assert.False(t, h.IsValid(nilTx))
		result = h.HandleTxsWithResults(txList(nilTx, valid))
	})
	require.Len(t, result.Accepted, 1)
	assert.Same(t, valid, result.Accepted[0])
	require.Len(t, result.Rejected, 1)
	var validationErr *common.ValidationError
	require.True(t, errors.As(result.Rejected[0].Err, &validationErr))
	assert.Equal(t, common.ValidationErrorTypeTransaction, validationErr.Type)
}

func TestHandleTxsWithResults(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)
	over := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 11})
	good := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	late := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 9})

	result := h.HandleTxsWithResults(txList(over, good, late))
	require.Len(t, result.Accepted, 1)
	assert.Same(t, good, result.Accepted[0])
	require.Len(t, result.Rejected, 2)
	assert.Same(t, over, result.Rejected[0].Tx)
	assert.Same(t, late, result.Rejected[1].Tx)

	var valueErr handler.ValueNotConservedUtxoError
	assert.True(t, errors.As(result.Rejected[0].Err, &valueErr))
	var badInputsErr handler.BadInputsUtxoError
	assert.True(t, errors.As(result.Rejected[1].Err, &badInputsErr))
	var validationErr *common.ValidationError
	require.True(t, errors.As(result.Rejected[1].Err, &validationErr))
	assert.Equal(t, late.Hash().String(), validationErr.Details["tx_hash"])
}

func TestNewCopiesUtxoSet(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(f.utxoSet)

	// Caller changes are not seen by the handler
	f.utxoSet.Remove(f.o1)
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	assert.True(t, h.IsValid(t1))

	// Handler changes are not seen by the caller
	f.utxoSet.Insert(f.o1, common.UtxoOutput{OutputAddress: f.owner, OutputAmount: 10})
	require.Len(t, h.HandleTxs(txList(t1)), 1)
	assert.True(t, f.utxoSet.Contains(f.o1))
	assert.False(t, f.utxoSet.Contains(common.NewUtxoId(t1.Hash(), 0)))

	// Nor are changes to the returned snapshot
	snapshot := h.UtxoSet()
	snapshot.Remove(common.NewUtxoId(t1.Hash(), 0))
	assert.True(t, h.UtxoSet().Contains(common.NewUtxoId(t1.Hash(), 0)))
}

func TestNewNilUtxoSet(t *testing.T) {
	h := handler.New(nil)
	assert.Equal(t, 0, h.UtxoSet().Len())
	key, addr := test_ledger.NewTestKey(1)
	tx := newTestTx(
		t,
		key,
		[]common.UtxoId{common.NewUtxoId(test_ledger.NewTestTxId(1), 0)},
		testOutput{addr, 1},
	)
	assert.False(t, h.IsValid(tx))
}

func TestWithFakeVerifier(t *testing.T) {
	f := newSingleOutputFixture()
	h := handler.New(
		f.utxoSet,
		handler.WithSignatureVerifier(test_ledger.FakeVerifier{}),
	)
	// An ed25519 signature is not accepted by the fake verifier
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 10})
	assert.False(t, h.IsValid(t1))
	msg, err := t1.SignableBytes(0)
	require.NoError(t, err)
	require.NoError(t, t1.SetSignature(0, test_ledger.FakeSign(f.owner, msg)))
	assert.True(t, h.IsValid(t1))
	// The fake signature must come from the output owner
	require.NoError(t, t1.SetSignature(0, test_ledger.FakeSign(f.payee, msg)))
	assert.False(t, h.IsValid(t1))
}

func TestWithValidationRules(t *testing.T) {
	f := newSingleOutputFixture()
	var calls int
	h := handler.New(
		f.utxoSet,
		handler.WithValidationRules(
			[]common.UtxoValidationRuleFunc{
				func(common.Transaction, common.UtxoState, common.SignatureVerifier) error {
					calls++
					return nil
				},
			},
		),
	)
	// Only the custom rule runs, so an overspend is accepted
	t1 := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 50})
	require.Len(t, h.HandleTxs(txList(t1)), 1)
	assert.Equal(t, 1, calls)
}

func TestWithLogger(t *testing.T) {
	f := newSingleOutputFixture()
	var buf bytes.Buffer
	logger := slog.New(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	h := handler.New(f.utxoSet, handler.WithLogger(logger))
	over := newTestTx(t, f.ownerKey, []common.UtxoId{f.o1}, testOutput{f.payee, 11})
	h.HandleTxs(txList(over))
	logOutput := buf.String()
	assert.Contains(t, logOutput, "rejected transaction")
	assert.Contains(t, logOutput, over.Hash().String())
	assert.Contains(t, logOutput, "processed epoch")
	assert.Contains(t, logOutput, "component=ledger")
}
