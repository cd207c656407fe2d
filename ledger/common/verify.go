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
	"crypto/ed25519"
	"errors"
	"fmt"
)

// SignatureVerifier checks that sig is a valid signature of msg by the owner of addr.
// Implementations must be safe for concurrent use
type SignatureVerifier interface {
	Verify(addr Address, msg []byte, sig []byte) bool
}

// SignatureVerifierFunc allows using a plain function as a SignatureVerifier
type SignatureVerifierFunc func(addr Address, msg []byte, sig []byte) bool

func (f SignatureVerifierFunc) Verify(addr Address, msg []byte, sig []byte) bool {
	return f(addr, msg, sig)
}

// Ed25519Verifier verifies ed25519 signatures using the address as the public key
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(addr Address, msg []byte, sig []byte) bool {
	return VerifyVKeySignature(addr.Bytes(), sig, msg) == nil
}

// VerifyVKeySignature verifies an ed25519 signature against the provided public key and message.
func VerifyVKeySignature(pubKey, sig, msg []byte) error {
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key size: %d", len(pubKey))
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature size: %d", len(sig))
	}
	if !ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig) {
		return errors.New("signature verification failed")
	}
	return nil
}
