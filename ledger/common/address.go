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

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/blinklabs-io/txhandler/cbor"
)

const (
	AddressSize = ed25519.PublicKeySize

	// Human-readable part used for the bech32 form of an address
	AddressBech32Prefix = "addr_vk"
)

// Address identifies the owner of an output. It is the owner's ed25519 public
// key, which is also the key used to verify signatures spending the output.
type Address struct {
	key [AddressSize]byte
}

// NewAddress returns an Address for the provided ed25519 public key. The key must
// be a valid encoding of a point on the curve
func NewAddress(pubKey []byte) (Address, error) {
	if len(pubKey) != AddressSize {
		return Address{}, fmt.Errorf("invalid public key size: %d", len(pubKey))
	}
	if _, err := new(edwards25519.Point).SetBytes(pubKey); err != nil {
		return Address{}, fmt.Errorf("invalid public key: %w", err)
	}
	a := Address{}
	copy(a.key[:], pubKey)
	return a, nil
}

// NewAddressFromString returns an Address based on the provided bech32 address string
func NewAddressFromString(addr string) (Address, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return Address{}, fmt.Errorf("decode bech32: %w", err)
	}
	if hrp != AddressBech32Prefix {
		return Address{}, fmt.Errorf("unexpected address prefix: %s", hrp)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("convert bech32 data: %w", err)
	}
	return NewAddress(decoded)
}

// PublicKey returns the ed25519 public key for the address
func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a.Bytes())
}

func (a Address) Bytes() []byte {
	ret := make([]byte, AddressSize)
	copy(ret, a.key[:])
	return ret
}

// KeyHash returns the Blake2b-224 hash of the address key
func (a Address) KeyHash() Blake2b224 {
	return Blake2b224Hash(a.key[:])
}

func (a Address) String() string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(a.key[:], 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(AddressBech32Prefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a Address) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(a.key[:])
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	var keyBytes []byte
	if _, err := cbor.Decode(data, &keyBytes); err != nil {
		return err
	}
	if len(keyBytes) == 0 {
		return errors.New("empty address")
	}
	tmpAddr, err := NewAddress(keyBytes)
	if err != nil {
		return err
	}
	*a = tmpAddr
	return nil
}
