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


// Package cbor provides the CBOR encoding/decoding used for ledger transactions.
//
// This package wraps github.com/fxamacker/cbor/v2. Encoding always uses core
// deterministic ordering so that transaction identifiers and signable content
// are stable across encoders.
//
// # Key Types
//
// Embeddable types for struct encoding:
//   - StructAsArray: Embed to encode struct fields as CBOR array instead of map
//   - DecodeStoreCbor: Embed to preserve original CBOR bytes for hashing
//
// # Critical Pattern: DecodeStoreCbor
//
// When a type needs its original CBOR bytes preserved for hashing:
//
//	type MyType struct {
//	    cbor.DecodeStoreCbor
//	    cbor.StructAsArray
//	    Field1 string
//	    Field2 int
//	}
//
//	func (m *MyType) UnmarshalCBOR(data []byte) error {
//	    return m.UnmarshalCborGeneric(data, m)
//	}
//
// Later, m.Cbor() returns the original bytes for hash computation.
package cbor
