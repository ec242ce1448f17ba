// Copyright (C) 2025 SAGE-X Project
//
// This file is part of didcomm-go.
//
// didcomm-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// didcomm-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with didcomm-go.  If not, see <https://www.gnu.org/licenses/>.

package plugin

import "errors"

// The sentinel errors below are the tagged union pack/unpack callers match
// against with errors.Is. Wrap them with fmt.Errorf("...: %w", ...) to add
// context; never replace them, so callers across a plugin boundary can
// still recognize the category.
var (
	// ErrResolution is returned when a Resolver could not produce a DID
	// Document at all (network failure, DID not found, malformed
	// document). It never distinguishes those cases further.
	ErrResolution = errors.New("did resolution failed")

	// ErrNoKey is returned when a document resolved fine but has no
	// verification method in the relationship a caller needed.
	ErrNoKey = errors.New("no usable verification method")

	// ErrUnsupportedKey is returned when every candidate key uses a curve
	// or key type this core does not implement.
	ErrUnsupportedKey = errors.New("unsupported key type")

	// ErrAlgorithmMismatch is returned when sender and recipient key
	// material cannot agree on a common curve or algorithm family.
	ErrAlgorithmMismatch = errors.New("no common algorithm")

	// ErrSerialization is returned for malformed JSON, envelope shapes
	// that don't parse, or a message body that fails Validate.
	ErrSerialization = errors.New("serialization error")

	// ErrDecryptionFailed is the single, deliberately undifferentiated
	// error for every JWE decryption failure: wrong key, corrupted
	// ciphertext, or a failed authentication tag check. Distinguishing
	// those cases in an error message would hand an attacker an oracle;
	// see pkg/jose/jwe.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrSignatureInvalid is returned when JWS verification fails.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrExpired is returned when a message's expires_time has passed.
	ErrExpired = errors.New("message expired")

	// ErrUnknownCriticalParameter is returned when a JOSE header's "crit"
	// array names an extension this core does not understand.
	ErrUnknownCriticalParameter = errors.New("unknown critical parameter")

	// ErrPlugin wraps an error surfaced by a host-supplied Resolver,
	// Signer, or Encryptor that does not fit any of the categories above.
	ErrPlugin = errors.New("plugin error")
)
