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

package diddoc

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// multicodec codes for the public-key types this core understands.
// https://github.com/multiformats/multicodec
const (
	codecEd25519Pub = 0xed
	codecX25519Pub  = 0xec
	codecP256Pub    = 0x1200
	codecP384Pub    = 0x1201
	codecP521Pub    = 0x1202
)

// decodeMultibase decodes a publicKeyMultibase value (base58btc, i.e. a
// leading 'z', followed by a varint multicodec prefix and the raw key
// bytes) into a KeyType and the raw public key bytes. NIST curve keys are
// returned exactly as encoded after the prefix: a compressed SEC1 point is
// not decompressed, and only the uncompressed form (0x04 || X || Y) is
// accepted by the key-agreement and JWK code downstream. X25519 and
// Ed25519 keys are returned as their 32-byte raw encodings.
func decodeMultibase(mb string) (KeyType, []byte, error) {
	if len(mb) < 2 || mb[0] != 'z' {
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: %w: only base58btc ('z') multibase is supported", ErrUnsupportedKey)
	}

	decoded, err := base58.Decode(mb[1:])
	if err != nil {
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: decode multibase: %w", err)
	}

	code, n, err := decodeVarint(decoded)
	if err != nil {
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: decode multicodec prefix: %w", err)
	}

	raw := decoded[n:]

	switch code {
	case codecEd25519Pub:
		if len(raw) != 32 {
			return KeyTypeUnknown, nil, fmt.Errorf("diddoc: ed25519 key must be 32 bytes, got %d", len(raw))
		}
		return KeyTypeEd25519, raw, nil
	case codecX25519Pub:
		if len(raw) != 32 {
			return KeyTypeUnknown, nil, fmt.Errorf("diddoc: x25519 key must be 32 bytes, got %d", len(raw))
		}
		return KeyTypeX25519, raw, nil
	case codecP256Pub:
		return KeyTypeP256, raw, nil
	case codecP384Pub:
		return KeyTypeP384, raw, nil
	case codecP521Pub:
		return KeyTypeP521, raw, nil
	default:
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: %w: multicodec 0x%x", ErrUnsupportedKey, code)
	}
}

// encodeMultibase is the inverse of decodeMultibase; used by tests and by
// the in-memory reference plugin to build fixture DID Documents.
func encodeMultibase(kt KeyType, raw []byte) (string, error) {
	var code int

	switch kt {
	case KeyTypeEd25519:
		code = codecEd25519Pub
	case KeyTypeX25519:
		code = codecX25519Pub
	case KeyTypeP256:
		code = codecP256Pub
	case KeyTypeP384:
		code = codecP384Pub
	case KeyTypeP521:
		code = codecP521Pub
	default:
		return "", fmt.Errorf("diddoc: %w: %s", ErrUnsupportedKey, kt)
	}

	prefixed := append(encodeVarint(code), raw...)

	return "z" + base58.Encode(prefixed), nil
}

// decodeVarint reads an unsigned LEB128 varint from the front of b,
// returning its value and the number of bytes consumed.
func decodeVarint(b []byte) (int, int, error) {
	var value, shift int

	for i, by := range b {
		if i > 4 {
			return 0, 0, fmt.Errorf("varint too long")
		}

		value |= int(by&0x7f) << shift
		if by&0x80 == 0 {
			return value, i + 1, nil
		}

		shift += 7
	}

	return 0, 0, fmt.Errorf("truncated varint")
}

// encodeVarint encodes v as an unsigned LEB128 varint.
func encodeVarint(v int) []byte {
	var out []byte

	for {
		b := byte(v & 0x7f)
		v >>= 7

		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}

	return out
}
