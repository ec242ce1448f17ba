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
	"encoding/base64"
	"fmt"
)

// JWK is the subset of RFC 7517 this core needs: OKP (Ed25519/X25519) and
// EC (P-256/384/521) public keys, plus the private "d" member for the
// reference in-memory plugin's own keys.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	D   string `json:"d,omitempty"`
}

// KeyType returns the KeyType described by j.
func (j *JWK) KeyType() (KeyType, error) {
	switch {
	case j.Kty == "OKP" && j.Crv == "Ed25519":
		return KeyTypeEd25519, nil
	case j.Kty == "OKP" && j.Crv == "X25519":
		return KeyTypeX25519, nil
	case j.Kty == "EC" && j.Crv == "P-256":
		return KeyTypeP256, nil
	case j.Kty == "EC" && j.Crv == "P-384":
		return KeyTypeP384, nil
	case j.Kty == "EC" && j.Crv == "P-521":
		return KeyTypeP521, nil
	default:
		return KeyTypeUnknown, fmt.Errorf("diddoc: %w: kty=%s crv=%s", ErrUnsupportedKey, j.Kty, j.Crv)
	}
}

// PublicKeyBytes returns the raw public key encoding used by
// pkg/keyagreement and pkg/jose/jws: 32 raw bytes for OKP keys, or the
// uncompressed SEC1 point (0x04 || X || Y) for EC keys.
func (j *JWK) PublicKeyBytes() (KeyType, []byte, error) {
	kt, err := j.KeyType()
	if err != nil {
		return KeyTypeUnknown, nil, err
	}

	x, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: decode jwk x: %w", err)
	}

	if kt == KeyTypeEd25519 || kt == KeyTypeX25519 {
		return kt, x, nil
	}

	y, err := base64.RawURLEncoding.DecodeString(j.Y)
	if err != nil {
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: decode jwk y: %w", err)
	}

	point := make([]byte, 0, 1+len(x)+len(y))
	point = append(point, 0x04)
	point = append(point, x...)
	point = append(point, y...)

	return kt, point, nil
}

// JWKFromPublicKeyBytes builds a public JWK from a KeyType and the raw
// encoding PublicKeyBytes produces, the inverse conversion.
func JWKFromPublicKeyBytes(kt KeyType, raw []byte) (*JWK, error) {
	switch kt {
	case KeyTypeEd25519:
		return &JWK{Kty: "OKP", Crv: "Ed25519", X: base64.RawURLEncoding.EncodeToString(raw)}, nil
	case KeyTypeX25519:
		return &JWK{Kty: "OKP", Crv: "X25519", X: base64.RawURLEncoding.EncodeToString(raw)}, nil
	case KeyTypeP256, KeyTypeP384, KeyTypeP521:
		if len(raw) < 1 || raw[0] != 0x04 {
			return nil, fmt.Errorf("diddoc: expected uncompressed EC point")
		}

		coord := (len(raw) - 1) / 2
		x := raw[1 : 1+coord]
		y := raw[1+coord:]

		crv := map[KeyType]string{KeyTypeP256: "P-256", KeyTypeP384: "P-384", KeyTypeP521: "P-521"}[kt]

		return &JWK{
			Kty: "EC",
			Crv: crv,
			X:   base64.RawURLEncoding.EncodeToString(x),
			Y:   base64.RawURLEncoding.EncodeToString(y),
		}, nil
	default:
		return nil, fmt.Errorf("diddoc: %w: %s", ErrUnsupportedKey, kt)
	}
}

// Extract returns the KeyType and raw public key bytes (see
// JWK.PublicKeyBytes for the encoding) for vm, handling both
// publicKeyJwk and publicKeyMultibase. UnsupportedKey is returned for any
// other key representation or unknown curve rather than guessing.
func (vm *VerificationMethod) Extract() (KeyType, []byte, error) {
	switch {
	case vm.PublicKeyJWK != nil:
		return vm.PublicKeyJWK.PublicKeyBytes()
	case vm.PublicKeyMultibase != "":
		return decodeMultibase(vm.PublicKeyMultibase)
	default:
		return KeyTypeUnknown, nil, fmt.Errorf("diddoc: %w: verification method %q has no recognized public key encoding", ErrUnsupportedKey, vm.ID)
	}
}
