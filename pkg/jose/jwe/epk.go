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

package jwe

import (
	"crypto/ecdh"
	"encoding/json"
	"fmt"

	"github.com/sage-x-project/didcomm-go/pkg/diddoc"
	"github.com/sage-x-project/didcomm-go/pkg/keyagreement"
)

// curveKeyType maps an ecdh.Curve back to the diddoc.KeyType that
// produced it, so an ephemeral public key generated for a recipient's
// curve can be re-expressed as a JWK for the protected header's "epk".
func curveKeyType(curve ecdh.Curve) (diddoc.KeyType, error) {
	switch curve {
	case ecdh.X25519():
		return diddoc.KeyTypeX25519, nil
	case ecdh.P256():
		return diddoc.KeyTypeP256, nil
	case ecdh.P384():
		return diddoc.KeyTypeP384, nil
	case ecdh.P521():
		return diddoc.KeyTypeP521, nil
	default:
		return diddoc.KeyTypeUnknown, fmt.Errorf("jwe: %w: unrecognized ecdh curve", diddoc.ErrUnsupportedKey)
	}
}

// epkJSON renders pub as the JWK this core's "epk" protected header
// member carries.
func epkJSON(pub *ecdh.PublicKey) (json.RawMessage, error) {
	kt, err := curveKeyType(pub.Curve())
	if err != nil {
		return nil, err
	}

	jwk, err := diddoc.JWKFromPublicKeyBytes(kt, pub.Bytes())
	if err != nil {
		return nil, err
	}

	return json.Marshal(jwk)
}

// parseEPK parses a protected header's "epk" member back into a usable
// public key. The key type is read from the JWK itself (kty/crv), since
// an ephemeral key's curve is whatever the sender generated it on.
func parseEPK(raw json.RawMessage) (*ecdh.PublicKey, error) {
	var jwk diddoc.JWK
	if err := json.Unmarshal(raw, &jwk); err != nil {
		return nil, fmt.Errorf("jwe: parse epk: %w", err)
	}

	kt, rawKey, err := jwk.PublicKeyBytes()
	if err != nil {
		return nil, err
	}

	return keyagreement.ParsePublicKey(kt, rawKey)
}

// contentAlgIDForKDF returns the "algID" field HKDF's info string binds
// in. For ECDH-1PU+A256KW, DIDComm's profile requires this to be the
// content-encryption algorithm (`enc`), not the key-wrap algorithm
// (`alg`) — the quirk called out in spec.md §4.4 step 3 and §9, enforced
// here so two parties who only agree on `enc` still derive the same key.
// ECDH-ES uses the ordinary JOSE convention of the key-management `alg`.
func contentAlgIDForKDF(contentAlg ContentAlgorithm, alg KeyAlgorithm) string {
	if alg == ECDH1PU {
		return string(contentAlg)
	}

	return string(alg)
}
